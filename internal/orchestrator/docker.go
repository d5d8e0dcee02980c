package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"

	"github.com/sparrowup/ollama-pipeline/internal/mode"
)

func runServerContainer(ctx context.Context, cli *client.Client, logger *log.Logger, opts ServeOptions) (string, error) {
	imageName := fmt.Sprintf("%s:%s", defaultImage, opts.ImageTag)

	logger.Printf("Pulling image %s...", imageName)
	reader, err := cli.ImagePull(ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()
	// The pull only completes once the progress stream is drained.
	io.Copy(io.Discard, reader)

	containerConfig, hostConfig, err := serverConfigs(imageName, opts)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("ollama-%s", uuid.NewString()[:8])
	resp, err := cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", resp.ID, err)
	}

	return resp.ID, nil
}

func serverConfigs(imageName string, opts ServeOptions) (*container.Config, *container.HostConfig, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(DefaultPort))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid container port: %w", err)
	}

	containerConfig := &container.Config{
		Image:        imageName,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{
				{
					HostIP:   "0.0.0.0",
					HostPort: strconv.Itoa(opts.Port),
				},
			},
		},
	}

	if opts.ModelDir != "" {
		hostConfig.Mounts = []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: opts.ModelDir,
				Target: containerModelPath,
			},
		}
	}

	if opts.Mode == mode.GPU {
		hostConfig.DeviceRequests = []container.DeviceRequest{
			{
				Driver:       "nvidia",
				Count:        -1, // all GPUs
				Capabilities: [][]string{{"gpu"}},
			},
		}
	}

	return containerConfig, hostConfig, nil
}

func removeContainer(ctx context.Context, cli *client.Client, logger *log.Logger, containerID string) error {
	if containerID == "" {
		return nil
	}

	timeoutInSeconds := 10
	stopOptions := container.StopOptions{Timeout: &timeoutInSeconds}
	err := cli.ContainerStop(ctx, containerID, stopOptions)
	if err != nil && !client.IsErrNotFound(err) {
		logger.Printf("Warning: failed to stop container %s: %v", shortID(containerID), err)
	}

	err = cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}

	return nil
}
