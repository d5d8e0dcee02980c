// Package orchestrator runs the Ollama server container through the local
// Docker daemon.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/docker/docker/client"

	"github.com/sparrowup/ollama-pipeline/internal/mode"
)

const (
	// DefaultPort is the port Ollama serves its API on, both in the
	// container and on the host.
	DefaultPort = 11434

	defaultImage    = "ollama/ollama"
	defaultImageTag = "latest"

	// containerModelPath is where the ollama image keeps pulled models.
	containerModelPath = "/root/.ollama"
)

type ServeOptions struct {
	ImageTag string
	Mode     mode.Mode
	Port     int
	// ModelDir is a host directory bind-mounted over the container's model
	// cache so pulled models survive container replacement.
	ModelDir string
}

func (o *ServeOptions) withDefaults() ServeOptions {
	opts := *o
	if opts.ImageTag == "" {
		opts.ImageTag = defaultImageTag
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	return opts
}

type Orchestrator struct {
	dockerCli *client.Client
	log       *log.Logger
}

func New(logger *log.Logger) (*Orchestrator, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if _, err := cli.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("cannot connect to docker daemon: %w", err)
	}

	return &Orchestrator{dockerCli: cli, log: logger}, nil
}

// StartServer pulls the Ollama image and starts the server container in the
// requested execution mode. It returns the container ID.
func (o *Orchestrator) StartServer(ctx context.Context, opts ServeOptions) (string, error) {
	opts = opts.withDefaults()

	if opts.ModelDir != "" {
		if err := os.MkdirAll(opts.ModelDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model dir: %w", err)
		}
	}

	containerID, err := runServerContainer(ctx, o.dockerCli, o.log, opts)
	if err != nil {
		return "", err
	}

	o.log.Printf("Ollama server container %s started on port %d (%s mode).",
		shortID(containerID), opts.Port, opts.Mode)
	return containerID, nil
}

// StopServer stops and removes the server container. A container that is
// already gone is not an error.
func (o *Orchestrator) StopServer(ctx context.Context, containerID string) error {
	return removeContainer(ctx, o.dockerCli, o.log, containerID)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
