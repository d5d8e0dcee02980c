package orchestrator

import (
	"testing"

	"github.com/docker/go-connections/nat"

	"github.com/sparrowup/ollama-pipeline/internal/mode"
)

func TestServerConfigsGPUMode(t *testing.T) {
	opts := ServeOptions{Mode: mode.GPU, ModelDir: "/var/lib/ollama"}
	opts = opts.withDefaults()

	_, hostConfig, err := serverConfigs("ollama/ollama:latest", opts)
	if err != nil {
		t.Fatalf("serverConfigs failed: %v", err)
	}

	if len(hostConfig.DeviceRequests) != 1 {
		t.Fatalf("DeviceRequests = %d, want 1", len(hostConfig.DeviceRequests))
	}
	req := hostConfig.DeviceRequests[0]
	if req.Driver != "nvidia" || req.Count != -1 {
		t.Errorf("device request = %+v", req)
	}

	if len(hostConfig.Mounts) != 1 || hostConfig.Mounts[0].Target != containerModelPath {
		t.Errorf("model dir mount missing: %+v", hostConfig.Mounts)
	}
}

func TestServerConfigsCPUMode(t *testing.T) {
	opts := ServeOptions{Mode: mode.CPU}
	opts = opts.withDefaults()

	containerConfig, hostConfig, err := serverConfigs("ollama/ollama:latest", opts)
	if err != nil {
		t.Fatalf("serverConfigs failed: %v", err)
	}

	if len(hostConfig.DeviceRequests) != 0 {
		t.Errorf("CPU mode must not request GPU devices: %+v", hostConfig.DeviceRequests)
	}
	if len(hostConfig.Mounts) != 0 {
		t.Errorf("no mounts expected without ModelDir: %+v", hostConfig.Mounts)
	}

	port, _ := nat.NewPort("tcp", "11434")
	bindings, ok := hostConfig.PortBindings[port]
	if !ok || len(bindings) != 1 {
		t.Fatalf("missing 11434 port binding: %+v", hostConfig.PortBindings)
	}
	if bindings[0].HostPort != "11434" {
		t.Errorf("host port = %q, want 11434", bindings[0].HostPort)
	}
	if _, ok := containerConfig.ExposedPorts[port]; !ok {
		t.Error("container does not expose 11434")
	}
}

func TestServeOptionsDefaults(t *testing.T) {
	opts := (&ServeOptions{}).withDefaults()
	if opts.ImageTag != "latest" {
		t.Errorf("ImageTag = %q, want latest", opts.ImageTag)
	}
	if opts.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", opts.Port, DefaultPort)
	}
}
