// Package pipeline sequences the launch: ensure a capability configuration
// exists, load it, and derive the execution backend.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sparrowup/ollama-pipeline/internal/config"
	"github.com/sparrowup/ollama-pipeline/internal/mode"
	"github.com/sparrowup/ollama-pipeline/internal/sysinfo"
	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

type Pipeline struct {
	log        *log.Logger
	configPath string

	probe func(ctx context.Context) *types.HostCapabilityRecord
	save  func(path string, rec *types.HostCapabilityRecord) error
	load  func(path string) (*types.HostCapabilityRecord, error)
}

func New(logger *log.Logger, configPath string) *Pipeline {
	prober := sysinfo.NewProber(logger)
	return &Pipeline{
		log:        logger,
		configPath: configPath,
		probe:      prober.Collect,
		save:       config.Save,
		load:       config.Load,
	}
}

// EnsureConfig probes and writes the configuration file if it does not
// exist. It runs at most one probe; an existing file is trusted as-is.
// The returned bool reports whether a probe ran.
func (p *Pipeline) EnsureConfig(ctx context.Context) (bool, error) {
	_, err := os.Stat(p.configPath)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", p.configPath, err)
	}

	p.log.Printf("Configuration file does not exist at path: %s", p.configPath)
	p.log.Println("Probing host to generate configuration file...")

	rec := p.probe(ctx)
	if err := p.save(p.configPath, rec); err != nil {
		return false, fmt.Errorf("failed to generate configuration: %w", err)
	}

	p.log.Println("Configuration file generated.")
	return true, nil
}

// Select ensures the configuration exists, re-reads it from disk, and
// derives the backend selection. All failures come back as errors; none
// panic.
func (p *Pipeline) Select(ctx context.Context) (mode.Selection, *types.HostCapabilityRecord, error) {
	if _, err := p.EnsureConfig(ctx); err != nil {
		return mode.Selection{}, nil, err
	}

	rec, err := p.load(p.configPath)
	if err != nil {
		return mode.Selection{}, nil, err
	}

	sel, err := mode.Derive(rec)
	if err != nil {
		return mode.Selection{}, rec, err
	}

	p.log.Printf("CUDA Available: %v", rec.CUDAInfo.CUDAAvailable)
	p.log.Printf("cpu_flag: %d", sel.CPUFlag)
	p.log.Printf("gpu_flag: %d", sel.GPUFlag)
	return sel, rec, nil
}
