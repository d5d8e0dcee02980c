package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/sparrowup/ollama-pipeline/internal/config"
	"github.com/sparrowup/ollama-pipeline/internal/sysinfo"
	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

func main() {
	var output string
	pflag.StringVarP(&output, "output", "o", "config.toml", "Output TOML file name")
	pflag.Parse()

	logger := log.New(os.Stdout, "SYSINFO | ", log.LstdFlags)

	prober := sysinfo.NewProber(logger)
	rec := prober.Collect(context.Background())

	warnFailedSections(logger, rec)

	if err := config.Save(output, rec); err != nil {
		logger.Fatalf("FATAL: Failed to save system information to %s: %v", output, err)
	}
	logger.Printf("System information saved to %s", output)
}

func warnFailedSections(logger *log.Logger, rec *types.HostCapabilityRecord) {
	if rec.DiskUsage.Status != types.ProbeOK {
		logger.Printf("Warning: disk probe %s: %s", rec.DiskUsage.Status, rec.DiskUsage.Reason)
	}
	if rec.CPUDetails.Status != types.ProbeOK {
		logger.Printf("Warning: CPU probe %s: %s", rec.CPUDetails.Status, rec.CPUDetails.Reason)
	}
	if rec.CUDAInfo.Status != types.ProbeOK {
		logger.Printf("Warning: CUDA probe %s: %s", rec.CUDAInfo.Status, rec.CUDAInfo.Reason)
	}
}
