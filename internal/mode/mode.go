// Package mode derives the execution backend from a loaded capability record.
package mode

import (
	"errors"

	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

type Mode string

const (
	CPU Mode = "cpu"
	GPU Mode = "gpu"
)

// ErrNoCUDASection reports a record whose CUDA_Info section is structurally
// absent. A section that probed as unavailable or failed is not an error:
// it answers the question with CUDA_Available=false.
var ErrNoCUDASection = errors.New("record has no CUDA_Info section")

// Selection holds the mutually exclusive backend flags. Exactly one of
// CPUFlag/GPUFlag is 1.
type Selection struct {
	Mode    Mode
	CPUFlag int
	GPUFlag int
}

func Derive(rec *types.HostCapabilityRecord) (Selection, error) {
	if rec == nil {
		return Selection{}, ErrNoCUDASection
	}
	if rec.CUDAInfo.Status == "" {
		return Selection{}, ErrNoCUDASection
	}

	if rec.CUDAInfo.CUDAAvailable {
		return Selection{Mode: GPU, CPUFlag: 0, GPUFlag: 1}, nil
	}
	return Selection{Mode: CPU, CPUFlag: 1, GPUFlag: 0}, nil
}
