//go:build !linux || !cgo

package sysinfo

import "github.com/sparrowup/ollama-pipeline/pkg/types"

func nvmlDeviceList() ([]types.CUDADevice, string, error) {
	return nil, "", ErrNVMLUnavailable
}
