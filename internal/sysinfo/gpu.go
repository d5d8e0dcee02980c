package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sparrowup/ollama-pipeline/internal/utils"
	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

// ErrNVMLUnavailable reports that the NVML driver library cannot be used in
// this build or on this host.
var ErrNVMLUnavailable = errors.New("nvml not available")

const smiQueryFields = "index,name,memory.total,memory.free,memory.used,utilization.gpu,temperature.gpu"

// collectCUDA probes compute devices through NVML first and falls back to
// nvidia-smi when the library cannot be loaded.
func (p *Prober) collectCUDA(ctx context.Context) types.CUDAInfo {
	devices, driver, err := nvmlDeviceList()
	if err == nil {
		return cudaInfoFrom(devices, driver)
	}
	if !errors.Is(err, ErrNVMLUnavailable) {
		p.log.Printf("Error retrieving CUDA information: %v", err)
		return types.CUDAInfo{Status: types.ProbeError, Reason: err.Error(), Devices: []types.CUDADevice{}}
	}

	if _, lookErr := exec.LookPath("nvidia-smi"); lookErr != nil {
		p.log.Println("Neither NVML nor nvidia-smi found. CUDA information not available.")
		return types.CUDAInfo{
			Status:  types.ProbeUnavailable,
			Reason:  "neither NVML nor nvidia-smi is available on this host",
			Devices: []types.CUDADevice{},
		}
	}

	devices, driver, err = smiDeviceList(ctx)
	if err != nil {
		p.log.Printf("Error retrieving CUDA information via nvidia-smi: %v", err)
		return types.CUDAInfo{Status: types.ProbeError, Reason: err.Error(), Devices: []types.CUDADevice{}}
	}
	return cudaInfoFrom(devices, driver)
}

func cudaInfoFrom(devices []types.CUDADevice, driver string) types.CUDAInfo {
	if devices == nil {
		devices = []types.CUDADevice{}
	}
	return types.CUDAInfo{
		Status:        types.ProbeOK,
		CUDAAvailable: len(devices) > 0,
		DriverVersion: driver,
		Devices:       devices,
	}
}

func smiDeviceList(ctx context.Context) ([]types.CUDADevice, string, error) {
	out, err := utils.RunCommandGetOutput(ctx, "nvidia-smi",
		"--query-gpu="+smiQueryFields, "--format=csv,noheader,nounits")
	if err != nil {
		return nil, "", err
	}

	var devices []types.CUDADevice
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		dev, err := parseSMILine(line)
		if err != nil {
			return nil, "", err
		}
		devices = append(devices, dev)
	}

	driver, err := utils.RunCommandGetOutput(ctx, "nvidia-smi",
		"--query-gpu=driver_version", "--format=csv,noheader", "-i", "0")
	if err != nil {
		driver = ""
	}
	if i := strings.IndexByte(driver, '\n'); i >= 0 {
		driver = driver[:i]
	}

	return devices, strings.TrimSpace(driver), nil
}

func parseSMILine(line string) (types.CUDADevice, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return types.CUDADevice{}, fmt.Errorf("unexpected nvidia-smi output: %q", line)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.CUDADevice{}, fmt.Errorf("bad device index in %q: %w", line, err)
	}
	memTotal, _ := strconv.ParseUint(fields[2], 10, 64)
	memFree, _ := strconv.ParseUint(fields[3], 10, 64)
	memUsed, _ := strconv.ParseUint(fields[4], 10, 64)
	util, _ := strconv.Atoi(fields[5])
	temp, _ := strconv.Atoi(fields[6])

	return types.CUDADevice{
		Index:              index,
		Name:               fields[1],
		MemoryTotalMB:      memTotal,
		MemoryFreeMB:       memFree,
		MemoryUsedMB:       memUsed,
		UtilizationPercent: util,
		TemperatureC:       temp,
	}, nil
}
