//go:build linux && cgo

package sysinfo

/*
#cgo LDFLAGS: -lnvidia-ml
#include <nvml.h>

int probe_nvml_init() {
    return nvmlInit() == NVML_SUCCESS;
}

void probe_nvml_shutdown() {
    nvmlShutdown();
}

int probe_device_count(unsigned int *count) {
    return nvmlDeviceGetCount(count) == NVML_SUCCESS;
}

int probe_driver_version(char *buf, unsigned int len) {
    return nvmlSystemGetDriverVersion(buf, len) == NVML_SUCCESS;
}

int probe_device_info(unsigned int index, char *name, unsigned int name_len,
                      unsigned long long *mem_total, unsigned long long *mem_free,
                      unsigned long long *mem_used, unsigned int *util,
                      unsigned int *temp) {
    nvmlDevice_t device;
    if (nvmlDeviceGetHandleByIndex(index, &device) != NVML_SUCCESS) return 0;

    if (nvmlDeviceGetName(device, name, name_len) != NVML_SUCCESS) name[0] = '\0';

    nvmlMemory_t mem;
    if (nvmlDeviceGetMemoryInfo(device, &mem) == NVML_SUCCESS) {
        *mem_total = mem.total;
        *mem_free = mem.free;
        *mem_used = mem.used;
    }

    nvmlUtilization_t u;
    if (nvmlDeviceGetUtilizationRates(device, &u) == NVML_SUCCESS) {
        *util = u.gpu;
    }

    nvmlDeviceGetTemperature(device, NVML_TEMPERATURE_GPU, temp);
    return 1;
}
*/
import "C"

import (
	"fmt"

	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

func nvmlDeviceList() ([]types.CUDADevice, string, error) {
	if C.probe_nvml_init() == 0 {
		return nil, "", ErrNVMLUnavailable
	}
	defer C.probe_nvml_shutdown()

	var count C.uint
	if C.probe_device_count(&count) == 0 {
		return nil, "", fmt.Errorf("nvml device count query failed")
	}

	driver := ""
	var buf [80]C.char
	if C.probe_driver_version(&buf[0], C.uint(len(buf))) == 1 {
		driver = C.GoString(&buf[0])
	}

	devices := make([]types.CUDADevice, 0, int(count))
	for i := 0; i < int(count); i++ {
		var name [96]C.char
		var memTotal, memFree, memUsed C.ulonglong
		var util, temp C.uint
		ok := C.probe_device_info(C.uint(i), &name[0], C.uint(len(name)),
			&memTotal, &memFree, &memUsed, &util, &temp)
		if ok == 0 {
			return nil, "", fmt.Errorf("nvml query failed for device %d", i)
		}
		devices = append(devices, types.CUDADevice{
			Index:              i,
			Name:               C.GoString(&name[0]),
			MemoryTotalMB:      uint64(memTotal) / (1024 * 1024),
			MemoryFreeMB:       uint64(memFree) / (1024 * 1024),
			MemoryUsedMB:       uint64(memUsed) / (1024 * 1024),
			UtilizationPercent: int(util),
			TemperatureC:       int(temp),
		})
	}

	return devices, driver, nil
}
