package types

// ProbeStatus tags the outcome of a fallible probe section so consumers can
// branch on it instead of matching error text.
type ProbeStatus string

const (
	ProbeOK          ProbeStatus = "ok"
	ProbeUnavailable ProbeStatus = "unavailable"
	ProbeError       ProbeStatus = "error"
)

// HostCapabilityRecord is the structured snapshot of the host, persisted
// under the top-level "system_info" table of the configuration file.
type HostCapabilityRecord struct {
	OS           string `toml:"OS" json:"os"`
	OSVersion    string `toml:"OS_Version" json:"os_version"`
	OSRelease    string `toml:"OS_Release" json:"os_release"`
	Architecture string `toml:"Architecture" json:"architecture"`
	Machine      string `toml:"Machine" json:"machine"`
	Processor    string `toml:"Processor" json:"processor"`

	RuntimeVersion string `toml:"Runtime_Version" json:"runtime_version"`
	Executable     string `toml:"Executable" json:"executable"`

	DiskUsage  DiskUsage  `toml:"Disk_Usage" json:"disk_usage"`
	CPUDetails CPUDetails `toml:"CPU_Details" json:"cpu_details"`
	CUDAInfo   CUDAInfo   `toml:"CUDA_Info" json:"cuda_info"`
}

type DiskUsage struct {
	Status ProbeStatus `toml:"Status" json:"status"`
	Reason string      `toml:"Reason,omitempty" json:"reason,omitempty"`

	TotalBytes  uint64  `toml:"Total_Bytes" json:"total_bytes"`
	UsedBytes   uint64  `toml:"Used_Bytes" json:"used_bytes"`
	FreeBytes   uint64  `toml:"Free_Bytes" json:"free_bytes"`
	UsedPercent float64 `toml:"Percentage_Used" json:"used_percent"`
}

type CPUDetails struct {
	Status ProbeStatus `toml:"Status" json:"status"`
	Reason string      `toml:"Reason,omitempty" json:"reason,omitempty"`

	Brand         string   `toml:"Brand" json:"brand"`
	Family        string   `toml:"Family" json:"family"`
	Bits          int      `toml:"Bits" json:"bits"`
	PhysicalCores int      `toml:"Count" json:"physical_cores"`
	LogicalCores  int      `toml:"Logical_Count" json:"logical_cores"`
	FrequencyMHz  float64  `toml:"Frequency_MHz" json:"frequency_mhz"`
	Flags         []string `toml:"Flags" json:"flags"`
	CacheSizeKB   int32    `toml:"Cache_Size_KB" json:"cache_size_kb"`
}

// CUDAInfo describes the CUDA compute devices found on the host.
// CUDAAvailable is true iff Devices is non-empty.
type CUDAInfo struct {
	Status ProbeStatus `toml:"Status" json:"status"`
	Reason string      `toml:"Reason,omitempty" json:"reason,omitempty"`

	CUDAAvailable bool         `toml:"CUDA_Available" json:"cuda_available"`
	DriverVersion string       `toml:"Driver_Version,omitempty" json:"driver_version,omitempty"`
	Devices       []CUDADevice `toml:"Devices" json:"devices"`
}

type CUDADevice struct {
	Index              int    `toml:"Index" json:"index"`
	Name               string `toml:"Name" json:"name"`
	MemoryTotalMB      uint64 `toml:"Memory_Total_MB" json:"memory_total_mb"`
	MemoryFreeMB       uint64 `toml:"Memory_Free_MB" json:"memory_free_mb"`
	MemoryUsedMB       uint64 `toml:"Memory_Used_MB" json:"memory_used_mb"`
	UtilizationPercent int    `toml:"GPU_Utilization_Percent" json:"gpu_utilization_percent"`
	TemperatureC       int    `toml:"Temperature_C" json:"temperature_c"`
}
