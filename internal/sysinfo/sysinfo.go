package sysinfo

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

const rootPath = "/"

// Prober gathers the host capability snapshot. Sub-probes are independently
// fallible: a failed section is tagged on the record, the rest still
// populates.
type Prober struct {
	log *log.Logger

	hostInfo  func() (*host.InfoStat, error)
	uname     func() (version, release, machine string, err error)
	diskUsage func(path string) (*disk.UsageStat, error)
	cpuInfo   func() ([]cpu.InfoStat, error)
	cpuCounts func(logical bool) (int, error)
	cudaProbe func(ctx context.Context) types.CUDAInfo
}

func NewProber(logger *log.Logger) *Prober {
	p := &Prober{
		log:       logger,
		hostInfo:  host.Info,
		uname:     unameIdentity,
		diskUsage: disk.Usage,
		cpuInfo:   cpu.Info,
		cpuCounts: cpu.Counts,
	}
	p.cudaProbe = p.collectCUDA
	return p
}

// Collect builds a fresh HostCapabilityRecord. It never fails as a whole.
func (p *Prober) Collect(ctx context.Context) *types.HostCapabilityRecord {
	p.log.Println("Gathering system information...")

	rec := &types.HostCapabilityRecord{
		RuntimeVersion: runtime.Version(),
	}
	if exe, err := os.Executable(); err == nil {
		rec.Executable = exe
	}

	p.collectOS(rec)
	rec.DiskUsage = p.collectDisk()
	rec.CPUDetails = p.collectCPU()
	rec.CUDAInfo = p.cudaProbe(ctx)

	p.log.Println("System information gathering completed.")
	return rec
}

func (p *Prober) collectOS(rec *types.HostCapabilityRecord) {
	rec.OS = runtime.GOOS
	rec.Architecture = fmt.Sprintf("%dbit", strconv.IntSize)
	rec.Machine = runtime.GOARCH
	rec.Processor = runtime.GOARCH

	if info, err := p.hostInfo(); err == nil {
		rec.OS = info.OS
		rec.OSVersion = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		rec.OSRelease = info.KernelVersion
		rec.Machine = info.KernelArch
		rec.Processor = info.KernelArch
	} else {
		p.log.Printf("Warning: host info unavailable: %v", err)
	}

	// uname has the exact kernel identity where supported.
	if version, release, machine, err := p.uname(); err == nil {
		rec.OSVersion = version
		rec.OSRelease = release
		rec.Machine = machine
	}
}

func (p *Prober) collectDisk() types.DiskUsage {
	usage, err := p.diskUsage(rootPath)
	if err != nil {
		p.log.Printf("Error retrieving disk usage: %v", err)
		return types.DiskUsage{Status: types.ProbeError, Reason: err.Error()}
	}

	return types.DiskUsage{
		Status:      types.ProbeOK,
		TotalBytes:  usage.Total,
		UsedBytes:   usage.Used,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	}
}

func (p *Prober) collectCPU() types.CPUDetails {
	infos, err := p.cpuInfo()
	if err != nil {
		p.log.Printf("Error retrieving CPU details: %v", err)
		return types.CPUDetails{Status: types.ProbeError, Reason: err.Error(), Flags: []string{}}
	}

	details := types.CPUDetails{
		Status: types.ProbeOK,
		Bits:   strconv.IntSize,
		Flags:  []string{},
	}
	if len(infos) > 0 {
		first := infos[0]
		details.Brand = first.ModelName
		details.Family = first.Family
		details.FrequencyMHz = first.Mhz
		details.CacheSizeKB = first.CacheSize
		if len(first.Flags) > 0 {
			details.Flags = first.Flags
		}
	}

	if physical, err := p.cpuCounts(false); err == nil {
		details.PhysicalCores = physical
	}
	if logical, err := p.cpuCounts(true); err == nil {
		details.LogicalCores = logical
	}

	return details
}
