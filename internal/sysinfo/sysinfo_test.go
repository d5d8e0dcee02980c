package sysinfo

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

func testProber() *Prober {
	p := NewProber(log.New(io.Discard, "", 0))
	p.hostInfo = func() (*host.InfoStat, error) {
		return &host.InfoStat{
			OS:              "linux",
			Platform:        "debian",
			PlatformVersion: "12",
			KernelVersion:   "6.1.0-18-amd64",
			KernelArch:      "x86_64",
		}, nil
	}
	p.uname = func() (string, string, string, error) {
		return "", "", "", errors.New("uname disabled in tests")
	}
	p.diskUsage = func(string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Total: 500e9, Used: 200e9, Free: 300e9, UsedPercent: 40.0}, nil
	}
	p.cpuInfo = func() ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{
			ModelName: "Test CPU @ 2.40GHz",
			Family:    "6",
			Mhz:       2400,
			Flags:     []string{"sse2", "avx2"},
			CacheSize: 512,
		}}, nil
	}
	p.cpuCounts = func(logical bool) (int, error) {
		if logical {
			return 8, nil
		}
		return 4, nil
	}
	p.cudaProbe = func(context.Context) types.CUDAInfo {
		return cudaInfoFrom(nil, "")
	}
	return p
}

func TestCollectPopulatesRecord(t *testing.T) {
	p := testProber()
	rec := p.Collect(context.Background())

	if rec.OS != "linux" {
		t.Errorf("OS = %q, want linux", rec.OS)
	}
	if rec.OSRelease != "6.1.0-18-amd64" {
		t.Errorf("OSRelease = %q", rec.OSRelease)
	}
	if rec.RuntimeVersion == "" {
		t.Error("RuntimeVersion is empty")
	}
	if rec.DiskUsage.Status != types.ProbeOK {
		t.Fatalf("disk status = %q, want ok", rec.DiskUsage.Status)
	}
	if rec.DiskUsage.UsedPercent != 40.0 {
		t.Errorf("disk used percent = %v", rec.DiskUsage.UsedPercent)
	}
	if rec.CPUDetails.Status != types.ProbeOK {
		t.Fatalf("cpu status = %q, want ok", rec.CPUDetails.Status)
	}
	if rec.CPUDetails.Brand != "Test CPU @ 2.40GHz" {
		t.Errorf("cpu brand = %q", rec.CPUDetails.Brand)
	}
	if rec.CPUDetails.PhysicalCores != 4 || rec.CPUDetails.LogicalCores != 8 {
		t.Errorf("core counts = %d/%d, want 4/8",
			rec.CPUDetails.PhysicalCores, rec.CPUDetails.LogicalCores)
	}
}

func TestCollectDiskFailureIsLocalized(t *testing.T) {
	p := testProber()
	p.diskUsage = func(string) (*disk.UsageStat, error) {
		return nil, errors.New("statfs failed")
	}

	rec := p.Collect(context.Background())

	if rec.DiskUsage.Status != types.ProbeError {
		t.Fatalf("disk status = %q, want error", rec.DiskUsage.Status)
	}
	if rec.DiskUsage.Reason == "" {
		t.Error("disk error reason is empty")
	}
	if rec.CPUDetails.Status != types.ProbeOK {
		t.Errorf("cpu section should still populate, status = %q", rec.CPUDetails.Status)
	}
	if rec.CUDAInfo.Status != types.ProbeOK {
		t.Errorf("cuda section should still populate, status = %q", rec.CUDAInfo.Status)
	}
}

func TestCollectCPUFailureIsLocalized(t *testing.T) {
	p := testProber()
	p.cpuInfo = func() ([]cpu.InfoStat, error) {
		return nil, errors.New("cpuinfo unreadable")
	}

	rec := p.Collect(context.Background())

	if rec.CPUDetails.Status != types.ProbeError {
		t.Fatalf("cpu status = %q, want error", rec.CPUDetails.Status)
	}
	if rec.DiskUsage.Status != types.ProbeOK {
		t.Errorf("disk section should still populate, status = %q", rec.DiskUsage.Status)
	}
}

func TestCUDAAvailableIffDevices(t *testing.T) {
	empty := cudaInfoFrom(nil, "")
	if empty.CUDAAvailable {
		t.Error("CUDA_Available true with no devices")
	}
	if empty.Devices == nil {
		t.Error("device list should be non-nil")
	}

	one := cudaInfoFrom([]types.CUDADevice{{Index: 0, Name: "NVIDIA RTX A4000"}}, "550.54")
	if !one.CUDAAvailable {
		t.Error("CUDA_Available false with one device")
	}
	if one.Status != types.ProbeOK {
		t.Errorf("status = %q, want ok", one.Status)
	}
	if one.DriverVersion != "550.54" {
		t.Errorf("driver = %q", one.DriverVersion)
	}
}

func TestParseSMILine(t *testing.T) {
	dev, err := parseSMILine("0, NVIDIA GeForce RTX 3090, 24576, 23000, 1576, 12, 43")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if dev.Index != 0 || dev.Name != "NVIDIA GeForce RTX 3090" {
		t.Errorf("identity fields wrong: %+v", dev)
	}
	if dev.MemoryTotalMB != 24576 || dev.MemoryFreeMB != 23000 || dev.MemoryUsedMB != 1576 {
		t.Errorf("memory fields wrong: %+v", dev)
	}
	if dev.UtilizationPercent != 12 || dev.TemperatureC != 43 {
		t.Errorf("telemetry fields wrong: %+v", dev)
	}

	if _, err := parseSMILine("not,a,valid,line"); err == nil {
		t.Error("expected error for malformed line")
	}
}
