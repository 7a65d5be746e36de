package profile

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/postgres/pkg/units"
	"github.com/shirou/gopsutil/v3/mem"
)

// DetectLocal builds a Profile from the machine the CLI itself is running
// on. Neither the engine nor the CLI calls it: the CLI resolves profiles
// from the declared tier or custom string and falls back to Default(),
// since a declared remote target's actual hardware is exactly what the
// compute profile exists to substitute for.
func DetectLocal() Profile {
	vcpus := uint32(effectiveCPUCount())
	if vcpus < 1 {
		vcpus = 1
	}

	ram := effectiveMemory()
	if ram < units.GB {
		ram = units.GB
	}

	return Profile{
		VCPUs:        vcpus,
		RAMBytes:     units.Size(ram),
		WorkloadHint: Mixed,
	}
}

func effectiveCPUCount() int {
	if quota := containerCPUQuota(); quota > 0 {
		cpus := int(quota + 0.5)
		if cpus < 1 {
			cpus = 1
		}
		return cpus
	}
	return runtime.NumCPU()
}

func effectiveMemory() uint64 {
	var total uint64
	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
		total = vm.Total
	} else {
		logger.Warnf("could not read host memory, assuming 1GiB: %v", err)
		total = units.GB
	}

	if limit := containerMemoryLimit(); limit > 0 && limit < total {
		return limit
	}
	return total
}

// containerMemoryLimit reads a cgroup v2 (then v1) memory limit, returning 0
// when none applies. Only memory.max / memory.limit_in_bytes are consulted;
// the distinction between soft and hard limits does not matter for a
// read-only profile estimate.
func containerMemoryLimit() uint64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		content := strings.TrimSpace(string(data))
		if content != "max" {
			if limit, err := strconv.ParseUint(content, 10, 64); err == nil {
				return limit
			}
		}
	}

	if cgroupPath := memoryCgroupV1Path(); cgroupPath != "" {
		limitFile := filepath.Join("/sys/fs/cgroup/memory", cgroupPath, "memory.limit_in_bytes")
		if data, err := os.ReadFile(limitFile); err == nil {
			if limit, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64); err == nil && limit < 1<<62 {
				return limit
			}
		}
	}

	return 0
}

func memoryCgroupV1Path() string {
	data, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, ":memory:") {
			parts := strings.Split(line, ":")
			if len(parts) >= 3 {
				return strings.TrimPrefix(parts[2], "/")
			}
		}
	}
	return ""
}

// containerCPUQuota reads a cgroup v2 cpu.max quota as fractional CPUs, or 0
// when unlimited or unavailable.
func containerCPUQuota() float64 {
	data, err := os.ReadFile("/sys/fs/cgroup/cpu.max")
	if err != nil {
		return 0
	}
	fields := strings.Fields(strings.TrimSpace(string(data)))
	if len(fields) < 2 || fields[0] == "max" {
		return 0
	}
	quota, err1 := strconv.ParseInt(fields[0], 10, 64)
	period, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil || period == 0 {
		return 0
	}
	return float64(quota) / float64(period)
}
