// Package sysmon inspects the host: system-wide CPU and memory usage and the
// number of cores this process may actually run on.
package sysmon

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	MemTotal   uint64  // bytes
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.MemTotal = vmem.Total
	}
	return s
}

// LogicalCores returns the number of logical CPUs reported by the OS, falling
// back to runtime.NumCPU when the count cannot be read.
func LogicalCores() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// AvailableParallelism is the number of workers a loop should plan for: the
// smallest of the host's logical cores, the scheduler affinity mask and
// GOMAXPROCS. It is always at least 1.
func AvailableParallelism() int {
	n := runtime.GOMAXPROCS(0)
	if logical := LogicalCores(); logical < n {
		n = logical
	}
	if affinity, ok := AffinityCores(); ok && affinity < n {
		n = affinity
	}
	if n < 1 {
		n = 1
	}
	return n
}
