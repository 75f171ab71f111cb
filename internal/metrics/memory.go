package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	TotalAlloc   uint64 // cumulative bytes allocated
	Mallocs      uint64 // cumulative heap objects allocated
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	NumGoroutine int    // goroutines alive at snapshot time
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		NumGoroutine: runtime.NumGoroutine(),
	}
}

// MemoryDelta is the difference between two snapshots taken around a run.
type MemoryDelta struct {
	Allocated    uint64
	Objects      uint64
	GCCycles     uint32
	PauseTotalNs uint64
	PeakHeap     uint64
}

// Since returns what happened between before and s. Cumulative counters never
// decrease, so the subtraction cannot underflow for snapshots taken in order.
func (s MemorySnapshot) Since(before MemorySnapshot) MemoryDelta {
	peak := s.HeapAlloc
	if before.HeapAlloc > peak {
		peak = before.HeapAlloc
	}
	return MemoryDelta{
		Allocated:    s.TotalAlloc - before.TotalAlloc,
		Objects:      s.Mallocs - before.Mallocs,
		GCCycles:     s.NumGC - before.NumGC,
		PauseTotalNs: s.PauseTotalNs - before.PauseTotalNs,
		PeakHeap:     peak,
	}
}
