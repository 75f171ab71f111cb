package parallel

// DefaultMinPartitionSize is the smallest number of indices a worker must
// receive before a range is split across workers.
const DefaultMinPartitionSize = 128

// Mode is the execution strategy chosen for a loop.
type Mode int

const (
	// Sequential runs the whole range in order on the calling goroutine.
	Sequential Mode = iota
	// Parallel splits the range into partitions run by the Executor.
	Parallel
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Decision is the outcome of planning a loop.
type Decision struct {
	Mode Mode
	// ChunkSize is the partition size for Parallel decisions, 0 otherwise.
	ChunkSize int
}

// Plan decides how a range of the given length should be executed.
//
// The naive chunk size is length / parallelism. The range goes parallel with
// that chunk size when more than one worker is available and the minimum
// partition size does not exceed the naive chunk size; a chunk exactly at
// the minimum still goes parallel. Everything else runs sequentially,
// including every length smaller than the worker count.
//
// Non-positive parallelism and minimum partition sizes are treated as 1.
func Plan(length, minPartitionSize, parallelism int) Decision {
	if length <= 0 {
		return Decision{Mode: Sequential}
	}
	if parallelism < 1 {
		parallelism = 1
	}
	if minPartitionSize < 1 {
		minPartitionSize = 1
	}
	naive := length / parallelism
	if parallelism > 1 && minPartitionSize <= naive {
		return Decision{Mode: Parallel, ChunkSize: naive}
	}
	return Decision{Mode: Sequential}
}

// Partition is the half-open index range [Start, End) handled by one worker.
type Partition struct {
	Start, End int
}

// Len returns the number of indices in the partition.
func (p Partition) Len() int { return p.End - p.Start }

// Split cuts [from, to) into contiguous partitions of chunkSize indices. The
// remainder, if any, forms a final smaller partition, so no partition is
// larger than chunkSize and none is empty. A non-positive chunkSize yields the
// whole range as a single partition; an empty range yields nil.
func Split(from, to, chunkSize int) []Partition {
	if to <= from {
		return nil
	}
	if chunkSize <= 0 {
		return []Partition{{Start: from, End: to}}
	}
	length := to - from
	parts := make([]Partition, 0, (length-1)/chunkSize+1)
	for start := from; start < to; {
		end := to
		// to-start cannot overflow: start only grows towards to.
		if to-start > chunkSize {
			end = start + chunkSize
		}
		parts = append(parts, Partition{Start: start, End: end})
		start = end
	}
	return parts
}
