package parallel

import "runtime"

// Options is the execution configuration shared by every call made through a
// Loop. It is built once, normalized, and never mutated afterwards.
type Options struct {
	// MinPartitionSize is the default minimum number of indices per worker.
	MinPartitionSize int
	// Parallelism is the number of workers the planner divides a range by.
	Parallelism int
	// MaxConcurrency bounds how many partitions the default executor runs at
	// once. Zero means unbounded.
	MaxConcurrency int
}

// DefaultOptions returns the options used when nothing is configured: a
// minimum partition size of 128 and one worker per GOMAXPROCS slot.
func DefaultOptions() Options {
	return Options{
		MinPartitionSize: DefaultMinPartitionSize,
		Parallelism:      runtime.GOMAXPROCS(0),
	}
}

// Normalize replaces out-of-range values with their defaults.
func (o Options) Normalize() Options {
	if o.MinPartitionSize < 1 {
		o.MinPartitionSize = DefaultMinPartitionSize
	}
	if o.Parallelism < 1 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.MaxConcurrency < 0 {
		o.MaxConcurrency = 0
	}
	return o
}
