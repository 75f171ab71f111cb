package calibration

import (
	"math"
	"slices"

	"github.com/agbru/parfor/internal/config"
	"github.com/agbru/parfor/internal/parallel"
)

// SequentialCandidate is the candidate that keeps every loop sequential. It
// is the baseline the other candidates are measured against.
const SequentialCandidate = math.MaxInt

// GenerateMinPartitionSizes returns the minimum partition sizes to benchmark
// on a host with the given number of cores, in ascending order. The list
// always contains the dispatcher default and ends with SequentialCandidate.
//
// Few cores pay proportionally more for each goroutine, so small sizes are
// only tried when there are many cores to spread them over.
func GenerateMinPartitionSizes(cores int) []int {
	if cores <= 1 {
		// A single worker is always planned sequentially.
		return []int{parallel.DefaultMinPartitionSize, SequentialCandidate}
	}

	var sizes []int
	switch {
	case cores <= 4:
		sizes = []int{64, 128, 256, 512, 1024, 4096}
	case cores <= 16:
		sizes = []int{16, 32, 64, 128, 256, 512, 1024, 4096}
	default:
		sizes = []int{8, 16, 32, 64, 128, 256, 512, 1024, 4096, 16384}
	}
	if estimate := config.EstimateMinPartitionSize(cores); !slices.Contains(sizes, estimate) {
		i, _ := slices.BinarySearch(sizes, estimate)
		sizes = slices.Insert(sizes, i, estimate)
	}
	return append(sizes, SequentialCandidate)
}
