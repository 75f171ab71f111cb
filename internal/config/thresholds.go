package config

import (
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/sysmon"
)

// Parallelism resolution chain (highest priority first):
//   1. --parallelism flag
//   2. PARFOR_PARALLELISM
//   3. Host detection (this file): min(logical cores, affinity mask, GOMAXPROCS)

// ApplyAdaptiveParallelism fills a zero Parallelism from the host. Values set
// by the user are preserved.
func ApplyAdaptiveParallelism(cfg AppConfig) AppConfig {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = sysmon.AvailableParallelism()
	}
	return cfg
}

// EstimateMinPartitionSize gives a starting point for calibration: fewer cores
// pay relatively more per extra goroutine, so they want larger partitions.
// The result never drops below the dispatcher's default.
func EstimateMinPartitionSize(cores int) int {
	switch {
	case cores <= 1:
		return parallel.DefaultMinPartitionSize * 64 // stays sequential in practice
	case cores <= 2:
		return parallel.DefaultMinPartitionSize * 8
	case cores <= 4:
		return parallel.DefaultMinPartitionSize * 4
	case cores <= 8:
		return parallel.DefaultMinPartitionSize * 2
	default:
		return parallel.DefaultMinPartitionSize
	}
}
