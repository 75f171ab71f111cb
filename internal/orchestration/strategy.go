package orchestration

import (
	"math"

	"github.com/agbru/parfor/internal/config"
)

// Strategy is a named minimum partition size to run a workload with.
type Strategy struct {
	Name             string
	MinPartitionSize int
}

// StrategiesFor returns the strategies selected by cfg.Strategy, in run
// order. "sequential" uses math.MaxInt so the planner never goes parallel;
// "fine" uses 1 so any loop with at least one index per worker does.
func StrategiesFor(cfg config.AppConfig) []Strategy {
	auto := Strategy{Name: config.StrategyAuto, MinPartitionSize: cfg.MinPartitionSize}
	sequential := Strategy{Name: config.StrategySequential, MinPartitionSize: math.MaxInt}
	fine := Strategy{Name: config.StrategyFine, MinPartitionSize: 1}

	switch cfg.Strategy {
	case config.StrategySequential:
		return []Strategy{sequential}
	case config.StrategyFine:
		return []Strategy{fine}
	case config.StrategyAll:
		return []Strategy{auto, sequential, fine}
	default:
		return []Strategy{auto}
	}
}
