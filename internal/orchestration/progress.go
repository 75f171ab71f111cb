package orchestration

import (
	"sync/atomic"
	"time"

	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/progress"
)

// ProgressSampleInterval is how often the visited-index counter of the
// current run is turned into a progress update.
const ProgressSampleInterval = 50 * time.Millisecond

// runSampler publishes the progress of one run from the counter its
// workload.Runner increments for every visited index.
type runSampler struct {
	runIndex int
	total    int
	done     *atomic.Int64
	out      chan<- progress.ProgressUpdate

	// dropped counts updates discarded because out was full.
	dropped int
}

// sample reads the counter. The fraction is capped at 1 for workloads that
// visit their range more than once.
func (s *runSampler) sample() progress.ProgressUpdate {
	if s.total <= 0 {
		return progress.ProgressUpdate{RunIndex: s.runIndex}
	}
	v := float64(s.done.Load()) / float64(s.total)
	return progress.ProgressUpdate{RunIndex: s.runIndex, Value: min(v, 1)}
}

// publish sends u without blocking and reports whether it was delivered.
func (s *runSampler) publish(u progress.ProgressUpdate) bool {
	select {
	case s.out <- u:
		return true
	default:
		s.dropped++
		return false
	}
}

// run samples every interval until finished is closed. Empty runs publish
// nothing.
func (s *runSampler) run(interval time.Duration, finished <-chan struct{}) {
	if s.total <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-finished:
			return
		case <-ticker.C:
			s.publish(s.sample())
		}
	}
}

// ProgressAggregator folds the updates of a batch of runs into an overall
// fraction and an ETA. Runs only move forward: an update below the last
// value seen for its run is ignored, so a sample that arrives after the
// final update cannot pull a finished run back. It is not safe for
// concurrent use.
type ProgressAggregator struct {
	eta      *format.ProgressWithETA
	latest   []float64
	finished int
}

// AggregatedProgress is the state of the batch after one update.
type AggregatedProgress struct {
	RunIndex        int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	// Finished is the number of runs that reached 1.
	Finished int
}

// NewProgressAggregator returns an aggregator for numRuns runs, or nil when
// numRuns <= 0.
func NewProgressAggregator(numRuns int) *ProgressAggregator {
	if numRuns <= 0 {
		return nil
	}
	return &ProgressAggregator{
		eta:    format.NewProgressWithETA(numRuns),
		latest: make([]float64, numRuns),
	}
}

// Update folds u. Updates for a run outside the batch leave the state
// unchanged.
func (a *ProgressAggregator) Update(u progress.ProgressUpdate) AggregatedProgress {
	if u.RunIndex < 0 || u.RunIndex >= len(a.latest) {
		return AggregatedProgress{
			RunIndex:        u.RunIndex,
			AverageProgress: a.eta.CalculateAverage(),
			ETA:             a.eta.GetETA(),
			Finished:        a.finished,
		}
	}

	v := min(max(u.Value, 0), 1)
	prev := a.latest[u.RunIndex]
	if v > prev {
		a.latest[u.RunIndex] = v
		if v == 1 {
			a.finished++
		}
	}
	v = a.latest[u.RunIndex]

	avg, eta := a.eta.UpdateWithETA(u.RunIndex, v)
	return AggregatedProgress{
		RunIndex:        u.RunIndex,
		Value:           v,
		AverageProgress: avg,
		ETA:             eta,
		Finished:        a.finished,
	}
}

// NumRuns returns the size of the batch.
func (a *ProgressAggregator) NumRuns() int { return len(a.latest) }

// IsMultiRun reports whether the batch compares several strategies.
func (a *ProgressAggregator) IsMultiRun() bool { return len(a.latest) > 1 }

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
