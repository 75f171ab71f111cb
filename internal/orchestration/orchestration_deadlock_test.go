package orchestration

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/parfor/internal/config"
	"github.com/agbru/parfor/internal/progress"
	"github.com/agbru/parfor/internal/workload"
)

// slowReporter does not read the channel until the runs are well underway.
type slowReporter struct{ delay time.Duration }

func (s slowReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	time.Sleep(s.delay)
	for range ch {
	}
}

// slowWorkload sleeps in its body so that the sampler fires many times.
func slowWorkload(perIndex time.Duration) MockWorkload {
	return MockWorkload{RunFunc: func(ctx context.Context, r workload.Runner, from, n int) (uint64, error) {
		return 0, r.For(ctx, from, from+n, func(int) error {
			time.Sleep(perIndex)
			return nil
		})
	}}
}

// TestOrchestrationNoDeadlock verifies that ExecuteRuns completes when the
// reporter lags behind, when runs fail and when the context is canceled.
func TestOrchestrationNoDeadlock(t *testing.T) {
	testCases := []struct {
		name     string
		w        workload.Workload
		reporter ProgressReporter
		failAt   int
		timeout  time.Duration
	}{
		{"lagging_reporter", slowWorkload(100 * time.Microsecond), slowReporter{delay: 200 * time.Millisecond}, config.NoFailure, 0},
		{"failing_runs", slowWorkload(10 * time.Microsecond), NullProgressReporter{}, 500, 0},
		{"canceled_mid_run", slowWorkload(time.Millisecond), slowReporter{delay: 50 * time.Millisecond}, config.NoFailure, 100 * time.Millisecond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tc.timeout)
				defer cancel()
			}
			cfg := config.AppConfig{N: 2000, MinPartitionSize: 128, Strategy: config.StrategyAll, FailAt: tc.failAt}

			done := make(chan []RunResult, 1)
			go func() {
				done <- ExecuteRuns(ctx, testLoop(), tc.w, StrategiesFor(cfg), cfg, tc.reporter, io.Discard)
			}()

			select {
			case results := <-done:
				if len(results) != 3 {
					t.Errorf("expected 3 results, got %d", len(results))
				}
			case <-time.After(30 * time.Second):
				t.Fatal("ExecuteRuns deadlocked")
			}
		})
	}
}
