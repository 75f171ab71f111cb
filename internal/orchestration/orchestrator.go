package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/parfor/internal/config"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/progress"
	"github.com/agbru/parfor/internal/workload"
)

// ProgressBufferMultiplier sizes the progress channel per run so that a slow
// display rarely causes dropped samples.
const ProgressBufferMultiplier = 5

// ExecuteRuns runs w over [cfg.From, cfg.From+cfg.N) once per strategy.
//
// Runs execute one after another on the shared loop so that they never
// compete for cores. While a run is in flight a sampler reads its
// visited-index counter and publishes progress; updates are dropped rather
// than blocking when the reporter falls behind.
func ExecuteRuns(ctx context.Context, loop *parallel.Loop, w workload.Workload, strategies []Strategy, cfg config.AppConfig, reporter ProgressReporter, out io.Writer) []RunResult {
	results := make([]RunResult, len(strategies))
	progressChan := make(chan progress.ProgressUpdate, len(strategies)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(strategies), out)

	for i, s := range strategies {
		results[i] = executeRun(ctx, loop, w, i, s, cfg, progressChan)
	}

	close(progressChan)
	displayWg.Wait()
	return results
}

func executeRun(ctx context.Context, loop *parallel.Loop, w workload.Workload, idx int, s Strategy, cfg config.AppConfig, progressChan chan<- progress.ProgressUpdate) RunResult {
	var done atomic.Int64
	runner := workload.NewRunner(loop, s.MinPartitionSize)
	runner.FailAt = cfg.FailAt
	runner.Done = &done

	result := RunResult{Strategy: s, Decision: loop.Plan(cfg.N, s.MinPartitionSize)}
	sampler := &runSampler{runIndex: idx, total: cfg.N, done: &done, out: progressChan}
	finished := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(finished)
		start := time.Now()
		result.Checksum, result.Err = w.Run(ctx, runner, cfg.From, cfg.N)
		result.Duration = time.Since(start)
		return nil
	})
	g.Go(func() error {
		sampler.run(ProgressSampleInterval, finished)
		return nil
	})
	_ = g.Wait()

	if result.Err == nil {
		sampler.publish(progress.ProgressUpdate{RunIndex: idx, Value: 1})
	}
	return result
}

// AnalyzeComparisonResults sorts results (successes first, then by
// duration), presents the comparison table and checks that every successful
// run produced the same checksum. It returns the process exit code.
func AnalyzeComparisonResults(results []RunResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValid *RunResult
	var firstError error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
		} else if firstValid == nil {
			firstValid = &results[i]
		}
	}

	if len(results) > 1 {
		presenter.PresentComparisonTable(results, out)
	}

	if firstValid == nil {
		if len(results) > 1 {
			fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy completed the loop.\n")
		}
		return errHandler.HandleError(firstError, 0, out)
	}

	for _, res := range results {
		if res.Err == nil && res.Checksum != firstValid.Checksum {
			mismatch := apperrors.MismatchError{
				Expected: firstValid.Checksum, Got: res.Checksum,
				Reference: firstValid.Strategy.Name, Offender: res.Strategy.Name,
			}
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %v\n", mismatch)
			return apperrors.ExitErrorMismatch
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All checksums are consistent.\n")
	}
	presenter.PresentResult(*firstValid, opts, out)
	return apperrors.ExitSuccess
}
