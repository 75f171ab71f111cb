package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/progress"
)

// RunResult is the outcome of running a workload under one strategy. It is
// the shared domain type between orchestration and presentation.
type RunResult struct {
	Strategy Strategy
	// Decision is the plan the dispatcher made for the whole range.
	Decision parallel.Decision
	Checksum uint64
	Duration time.Duration
	Err      error
}

// PresentationOptions configures how results are presented.
type PresentationOptions struct {
	Workload string
	From     int
	N        int
	Verbose  bool
	Details  bool
}

// ProgressReporter displays run progress. DisplayProgress is called in its
// own goroutine, must drain progressChan until it is closed and must call
// wg.Done before returning.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer) {
	f(wg, progressChan, numRuns, out)
}

// NullProgressReporter drains the progress channel without output. Used in
// quiet mode.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}

// ResultPresenter presents run results.
type ResultPresenter interface {
	PresentComparisonTable(results []RunResult, out io.Writer)
	PresentResult(result RunResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a run error and returns the exit code for it.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
