package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/progress"
	"github.com/agbru/parfor/internal/ui"
)

const (
	// ProgressRefreshRate is how often the progress line is redrawn.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() {
	rs.s.Start()
}

func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed. It always calls wg.Done before returning.
//
// Parameters:
//   - wg: Signalled when the display has stopped.
//   - progressChan: Per-run progress updates; drained until closed.
//   - numRuns: The number of runs reporting on the channel.
//   - out: The writer the spinner draws on.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numRuns)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(agg, 0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var (
		avg float64
		eta time.Duration
	)
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				label := "Done"
				if avg < 1 {
					label = "Stopped"
				}
				fmt.Fprintf(out, "%s%s%s %s\n", ui.ColorGreen(), label, ui.ColorReset(),
					format.ProgressBar(avg, ProgressBarWidth))
				return
			}
			p := agg.Update(update)
			avg, eta = p.AverageProgress, p.ETA
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(agg, avg, eta))
		}
	}
}

func progressSuffix(agg *orchestration.ProgressAggregator, avg float64, eta time.Duration) string {
	label := "Running"
	if agg.IsMultiRun() {
		label = fmt.Sprintf("Running %d strategies", agg.NumRuns())
	}
	return fmt.Sprintf(" %s %s", label, format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
}
