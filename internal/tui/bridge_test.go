package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/progress"
)

func TestTUIProgressReporter_DrainsChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		numRuns int
		updates []progress.ProgressUpdate
	}{
		{"single run", 1, []progress.ProgressUpdate{{RunIndex: 0, Value: 0.25}, {RunIndex: 0, Value: 1}}},
		{"two runs", 2, []progress.ProgressUpdate{{RunIndex: 0, Value: 0.5}, {RunIndex: 1, Value: 1}}},
		{"zero runs", 0, []progress.ProgressUpdate{{RunIndex: 0, Value: 0.5}}},
		{"empty channel", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reporter := &TUIProgressReporter{ref: &programRef{}}
			ch := make(chan progress.ProgressUpdate, len(tt.updates))
			for _, u := range tt.updates {
				ch <- u
			}
			close(ch)

			var wg sync.WaitGroup
			wg.Add(1)
			go reporter.DisplayProgress(&wg, ch, tt.numRuns, nil)
			wg.Wait()
			if _, ok := <-ch; ok {
				t.Error("channel not drained")
			}
		})
	}
}

func TestProgramRef_Send_NilProgram(t *testing.T) {
	t.Parallel()
	ref := &programRef{}
	ref.Send(ProgressMsg{Value: 0.5})
}

func TestProgramRef_Send_Concurrent(t *testing.T) {
	t.Parallel()
	ref := &programRef{}

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref.Send(ProgressMsg{Value: float64(i) / 100})
		}()
	}
	wg.Wait()
}

func TestTUIResultPresenter_NoProgram(t *testing.T) {
	t.Parallel()
	presenter := &TUIResultPresenter{ref: &programRef{}}

	results := []orchestration.RunResult{
		{Strategy: orchestration.Strategy{Name: "auto"}, Checksum: 55, Duration: time.Millisecond},
		{Strategy: orchestration.Strategy{Name: "fine"}, Checksum: 55, Duration: 2 * time.Millisecond},
	}
	presenter.PresentComparisonTable(results, nil)
	presenter.PresentResult(results[0], orchestration.PresentationOptions{N: 10}, nil)
	if presenter.FormatDuration(42*time.Millisecond) != "42ms" {
		t.Errorf("FormatDuration(42ms) = %q", presenter.FormatDuration(42*time.Millisecond))
	}
}

func TestTUIResultPresenter_HandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", apperrors.CanceledError{Cause: context.Canceled}, apperrors.ExitErrorCanceled},
		{"body failure", apperrors.IterationError{Index: 3, Cause: errors.New("boom")}, apperrors.ExitErrorGeneric},
		{"generic", errors.New("something failed"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			presenter := &TUIResultPresenter{ref: &programRef{}}
			if got := presenter.HandleError(tt.err, time.Second, nil); got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
