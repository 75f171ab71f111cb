package tui

import (
	"time"

	"github.com/agbru/parfor/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	Generation      uint64
	RunIndex        int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent once a batch's progress channel has closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// ComparisonResultsMsg carries the sorted results of a multi-strategy batch.
type ComparisonResultsMsg struct {
	Generation uint64
	Results    []orchestration.RunResult
}

// FinalResultMsg carries the winning run.
type FinalResultMsg struct {
	Generation uint64
	Result     orchestration.RunResult
	Opts       orchestration.PresentationOptions
}

// ErrorMsg reports that no strategy completed the loop.
type ErrorMsg struct {
	Generation uint64
	Err        error
	Duration   time.Duration
}

// RunsCompleteMsg is sent when a batch has been analyzed.
type RunsCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the session context is done.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// SysStatsMsg carries a host CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// MemStatsMsg carries a runtime memory sample.
type MemStatsMsg struct {
	HeapAlloc    uint64
	NumGC        uint32
	NumGoroutine int
}
