// Package progress defines the progress messages exchanged between the
// orchestration layer and its presenters.
package progress

// ProgressUpdate reports the completion fraction of one run.
type ProgressUpdate struct {
	// RunIndex identifies the run within the current batch.
	RunIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}
