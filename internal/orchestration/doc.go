// Package orchestration runs a workload under one or more partitioning
// strategies and compares the outcomes. It decouples the run loop from
// presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration
