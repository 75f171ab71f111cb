package app

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/parfor/internal/cli"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/metrics"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/ui"
	"github.com/agbru/parfor/internal/workload"
)

// runLoop runs every configured strategy over the workload and reports the
// outcome on out.
func (a *Application) runLoop(ctx context.Context, out io.Writer, s session, w workload.Workload) int {
	cfg := a.Config
	strategies := orchestration.StrategiesFor(cfg)

	if !cfg.Quiet {
		cli.PrintExecutionConfig(out, Version, cfg)
		cli.PrintExecutionMode(out, len(strategies))
		if cfg.Explain {
			cli.DisplayPlan(out, cfg.From, cfg.N, cfg.MinPartitionSize, s.loop.Options().Parallelism)
		}
	}

	// Quiet mode keeps stdout for the checksum; diagnostics go to ErrWriter.
	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	var presenter orchestration.ResultPresenter = cli.CLIResultPresenter{}
	progressOut, reportOut := out, out
	if cfg.Quiet {
		reporter = orchestration.NullProgressReporter{}
		presenter = cli.QuietResultPresenter{Out: out}
		progressOut, reportOut = io.Discard, a.ErrWriter
	}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	results := orchestration.ExecuteRuns(ctx, s.loop, w, strategies, cfg, reporter, progressOut)
	delta := collector.Snapshot().Since(before)

	opts := orchestration.PresentationOptions{
		Workload: cfg.Workload,
		From:     cfg.From,
		N:        cfg.N,
		Verbose:  cfg.Verbose,
		Details:  cfg.Details,
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, opts, presenter, cli.CLIResultPresenter{}, reportOut)

	if exitCode == apperrors.ExitSuccess && cfg.OutputFile != "" {
		if err := a.saveReport(out, results[0], opts); err != nil {
			return apperrors.ExitErrorGeneric
		}
	}

	if cfg.Details && !cfg.Quiet {
		cli.DisplayMemoryStats(delta, out)
		cli.DisplaySystemStats(out, s.loop.Options().Parallelism)
		if s.spans != nil {
			_, _ = s.spans.WriteTo(out)
		}
	}

	if cfg.Metrics {
		if !cfg.Quiet {
			fmt.Fprintf(out, "\nMetrics:\n")
		}
		metricsOut := out
		if cfg.Quiet {
			metricsOut = a.ErrWriter
		}
		if err := s.metrics.WriteText(metricsOut); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
		}
	}

	return exitCode
}

// saveReport writes the report of the best run to the configured file.
func (a *Application) saveReport(out io.Writer, best orchestration.RunResult, opts orchestration.PresentationOptions) error {
	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
	if err := cli.WriteResultToFile(best, opts, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
		return err
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "\n%sReport saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
	}
	return nil
}
