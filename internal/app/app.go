package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/parfor/internal/calibration"
	"github.com/agbru/parfor/internal/cli"
	"github.com/agbru/parfor/internal/config"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/logging"
	"github.com/agbru/parfor/internal/metrics"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/tui"
	"github.com/agbru/parfor/internal/ui"
	"github.com/agbru/parfor/internal/workload"
)

// Application represents the parfor application instance.
type Application struct {
	Config    config.AppConfig
	Registry  *workload.Registry
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRegistry sets a custom workload registry for the application.
func WithRegistry(r *workload.Registry) AppOption {
	return func(a *Application) { a.Registry = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Registry == nil {
		app.Registry = workload.NewDefaultRegistry()
	}

	programName := "parfor"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Registry.List())
	if err != nil {
		return nil, err
	}

	if !cfg.Calibrate {
		if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = cfgWithProfile
		}
	}
	app.Config = config.ApplyAdaptiveParallelism(cfg)
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	zerolog.SetGlobalLevel(a.Config.EffectiveLogLevel())
	ui.InitTheme(a.Config.NoColor)

	w, err := a.Registry.Get(a.Config.Workload)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	s, err := a.newSession()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.Calibrate:
		return calibration.RunCalibration(ctx, out, s.loop, w, a.Config, cli.CLIProgressReporter{}, cli.CLIColorProvider{})
	case a.Config.TUI:
		return tui.Run(ctx, s.loop, w, a.Config, Version)
	default:
		return a.runLoop(ctx, out, s, w)
	}
}

// session bundles the dispatcher built for one Run with the collectors that
// observe it.
type session struct {
	loop    *parallel.Loop
	metrics *metrics.LoopMetrics
	spans   *metrics.SpanSummary
}

// newSession builds the dispatcher from the configuration: the executor
// kind, a zerolog logger on ErrWriter, the Prometheus observer and, in
// details mode, an in-memory span summary.
func (a *Application) newSession() (session, error) {
	opts := a.Config.ToLoopOptions()
	executor, err := parallel.NewExecutor(a.Config.Executor, opts.MaxConcurrency)
	if err != nil {
		return session{}, err
	}

	rt := session{metrics: metrics.NewLoopMetrics()}
	setters := []parallel.LoopOption{
		parallel.WithExecutor(executor),
		parallel.WithLogger(logging.NewLogger(a.ErrWriter, "parfor")),
		parallel.WithObserver(rt.metrics),
	}
	if a.Config.Details {
		rt.spans = metrics.NewSpanSummary()
		setters = append(setters, parallel.WithTracer(rt.spans.Tracer(parallel.TracerName)))
	}
	rt.loop = parallel.New(opts, setters...)
	return rt, nil
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Registry.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
