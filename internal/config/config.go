// Package config defines the command-line configuration of parfor: how flags
// are declared and parsed, how PARFOR_* environment variables override them,
// and how the result is validated and turned into loop options.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/parallel"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "PARFOR_"

// Strategy names accepted by --strategy.
const (
	StrategyAuto       = "auto"
	StrategySequential = "sequential"
	StrategyFine       = "fine"
	StrategyAll        = "all"
)

// Strategies lists every accepted --strategy value.
var Strategies = []string{StrategyAuto, StrategySequential, StrategyFine, StrategyAll}

// Default values for flags.
const (
	DefaultN        = 100_000
	DefaultWorkload = "sum-squares"
	DefaultTimeout  = 5 * time.Minute
	NoFailure       = -1
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Loop range: [From, From+N).
	N    int
	From int

	MinPartitionSize int
	// Parallelism is the worker count the planner divides by. 0 means detect
	// from the host.
	Parallelism int
	// MaxConcurrency caps simultaneously running partitions. 0 means unbounded.
	MaxConcurrency int
	Executor       string

	Workload string
	Strategy string
	Timeout  time.Duration
	// FailAt makes the loop body fail at that index. NoFailure disables it.
	FailAt int

	Verbose   bool
	Details   bool
	Quiet     bool
	Explain   bool
	Metrics   bool
	Calibrate bool
	TUI       bool
	NoColor   bool
	LogLevel  string

	// MinPartitionExplicit records that the minimum partition size came from
	// a flag or PARFOR_MIN_PARTITION, so a cached calibration must not
	// replace it.
	MinPartitionExplicit bool
	// CalibrationProfile is the JSON file calibration results are saved to
	// and loaded from. Empty selects the default location.
	CalibrationProfile string
	// OutputFile receives a report of the best run when set.
	OutputFile string
	// Completion names a shell to print a completion script for.
	Completion string
}

// CompletionShells lists the shells --completion supports.
var CompletionShells = []string{"bash", "zsh", "fish"}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableWorkloads []string) error {
	switch {
	case c.N < 0:
		return apperrors.NewConfigError("-n must be non-negative, got %d", c.N)
	case c.From > 0 && c.N > 0 && c.From > math.MaxInt-c.N:
		return apperrors.NewConfigError("range [%d, %d+%d) overflows int", c.From, c.From, c.N)
	case c.MinPartitionSize < 1:
		return apperrors.NewConfigError("--min-partition must be at least 1, got %d", c.MinPartitionSize)
	case c.Parallelism < 0:
		return apperrors.NewConfigError("--parallelism must be non-negative, got %d", c.Parallelism)
	case c.MaxConcurrency < 0:
		return apperrors.NewConfigError("--max-concurrency must be non-negative, got %d", c.MaxConcurrency)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	}
	if !slices.Contains(parallel.ExecutorKinds, c.Executor) {
		return apperrors.NewConfigError("unknown executor %q (available: %s)",
			c.Executor, strings.Join(parallel.ExecutorKinds, ", "))
	}
	if !slices.Contains(Strategies, c.Strategy) {
		return apperrors.NewConfigError("unknown strategy %q (available: %s)",
			c.Strategy, strings.Join(Strategies, ", "))
	}
	if len(availableWorkloads) > 0 && !slices.Contains(availableWorkloads, c.Workload) {
		return apperrors.NewConfigError("unknown workload %q (available: %s)",
			c.Workload, strings.Join(availableWorkloads, ", "))
	}
	if c.Completion != "" && !slices.Contains(CompletionShells, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q (available: %s)",
			c.Completion, strings.Join(CompletionShells, ", "))
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	if c.TUI && (c.Quiet || c.Calibrate) {
		return apperrors.NewConfigError("--tui cannot be combined with --quiet or --calibrate")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ToLoopOptions converts the configuration into dispatcher options.
func (c AppConfig) ToLoopOptions() parallel.Options {
	return parallel.Options{
		MinPartitionSize: c.MinPartitionSize,
		Parallelism:      c.Parallelism,
		MaxConcurrency:   c.MaxConcurrency,
	}.Normalize()
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// PARFOR_* environment overrides for flags not given explicitly and validates
// the result. Usage and parse errors are written to errWriter; flag.ErrHelp is
// returned unchanged when -h/--help is requested.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableWorkloads []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	config := AppConfig{}
	fs.IntVar(&config.N, "n", DefaultN, "Number of loop indices to run.")
	fs.IntVar(&config.From, "from", 0, "First index of the loop range.")
	fs.IntVar(&config.MinPartitionSize, "min-partition", parallel.DefaultMinPartitionSize,
		"Minimum number of indices per partition before the loop goes parallel.")
	fs.IntVar(&config.Parallelism, "parallelism", 0, "Worker count used for planning (0 = detect from host).")
	fs.IntVar(&config.MaxConcurrency, "max-concurrency", 0, "Maximum partitions running at once (0 = unbounded).")
	fs.StringVar(&config.Executor, "executor", parallel.ExecutorErrgroup,
		fmt.Sprintf("Concurrent executor (%s).", strings.Join(parallel.ExecutorKinds, ", ")))
	fs.StringVar(&config.Workload, "workload", DefaultWorkload,
		fmt.Sprintf("Loop body to run (%s).", strings.Join(availableWorkloads, ", ")))
	fs.StringVar(&config.Strategy, "strategy", StrategyAuto,
		fmt.Sprintf("Partitioning strategy (%s).", strings.Join(Strategies, ", ")))
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum run time (e.g. 30s, 5m).")
	fs.IntVar(&config.FailAt, "fail-at", NoFailure, "Make the loop body fail at this index (-1 = never).")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose output.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Verbose output.")
	fs.BoolVar(&config.Details, "d", false, "Show memory and system details.")
	fs.BoolVar(&config.Details, "details", false, "Show memory and system details.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode: print only the checksum.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode: print only the checksum.")
	fs.BoolVar(&config.Explain, "explain", false, "Explain the partition plan before running.")
	fs.BoolVar(&config.Metrics, "metrics", false, "Print Prometheus metrics after the run.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Benchmark minimum partition sizes and report the fastest.")
	fs.BoolVar(&config.TUI, "tui", false, "Run the interactive dashboard instead of the spinner.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error).")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Calibration profile file (default ~/.parfor_calibration.json).")
	fs.StringVar(&config.OutputFile, "o", "", "Write a report of the best run to this file.")
	fs.StringVar(&config.OutputFile, "output", "", "Write a report of the best run to this file.")
	fs.StringVar(&config.Completion, "completion", "",
		fmt.Sprintf("Print a shell completion script (%s).", strings.Join(CompletionShells, ", ")))

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&config, fs)
	config.MinPartitionExplicit = isFlagSet(fs, "min-partition") || os.Getenv(EnvPrefix+"MIN_PARTITION") != ""
	config.Workload = strings.ToLower(config.Workload)
	config.Strategy = strings.ToLower(config.Strategy)
	config.Executor = strings.ToLower(config.Executor)

	if err := config.Validate(availableWorkloads); err != nil {
		fmt.Fprintln(errWriter, "Error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}
