package config

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/parallel"
)

var testWorkloads = []string{"collatz", "hash-each", "primes", "sum-squares"}

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	var errBuf bytes.Buffer
	cfg, err := ParseConfig("parfor", nil, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.N != DefaultN {
		t.Errorf("N = %d, want %d", cfg.N, DefaultN)
	}
	if cfg.MinPartitionSize != parallel.DefaultMinPartitionSize {
		t.Errorf("MinPartitionSize = %d, want %d", cfg.MinPartitionSize, parallel.DefaultMinPartitionSize)
	}
	if cfg.Executor != parallel.ExecutorErrgroup {
		t.Errorf("Executor = %q, want %q", cfg.Executor, parallel.ExecutorErrgroup)
	}
	if cfg.Strategy != StrategyAuto {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, StrategyAuto)
	}
	if cfg.Workload != DefaultWorkload {
		t.Errorf("Workload = %q, want %q", cfg.Workload, DefaultWorkload)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.FailAt != NoFailure {
		t.Errorf("FailAt = %d, want %d", cfg.FailAt, NoFailure)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	t.Parallel()

	args := []string{
		"-n", "5000", "--from", "10", "--min-partition", "64",
		"--parallelism", "4", "--max-concurrency", "2",
		"--executor", "WaitGroup", "--workload", "Primes", "--strategy", "all",
		"--timeout", "30s", "--fail-at", "42", "-d", "--explain", "--metrics",
	}
	var errBuf bytes.Buffer
	cfg, err := ParseConfig("parfor", args, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v (stderr: %s)", err, errBuf.String())
	}

	want := AppConfig{
		N: 5000, From: 10, MinPartitionSize: 64, Parallelism: 4, MaxConcurrency: 2,
		Executor: "waitgroup", Workload: "primes", Strategy: "all",
		Timeout: 30 * time.Second, FailAt: 42, Details: true, Explain: true, Metrics: true,
		LogLevel: "warn", MinPartitionExplicit: true,
	}
	if cfg != want {
		t.Errorf("ParseConfig() = %+v, want %+v", cfg, want)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"negative n", []string{"-n", "-1"}, "-n must be non-negative"},
		{"zero min partition", []string{"--min-partition", "0"}, "--min-partition must be at least 1"},
		{"negative parallelism", []string{"--parallelism", "-2"}, "--parallelism must be non-negative"},
		{"negative max concurrency", []string{"--max-concurrency", "-1"}, "--max-concurrency must be non-negative"},
		{"zero timeout", []string{"--timeout", "0s"}, "--timeout must be positive"},
		{"unknown executor", []string{"--executor", "threads"}, "unknown executor"},
		{"unknown strategy", []string{"--strategy", "greedy"}, "unknown strategy"},
		{"unknown workload", []string{"--workload", "matmul"}, "unknown workload"},
		{"quiet and verbose", []string{"-q", "-v"}, "mutually exclusive"},
		{"tui and quiet", []string{"--tui", "-q"}, "--tui cannot be combined"},
		{"bad log level", []string{"--log-level", "chatty"}, "unknown log level"},
		{"range overflow", []string{"--from", "9223372036854775807", "-n", "10"}, "overflows"},
		{"positional args", []string{"extra"}, "unexpected arguments"},
		{"unknown shell", []string{"--completion", "tcsh"}, "unsupported shell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var errBuf bytes.Buffer
			_, err := ParseConfig("parfor", tt.args, &errBuf, testWorkloads)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	t.Parallel()

	var errBuf bytes.Buffer
	_, err := ParseConfig("parfor", []string{"--help"}, &errBuf, testWorkloads)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(errBuf.String(), "-min-partition") {
		t.Errorf("usage output should list --min-partition, got:\n%s", errBuf.String())
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PARFOR_N", "777")
	t.Setenv("PARFOR_MIN_PARTITION", "16")
	t.Setenv("PARFOR_STRATEGY", "fine")
	t.Setenv("PARFOR_TIMEOUT", "1m")
	t.Setenv("PARFOR_DETAILS", "yes")
	t.Setenv("PARFOR_PARALLELISM", "not-a-number")

	var errBuf bytes.Buffer
	cfg, err := ParseConfig("parfor", []string{"--min-partition", "32"}, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.N != 777 {
		t.Errorf("N = %d, want 777 from env", cfg.N)
	}
	if cfg.MinPartitionSize != 32 {
		t.Errorf("MinPartitionSize = %d, want 32 (flag beats env)", cfg.MinPartitionSize)
	}
	if cfg.Strategy != StrategyFine {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, StrategyFine)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", cfg.Timeout)
	}
	if !cfg.Details {
		t.Error("Details should be enabled from env")
	}
	if cfg.Parallelism != 0 {
		t.Errorf("Parallelism = %d, want 0 (invalid env ignored)", cfg.Parallelism)
	}
	if !cfg.MinPartitionExplicit {
		t.Error("MinPartitionExplicit should be set when the flag is given")
	}
}

func TestParseConfig_EnvAliasedFlag(t *testing.T) {
	t.Setenv("PARFOR_QUIET", "true")

	var errBuf bytes.Buffer
	cfg, err := ParseConfig("parfor", []string{"-q=false"}, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Quiet {
		t.Error("short flag -q should shadow PARFOR_QUIET")
	}
}

func TestParseConfig_MinPartitionExplicit(t *testing.T) {
	var errBuf bytes.Buffer
	cfg, err := ParseConfig("parfor", nil, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.MinPartitionExplicit {
		t.Error("MinPartitionExplicit should be false with defaults")
	}

	t.Setenv("PARFOR_MIN_PARTITION", "256")
	cfg, err = ParseConfig("parfor", nil, &errBuf, testWorkloads)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if !cfg.MinPartitionExplicit || cfg.MinPartitionSize != 256 {
		t.Errorf("env min partition: explicit=%v size=%d", cfg.MinPartitionExplicit, cfg.MinPartitionSize)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"No", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestToLoopOptions(t *testing.T) {
	t.Parallel()

	cfg := AppConfig{MinPartitionSize: 64, Parallelism: 6, MaxConcurrency: 3}
	opts := cfg.ToLoopOptions()
	if opts.MinPartitionSize != 64 || opts.Parallelism != 6 || opts.MaxConcurrency != 3 {
		t.Errorf("ToLoopOptions() = %+v", opts)
	}
}

func TestApplyAdaptiveParallelism(t *testing.T) {
	t.Parallel()

	if got := ApplyAdaptiveParallelism(AppConfig{}).Parallelism; got < 1 {
		t.Errorf("detected Parallelism = %d, want >= 1", got)
	}
	if got := ApplyAdaptiveParallelism(AppConfig{Parallelism: 3}).Parallelism; got != 3 {
		t.Errorf("explicit Parallelism = %d, want 3 preserved", got)
	}
}

func TestEstimateMinPartitionSize(t *testing.T) {
	t.Parallel()

	prev := EstimateMinPartitionSize(1)
	for _, cores := range []int{2, 4, 8, 16, 64} {
		got := EstimateMinPartitionSize(cores)
		if got > prev {
			t.Errorf("EstimateMinPartitionSize(%d) = %d, should not grow with cores (prev %d)", cores, got, prev)
		}
		if got < parallel.DefaultMinPartitionSize {
			t.Errorf("EstimateMinPartitionSize(%d) = %d below default", cores, got)
		}
		prev = got
	}
}

func TestLogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  AppConfig
		want zerolog.Level
	}{
		{"default", AppConfig{}, zerolog.WarnLevel},
		{"explicit info", AppConfig{LogLevel: "INFO"}, zerolog.InfoLevel},
		{"verbose wins", AppConfig{LogLevel: "error", Verbose: true}, zerolog.DebugLevel},
		{"invalid falls back", AppConfig{LogLevel: "chatty"}, zerolog.WarnLevel},
	}
	for _, tt := range tests {
		if got := tt.cfg.EffectiveLogLevel(); got != tt.want {
			t.Errorf("%s: EffectiveLogLevel() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
