// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// Aliased flags (-q/--quiet) count as set when either form was used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the PARFOR_ prefix) to the CLI flag
// name(s) it shadows and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intEnv(dst func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst(c) = parsed
		}
	}
}

func boolEnv(dst func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := dst(c)
		*p = parseBoolEnv(v, *p)
	}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"N", []string{"n"}, intEnv(func(c *AppConfig) *int { return &c.N })},
	{"FROM", []string{"from"}, intEnv(func(c *AppConfig) *int { return &c.From })},
	{"MIN_PARTITION", []string{"min-partition"}, intEnv(func(c *AppConfig) *int { return &c.MinPartitionSize })},
	{"PARALLELISM", []string{"parallelism"}, intEnv(func(c *AppConfig) *int { return &c.Parallelism })},
	{"MAX_CONCURRENCY", []string{"max-concurrency"}, intEnv(func(c *AppConfig) *int { return &c.MaxConcurrency })},
	{"FAIL_AT", []string{"fail-at"}, intEnv(func(c *AppConfig) *int { return &c.FailAt })},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"EXECUTOR", []string{"executor"}, func(c *AppConfig, v string) { c.Executor = v }},
	{"WORKLOAD", []string{"workload"}, func(c *AppConfig, v string) { c.Workload = v }},
	{"STRATEGY", []string{"strategy"}, func(c *AppConfig, v string) { c.Strategy = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = v }},
	{"CALIBRATION_PROFILE", []string{"calibration-profile"}, func(c *AppConfig, v string) { c.CalibrationProfile = v }},
	{"OUTPUT", []string{"o", "output"}, func(c *AppConfig, v string) { c.OutputFile = v }},

	// Boolean overrides
	{"VERBOSE", []string{"v", "verbose"}, boolEnv(func(c *AppConfig) *bool { return &c.Verbose })},
	{"DETAILS", []string{"d", "details"}, boolEnv(func(c *AppConfig) *bool { return &c.Details })},
	{"QUIET", []string{"q", "quiet"}, boolEnv(func(c *AppConfig) *bool { return &c.Quiet })},
	{"EXPLAIN", []string{"explain"}, boolEnv(func(c *AppConfig) *bool { return &c.Explain })},
	{"METRICS", []string{"metrics"}, boolEnv(func(c *AppConfig) *bool { return &c.Metrics })},
	{"CALIBRATE", []string{"calibrate"}, boolEnv(func(c *AppConfig) *bool { return &c.Calibrate })},
	{"TUI", []string{"tui"}, boolEnv(func(c *AppConfig) *bool { return &c.TUI })},
	{"NO_COLOR", []string{"no-color"}, boolEnv(func(c *AppConfig) *bool { return &c.NoColor })},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// Priority: CLI flags > environment variables > defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
