package config

import (
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/parfor/internal/errors"
)

// ParseLogLevel maps a --log-level value to a zerolog level. An empty value
// means warn.
func ParseLogLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.NoLevel, apperrors.NewConfigError("unknown log level %q", s)
	}
	return level, nil
}

// EffectiveLogLevel is the level the application installs: --verbose lowers
// the configured level to debug.
func (c AppConfig) EffectiveLogLevel() zerolog.Level {
	if c.Verbose {
		return zerolog.DebugLevel
	}
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}
