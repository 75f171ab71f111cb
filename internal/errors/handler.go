package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used to colorize error output.
// It keeps this package free of any dependency on the presentation layer.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleRunError prints a human-readable message for err and maps it to an
// exit code. A nil error maps to ExitSuccess and prints nothing; duration is
// appended to the message when positive.
//
// A body failure is reported as such even when its cause is a context error:
// only a stop requested through the run's own context maps to the timeout and
// cancel exit codes.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s", duration)
	}

	var (
		timeoutErr   TimeoutError
		configErr    ConfigError
		mismatchErr  MismatchError
		iterationErr IterationError
	)
	switch {
	case errors.As(err, &iterationErr):
		fmt.Fprintf(out, "%sLoop body failed at index %d%s: %v%s\n", colors.Red(), iterationErr.Index, suffix, iterationErr.Cause, colors.Reset())
		return ExitErrorGeneric
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sRun timed out%s: %v%s\n", colors.Yellow(), suffix, err, colors.Reset())
		return ExitErrorTimeout
	case IsCanceled(err), errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sRun canceled%s: %v%s\n", colors.Yellow(), suffix, err, colors.Reset())
		return ExitErrorCanceled
	case errors.As(err, &configErr):
		fmt.Fprintf(out, "%sConfiguration error: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	case errors.As(err, &mismatchErr):
		fmt.Fprintf(out, "%sResult mismatch: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorMismatch
	default:
		fmt.Fprintf(out, "%sError%s: %v%s\n", colors.Red(), suffix, err, colors.Reset())
		return ExitErrorGeneric
	}
}
