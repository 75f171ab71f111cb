package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a checksum mismatch between strategies.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError returns a ConfigError whose message is formatted as by
// fmt.Sprintf.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// IterationError reports a failure raised by a loop body. It records the
// index at which the body failed and preserves the original cause.
type IterationError struct {
	// Index is the loop index whose body invocation failed.
	Index int
	// Cause is the error returned by the body.
	Cause error
}

// Error returns a message naming the failing index and the cause.
func (e IterationError) Error() string {
	return fmt.Sprintf("loop body failed at index %d: %v", e.Index, e.Cause)
}

// Unwrap returns the error returned by the body.
func (e IterationError) Unwrap() error { return e.Cause }

// CanceledError reports that a loop stopped because its context was canceled
// or its deadline expired. It is distinct from a body failure: the caller asked
// to stop.
type CanceledError struct {
	// Cause is the context error (context.Canceled or context.DeadlineExceeded).
	Cause error
}

// Error returns the error message for a CanceledError.
func (e CanceledError) Error() string {
	return fmt.Sprintf("loop canceled: %v", e.Cause)
}

// Unwrap returns the context error.
func (e CanceledError) Unwrap() error { return e.Cause }

// TimeoutError represents a run timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MismatchError reports that two strategies produced different checksums for
// the same workload.
type MismatchError struct {
	Expected, Got       uint64
	Reference, Offender string
}

// Error returns a formatted message describing the mismatch.
func (e MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: %s=%d, %s=%d", e.Reference, e.Expected, e.Offender, e.Got)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled reports whether err carries a CanceledError, i.e. the loop was
// stopped on request rather than by a failing body.
func IsCanceled(err error) bool {
	var canceled CanceledError
	return errors.As(err, &canceled)
}
