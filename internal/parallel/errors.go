package parallel

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// ErrorCollector records the first non-nil error reported by concurrent
// workers. It is safe for concurrent use and its zero value is ready to use.
type ErrorCollector struct {
	first atomic.Pointer[errorBox]
}

type errorBox struct{ err error }

// SetError records err if it is non-nil and no error has been recorded yet.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.first.CompareAndSwap(nil, &errorBox{err: err})
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	if box := c.first.Load(); box != nil {
		return box.err
	}
	return nil
}

// PanicError carries a panic recovered from a loop body running on a worker
// goroutine, together with the stack of that goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// Error returns the panic value followed by the worker's stack.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in loop body: %v\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
