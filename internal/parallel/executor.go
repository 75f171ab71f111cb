//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks

package parallel

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/parfor/internal/errors"
)

// Executor kinds accepted by NewExecutor.
const (
	ExecutorErrgroup  = "errgroup"
	ExecutorWaitGroup = "waitgroup"
	ExecutorInline    = "inline"
)

// ExecutorKinds lists every kind NewExecutor accepts.
var ExecutorKinds = []string{ExecutorErrgroup, ExecutorWaitGroup, ExecutorInline}

// Task is an independent unit of work. The context it receives is canceled
// once any sibling task has failed or the caller's context is done.
type Task func(ctx context.Context) error

// Executor runs a batch of independent tasks concurrently and waits for all of
// them to finish.
//
// Implementations must run (or at least offer the context to) every task,
// must not return before every started task has returned, and must return the
// first non-nil error reported. Tasks are expected not to panic.
type Executor interface {
	Run(ctx context.Context, tasks []Task) error
}

// NewExecutor returns the executor registered under kind. An empty kind
// selects the errgroup executor. limit bounds concurrency where supported; 0
// means unbounded.
func NewExecutor(kind string, limit int) (Executor, error) {
	switch kind {
	case "", ExecutorErrgroup:
		return NewGroupExecutor(limit), nil
	case ExecutorWaitGroup:
		return NewWaitGroupExecutor(limit), nil
	case ExecutorInline:
		return InlineExecutor{}, nil
	default:
		return nil, apperrors.NewConfigError("unknown executor %q (valid: %s)",
			kind, strings.Join(ExecutorKinds, ", "))
	}
}

// GroupExecutor runs tasks with an errgroup.Group. The first failing task
// cancels the context shared by the others.
type GroupExecutor struct {
	limit int
}

// NewGroupExecutor creates a GroupExecutor running at most limit tasks at
// once (unbounded when limit <= 0).
func NewGroupExecutor(limit int) *GroupExecutor {
	return &GroupExecutor{limit: limit}
}

// Run implements Executor.
func (e *GroupExecutor) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}

// WaitGroupExecutor fans tasks out to plain goroutines joined by a
// sync.WaitGroup. A buffered channel acts as a semaphore when a limit is set.
type WaitGroupExecutor struct {
	limit int
}

// NewWaitGroupExecutor creates a WaitGroupExecutor running at most limit tasks
// at once (unbounded when limit <= 0).
func NewWaitGroupExecutor(limit int) *WaitGroupExecutor {
	return &WaitGroupExecutor{limit: limit}
}

// Run implements Executor.
func (e *WaitGroupExecutor) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sem chan struct{}
	if e.limit > 0 {
		sem = make(chan struct{}, e.limit)
	}

	var ec ErrorCollector
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		if sem != nil {
			sem <- struct{}{}
		}
		go func() {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			if err := task(ctx); err != nil {
				ec.SetError(err)
				cancel()
			}
		}()
	}
	wg.Wait()
	return ec.Err()
}

// InlineExecutor runs tasks one after another on the calling goroutine and
// stops at the first error.
type InlineExecutor struct{}

// Run implements Executor.
func (InlineExecutor) Run(ctx context.Context, tasks []Task) error {
	for _, task := range tasks {
		if err := task(ctx); err != nil {
			return err
		}
	}
	return nil
}
