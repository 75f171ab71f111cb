package workload

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/agbru/parfor/internal/parallel"
)

// ErrInjectedFailure is returned by the loop body at Runner.FailAt.
var ErrInjectedFailure = errors.New("injected failure")

// Runner runs a workload's loop on a dispatcher with a fixed minimum
// partition size. Every visited index is counted in Done (when set) and the
// body fails with ErrInjectedFailure at FailAt (when FailAt >= 0).
type Runner struct {
	Loop             *parallel.Loop
	MinPartitionSize int
	FailAt           int
	Done             *atomic.Int64
}

// NewRunner returns a Runner with failure injection disabled.
func NewRunner(loop *parallel.Loop, minPartitionSize int) Runner {
	return Runner{Loop: loop, MinPartitionSize: minPartitionSize, FailAt: -1}
}

func (r Runner) visit(i int) error {
	if r.Done != nil {
		r.Done.Add(1)
	}
	if r.FailAt >= 0 && i == r.FailAt {
		return ErrInjectedFailure
	}
	return nil
}

// For runs body for every index in [from, to).
func (r Runner) For(ctx context.Context, from, to int, body func(i int) error) error {
	return r.Loop.ForMin(ctx, from, to, r.MinPartitionSize, func(i int) error {
		if err := r.visit(i); err != nil {
			return err
		}
		return body(i)
	})
}

// ForEach runs body for every element of items. pos reports the position an
// element stands for, used for progress and failure injection.
func ForEach[T any](ctx context.Context, r Runner, items []T, pos func(T) int, body func(T) error) error {
	return parallel.ForEachMin(ctx, r.Loop, items, r.MinPartitionSize, func(item T) error {
		if err := r.visit(pos(item)); err != nil {
			return err
		}
		return body(item)
	})
}
