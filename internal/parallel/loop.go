package parallel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/logging"
)

// TracerName is the instrumentation name used for loop spans.
const TracerName = "github.com/agbru/parfor/internal/parallel"

var errBodyPanicked = errors.New("loop body panicked")

// LoopStats describes one completed (or failed) loop call.
type LoopStats struct {
	Mode             Mode
	Length           int
	MinPartitionSize int
	ChunkSize        int
	Partitions       int
	Duration         time.Duration
	Err              error
}

// Observer receives the statistics of every non-empty loop call.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveLoop(stats LoopStats)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(stats LoopStats)

// ObserveLoop calls f(stats).
func (f ObserverFunc) ObserveLoop(stats LoopStats) { f(stats) }

// Loop executes loop bodies according to a fixed set of Options. A Loop is
// immutable and safe for concurrent use; build it once and share it.
type Loop struct {
	opts     Options
	executor Executor
	logger   logging.Logger
	observer Observer
	tracer   trace.Tracer
}

// LoopOption configures a Loop during construction.
type LoopOption func(*Loop)

// WithExecutor sets the facility used to run partitions concurrently.
func WithExecutor(e Executor) LoopOption {
	return func(l *Loop) { l.executor = e }
}

// WithLogger sets the logger for plan and failure events.
func WithLogger(logger logging.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithObserver registers an observer notified after every loop call.
func WithObserver(o Observer) LoopOption {
	return func(l *Loop) { l.observer = o }
}

// WithTracer sets the tracer used to record one span per loop call.
func WithTracer(t trace.Tracer) LoopOption {
	return func(l *Loop) { l.tracer = t }
}

// New creates a Loop from opts. Without options it uses an errgroup executor
// bounded by opts.MaxConcurrency, a no-op logger, no observer and the global
// OpenTelemetry tracer.
func New(opts Options, setters ...LoopOption) *Loop {
	opts = opts.Normalize()
	l := &Loop{opts: opts}
	for _, set := range setters {
		set(l)
	}
	if l.executor == nil {
		l.executor = NewGroupExecutor(opts.MaxConcurrency)
	}
	if l.logger == nil {
		l.logger = logging.NewNopLogger()
	}
	if l.tracer == nil {
		l.tracer = otel.Tracer(TracerName)
	}
	return l
}

// Options returns the normalized options of the loop.
func (l *Loop) Options() Options { return l.opts }

// Plan returns the decision the loop would take for a range of the given
// length and minimum partition size.
func (l *Loop) Plan(length, minPartitionSize int) Decision {
	return Plan(length, minPartitionSize, l.opts.Parallelism)
}

// For runs body for every index in [from, to) using the loop's default
// minimum partition size. See ForMin.
func (l *Loop) For(ctx context.Context, from, to int, body func(i int) error) error {
	return l.ForMin(ctx, from, to, l.opts.MinPartitionSize, body)
}

// ForMin runs body for every index in [from, to) and blocks until all
// invocations have settled.
//
// A nil body or an empty range is a no-op. Sequential plans call body in
// increasing index order on the calling goroutine. Parallel plans split the
// range into contiguous partitions, each visited in increasing order by one
// task of the executor; partitions have no ordering guarantee between them.
//
// The first body error is returned wrapped in an apperrors.IterationError and
// stops the remaining partitions at their next index. Cancellation of ctx is
// checked before every index and reported as an apperrors.CanceledError. A
// panic in a partition is re-raised on the calling goroutine as a *PanicError.
func (l *Loop) ForMin(ctx context.Context, from, to, minPartitionSize int, body func(i int) error) (err error) {
	if body == nil || to <= from {
		return nil
	}
	length := to - from
	if length <= 0 {
		return apperrors.ValidationError{Field: "range", Message: "length overflows int"}
	}

	if minPartitionSize < 1 {
		minPartitionSize = 1
	}
	decision := l.Plan(length, minPartitionSize)
	stats := LoopStats{
		Mode:             decision.Mode,
		Length:           length,
		MinPartitionSize: minPartitionSize,
		ChunkSize:        decision.ChunkSize,
		Partitions:       1,
	}

	var parts []Partition
	if decision.Mode == Parallel {
		parts = Split(from, to, decision.ChunkSize)
		stats.Partitions = len(parts)
	}

	ctx, span := l.tracer.Start(ctx, "parallel.For", trace.WithAttributes(
		attribute.String("parfor.mode", decision.Mode.String()),
		attribute.Int("parfor.length", length),
		attribute.Int("parfor.min_partition_size", minPartitionSize),
		attribute.Int("parfor.chunk_size", decision.ChunkSize),
		attribute.Int("parfor.partitions", stats.Partitions),
	))
	l.logger.Debug("loop planned",
		logging.String("mode", decision.Mode.String()),
		logging.Int("from", from),
		logging.Int("to", to),
		logging.Int("chunk_size", decision.ChunkSize),
		logging.Int("partitions", stats.Partitions),
	)

	start := time.Now()
	settled := false
	defer func() {
		stats.Duration = time.Since(start)
		stats.Err = err
		if !settled {
			stats.Err = errBodyPanicked
		}
		l.finish(span, stats)
	}()

	if decision.Mode == Sequential {
		err = runRange(ctx, from, to, body)
	} else {
		err = l.runPartitions(ctx, parts, body)
	}
	settled = true
	return err
}

// ForEach runs body for every element of seq using the loop's default minimum
// partition size. See ForEachMin.
func ForEach[T any](ctx context.Context, l *Loop, seq []T, body func(elem T) error) error {
	return ForEachMin(ctx, l, seq, l.opts.MinPartitionSize, body)
}

// ForEachMin runs body for every element of seq. It is ForMin over
// [0, len(seq)) with a body that looks up the element, so elements within a
// partition are visited in slice order. A nil body or an empty sequence is a
// no-op.
func ForEachMin[T any](ctx context.Context, l *Loop, seq []T, minPartitionSize int, body func(elem T) error) error {
	if len(seq) == 0 || body == nil {
		return nil
	}
	return l.ForMin(ctx, 0, len(seq), minPartitionSize, func(i int) error {
		return body(seq[i])
	})
}

func (l *Loop) runPartitions(ctx context.Context, parts []Partition, body func(i int) error) error {
	var panics ErrorCollector
	tasks := make([]Task, len(parts))
	for i, p := range parts {
		tasks[i] = func(ctx context.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					pe := newPanicError(r)
					panics.SetError(pe)
					err = pe
				}
			}()
			return runRange(ctx, p.Start, p.End, body)
		}
	}

	err := l.executor.Run(ctx, tasks)
	if p := panics.Err(); p != nil {
		panic(p)
	}
	if err != nil && !apperrors.IsCanceled(err) && apperrors.IsContextError(err) && ctx.Err() != nil {
		err = apperrors.CanceledError{Cause: ctx.Err()}
	}
	return err
}

// runRange visits [start, end) in order, checking ctx before every index.
func runRange(ctx context.Context, start, end int, body func(i int) error) error {
	done := ctx.Done()
	for i := start; i < end; i++ {
		if done != nil {
			select {
			case <-done:
				return apperrors.CanceledError{Cause: ctx.Err()}
			default:
			}
		}
		if err := body(i); err != nil {
			return apperrors.IterationError{Index: i, Cause: err}
		}
	}
	return nil
}

func (l *Loop) finish(span trace.Span, stats LoopStats) {
	defer span.End()
	span.SetAttributes(attribute.Int64("parfor.duration_us", stats.Duration.Microseconds()))

	switch {
	case stats.Err == nil:
		span.SetStatus(codes.Ok, "")
	case apperrors.IsCanceled(stats.Err):
		span.SetStatus(codes.Error, "canceled")
		l.logger.Info("loop canceled",
			logging.String("mode", stats.Mode.String()),
			logging.Int("length", stats.Length),
			logging.Duration("elapsed", stats.Duration),
		)
	default:
		span.RecordError(stats.Err)
		span.SetStatus(codes.Error, "loop body failed")
		l.logger.Error("loop failed", stats.Err,
			logging.String("mode", stats.Mode.String()),
			logging.Int("length", stats.Length),
		)
	}

	if l.observer != nil {
		l.observer.ObserveLoop(stats)
	}
}
