package metrics

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SpanSummary is an OpenTelemetry span processor that aggregates finished
// spans in memory: how many ended, how many with an error status and how long
// they took in total. It backs the --details trace summary without needing an
// exporter.
type SpanSummary struct {
	mu     sync.Mutex
	ended  int
	failed int
	total  time.Duration
	byName map[string]int
}

var _ sdktrace.SpanProcessor = (*SpanSummary)(nil)

// NewSpanSummary creates an empty summary.
func NewSpanSummary() *SpanSummary {
	return &SpanSummary{byName: make(map[string]int)}
}

// NewTracerProvider returns an SDK tracer provider that reports every span
// to s.
func (s *SpanSummary) NewTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(s),
	)
}

// Tracer is a shortcut for s.NewTracerProvider().Tracer(name).
func (s *SpanSummary) Tracer(name string) trace.Tracer {
	return s.NewTracerProvider().Tracer(name)
}

func (s *SpanSummary) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (s *SpanSummary) OnEnd(span sdktrace.ReadOnlySpan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended++
	s.byName[span.Name()]++
	if span.Status().Code == codes.Error {
		s.failed++
	}
	s.total += span.EndTime().Sub(span.StartTime())
}

func (s *SpanSummary) Shutdown(context.Context) error   { return nil }
func (s *SpanSummary) ForceFlush(context.Context) error { return nil }

// Counts returns the number of ended and failed spans.
func (s *SpanSummary) Counts() (ended, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended, s.failed
}

// WriteTo prints a one-block summary.
func (s *SpanSummary) WriteTo(w io.Writer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := fmt.Fprintf(w, "\nTrace Summary:\n  Spans:           %d (%d failed)\n  Time in loops:   %s\n",
		s.ended, s.failed, s.total.Round(time.Microsecond))
	return int64(n), err
}
