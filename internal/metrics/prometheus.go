package metrics

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/parallel"
)

// Namespace prefixes every metric exported by LoopMetrics.
const Namespace = "parfor"

// LoopMetrics exports loop statistics to Prometheus. It implements
// parallel.Observer. Each instance owns its registry, so several instances
// (one per test, for example) never collide.
type LoopMetrics struct {
	registry   *prometheus.Registry
	loops      *prometheus.CounterVec
	failures   *prometheus.CounterVec
	indices    prometheus.Counter
	partitions prometheus.Histogram
	duration   *prometheus.HistogramVec
	handler    http.Handler
}

var _ parallel.Observer = (*LoopMetrics)(nil)

// NewLoopMetrics creates the loop metrics and registers them, together with
// the Go runtime and process collectors, in a fresh registry.
func NewLoopMetrics() *LoopMetrics {
	m := &LoopMetrics{
		registry: prometheus.NewRegistry(),
		loops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loops_total",
			Help:      "Number of non-empty loop calls, by execution mode.",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loop_failures_total",
			Help:      "Number of loop calls that did not complete, by reason.",
		}, []string{"reason"}),
		indices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "indices_total",
			Help:      "Number of indices requested across all loop calls.",
		}),
		partitions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "partitions",
			Help:      "Number of partitions per loop call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "loop_duration_seconds",
			Help:      "Wall-clock duration of loop calls, by execution mode.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 14),
		}, []string{"mode"}),
	}
	m.registry.MustRegister(
		m.loops, m.failures, m.indices, m.partitions, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// ObserveLoop records one loop call.
func (m *LoopMetrics) ObserveLoop(stats parallel.LoopStats) {
	mode := stats.Mode.String()
	m.loops.WithLabelValues(mode).Inc()
	m.indices.Add(float64(stats.Length))
	m.partitions.Observe(float64(stats.Partitions))
	m.duration.WithLabelValues(mode).Observe(stats.Duration.Seconds())
	if stats.Err != nil {
		m.failures.WithLabelValues(failureReason(stats.Err)).Inc()
	}
}

func failureReason(err error) string {
	var iterationErr apperrors.IterationError
	switch {
	case apperrors.IsCanceled(err):
		return "canceled"
	case errors.As(err, &iterationErr):
		return "body"
	default:
		return "other"
	}
}

// Registry returns the registry holding the loop metrics.
func (m *LoopMetrics) Registry() *prometheus.Registry { return m.registry }

// WritePrometheus serves the metrics in the Prometheus exposition format.
func (m *LoopMetrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// WriteText writes the parfor_* metric families in the text exposition
// format, omitting the runtime collectors.
func (m *LoopMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return apperrors.WrapError(err, "gathering metrics")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return apperrors.WrapError(err, "encoding metric %s", mf.GetName())
		}
	}
	return nil
}
