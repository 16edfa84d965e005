package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the trace engine.
type Registry struct {
	TracesTotal        *prometheus.CounterVec
	TraceDuration      *prometheus.HistogramVec
	TracePipesVisited  prometheus.Histogram
	GraphBuildDuration prometheus.Histogram
	GraphPipes         prometheus.Gauge
	MalformedRowsTotal *prometheus.CounterVec
	SnapshotOpsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		TracesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sewertrace_traces_total",
			Help: "Trace invocations by direction and outcome",
		}, []string{"direction", "status"}),
		TraceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sewertrace_trace_duration_seconds",
			Help:    "Trace wall time by direction",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"direction"}),
		TracePipesVisited: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sewertrace_trace_pipes_visited",
			Help:    "Pipes returned per trace",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		GraphBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sewertrace_graph_build_duration_seconds",
			Help:    "Graph construction wall time",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		GraphPipes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sewertrace_graph_pipes",
			Help: "Pipes in the most recently built graph",
		}),
		MalformedRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sewertrace_malformed_rows_total",
			Help: "Rows dropped during normalization and build, by warning kind",
		}, []string{"kind"}),
		SnapshotOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sewertrace_snapshot_ops_total",
			Help: "Snapshot store operations by op and outcome",
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(
		r.TracesTotal,
		r.TraceDuration,
		r.TracePipesVisited,
		r.GraphBuildDuration,
		r.GraphPipes,
		r.MalformedRowsTotal,
		r.SnapshotOpsTotal,
	)
	return r
}

// TraceCompleted implements trace.Instrumentation.
func (r *Registry) TraceCompleted(direction, status string, pipesVisited int, elapsed time.Duration) {
	r.TracesTotal.WithLabelValues(direction, status).Inc()
	if status == "ok" {
		r.TraceDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
		r.TracePipesVisited.Observe(float64(pipesVisited))
	}
}

// GraphBuilt records one graph construction.
func (r *Registry) GraphBuilt(pipes int, elapsed time.Duration) {
	r.GraphPipes.Set(float64(pipes))
	r.GraphBuildDuration.Observe(elapsed.Seconds())
}

// RowDropped records one warning-producing row by kind.
func (r *Registry) RowDropped(kind string) {
	r.MalformedRowsTotal.WithLabelValues(kind).Inc()
}

// SnapshotOp records a snapshot load or save attempt.
func (r *Registry) SnapshotOp(op, outcome string) {
	r.SnapshotOpsTotal.WithLabelValues(op, outcome).Inc()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
