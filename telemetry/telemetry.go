// Package telemetry exposes the live counters and histograms an
// in-progress experiment batch can be observed through, grounded on
// dd0wney-graphdb's pkg/metrics Registry pattern: a private
// prometheus.Registry wrapping named metric fields, built once via
// promauto.With and served over promhttp.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric this module emits.
type Registry struct {
	OptimizeCallsTotal     *prometheus.CounterVec
	OptimizeSuccessTotal   *prometheus.CounterVec
	OptimizeFailureTotal   *prometheus.CounterVec
	OptimizeDuration       *prometheus.HistogramVec
	OptimizeCost           *prometheus.HistogramVec
	ExperimentCellsRunning prometheus.Gauge
	ExperimentCellsTotal   prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide telemetry registry, created on
// first use.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry builds a fresh, independently registerable Registry — tests
// should use this instead of DefaultRegistry to avoid cross-test
// double-registration panics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.OptimizeCallsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qosroute_optimize_calls_total",
			Help: "Total number of Optimizer.Optimize invocations, by algorithm.",
		},
		[]string{"algorithm"},
	)
	r.OptimizeSuccessTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qosroute_optimize_success_total",
			Help: "Total number of Optimize calls that returned a feasible path, by algorithm.",
		},
		[]string{"algorithm"},
	)
	r.OptimizeFailureTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qosroute_optimize_failure_total",
			Help: "Total number of Optimize calls that failed, by algorithm and failure reason.",
		},
		[]string{"algorithm", "reason"},
	)
	r.OptimizeDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qosroute_optimize_duration_seconds",
			Help:    "Optimize call latency in seconds, by algorithm.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"algorithm"},
	)
	r.OptimizeCost = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qosroute_optimize_cost",
			Help:    "Normalized cost of successful Optimize results, by algorithm.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"algorithm"},
	)
	r.ExperimentCellsRunning = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "qosroute_experiment_cells_running",
			Help: "Number of (case, algorithm, repeat) cells currently executing.",
		},
	)
	r.ExperimentCellsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "qosroute_experiment_cells_total",
			Help: "Total number of experiment cells completed so far in this process.",
		},
	)

	return r
}

// PrometheusRegistry returns the underlying prometheus.Registry, for
// wiring into promhttp.HandlerFor.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// ObserveCell records one completed optimizer call's outcome and latency.
func (r *Registry) ObserveCell(algorithm string, success bool, failureReason string, durationSeconds, cost float64) {
	r.OptimizeCallsTotal.WithLabelValues(algorithm).Inc()
	r.OptimizeDuration.WithLabelValues(algorithm).Observe(durationSeconds)
	if success {
		r.OptimizeSuccessTotal.WithLabelValues(algorithm).Inc()
		r.OptimizeCost.WithLabelValues(algorithm).Observe(cost)
	} else {
		r.OptimizeFailureTotal.WithLabelValues(algorithm, failureReason).Inc()
	}
	r.ExperimentCellsTotal.Inc()
}

// Handler returns the promhttp handler serving this registry at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve starts a blocking HTTP server exposing /metrics at addr. Callers
// typically run this in its own goroutine and cancel via server.Shutdown
// from the caller's lifecycle, mirroring the CLI's --metrics-addr flag.
func Serve(addr string, r *Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return http.ListenAndServe(addr, mux)
}
