// Package metrics exposes Prometheus instrumentation for the flow solver:
// per-algorithm solve counters and latency histograms, push/relabel
// operation totals, cache effectiveness counters and Go runtime gauges.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Algorithm label values used across the solver metrics.
const (
	AlgorithmMaxFlow     = "max_flow"
	AlgorithmMinCostFlow = "min_cost_flow"
)

// Metrics is a self-contained metric set backed by its own registry, so
// independent instances (tests, embedded use) never collide on
// registration.
type Metrics struct {
	registry *prometheus.Registry

	// Solve metrics.
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	FlowValue            *prometheus.GaugeVec
	SolveCost            prometheus.Gauge

	// Algorithm internals.
	PushOperationsTotal    *prometheus.CounterVec
	RelabelOperationsTotal *prometheus.CounterVec
	ScalingPhases          prometheus.Histogram

	// Problem sizes.
	GraphVerticesTotal *prometheus.HistogramVec
	GraphArcsTotal     *prometheus.HistogramVec

	// Cache effectiveness.
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Service information.
	ServiceInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// InitMetrics builds a metric set under the given namespace/subsystem and
// registers the runtime collector alongside it.
func InitMetrics(namespace, subsystem string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		SolveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"algorithm", "status"},
		),

		SolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"algorithm"},
		),

		FlowValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flow_value",
				Help:      "Last computed optimal flow value",
			},
			[]string{"algorithm"},
		),

		SolveCost: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "min_cost_total",
				Help:      "Last computed minimum total cost",
			},
		),

		PushOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "push_operations_total",
				Help:      "Total push operations performed by the engines",
			},
			[]string{"algorithm"},
		),

		RelabelOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "relabel_operations_total",
				Help:      "Total relabel operations performed by the engines",
			},
			[]string{"algorithm"},
		),

		ScalingPhases: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scaling_phases",
				Help:      "Number of cost-scaling phases per min-cost solve",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),

		GraphVerticesTotal: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices_total",
				Help:      "Number of vertices in solved networks",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"algorithm"},
		),

		GraphArcsTotal: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_arcs_total",
				Help:      "Number of arcs in solved networks",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"algorithm"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Solve results served from cache",
			},
			[]string{"backend"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Solve requests not found in cache",
			},
			[]string{"backend"},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	registry.MustRegister(NewRuntimeCollector(namespace, subsystem))
	return m
}

// Get returns the process-wide metric set, creating it on first use.
func Get() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = InitMetrics("flowkit", "")
	})
	return defaultMetrics
}

// RecordSolve records the outcome of one solve operation.
func (m *Metrics) RecordSolve(algorithm string, success bool, duration time.Duration, value float64) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveOperationsTotal.WithLabelValues(algorithm, status).Inc()
	m.SolveDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if success {
		m.FlowValue.WithLabelValues(algorithm).Set(value)
	}
}

// RecordEngineOperations records push/relabel totals of one solve.
func (m *Metrics) RecordEngineOperations(algorithm string, pushes, relabels int) {
	m.PushOperationsTotal.WithLabelValues(algorithm).Add(float64(pushes))
	m.RelabelOperationsTotal.WithLabelValues(algorithm).Add(float64(relabels))
}

// RecordGraphSize records the dimensions of a solved network.
func (m *Metrics) RecordGraphSize(algorithm string, vertices, arcs int) {
	m.GraphVerticesTotal.WithLabelValues(algorithm).Observe(float64(vertices))
	m.GraphArcsTotal.WithLabelValues(algorithm).Observe(float64(arcs))
}

// RecordScalingPhases records the phase count of a min-cost solve.
func (m *Metrics) RecordScalingPhases(phases int) {
	m.ScalingPhases.Observe(float64(phases))
}

// RecordCacheHit records a solve served from cache.
func (m *Metrics) RecordCacheHit(backend string) {
	m.CacheHitsTotal.WithLabelValues(backend).Inc()
}

// RecordCacheMiss records a solve missing the cache.
func (m *Metrics) RecordCacheMiss(backend string) {
	m.CacheMissesTotal.WithLabelValues(backend).Inc()
}

// SetServiceInfo publishes the service version and environment.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the scrape handler for this metric set's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves this metric set plus a health endpoint; it blocks
// until the server fails.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
