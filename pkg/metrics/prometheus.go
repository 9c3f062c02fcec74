// Package metrics provides Prometheus metrics for the comparison engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Comparison sources.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
	SourceMissing  = "missing"
)

var defaultLatencyBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns the engine's collectors. A nil *Manager is valid and records
// nothing.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       *prometheus.Registry

	comparisons         *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	routeLookups        *prometheus.CounterVec
	storeErrors         *prometheus.CounterVec
	candidatesRetrieved prometheus.Histogram
	comparableRuns      prometheus.Histogram
	computeLatency      prometheus.Histogram
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "runner",
		subsystem:      "comparison",
		latencyBuckets: defaultLatencyBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.comparisons = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Comparison requests by result source (cache, computed, missing)",
	}, []string{"source"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Comparison cache lookups by result (hit, miss)",
	}, []string{"result"})

	m.routeLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "route_lookups_total",
		Help:      "Route matcher lookups by result (matched, unmatched)",
	}, []string{"result"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store failures surfaced to callers, by operation",
	}, []string{"operation"})

	m.candidatesRetrieved = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_retrieved",
		Help:      "Candidate runs returned by retrieval before scoring",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 75, 100},
	})

	m.comparableRuns = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparable_runs",
		Help:      "Comparable runs kept after scoring",
		Buckets:   []float64{0, 1, 3, 5, 10, 15, 20},
	})

	m.computeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_latency_milliseconds",
		Help:      "Time to compute a comparison on cache miss",
		Buckets:   m.latencyBuckets,
	})
}

// RecordComparison counts a comparison request by source.
func (m *Manager) RecordComparison(source string) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(source).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Manager) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(hitLabel(hit, "hit", "miss")).Inc()
}

// RecordRouteLookup counts a route lookup by whether the activity has a route.
func (m *Manager) RecordRouteLookup(matched bool) {
	if m == nil {
		return
	}
	m.routeLookups.WithLabelValues(hitLabel(matched, "matched", "unmatched")).Inc()
}

// RecordStoreError counts a store failure for an operation.
func (m *Manager) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

// ObserveCandidates records retrieval and post-scoring set sizes.
func (m *Manager) ObserveCandidates(retrieved, comparable int) {
	if m == nil {
		return
	}
	m.candidatesRetrieved.Observe(float64(retrieved))
	m.comparableRuns.Observe(float64(comparable))
}

// ObserveComputeLatency records how long a cache-miss computation took.
func (m *Manager) ObserveComputeLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.computeLatency.Observe(float64(d) / float64(time.Millisecond))
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current registry in Prometheus text format, for
// the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

func hitLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
