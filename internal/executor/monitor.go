package executor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PerformanceMonitor tracks per-engine execution latency and counts, the
// Go home for the original system's QueryPerformanceMonitor (see
// SPEC_FULL.md §9.1). It mirrors graph.PrometheusMetrics' shape: a
// histogram plus a running in-memory summary queryable without scraping.
type PerformanceMonitor struct {
	mu      sync.Mutex
	calls   map[EngineTag]int64
	totalMS map[EngineTag]int64

	latency *prometheus.HistogramVec
}

// NewPerformanceMonitor registers its histogram with the default
// Prometheus registry. Re-registration (e.g. in tests that build more than
// one Executor) is tolerated by ignoring AlreadyRegisteredError, matching
// how the teacher's metrics constructors behave.
func NewPerformanceMonitor() *PerformanceMonitor {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nlquery",
		Subsystem: "executor",
		Name:      "query_duration_ms",
		Help:      "Query execution latency in milliseconds by engine.",
		Buckets:   []float64{5, 25, 100, 500, 1000, 5000, 30000},
	}, []string{"engine"})

	if err := prometheus.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			hist = are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}

	return &PerformanceMonitor{
		calls:   make(map[EngineTag]int64),
		totalMS: make(map[EngineTag]int64),
		latency: hist,
	}
}

// Record registers one completed execution against its engine.
func (m *PerformanceMonitor) Record(tag EngineTag, durationMS int64) {
	m.latency.WithLabelValues(string(tag)).Observe(float64(durationMS))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[tag]++
	m.totalMS[tag] += durationMS
}

// Summary is a point-in-time snapshot for one engine.
type Summary struct {
	Calls      int64
	AvgLatency float64
}

// SummaryFor returns the running average latency for the given engine.
func (m *PerformanceMonitor) SummaryFor(tag EngineTag) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.calls[tag]
	if calls == 0 {
		return Summary{}
	}
	return Summary{Calls: calls, AvgLatency: float64(m.totalMS[tag]) / float64(calls)}
}
