package coordinator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks how issued fetches are reconciled.
type Metrics struct {
	Registry        *prometheus.Registry
	IssuedTotal     prometheus.Counter
	ResponsesTotal  *prometheus.CounterVec
	SkippedTotal    prometheus.Counter
	CacheHitsTotal  prometheus.Counter
	ResolveDuration prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	issued := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_fetches_issued_total",
			Help: "Total page fetches started for a new query state.",
		},
	)
	responses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_responses_total",
			Help: "Completed fetches by outcome (ready, failed, stale).",
		},
		[]string{"outcome"},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_state_changes_skipped_total",
			Help: "State changes ignored because they matched the last issued state.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_cache_hits_total",
			Help: "State changes answered from the page cache.",
		},
	)
	resolveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coordinator_fetch_duration_seconds",
			Help:    "Time from issue to a ready response for the latest generation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(issued, responses, skipped, cacheHits, resolveDuration)

	return &Metrics{
		Registry:        registry,
		IssuedTotal:     issued,
		ResponsesTotal:  responses,
		SkippedTotal:    skipped,
		CacheHitsTotal:  cacheHits,
		ResolveDuration: resolveDuration,
	}
}

// IncIssued counts a fetch started for a new state.
func (m *Metrics) IncIssued() {
	if m == nil {
		return
	}
	m.IssuedTotal.Inc()
}

// IncResponse counts a completion by outcome: ready, failed or stale.
func (m *Metrics) IncResponse(outcome string) {
	if m == nil {
		return
	}
	m.ResponsesTotal.WithLabelValues(outcome).Inc()
}

// IncSkipped counts a state change that matched the last issued state.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.SkippedTotal.Inc()
}

// IncCacheHit counts a state served from the page cache.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// ObserveLatency records how long a resolved fetch took.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(d.Seconds())
}
