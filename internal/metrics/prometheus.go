// Package metrics exposes Prometheus metrics for matching runs and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns a private registry and every collector registered on it.
// A nil or disabled Manager accepts observations and drops them.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	autoMatches        *prometheus.CounterVec
	autoMatchDuration  *prometheus.HistogramVec
	clustersSuggested  prometheus.Counter
	searches           prometheus.Counter
	searchResults      prometheus.Counter
	roleAssignments    prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// NewManager creates a metrics manager on a fresh registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hackmate",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.autoMatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matching",
		Name:      "auto_matches_total",
		Help:      "Auto-match runs by outcome (ai or one of the fallback reasons).",
	}, []string{"outcome"})

	m.autoMatchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "matching",
		Name:      "auto_match_duration_seconds",
		Help:      "Wall time of auto-match runs including the completion call.",
		Buckets:   m.histogramBuckets,
	}, []string{"outcome"})

	m.clustersSuggested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matching",
		Name:      "clusters_recommended_total",
		Help:      "Team clusters returned by recommendations.",
	})

	m.searches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matching",
		Name:      "searches_total",
		Help:      "Teammate searches served.",
	})

	m.searchResults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matching",
		Name:      "search_results_total",
		Help:      "Candidates returned by teammate searches.",
	})

	m.roleAssignments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "roles",
		Name:      "assignments_total",
		Help:      "Team role assignments computed.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	m.httpRequestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   m.histogramBuckets,
	}, []string{"route"})
}

func (m *Manager) active() bool {
	return m != nil && m.enabled
}

// ObserveMatch records the outcome and duration of an auto-match run.
func (m *Manager) ObserveMatch(outcome string, seconds float64) {
	if !m.active() {
		return
	}
	m.autoMatches.WithLabelValues(outcome).Inc()
	m.autoMatchDuration.WithLabelValues(outcome).Observe(seconds)
}

func (m *Manager) ObserveRecommend(clusters int) {
	if !m.active() {
		return
	}
	m.clustersSuggested.Add(float64(clusters))
}

func (m *Manager) ObserveSearch(results int) {
	if !m.active() {
		return
	}
	m.searches.Inc()
	m.searchResults.Add(float64(results))
}

func (m *Manager) ObserveRoles() {
	if !m.active() {
		return
	}
	m.roleAssignments.Inc()
}

func (m *Manager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if !m.active() {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
