// Package metrics defines the Prometheus metric collectors used across the
// service. StartServer exposes them for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	AnalysesTotal        *prometheus.CounterVec
	AnalysisLatency      prometheus.Histogram
	SkillMatchScore      prometheus.Histogram
	SkillsExtracted      *prometheus.HistogramVec
	LLMRequestsTotal     *prometheus.CounterVec
	LLMLatency           prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RateLimitedTotal     prometheus.Counter
	AnalyticsDropped     prometheus.Counter
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyses_total",
				Help: "Total analyses by whether the generative hint was requested and the cache status.",
			},
			[]string{"llm", "cache_status"},
		),
		AnalysisLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analysis_latency_seconds",
				Help:    "End-to-end analysis latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
		SkillMatchScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "skill_match_score",
				Help:    "Distribution of skill overlap scores.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		SkillsExtracted: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skills_extracted",
				Help:    "Number of canonical skills extracted per document.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
			},
			[]string{"document"},
		),
		LLMRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Generative hint attempts by outcome (ok, empty, error, timeout, cancelled, circuit_open).",
			},
			[]string{"result"},
		),
		LLMLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "llm_latency_seconds",
				Help:    "Generative hint latency in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of analysis cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of analysis cache misses.",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter.",
			},
		),
		AnalyticsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Analytics events dropped because the buffer was full.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.AnalysesTotal,
		m.AnalysisLatency,
		m.SkillMatchScore,
		m.SkillsExtracted,
		m.LLMRequestsTotal,
		m.LLMLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RateLimitedTotal,
		m.AnalyticsDropped,
		m.CircuitBreakerState,
	)

	return m
}
