// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the collectors shared by the HTTP layer and the services.
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Upstream providers (llm, languagetool, huggingface, google)
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamDuration      *prometheus.HistogramVec

	// Model output that could not be parsed into the structured result
	NormalizerFallbacks *prometheus.CounterVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New creates and registers the collectors. Registration happens once per
// process; later calls return the same instance.
//
// Metrics:
//   - redpen_http_requests_total{method,route,status}
//   - redpen_http_request_duration_seconds{method,route}
//   - redpen_http_rate_limited_total
//   - redpen_upstream_requests_total{service,outcome}
//   - redpen_upstream_duration_seconds{service}
//   - redpen_normalizer_fallbacks_total{route}
//   - redpen_cache_hits_total{cache}
//   - redpen_cache_misses_total{cache}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redpen_http_requests_total",
					Help: "Total number of HTTP requests handled",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "redpen_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			RateLimited: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "redpen_http_rate_limited_total",
					Help: "Total number of requests rejected by the rate limiter",
				},
			),
			UpstreamRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redpen_upstream_requests_total",
					Help: "Total number of calls to upstream providers",
				},
				[]string{"service", "outcome"}, // outcome: "ok" or "error"
			),
			UpstreamDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "redpen_upstream_duration_seconds",
					Help:    "Upstream provider latency in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"service"},
			),
			NormalizerFallbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redpen_normalizer_fallbacks_total",
					Help: "Model responses with no parsable JSON object",
				},
				[]string{"route"},
			),
			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redpen_cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redpen_cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache"},
			),
		}
	})
	return globalMetrics
}

// ObserveUpstream records one upstream call. Safe to call on a nil receiver.
func (m *Metrics) ObserveUpstream(service string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(service).Observe(seconds)
}

// Fallback records a model response that yielded no structured data.
func (m *Metrics) Fallback(route string) {
	if m == nil {
		return
	}
	m.NormalizerFallbacks.WithLabelValues(route).Inc()
}

// Cache records a cache lookup.
func (m *Metrics) Cache(name string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(name).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(name).Inc()
}
