// Package metrics defines the Prometheus collectors for the HTTP surface.
//
// Collectors are registered on the default registry via promauto at package
// load. The /metrics endpoint is only mounted when ENABLE_PROMETHEUS_METRICS
// is set, but registration itself is unconditional and cheap: an unexposed
// collector is just a counter in memory.
//
// Route labels come from the API layer, which normalizes request paths to
// their route group before recording. Label cardinality stays bounded by the
// number of route groups, not by the number of distinct URLs seen.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts completed HTTP requests by method, route group,
	// and response status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_platform_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures request handling latency by method and
	// route group.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rag_platform_http_request_duration_seconds",
			Help:    "Time taken to handle HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestsInFlight tracks the number of requests currently being served.
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rag_platform_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// RateLimited counts requests rejected by the per-client rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_platform_http_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting",
		},
	)

	// PanicsRecovered counts panics caught by the recovery middleware.
	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_platform_http_panics_recovered_total",
			Help: "Total number of handler panics recovered",
		},
	)
)

// Handler returns the Prometheus exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
