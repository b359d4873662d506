// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "api_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "method"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_hits_total",
			Help: "Cache hits per external data provider",
		},
		[]string{"provider"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_misses_total",
			Help: "Cache misses per external data provider",
		},
		[]string{"provider"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "provider_request_duration_seconds",
			Help: "Duration of upstream provider requests in seconds",
		},
		[]string{"provider"},
	)

	ProviderRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_request_errors_total",
			Help: "Upstream provider request failures",
		},
		[]string{"provider"},
	)

	UnderwritingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_runs_total",
			Help: "Underwriting engine computations by outcome",
		},
		[]string{"outcome"},
	)

	IRRSolverIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "underwriting_irr_iterations",
			Help:    "Newton-Raphson iterations taken by the IRR solver",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1000},
		},
	)
)
