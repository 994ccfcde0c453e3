// Package metrics provides Prometheus metrics collection for the
// interactions API. It tracks HTTP request performance plus the two
// upstream dependencies (the completion service and the drug
// vocabulary) and the drug-code cache:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - generator_request_total / generator_request_duration_seconds
//   - vocabulary_request_total / vocabulary_request_duration_seconds
//   - code_cache_entries: Gauge for cached drug codes
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	GeneratorRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_request_total",
			Help: "Total completion service requests",
		},
		[]string{"outcome"},
	)

	GeneratorRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generator_request_duration_seconds",
			Help:    "Completion service latency",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	VocabularyRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabulary_request_total",
			Help: "Total drug vocabulary requests",
		},
		[]string{"outcome"},
	)

	VocabularyRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vocabulary_request_duration_seconds",
			Help:    "Drug vocabulary latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	CodeCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "code_cache_entries",
			Help: "Number of drug codes currently cached",
		},
	)
)

// Outcome labels for upstream request counters.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(GeneratorRequestTotals)
	prometheus.MustRegister(GeneratorRequestDuration)
	prometheus.MustRegister(VocabularyRequestTotals)
	prometheus.MustRegister(VocabularyRequestDuration)
	prometheus.MustRegister(CodeCacheEntries)
}
