package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adventure_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// Generation pipeline metrics
	generationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_generation_provider_attempts_total",
			Help: "LLM provider calls made by the generation pipeline, by result",
		},
		[]string{"result"},
	)

	generationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_generation_results_total",
			Help: "Completed generation requests, by outcome code",
		},
		[]string{"code"},
	)

	llmTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_llm_tokens_total",
			Help: "Tokens consumed by LLM calls",
		},
		[]string{"model", "kind"},
	)
)

// ObserveProviderAttempt records one provider call.
func ObserveProviderAttempt(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	generationAttempts.WithLabelValues(result).Inc()
}

// ObserveGenerationResult records the terminal code of a generation; "OK" on success.
func ObserveGenerationResult(code string) {
	generationResults.WithLabelValues(code).Inc()
}
