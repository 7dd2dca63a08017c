// Package handlers exposes the HTTP adapter over the domain store.
package handlers

import "github.com/prometheus/client_golang/prometheus"

var (
	promptsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prompts_created_total",
		Help: "Total number of prompts created",
	})

	promptVersionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prompt_versions_created_total",
		Help: "Total number of prompt versions created",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of HTTP error responses",
	})

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		promptsCreatedTotal,
		promptVersionsCreatedTotal,
		httpRequestsTotal,
		httpErrorsTotal,
		httpRequestDuration,
	)
}
