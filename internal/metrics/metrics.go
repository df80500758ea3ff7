package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sql_sketcher_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sql_sketcher_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sql_sketcher_generations_total",
			Help: "SQL generations by the path that produced the text.",
		},
		[]string{"mode"},
	)

	ModelFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sql_sketcher_model_failures_total",
			Help: "Failed model completions by error kind.",
		},
		[]string{"kind"},
	)

	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sql_sketcher_model_tokens_total",
			Help: "Tokens consumed by model completions.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		GenerationsTotal,
		ModelFailuresTotal,
		ModelTokensTotal,
	)
}
