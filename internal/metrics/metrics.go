package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projecthub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AuthAttempts records login and registration attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"},
	)

	// Uploads counts stored files by outcome (stored|rejected|failed).
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_uploads_total",
			Help: "Total number of upload attempts",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// MaintenanceRemoved counts rows and files removed by the orphan sweeper.
	MaintenanceRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_maintenance_removed_total",
			Help: "Orphaned records removed by background maintenance",
		},
		[]string{"target"},
	)
)

func RecordAuth(action string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(action, result).Inc()
}

func RecordUpload(result string) {
	Uploads.WithLabelValues(result).Inc()
}
