package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route pattern
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dugod_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dugod_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dugod_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	// CacheHits counts cache hits by key group
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dugod_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key"},
	)

	// CacheMisses counts cache misses by key group
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dugod_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key"},
	)

	// BlackboxAnswers counts answer submissions by result (correct, incorrect, rejected)
	BlackboxAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dugod_blackbox_answers_total",
			Help: "Total number of Blackbox answer submissions",
		},
		[]string{"result"},
	)

	// CountdownStreams tracks open countdown websocket streams
	CountdownStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dugod_countdown_streams",
			Help: "Number of open countdown streams",
		},
	)

	// RateLimiterRejections counts requests rejected by the answer rate limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dugod_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	// DatabaseOperationDuration measures repository operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dugod_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
}
