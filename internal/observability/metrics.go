package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogicum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthzDenials counts rejected mutations by resource and action.
	AuthzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_authz_denials_total",
		Help: "Total number of edit/delete attempts rejected by authorization rules",
	}, []string{"resource", "action"})

	// ContentWrites counts successful post and comment mutations.
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_content_writes_total",
		Help: "Total number of successful post and comment mutations",
	}, []string{"resource", "operation"})

	// SessionEvents counts login, logout and registration outcomes.
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_session_events_total",
		Help: "Total number of session events by type and outcome",
	}, []string{"event", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
