package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "murmur_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// EngagementEventsTotal counts published engagement events by type.
	EngagementEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_engagement_events_total",
		Help: "Total number of engagement events published",
	}, []string{"event_type"})

	// OrphanPostsRemoved counts posts removed by orphan cleanup.
	OrphanPostsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "murmur_orphan_posts_removed_total",
		Help: "Total number of orphaned posts removed by cleanup",
	})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
