// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// GraphQueryLatency records graph-store query latency by operation.
	GraphQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_graph_query_latency_seconds",
		Help:    "Graph store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// GraphQueryErrors counts graph-store query failures by operation.
	GraphQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_graph_query_errors_total",
		Help: "Total number of graph store query failures by operation",
	}, []string{"operation"})

	// FeedCacheEvents counts recommendation feed cache outcomes.
	FeedCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_feed_cache_events_total",
		Help: "Recommendation feed cache events (hit, miss, expired, evicted)",
	}, []string{"event"})

	// FeedFallbacks counts feed requests that degraded to trending content.
	FeedFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_feed_fallbacks_total",
		Help: "Feed requests that fell back to trending content, by cause",
	}, []string{"cause"})
)

// ObserveGraphQuery records the latency of a graph query. Use with defer:
//
//	defer observability.ObserveGraphQuery("follow")()
func ObserveGraphQuery(operation string) func() {
	start := time.Now()
	return func() {
		GraphQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
