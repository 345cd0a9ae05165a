package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts recommendation computations by kind and
	// whether they were served from the cache.
	RecommendationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfare_recommendation_requests_total",
		Help: "Total recommendation requests by kind and cache outcome",
	}, []string{"kind", "cache"})

	// RecommendationLatency records generator latency by kind (cache misses only).
	RecommendationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wayfare_recommendation_latency_seconds",
		Help:    "Recommendation generation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// TripOperations counts group-trip coordinator operations by type and outcome.
	TripOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfare_trip_operations_total",
		Help: "Total group trip operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// AICollaboratorErrors counts failed external AI collaborator calls.
	AICollaboratorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfare_ai_collaborator_errors_total",
		Help: "Total external AI collaborator failures by service",
	}, []string{"service"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfare_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wayfare_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordTripOperation records a coordinator operation outcome.
func RecordTripOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TripOperations.WithLabelValues(operation, outcome).Inc()
}
