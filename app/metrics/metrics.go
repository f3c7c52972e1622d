// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomePersonalized  = "personalized"
	OutcomeGuestFallback = "guest_fallback"
	OutcomeUnavailable   = "unavailable"
	OutcomeError         = "error"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoshare_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Search Document Store
	SearchQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoshare_search_query_duration_seconds",
			Help:    "Duration of search index queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	SearchQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_search_query_errors_total",
			Help: "Total number of failed search index queries",
		},
		[]string{"query"},
	)

	IndexWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_index_writes_total",
			Help: "Total number of search document writes",
		},
		[]string{"operation", "result"},
	)

	// Index Synchronizer
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_index_sync_runs_total",
			Help: "Total number of index bootstrap runs by outcome",
		},
		[]string{"outcome"}, // "populated", "skipped", "error"
	)

	SyncDocuments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoshare_index_sync_documents_total",
			Help: "Total number of documents written by the index bootstrap",
		},
	)

	// Recommendations
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// Tag association collaborator
	AssociationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoshare_tag_association_duration_seconds",
			Help:    "Duration of tag association calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photoshare_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordSearchQuery records one index query.
func RecordSearchQuery(query string, duration time.Duration, err error) {
	SearchQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		SearchQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordIndexWrite records a document upsert or delete.
func RecordIndexWrite(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	IndexWrites.WithLabelValues(operation, result).Inc()
}

// RecordRecommendation records how a recommendation request was answered.
func RecordRecommendation(outcome string) {
	Recommendations.WithLabelValues(outcome).Inc()
}
