package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnichat",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "omnichat",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UpstreamErrorsTotal counts upstream provider call failures.
	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnichat",
			Name:      "upstream_errors_total",
			Help:      "Total upstream provider call failures",
		},
		[]string{"kind"},
	)

	// StreamsRelayedTotal counts completed streaming relays.
	StreamsRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "omnichat",
			Name:      "streams_relayed_total",
			Help:      "Total streaming chat relays driven to completion",
		},
	)

	// ImagesGeneratedTotal counts persisted generated images.
	ImagesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "omnichat",
			Name:      "images_generated_total",
			Help:      "Total images generated and stored",
		},
	)

	// MessagesPersistedTotal counts conversation turns written to the store.
	MessagesPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnichat",
			Name:      "messages_persisted_total",
			Help:      "Total chat messages persisted",
		},
		[]string{"role"},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordUpstreamError records a failed upstream call by error kind.
func RecordUpstreamError(kind string) {
	UpstreamErrorsTotal.WithLabelValues(kind).Inc()
}
