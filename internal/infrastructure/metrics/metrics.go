package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-API metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Fragments forwarded to clients during streaming
	StreamFragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "stream_fragments_total",
			Help:      "Total streamed text fragments relayed to clients",
		},
		[]string{"model", "provider"},
	)

	// Relays aborted mid-stream (upstream error or client gone)
	RelayFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "relay_failures_total",
			Help:      "Streams aborted before clean completion",
		},
		[]string{"provider", "reason"},
	)

	// Provider errors before streaming starts
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "provider_errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"provider", "error_type"},
	)

	// Estimated tokens recorded per turn
	TokensEstimatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "tokens_estimated_total",
			Help:      "Approximate tokens recorded in usage audit",
		},
		[]string{"model", "provider"},
	)

	// Conversations
	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "conversations_created_total",
			Help:      "Total conversations created",
		},
	)

	// Auth requests
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"status"},
	)

	// Active streaming connections gauge
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "active_streams",
			Help:      "Currently active streaming connections",
		},
		[]string{"model"},
	)

	// Retention sweeper results
	RetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "chat_api",
			Name:      "retention_deleted_total",
			Help:      "Conversations removed by the retention sweeper",
		},
	)
)

// RecordRequest records an HTTP request with duration
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordProviderError records a provider error
func RecordProviderError(provider, errorType string) {
	ProviderErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordRelayFailure records a stream aborted mid-flight
func RecordRelayFailure(provider, reason string) {
	RelayFailuresTotal.WithLabelValues(provider, reason).Inc()
}

// RecordEstimatedTokens records the audit token estimate for one turn
func RecordEstimatedTokens(model, provider string, tokens int) {
	TokensEstimatedTotal.WithLabelValues(model, provider).Add(float64(tokens))
}

// IncrementActiveStreams increments the active streams gauge
func IncrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Inc()
}

// DecrementActiveStreams decrements the active streams gauge
func DecrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Dec()
}
