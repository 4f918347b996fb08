package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthFailureCounter  prometheus.Counter
	AuthLockoutCounter  prometheus.Counter

	// Ledger metrics
	EntryOperationsCounter *prometheus.CounterVec
	COTransitionsCounter   *prometheus.CounterVec
)

// InitMetrics registers all collectors. Call once at startup.
func InitMetrics(prefix string) {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthFailureCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_failures_total",
			Help: "Total number of failed authentications",
		},
	)

	AuthLockoutCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_lockouts_total",
			Help: "Total number of login attempts rejected by throttling",
		},
	)

	EntryOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entry_operations_total",
			Help: "Total number of entry ledger operations",
		},
		[]string{"operation"},
	)

	COTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_co_transitions_total",
			Help: "Total number of CO lifecycle transitions",
		},
		[]string{"to_state"},
	)
}

// RecordEntryOperation increments the ledger operation counter.
func RecordEntryOperation(operation string) {
	if EntryOperationsCounter != nil {
		EntryOperationsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordCOTransition increments the CO transition counter.
func RecordCOTransition(toState string) {
	if COTransitionsCounter != nil {
		COTransitionsCounter.WithLabelValues(toState).Inc()
	}
}
