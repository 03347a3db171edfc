// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aigate_api_request_duration_seconds",
			Help:    "Total time taken for requests in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120, 180},
		},
		[]string{"endpoint"},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigate_api_provider_calls_total",
			Help: "Provider calls by outcome; outcome is ok or the error kind",
		},
		[]string{"provider", "capability", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aigate_api_provider_latency_seconds",
			Help:    "Time spent waiting on a provider call",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60, 120},
		},
		[]string{"provider", "capability"},
	)

	CreditsReported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigate_api_credits_reported_total",
			Help: "Credits successfully debited at the ledger",
		},
		[]string{"endpoint"},
	)

	LedgerReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigate_api_ledger_reports_total",
			Help: "Ledger debit attempts by outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	JournalErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aigate_api_journal_errors_total",
			Help: "Usage events that could not be appended to the journal",
		},
	)

	BatchItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aigate_api_batch_items",
			Help:    "Items per batch request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"endpoint"},
	)

	AudioBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aigate_api_audio_bytes",
			Help:    "Size of synthesized audio payloads",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
		},
		[]string{"provider"},
	)

	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigate_api_error_count",
			Help: "Error count",
		},
		[]string{"endpoint", "code"},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigate_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)
