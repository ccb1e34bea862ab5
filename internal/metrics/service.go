package metrics

import "github.com/prometheus/client_golang/prometheus"

// Similarity outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeTooShort    = "too_short"
	OutcomeEmbedFailed = "embed_failed"
	OutcomeSearchError = "search_failed"
	OutcomeTimeout     = "timeout"
)

// Service-level Prometheus metrics.
var (
	SimilarityRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "similarity_requests_total",
			Help:      "findSimilar calls by outcome",
		},
		[]string{"outcome"},
	)

	SimilarityDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "similarity_duration_seconds",
			Help:      "findSimilar latency including embedding",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
	)

	BackfillRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfill_records_total",
			Help:      "Ideas processed by embedding backfill",
		},
		[]string{"status"},
	)

	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejected_total",
			Help:      "Requests rejected by the fixed-window limiter",
		},
		[]string{"bucket"},
	)
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers similarity, backfill and rate-limit metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		SimilarityRequestsTotal,
		SimilarityDuration,
		BackfillRecordsTotal,
		RateLimitRejectedTotal,
	)
	serviceMetricsRegistered = true
}
