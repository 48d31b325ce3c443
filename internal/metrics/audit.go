package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "auditweb"

// Transform outcome labels.
const (
	TransformOK        = "ok"
	TransformEmpty     = "empty"
	TransformMalformed = "malformed"
)

// Audit search and presentation Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of audit searches",
		},
		[]string{"status"}, // "ok" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Audit search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	TransformTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_total",
			Help:      "Documents transformed into tree nodes, by outcome",
		},
		[]string{"result"},
	)

	RecordsSavedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Audit records written, by outcome",
		},
		[]string{"result"}, // "created" / "updated"
	)
)

var auditMetricsRegistered bool

// RegisterAuditMetrics registers Prometheus audit metrics. Must be called once from main.
func RegisterAuditMetrics() {
	if auditMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(TransformTotal)
	prometheus.MustRegister(RecordsSavedTotal)
	auditMetricsRegistered = true
}
