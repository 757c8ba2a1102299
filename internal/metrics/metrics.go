package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crunch",
			Subsystem: "pipeline",
			Name:      "transfers_total",
			Help:      "Total number of transfer attempts by asset and outcome",
		},
		[]string{"asset", "outcome"},
	)

	transferDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crunch",
			Subsystem: "pipeline",
			Name:      "transfer_duration_seconds",
			Help:      "End-to-end transfer pipeline latency in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"asset"},
	)

	transferFailuresByStage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crunch",
			Subsystem: "pipeline",
			Name:      "transfer_failures_by_stage_total",
			Help:      "Transfer failures by pipeline stage",
		},
		[]string{"stage"},
	)
)

// ObserveTransfer records the outcome and duration of one pipeline run.
func ObserveTransfer(asset, outcome string, duration time.Duration) {
	transfersTotal.WithLabelValues(asset, outcome).Inc()
	transferDuration.WithLabelValues(asset).Observe(duration.Seconds())
}

// ObserveFailureStage records which pipeline stage a failure originated from.
func ObserveFailureStage(stage string) {
	transferFailuresByStage.WithLabelValues(stage).Inc()
}
