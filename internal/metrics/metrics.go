// Package metrics exposes Prometheus counters for the analysis lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// lifecycleTransitions counts state changes of the analysis lifecycle
	lifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Total number of analysis lifecycle state transitions",
		},
		[]string{"from", "to"},
	)

	// staleResponses counts prediction responses dropped because a newer
	// submission or a reset superseded them
	staleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lifecycle_stale_responses_total",
			Help: "Total number of prediction responses discarded as stale",
		},
	)

	analysesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_completed_total",
			Help: "Total number of analyses that reached a terminal state",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(lifecycleTransitions)
	prometheus.MustRegister(staleResponses)
	prometheus.MustRegister(analysesCompleted)
}

// RecordTransition records a lifecycle state change.
func RecordTransition(from, to string) {
	lifecycleTransitions.WithLabelValues(from, to).Inc()
}

// RecordStaleResponse records a discarded prediction response.
func RecordStaleResponse() {
	staleResponses.Inc()
}

// RecordOutcome records how an analysis ended ("succeeded" or "failed").
func RecordOutcome(outcome string) {
	analysesCompleted.WithLabelValues(outcome).Inc()
}
