package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPropagationMetrics() {
	r.PropagationPassesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sphere_propagation_passes_total",
			Help: "Total number of mark/order/recompute passes",
		},
	)

	r.PropagationRecomputed = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sphere_propagation_recomputed_total",
			Help: "Total number of node recomputations",
		},
	)

	r.PropagationPassDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sphere_propagation_pass_duration_seconds",
			Help:    "Propagation pass duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.PropagationPassSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sphere_propagation_pass_size",
			Help:    "Number of nodes marked out of date per pass",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	r.DegenerateTransitions = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_degenerate_transitions_total",
			Help: "Existence flips caused by recomputation",
		},
		[]string{"variant", "direction"},
	)

	r.PropagationReentryRefused = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sphere_propagation_reentry_refused_total",
			Help: "Propagation requests refused because a pass was already running",
		},
	)
}
