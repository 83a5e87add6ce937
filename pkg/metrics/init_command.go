package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCommandMetrics() {
	r.CommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_commands_total",
			Help: "Commands executed, undone and redone",
		},
		[]string{"kind", "action", "status"},
	)

	r.CommandDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sphere_command_duration_seconds",
			Help:    "Command apply/restore duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"kind", "action"},
	)

	r.CommandStackDepth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sphere_command_stack_depth",
			Help: "Number of commands retained on the undo stack",
		},
	)

	r.CommandCursor = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sphere_command_stack_cursor",
			Help: "Position of the undo cursor",
		},
	)
}
