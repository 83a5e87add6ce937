package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the sphere engine
type Registry struct {
	// Propagation Metrics
	PropagationPassesTotal    prometheus.Counter
	PropagationRecomputed     prometheus.Counter
	PropagationPassDuration   prometheus.Histogram
	PropagationPassSize       prometheus.Histogram
	DegenerateTransitions     *prometheus.CounterVec
	PropagationReentryRefused prometheus.Counter

	// Scene Metrics
	SceneNodes *prometheus.GaugeVec

	// Command Metrics
	CommandsTotal     *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	CommandStackDepth prometheus.Gauge
	CommandCursor     prometheus.Gauge

	// Snapshot Metrics
	SnapshotBytes *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every collector registered on a
// private prometheus.Registry, so independent sessions and tests never clash.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPropagationMetrics()
	r.initSceneMetrics()
	r.initCommandMetrics()
	r.initSnapshotMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
