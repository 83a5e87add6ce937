package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSceneMetrics() {
	r.SceneNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sphere_nodes_total",
			Help: "Registered nodes by variant",
		},
		[]string{"variant"},
	)
}

func (r *Registry) initSnapshotMetrics() {
	r.SnapshotBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sphere_snapshot_bytes",
			Help:    "Encoded snapshot size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"direction", "encoding"},
	)
}
