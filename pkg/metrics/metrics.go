package metrics

import (
	"time"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordPass records one propagation pass
func (r *Registry) RecordPass(marked, recomputed int, duration time.Duration) {
	r.PropagationPassesTotal.Inc()
	r.PropagationRecomputed.Add(float64(recomputed))
	r.PropagationPassDuration.Observe(duration.Seconds())
	r.PropagationPassSize.Observe(float64(marked))
}

// RecordExistenceChange records a node whose existence flag flipped during recompute
func (r *Registry) RecordExistenceChange(variant string, exists bool) {
	direction := "vanished"
	if exists {
		direction = "appeared"
	}
	r.DegenerateTransitions.WithLabelValues(variant, direction).Inc()
}

// RecordCommand records a command action (execute, undo, redo)
func (r *Registry) RecordCommand(kind, action string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.CommandsTotal.WithLabelValues(kind, action, status).Inc()
	r.CommandDuration.WithLabelValues(kind, action).Observe(duration.Seconds())
}

// UpdateStack publishes the undo stack shape
func (r *Registry) UpdateStack(depth, cursor int) {
	r.CommandStackDepth.Set(float64(depth))
	r.CommandCursor.Set(float64(cursor))
}

// SetNodeCount sets the registered node gauge for one variant
func (r *Registry) SetNodeCount(variant string, n int) {
	r.SceneNodes.WithLabelValues(variant).Set(float64(n))
}

// RecordSnapshot records an encoded or decoded snapshot size
func (r *Registry) RecordSnapshot(direction string, compressed bool, size int) {
	encoding := "yaml"
	if compressed {
		encoding = "snappy"
	}
	r.SnapshotBytes.WithLabelValues(direction, encoding).Observe(float64(size))
}
