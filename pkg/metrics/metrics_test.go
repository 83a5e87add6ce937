package metrics

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.PropagationPassesTotal == nil {
		t.Error("PropagationPassesTotal not initialized")
	}
	if r.CommandsTotal == nil {
		t.Error("CommandsTotal not initialized")
	}
	if r.SceneNodes == nil {
		t.Error("SceneNodes not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.RecordPass(3, 2, time.Millisecond)

	var metric dto.Metric
	if err := b.PropagationPassesTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 0 {
		t.Errorf("second registry passes = %v, want 0", got)
	}
}

func TestRecordPass(t *testing.T) {
	r := NewRegistry()
	r.RecordPass(4, 3, 2*time.Millisecond)
	r.RecordPass(1, 0, time.Microsecond)

	var metric dto.Metric
	if err := r.PropagationPassesTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("passes = %v, want 2", got)
	}

	metric.Reset()
	if err := r.PropagationRecomputed.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 3 {
		t.Errorf("recomputed = %v, want 3", got)
	}
}

func TestRecordCommand(t *testing.T) {
	r := NewRegistry()
	r.RecordCommand("move", "execute", nil, time.Millisecond)
	r.RecordCommand("move", "execute", errors.New("failed"), time.Millisecond)
	r.RecordCommand("move", "undo", nil, time.Millisecond)

	tests := []struct {
		action, status string
		want           float64
	}{
		{"execute", StatusOK, 1},
		{"execute", StatusError, 1},
		{"undo", StatusOK, 1},
		{"redo", StatusOK, 0},
	}
	for _, tt := range tests {
		counter, err := r.CommandsTotal.GetMetricWithLabelValues("move", tt.action, tt.status)
		if err != nil {
			t.Fatalf("Failed to get metric: %v", err)
		}
		var metric dto.Metric
		if err := counter.Write(&metric); err != nil {
			t.Fatalf("Failed to write metric: %v", err)
		}
		if got := metric.GetCounter().GetValue(); got != tt.want {
			t.Errorf("commands{move,%s,%s} = %v, want %v", tt.action, tt.status, got, tt.want)
		}
	}
}

func TestRecordExistenceChange(t *testing.T) {
	r := NewRegistry()
	r.RecordExistenceChange("line", false)
	r.RecordExistenceChange("line", false)
	r.RecordExistenceChange("line", true)

	var metric dto.Metric
	if err := r.DegenerateTransitions.WithLabelValues("line", "vanished").Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("vanished = %v, want 2", got)
	}
}

func TestUpdateStackAndNodeCount(t *testing.T) {
	r := NewRegistry()
	r.UpdateStack(5, 3)
	r.SetNodeCount("point", 7)

	var metric dto.Metric
	if err := r.CommandStackDepth.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 5 {
		t.Errorf("depth = %v, want 5", got)
	}

	metric.Reset()
	if err := r.SceneNodes.WithLabelValues("point").Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 7 {
		t.Errorf("points = %v, want 7", got)
	}
}

func TestGatherExposesSphereFamilies(t *testing.T) {
	r := NewRegistry()
	r.RecordPass(1, 1, time.Millisecond)
	r.RecordSnapshot("encode", true, 1024)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"sphere_propagation_passes_total", "sphere_snapshot_bytes"} {
		if !names[want] {
			t.Errorf("family %s not gathered", want)
		}
	}
}
