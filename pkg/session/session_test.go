package session

import (
	"bytes"
	"math"
	"testing"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/config"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/metrics"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vp(x, y, z float64) *validation.Vector {
	return &validation.Vector{x, y, z}
}

func freePoint(t *testing.T, s *Session, x, y, z float64) scene.NodeID {
	t.Helper()
	n, err := s.AddNode(validation.NodeRequest{Variant: "point", Construction: "free", Location: vp(x, y, z)})
	require.NoError(t, err)
	return n.ID()
}

func TestNew(t *testing.T) {
	s := New(nil)
	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), New(nil).ID(), "sessions are independent")
	assert.Equal(t, config.Default().Geometry, s.Graph().Tolerances())

	id := uuid.New()
	assert.Equal(t, id.String(), New(nil, WithID(id)).ID())
}

func TestCreateNode_DoesNotRegister(t *testing.T) {
	s := New(nil)
	n, err := s.CreateNode(validation.NodeRequest{Variant: "point", Construction: "free", Location: vp(0, 0, 1)})
	require.NoError(t, err)
	assert.False(t, s.Graph().Has(n.ID()))

	require.NoError(t, s.Execute(command.AddBuilt(n)))
	assert.True(t, s.Graph().Has(n.ID()))
	assert.Equal(t, 1, s.History().Len())
}

func TestCreateNode_RejectsBadRequests(t *testing.T) {
	s := New(nil)
	a := freePoint(t, s, 0, 0, 1)

	_, err := s.CreateNode(validation.NodeRequest{Variant: "point", Construction: "free"})
	assert.ErrorIs(t, err, scene.ErrInvalidSpec)

	_, err = s.CreateNode(validation.NodeRequest{Variant: "line", Construction: "through_points", Parents: []uint64{a, 42}})
	assert.ErrorIs(t, err, scene.ErrDanglingParent)

	_, err = s.CreateNode(validation.NodeRequest{Variant: "circle", Construction: "antipode", Parents: []uint64{a}})
	assert.ErrorIs(t, err, scene.ErrInvalidSpec)
	assert.Equal(t, 1, s.Graph().Len())
}

func TestDegenerateLineThroughSession(t *testing.T) {
	s := New(nil)
	p1 := freePoint(t, s, 0, 0, 1)
	p2 := freePoint(t, s, 0, 0, -1)
	ln, err := s.AddNode(validation.NodeRequest{Variant: "line", Construction: "through_points", Parents: []uint64{p1, p2}})
	require.NoError(t, err)
	line := ln.(*scene.Line)
	assert.False(t, line.Exists())

	var changes []scene.Change
	unsubscribe, err := s.OnNodeChanged(line.ID(), func(c scene.Change) { changes = append(changes, c) })
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, s.Execute(command.MovePoint(p2, geom.Vector{Y: 1})))
	assert.True(t, line.Exists())
	assert.InDelta(t, -1, line.Normal().X, 1e-12)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].State.Present())

	ok, err := s.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, line.Exists())
	assert.Len(t, changes, 2)

	_, err = s.OnNodeChanged(999, func(scene.Change) {})
	assert.ErrorIs(t, err, scene.ErrNodeNotFound)
}

func TestHistoryLimitFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.Limit = 2
	s := New(cfg)
	for i := 0; i < 4; i++ {
		freePoint(t, s, 1, float64(i), 0)
	}
	assert.Equal(t, 2, s.History().Len())
	assert.Equal(t, 4, s.Graph().Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := New(nil)
	a := freePoint(t, src, 1, 0, 0)
	b := freePoint(t, src, 0, 1, 0)
	l, err := src.AddNode(validation.NodeRequest{Variant: "line", Construction: "through_points", Parents: []uint64{a, b}})
	require.NoError(t, err)
	c, err := src.AddNode(validation.NodeRequest{Variant: "circle", Construction: "through_points", Parents: []uint64{a, b}})
	require.NoError(t, err)
	_, err = src.AddNode(validation.NodeRequest{Variant: "point", Construction: "intersection", Parents: []uint64{l.ID(), c.ID()}, Index: 1})
	require.NoError(t, err)
	lb, err := src.AddNode(validation.NodeRequest{Variant: "label", Construction: "anchored", Parents: []uint64{l.ID()}, Text: "equator"})
	require.NoError(t, err)

	style := scene.DefaultStyle(scene.LabelVariant, scene.LabelPanel)
	style.StrokeColor = "#336699"
	sc, err := command.SetStyle(src.Graph(), scene.LabelPanel, style, l.ID())
	require.NoError(t, err)
	require.NoError(t, src.Execute(sc))
	require.NoError(t, src.Execute(command.MovePoint(b, geom.Vector{Y: 1, Z: 1})))

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, src.Save(&buf, compress))

		dst := New(nil)
		// an existing node shifts every loaded id
		freePoint(t, dst, 0, 0, 1)
		ids, err := dst.Load(&buf)
		require.NoError(t, err)
		require.Len(t, ids, src.Graph().Len())
		assert.Equal(t, 2, dst.History().Len(), "a load is one undoable step")

		for old, fresh := range ids {
			want := src.Graph().MustGet(old)
			got := dst.Graph().MustGet(fresh)
			assert.Equal(t, want.Variant(), got.Variant())
			assert.Equal(t, want.State(), got.State(), "value of %s", want.Name())
			assert.Equal(t, len(want.Parents()), len(got.Parents()))
		}
		got, err := dst.Graph().Style(ids[lb.ID()], scene.LabelPanel)
		require.NoError(t, err)
		assert.Equal(t, "#336699", got.StrokeColor)

		_, err = dst.Undo()
		require.NoError(t, err)
		assert.Equal(t, 1, dst.Graph().Len())
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	s := New(nil)
	_, err := s.Load(bytes.NewBufferString("format: cluso-sphere/v1\nnodes:\n  - {id: 1, variant: point, construction: antipode, parents: [7]}\n"))
	assert.Error(t, err)
	assert.Zero(t, s.Graph().Len())
	assert.Zero(t, s.History().Len())
}

func TestMetricsWiring(t *testing.T) {
	reg := metrics.NewRegistry()
	s := New(nil, WithMetrics(reg))
	freePoint(t, s, 1, 0, 0)

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, true))

	m := &dto.Metric{}
	require.NoError(t, reg.SceneNodes.WithLabelValues("point").Write(m))
	assert.Equal(t, 1.0, m.GetGauge().GetValue())

	m = &dto.Metric{}
	require.NoError(t, reg.PropagationPassesTotal.Write(m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
}

func TestResizeOutsideTolerancesKeepsSceneLoadable(t *testing.T) {
	src := New(nil)
	c, err := src.AddNode(validation.NodeRequest{Variant: "circle", Construction: "free", Center: vp(0, 0, 1), Radius: 0.5})
	require.NoError(t, err)
	sg, err := src.AddNode(validation.NodeRequest{
		Variant: "segment", Construction: "free", Start: vp(1, 0, 0), Normal: vp(0, 0, 1), ArcLength: 1,
	})
	require.NoError(t, err)
	steps := src.History().Len()

	err = src.Execute(command.ResizeCircle(c.ID(), geom.Vector{Z: 1}, 1e-6))
	assert.ErrorIs(t, err, scene.ErrInvalidSpec)
	err = src.Execute(command.SetSegment(sg.ID(), geom.Vector{Z: 1}, 50))
	assert.ErrorIs(t, err, scene.ErrInvalidSpec)
	assert.Equal(t, steps, src.History().Len())
	assert.Equal(t, 0.5, c.State().(scene.CircleState).Radius)
	assert.Equal(t, 1.0, sg.State().(scene.SegmentState).ArcLength)

	require.NoError(t, src.Execute(command.ResizeCircle(c.ID(), geom.Vector{X: 1, Z: 1}, 0.3)))
	require.NoError(t, src.Execute(command.SetSegment(sg.ID(), geom.Vector{Y: 1}, 2*math.Pi)))

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf, false))
	dst := New(nil)
	ids, err := dst.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.State(), dst.Graph().MustGet(ids[c.ID()]).State())
	assert.Equal(t, sg.State(), dst.Graph().MustGet(ids[sg.ID()]).State())
}

func TestLoadRestoresHiddenNodesAsPartOfTheStep(t *testing.T) {
	src := New(nil)
	a := freePoint(t, src, 1, 0, 0)
	b := freePoint(t, src, 0, 1, 0)
	require.NoError(t, src.Execute(command.SetShowing(false, command.Existing(b))))

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf, true))

	dst := New(nil)
	ids, err := dst.Load(&buf)
	require.NoError(t, err)
	assert.True(t, dst.Graph().MustGet(ids[a]).Showing())
	assert.False(t, dst.Graph().MustGet(ids[b]).Showing())
	assert.Equal(t, 1, dst.History().Len())

	_, err = dst.Undo()
	require.NoError(t, err)
	assert.Zero(t, dst.Graph().Len())

	_, err = dst.Redo()
	require.NoError(t, err)
	assert.False(t, dst.Graph().MustGet(ids[b]).Showing())
}

func TestModified(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Modified(), "a new session has nothing to save")

	a := freePoint(t, s, 1, 0, 0)
	assert.True(t, s.Modified())

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, false))
	assert.False(t, s.Modified())

	_, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, s.Modified())
	s.ClearModified()
	assert.False(t, s.Modified())

	_, err = s.Redo()
	require.NoError(t, err)
	assert.True(t, s.Modified())

	// a refused command is not a change
	s.ClearModified()
	assert.Error(t, s.Execute(command.MovePoint(a, geom.Vector{})))
	assert.False(t, s.Modified())

	// nothing to redo is not a change either
	ok, err := s.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Modified())

	dst := New(nil)
	_, err = dst.Load(&buf)
	require.NoError(t, err)
	assert.False(t, dst.Modified(), "a freshly loaded scene matches its file")
}
