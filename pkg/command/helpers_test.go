package command

import (
	"testing"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) geom.Vector {
	return geom.Vector{X: x, Y: y, Z: z}
}

func pointSpec(x, y, z float64) scene.NodeSpec {
	return scene.NodeSpec{Variant: scene.PointVariant, Construction: scene.Free, Params: scene.Params{Location: vec(x, y, z)}}
}

func newStack(t *testing.T) (*scene.Graph, *Stack) {
	t.Helper()
	g := scene.New(scene.Config{})
	return g, NewStack(g, StackConfig{})
}

func addPoint(t *testing.T, s *Stack, x, y, z float64) scene.NodeID {
	t.Helper()
	c := AddNode(pointSpec(x, y, z))
	require.NoError(t, s.Execute(c))
	return c.Node().ID()
}

func addNode(t *testing.T, s *Stack, spec scene.NodeSpec) scene.NodeID {
	t.Helper()
	c := AddNode(spec)
	require.NoError(t, s.Execute(c))
	return c.Node().ID()
}

// figure builds a small scene through the stack: two free points, the line
// through them with a label, a perpendicular through the antipode of the
// first point, and a circle about the second.
func figure(t *testing.T, s *Stack) (a, e scene.NodeID) {
	t.Helper()
	a = addPoint(t, s, 1, 0, 0.2)
	e = addPoint(t, s, 0.1, 1, 0)
	b := addNode(t, s, scene.NodeSpec{Variant: scene.PointVariant, Construction: scene.AntipodeOf, Parents: []scene.NodeID{a}})
	l := addNode(t, s, scene.NodeSpec{Variant: scene.LineVariant, Construction: scene.ThroughPoints, Parents: []scene.NodeID{a, e}})
	addNode(t, s, scene.NodeSpec{Variant: scene.LabelVariant, Construction: scene.AnchoredTo, Parents: []scene.NodeID{l}, Params: scene.Params{Text: "l"}})
	addNode(t, s, scene.NodeSpec{Variant: scene.LineVariant, Construction: scene.PerpendicularTo, Parents: []scene.NodeID{l, b}})
	addNode(t, s, scene.NodeSpec{Variant: scene.CircleVariant, Construction: scene.ThroughPoints, Parents: []scene.NodeID{e, a}})
	return a, e
}

// image is everything undo must give back: values, flags and links.
type image struct {
	states   map[scene.NodeID]scene.State
	children map[scene.NodeID][]scene.NodeID
	parents  map[scene.NodeID][]scene.NodeID
}

func capture(t *testing.T, g *scene.Graph) image {
	t.Helper()
	states, err := g.States(g.IDs()...)
	require.NoError(t, err)
	img := image{
		states:   states,
		children: make(map[scene.NodeID][]scene.NodeID),
		parents:  make(map[scene.NodeID][]scene.NodeID),
	}
	for _, n := range g.Nodes() {
		img.children[n.ID()] = n.Children()
		img.parents[n.ID()] = n.Parents()
		require.False(t, n.OutOfDate(), "%s left out of date", n.Name())
	}
	return img
}
