package scene

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
)

const eps = 1e-9

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	return New(Config{})
}

func vec(x, y, z float64) geom.Vector {
	return geom.Vector{X: x, Y: y, Z: z}
}

func near(a, b geom.Vector) bool {
	return a.Sub(b).Length() < eps
}

// add builds, inserts and propagates a node, failing the test on error
func add(t *testing.T, g *Graph, spec NodeSpec) Node {
	t.Helper()
	n, err := g.NewNode(spec)
	if err != nil {
		t.Fatalf("NewNode(%+v) failed: %v", spec, err)
	}
	if err := g.Insert(n); err != nil {
		t.Fatalf("Insert(%s) failed: %v", n.Name(), err)
	}
	if _, err := g.Update(n.ID()); err != nil {
		t.Fatalf("Update(%s) failed: %v", n.Name(), err)
	}
	return n
}

func freePoint(t *testing.T, g *Graph, x, y, z float64) *Point {
	t.Helper()
	return add(t, g, NodeSpec{Variant: PointVariant, Construction: Free, Params: Params{Location: vec(x, y, z)}}).(*Point)
}

func lineThrough(t *testing.T, g *Graph, a, b NodeID) *Line {
	t.Helper()
	return add(t, g, NodeSpec{Variant: LineVariant, Construction: ThroughPoints, Parents: []NodeID{a, b}}).(*Line)
}

// move drags a free point and propagates
func move(t *testing.T, g *Graph, id NodeID, x, y, z float64) Pass {
	t.Helper()
	if err := g.Apply(id, PointMover{Location: vec(x, y, z)}); err != nil {
		t.Fatalf("Apply(PointMover) failed: %v", err)
	}
	pass, err := g.Update(id)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return pass
}

// diamond builds A(1) free, E(2) free, B(3)=antipode(A), C(4)=line(A,E),
// D(5)=perpendicular(C through B): A reaches D through both B and C.
func diamond(t *testing.T, g *Graph) (a, e, b, c, d Node) {
	t.Helper()
	a = freePoint(t, g, 1, 0, 0)
	e = freePoint(t, g, 0, 1, 0)
	b = add(t, g, NodeSpec{Variant: PointVariant, Construction: AntipodeOf, Parents: []NodeID{a.ID()}})
	c = lineThrough(t, g, a.ID(), e.ID())
	d = add(t, g, NodeSpec{Variant: LineVariant, Construction: PerpendicularTo, Parents: []NodeID{c.ID(), b.ID()}})
	return
}

type countingPlottable struct {
	dirty, clean int
}

func (p *countingPlottable) MarkDirty() { p.dirty++ }
func (p *countingPlottable) MarkClean() { p.clean++ }

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}
