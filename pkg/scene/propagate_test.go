package scene

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPropagation_DiamondRecomputesOnce(t *testing.T) {
	g := newTestGraph(t)
	a, _, b, c, d := diamond(t, g)

	pass := move(t, g, a.ID(), 0, 0, 1)

	want := []NodeID{b.ID(), c.ID(), d.ID()}
	if !reflect.DeepEqual(pass.Recomputed, want) {
		t.Fatalf("Recomputed = %v, want %v", pass.Recomputed, want)
	}
	if !reflect.DeepEqual(pass.Order, append([]NodeID{a.ID()}, want...)) {
		t.Errorf("Order = %v", pass.Order)
	}
	for _, n := range g.Nodes() {
		if n.OutOfDate() {
			t.Errorf("%s still out of date", n.Name())
		}
	}
	if g.Pending() != 0 {
		t.Errorf("Pending() = %d after pass", g.Pending())
	}
}

func TestPropagation_DiamondValues(t *testing.T) {
	g := newTestGraph(t)
	a, _, b, c, d := diamond(t, g)

	move(t, g, a.ID(), 0, 0, 1)

	if !near(b.(*Point).Location(), vec(0, 0, -1)) {
		t.Errorf("antipode = %v", b.(*Point).Location())
	}
	// line through (0,0,1) and (0,1,0)
	if !near(c.(*Line).Normal(), vec(-1, 0, 0)) {
		t.Errorf("line normal = %v", c.(*Line).Normal())
	}
	// perpendicular through (0,0,-1): normal = B x nC
	if !near(d.(*Line).Normal(), vec(0, 1, 0)) {
		t.Errorf("perpendicular normal = %v", d.(*Line).Normal())
	}
}

func TestPropagation_OnlyMarkedSubgraph(t *testing.T) {
	g := newTestGraph(t)
	_, e, _, c, d := diamond(t, g)

	pass := move(t, g, e.ID(), 0, 1, 1)
	if !reflect.DeepEqual(pass.Recomputed, []NodeID{c.ID(), d.ID()}) {
		t.Errorf("Recomputed = %v, want [C D]", pass.Recomputed)
	}
}

func TestPropagation_SecondPassIsIdle(t *testing.T) {
	g := newTestGraph(t)
	a, _, _, _, _ := diamond(t, g)
	move(t, g, a.ID(), 0, 0.6, 0.8)

	pass, err := g.Propagate()
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	if len(pass.Order) != 0 || len(pass.Recomputed) != 0 {
		t.Errorf("idle pass did work: %+v", pass)
	}
}

func TestPropagation_RepeatedUpdateChangesNothing(t *testing.T) {
	g := newTestGraph(t)
	a, _, _, _, _ := diamond(t, g)
	move(t, g, a.ID(), 0.3, 0.4, 0.5)

	before, _ := g.States(g.IDs()...)
	pass, err := g.Update(a.ID())
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(pass.Changed) != 0 {
		t.Errorf("Changed = %v, want none", pass.Changed)
	}
	after, _ := g.States(g.IDs()...)
	if !reflect.DeepEqual(before, after) {
		t.Error("values changed without mutation")
	}
}

func TestPropagation_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	coord := gen.Float64Range(-1, 1)

	properties.Property("a second update after any drag changes no value", prop.ForAll(
		func(x, y, z float64) bool {
			g := New(Config{})
			a := mustAdd(g, NodeSpec{Variant: PointVariant, Construction: Free, Params: Params{Location: vec(1, 0, 0)}})
			e := mustAdd(g, NodeSpec{Variant: PointVariant, Construction: Free, Params: Params{Location: vec(0, 1, 0)}})
			b := mustAdd(g, NodeSpec{Variant: PointVariant, Construction: AntipodeOf, Parents: []NodeID{a}})
			s := mustAdd(g, NodeSpec{Variant: SegmentVariant, Construction: ThroughPoints, Parents: []NodeID{a, e}})
			c := mustAdd(g, NodeSpec{Variant: CircleVariant, Construction: ThroughPoints, Parents: []NodeID{e, a}})
			mustAdd(g, NodeSpec{Variant: PointVariant, Construction: IntersectionOf, Parents: []NodeID{s, c}})
			mustAdd(g, NodeSpec{Variant: AngleMarkerVariant, Construction: FromPoints, Parents: []NodeID{e, a, b}})

			if err := g.Apply(a, PointMover{Location: vec(x, y, z)}); err != nil {
				return true // zero vector: mover refuses, nothing to check
			}
			if _, err := g.Update(a); err != nil {
				return false
			}
			before, _ := g.States(g.IDs()...)
			pass, err := g.Update(a)
			if err != nil || len(pass.Changed) != 0 {
				return false
			}
			after, _ := g.States(g.IDs()...)
			return reflect.DeepEqual(before, after)
		},
		coord, coord, coord,
	))

	properties.TestingRun(t)
}

func mustAdd(g *Graph, spec NodeSpec) NodeID {
	n, err := g.NewNode(spec)
	if err != nil {
		panic(err)
	}
	if err := g.Insert(n); err != nil {
		panic(err)
	}
	if _, err := g.Update(n.ID()); err != nil {
		panic(err)
	}
	return n.ID()
}

func TestDegeneracy_AntipodalLine(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 0, 0, -1)
	l := lineThrough(t, g, p1.ID(), p2.ID())

	if l.Exists() {
		t.Fatal("line through antipodal points must not exist")
	}

	move(t, g, p2.ID(), 0, 1, 0)

	if !l.Exists() {
		t.Fatal("line should exist after moving P2")
	}
	want, _ := geom.Normalize(p1.Location().Cross(p2.Location()))
	if !near(l.Normal(), want) || !near(l.Normal(), vec(-1, 0, 0)) {
		t.Errorf("normal = %v, want %v", l.Normal(), want)
	}
}

func TestDegeneracy_PropagatesToDependents(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	p3 := freePoint(t, g, 1, 1, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())
	perp := add(t, g, NodeSpec{Variant: LineVariant, Construction: PerpendicularTo, Parents: []NodeID{l.ID(), p3.ID()}})
	lb := add(t, g, NodeSpec{Variant: LabelVariant, Construction: AnchoredTo, Parents: []NodeID{perp.ID()}})

	if !perp.Exists() || !lb.Exists() {
		t.Fatal("perpendicular and label should exist")
	}

	pass := move(t, g, p2.ID(), 0, 0, 1)
	if l.Exists() || perp.Exists() || lb.Exists() {
		t.Errorf("exists = %v %v %v, want all false", l.Exists(), perp.Exists(), lb.Exists())
	}
	if !reflect.DeepEqual(pass.Recomputed, []NodeID{l.ID(), perp.ID(), lb.ID()}) {
		t.Errorf("Recomputed = %v", pass.Recomputed)
	}

	move(t, g, p2.ID(), 1, 0, 0)
	if !l.Exists() || !perp.Exists() || !lb.Exists() {
		t.Error("dependents should reappear")
	}
}

func TestDegeneracy_CircleAndIntersection(t *testing.T) {
	g := newTestGraph(t)
	center := freePoint(t, g, 0, 0, 1)
	rim := freePoint(t, g, 1, 0, 1)
	circle := add(t, g, NodeSpec{Variant: CircleVariant, Construction: ThroughPoints, Parents: []NodeID{center.ID(), rim.ID()}}).(*Circle)
	eq := add(t, g, NodeSpec{Variant: LineVariant, Construction: Free, Params: Params{Normal: vec(0, 1, 0)}})
	x0 := add(t, g, NodeSpec{Variant: PointVariant, Construction: IntersectionOf, Parents: []NodeID{circle.ID(), eq.ID()}}).(*Point)
	x1 := add(t, g, NodeSpec{Variant: PointVariant, Construction: IntersectionOf, Parents: []NodeID{circle.ID(), eq.ID()}, Params: Params{Index: 1}}).(*Point)

	if !approx(circle.Radius(), math.Pi/4) {
		t.Errorf("radius = %v, want pi/4", circle.Radius())
	}
	if !x0.Exists() || !x1.Exists() || near(x0.Location(), x1.Location()) {
		t.Fatalf("expected two distinct intersections, got %v %v", x0.Location(), x1.Location())
	}

	move(t, g, rim.ID(), 0.001, 0, 1)
	if circle.Exists() || x0.Exists() || x1.Exists() {
		t.Error("collapsed circle and its intersections must not exist")
	}
	if !g.Has(circle.ID()) {
		t.Error("degenerate nodes stay registered")
	}
}

func TestSegment_AntipodalKeepsPlane(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 1, 0, 0)
	p2 := freePoint(t, g, 0, 1, 0)
	s := add(t, g, NodeSpec{Variant: SegmentVariant, Construction: ThroughPoints, Parents: []NodeID{p1.ID(), p2.ID()}}).(*Segment)

	if !near(s.Normal(), vec(0, 0, 1)) || !approx(s.ArcLength(), math.Pi/2) {
		t.Fatalf("segment = %+v", s.State())
	}

	move(t, g, p2.ID(), -1, 0, 0)
	if !s.Exists() {
		t.Fatal("half-circle segment should still exist")
	}
	if !near(s.Normal(), vec(0, 0, 1)) {
		t.Errorf("normal = %v, want previous plane (0,0,1)", s.Normal())
	}
	if !approx(s.ArcLength(), math.Pi) {
		t.Errorf("arc length = %v, want pi", s.ArcLength())
	}
}

func TestSegment_IntersectionOutsideArc(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 1, 0, 0)
	p2 := freePoint(t, g, 0, 1, 0)
	s := add(t, g, NodeSpec{Variant: SegmentVariant, Construction: ThroughPoints, Parents: []NodeID{p1.ID(), p2.ID()}})
	meridian := add(t, g, NodeSpec{Variant: LineVariant, Construction: Free, Params: Params{Normal: vec(1, -1, 0)}})

	x0 := add(t, g, NodeSpec{Variant: PointVariant, Construction: IntersectionOf, Parents: []NodeID{s.ID(), meridian.ID()}}).(*Point)
	x1 := add(t, g, NodeSpec{Variant: PointVariant, Construction: IntersectionOf, Parents: []NodeID{s.ID(), meridian.ID()}, Params: Params{Index: 1}}).(*Point)

	// exactly one of the two crossings lies on the quarter arc
	if x0.Exists() == x1.Exists() {
		t.Fatalf("exists = %v, %v; want exactly one", x0.Exists(), x1.Exists())
	}
	on := x0
	if x1.Exists() {
		on = x1
	}
	w, _ := geom.Normalize(vec(1, 1, 0))
	if !near(on.Location(), w) {
		t.Errorf("crossing = %v, want %v", on.Location(), w)
	}
}

func TestAngleMarkers(t *testing.T) {
	g := newTestGraph(t)
	a := freePoint(t, g, 1, 0, 0)
	v := freePoint(t, g, 0, 0, 1)
	b := freePoint(t, g, 0, 1, 0)
	m := add(t, g, NodeSpec{Variant: AngleMarkerVariant, Construction: FromPoints, Parents: []NodeID{a.ID(), v.ID(), b.ID()}}).(*AngleMarker)

	if !m.Exists() || !approx(m.Value(), math.Pi/2) || !near(m.Vertex(), vec(0, 0, 1)) {
		t.Errorf("from points = %+v", m.State())
	}

	l1 := lineThrough(t, g, v.ID(), a.ID())
	l2 := lineThrough(t, g, v.ID(), b.ID())
	ml := add(t, g, NodeSpec{Variant: AngleMarkerVariant, Construction: FromLines, Parents: []NodeID{l1.ID(), l2.ID()}}).(*AngleMarker)
	if !ml.Exists() || !approx(ml.Value(), math.Pi/2) {
		t.Errorf("from lines = %+v", ml.State())
	}

	move(t, g, a.ID(), 0, 0, -1)
	if m.Exists() {
		t.Error("angle with a side through the antipode of the vertex must not exist")
	}
}

func TestObserversAndPlottables(t *testing.T) {
	g := newTestGraph(t)
	a, e, b, c, d := diamond(t, g)

	var seen []NodeID
	unsubscribe := g.SubscribeAll(func(ch Change) { seen = append(seen, ch.ID) })
	var dChanges []Change
	g.Subscribe(d.ID(), func(ch Change) { dChanges = append(dChanges, ch) })

	plot := &countingPlottable{}
	if err := g.Attach(c.ID(), plot); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	move(t, g, a.ID(), 0, 0, 1)

	if !reflect.DeepEqual(seen, []NodeID{a.ID(), b.ID(), c.ID(), d.ID()}) {
		t.Errorf("observed %v", seen)
	}
	if len(dChanges) != 1 || !dChanges[0].Recomputed || dChanges[0].State != d.State() {
		t.Errorf("D changes = %+v", dChanges)
	}
	if plot.dirty != 1 || plot.clean != 0 {
		t.Errorf("plottable dirty=%d clean=%d", plot.dirty, plot.clean)
	}

	// E slides along C's own great circle, so C keeps its value
	unsubscribe()
	move(t, g, e.ID(), 0, 0.6, -0.8)
	if plot.dirty != 1 || plot.clean != 1 {
		t.Errorf("plottable dirty=%d clean=%d, want 1 and 1", plot.dirty, plot.clean)
	}
	if len(seen) != 4 {
		t.Errorf("unsubscribed observer still called: %v", seen)
	}
}

func TestReentrantPassRefused(t *testing.T) {
	g := newTestGraph(t)
	a, _, b, _, _ := diamond(t, g)

	var inner error
	g.Subscribe(b.ID(), func(Change) {
		_, inner = g.Update(a.ID())
	})
	move(t, g, a.ID(), 0, 0, 1)

	if !errors.Is(inner, ErrReentrantPass) {
		t.Errorf("nested Update err = %v, want ErrReentrantPass", inner)
	}
	if g.Pending() != 0 {
		t.Error("refused nested update must not leave marks")
	}
}

func TestApplyRejectsConstrainedTargets(t *testing.T) {
	g := newTestGraph(t)
	a, _, b, c, _ := diamond(t, g)

	if err := g.Apply(b.ID(), PointMover{Location: vec(0, 0, 1)}); !errors.Is(err, ErrNotMutable) {
		t.Errorf("moving an antipode err = %v, want ErrNotMutable", err)
	}
	if err := g.Apply(c.ID(), LineNormalSetter{Normal: vec(0, 0, 1)}); !errors.Is(err, ErrNotMutable) {
		t.Errorf("setting a constrained normal err = %v", err)
	}
	if err := g.Apply(a.ID(), LineNormalSetter{Normal: vec(0, 0, 1)}); !errors.Is(err, ErrNotMutable) {
		t.Errorf("line visitor on a point err = %v", err)
	}
}
