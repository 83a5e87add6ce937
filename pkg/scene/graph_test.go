package scene

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewNode_NamesAndIDs(t *testing.T) {
	g := newTestGraph(t)

	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())

	if p1.ID() != 1 || p2.ID() != 2 || l.ID() != 3 {
		t.Errorf("ids = %d,%d,%d; want 1,2,3", p1.ID(), p2.ID(), l.ID())
	}
	if p1.Name() != "P-1" || p2.Name() != "P-2" || l.Name() != "L-1" {
		t.Errorf("names = %s,%s,%s", p1.Name(), p2.Name(), l.Name())
	}
	if got, err := g.Lookup("L-1"); err != nil || got.ID() != l.ID() {
		t.Errorf("Lookup(L-1) = %v, %v", got, err)
	}
}

func TestNewNode_RejectedSpecConsumesNothing(t *testing.T) {
	g := newTestGraph(t)
	p := freePoint(t, g, 0, 0, 1)

	tests := []struct {
		name string
		spec NodeSpec
		want error
	}{
		{"unknown construction", NodeSpec{Variant: PointVariant, Construction: FromLines}, ErrInvalidSpec},
		{"wrong arity", NodeSpec{Variant: LineVariant, Construction: ThroughPoints, Parents: []NodeID{p.ID()}}, ErrInvalidSpec},
		{"repeated parent", NodeSpec{Variant: LineVariant, Construction: ThroughPoints, Parents: []NodeID{p.ID(), p.ID()}}, ErrInvalidSpec},
		{"dangling parent", NodeSpec{Variant: PointVariant, Construction: AntipodeOf, Parents: []NodeID{99}}, ErrDanglingParent},
		{"wrong parent variant", NodeSpec{Variant: LineVariant, Construction: PerpendicularTo, Parents: []NodeID{p.ID(), p.ID()}}, ErrInvalidSpec},
		{"zero location", NodeSpec{Variant: PointVariant, Construction: Free}, ErrInvalidSpec},
		{"collapsed free circle", NodeSpec{Variant: CircleVariant, Construction: Free, Params: Params{Center: vec(0, 0, 1), Radius: 0}}, ErrInvalidSpec},
		{"self parent", NodeSpec{ID: 7, Variant: PointVariant, Construction: AntipodeOf, Parents: []NodeID{7}}, ErrCycle},
		{"reused id", NodeSpec{ID: 1, Variant: PointVariant, Construction: Free, Params: Params{Location: vec(1, 0, 0)}}, ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.NewNode(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	next := freePoint(t, g, 1, 0, 0)
	if next.ID() != 2 || next.Name() != "P-2" {
		t.Errorf("after rejections got %s (%d), want P-2 (2)", next.Name(), next.ID())
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestNewNode_TransitiveCycleRejected(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())

	// a node claiming P-1's id may not depend on L-1, which depends on P-1
	_, err := g.NewNode(NodeSpec{ID: p1.ID(), Variant: PointVariant, Construction: AntipodeOf, Parents: []NodeID{l.ID()}})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if !reflect.DeepEqual(p1.Children(), []NodeID{l.ID()}) {
		t.Errorf("children of P-1 changed: %v", p1.Children())
	}
}

func TestInsertLinksChildren(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())
	s := add(t, g, NodeSpec{Variant: SegmentVariant, Construction: ThroughPoints, Parents: []NodeID{p2.ID(), p1.ID()}})

	if !reflect.DeepEqual(p1.Children(), []NodeID{l.ID(), s.ID()}) {
		t.Errorf("P-1 children = %v", p1.Children())
	}
	if !reflect.DeepEqual(s.Parents(), []NodeID{p2.ID(), p1.ID()}) {
		t.Errorf("segment parents = %v, want ordered [2 1]", s.Parents())
	}
	if err := g.Insert(l); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("double insert err = %v, want ErrDuplicateID", err)
	}
}

func TestRemove(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())

	if _, err := g.Remove(p1.ID()); !errors.Is(err, ErrHasDependents) {
		t.Fatalf("removing a parent err = %v, want ErrHasDependents", err)
	}

	removed, err := g.Remove(l.ID())
	if err != nil {
		t.Fatalf("Remove(L-1) failed: %v", err)
	}
	if removed != Node(l) {
		t.Error("Remove should return the node itself")
	}
	if len(p1.Children()) != 0 || len(p2.Children()) != 0 {
		t.Errorf("children not unlinked: %v %v", p1.Children(), p2.Children())
	}
	if _, err := g.Lookup("L-1"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Lookup after remove err = %v", err)
	}

	// re-inserting restores links; ids are never reused by NewNode
	if err := g.Insert(removed); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}
	if !reflect.DeepEqual(p1.Children(), []NodeID{l.ID()}) {
		t.Errorf("children after re-insert = %v", p1.Children())
	}
	if next := freePoint(t, g, 0, 1, 0); next.ID() != 4 {
		t.Errorf("next id = %d, want 4", next.ID())
	}
}

func TestClosure(t *testing.T) {
	g := newTestGraph(t)
	a, e, b, c, d := diamond(t, g)

	got, err := g.Closure(a.ID())
	if err != nil {
		t.Fatalf("Closure failed: %v", err)
	}
	want := []NodeID{a.ID(), b.ID(), c.ID(), d.ID()}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Closure(A) = %v, want %v", got, want)
	}
	got, _ = g.Closure(e.ID())
	if !reflect.DeepEqual(got, []NodeID{e.ID(), c.ID(), d.ID()}) {
		t.Errorf("Closure(E) = %v", got)
	}
}

func TestLabels(t *testing.T) {
	g := newTestGraph(t)
	p1 := freePoint(t, g, 0, 0, 1)
	p2 := freePoint(t, g, 1, 0, 0)
	l := lineThrough(t, g, p1.ID(), p2.ID())

	if _, err := g.LabelOf(l.ID()); !errors.Is(err, ErrMissingLabel) {
		t.Fatalf("LabelOf unlabeled err = %v, want ErrMissingLabel", err)
	}

	lb := add(t, g, NodeSpec{Variant: LabelVariant, Construction: AnchoredTo, Parents: []NodeID{l.ID()}, Params: Params{Text: "equator"}}).(*Label)
	got, err := g.LabelOf(l.ID())
	if err != nil || got != lb {
		t.Fatalf("LabelOf = %v, %v", got, err)
	}
	if math.Abs(lb.Location().Dot(l.Normal())) > eps {
		t.Errorf("label %v not on line with normal %v", lb.Location(), l.Normal())
	}

	_, err = g.NewNode(NodeSpec{Variant: LabelVariant, Construction: AnchoredTo, Parents: []NodeID{l.ID()}})
	if !errors.Is(err, ErrLabelExists) {
		t.Errorf("second label err = %v, want ErrLabelExists", err)
	}
	_, err = g.NewNode(NodeSpec{Variant: LabelVariant, Construction: AnchoredTo, Parents: []NodeID{lb.ID()}})
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("label of a label err = %v, want ErrInvalidSpec", err)
	}

	if _, err := g.Remove(lb.ID()); err != nil {
		t.Fatalf("Remove(label) failed: %v", err)
	}
	if _, err := g.LabelOf(l.ID()); !errors.Is(err, ErrMissingLabel) {
		t.Errorf("LabelOf after removal err = %v", err)
	}
}

func TestGraphErrorFormatting(t *testing.T) {
	err := NewError("remove").ID(4).Cause(ErrHasDependents).Context("%d children", 2).Err()
	if got := err.Error(); got != "remove node 4 (2 children): node still has dependents" {
		t.Errorf("Error() = %q", got)
	}
	if !IsIntegrityViolation(err) {
		t.Error("ErrHasDependents is an integrity violation")
	}
	if IsIntegrityViolation(NewError("get").Cause(ErrNodeNotFound).Err()) {
		t.Error("not found is not an integrity violation")
	}
}
