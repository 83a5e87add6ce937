package scene

import (
	"github.com/dd0wney/cluso-sphere/pkg/geom"
)

// Apply dispatches v to one node. It does not propagate.
func (g *Graph) Apply(id NodeID, v Visitor) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("apply", id)
	}
	if g.passing {
		return NewError("apply").Node(n).Cause(ErrReentrantPass).Err()
	}
	if bv, ok := v.(boundedVisitor); ok {
		bound, err := bv.bind(g.tol)
		if err != nil {
			return NewError("apply").Node(n).Cause(ErrInvalidSpec).Context("%v", err).Err()
		}
		v = bound
	}
	if !n.Accept(v) {
		return NewError("apply").Node(n).Cause(ErrNotMutable).Err()
	}
	return nil
}

// States returns a copy of the current state of each id
func (g *Graph) States(ids ...NodeID) (map[NodeID]State, error) {
	out := make(map[NodeID]State, len(ids))
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			return nil, notFound("snapshot", id)
		}
		out[id] = n.State()
	}
	return out, nil
}

// RestoreState overwrites a node's value. It does not propagate.
func (g *Graph) RestoreState(id NodeID, s State) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("restore", id)
	}
	if g.passing {
		return NewError("restore").Node(n).Cause(ErrReentrantPass).Err()
	}
	return n.restore(s)
}

// Rotate turns the whole sphere by m: every node is rotated by the rotation
// visitor (lines, segments, circles, angle markers and labels first, then
// points), then one pass runs from all free nodes.
func (g *Graph) Rotate(m geom.Matrix) (Pass, error) {
	if g.passing {
		g.refuseReentry()
		return Pass{}, NewError("rotate").Cause(ErrReentrantPass).Err()
	}

	v := RotationVisitor{Matrix: m}
	byVariant := make(map[Variant][]Node)
	for _, n := range g.Nodes() {
		byVariant[n.Variant()] = append(byVariant[n.Variant()], n)
	}
	for _, variant := range []Variant{LineVariant, SegmentVariant, CircleVariant, AngleMarkerVariant, LabelVariant, PointVariant} {
		for _, n := range byVariant[variant] {
			n.Accept(v)
		}
	}
	g.inverseRotation = g.inverseRotation.Mul(m.Inverse())

	return g.Update(g.FreeIDs()...)
}

// InverseRotation undoes every rotation applied so far
func (g *Graph) InverseRotation() geom.Matrix {
	return g.inverseRotation
}

// SetInverseRotation restores the accumulated rotation, used when a rotation
// is undone from a saved state.
func (g *Graph) SetInverseRotation(m geom.Matrix) {
	g.inverseRotation = m
}
