package scene

import (
	"sort"
)

// Node is a geometric entity in the dependency graph. The set of
// implementations is closed: Point, Line, Segment, Circle, AngleMarker and
// Label. All value writes go through visitors, RestoreState or recompute.
type Node interface {
	ID() NodeID
	Name() string
	Variant() Variant
	Construction() Construction
	// Parents returns the ordered parent ids.
	Parents() []NodeID
	// Children returns the ids of registered dependents in ascending order.
	Children() []NodeID
	// IsFree reports whether the node has no parents and accepts direct writes.
	IsFree() bool
	Exists() bool
	OutOfDate() bool
	Selected() bool
	Glowing() bool
	Showing() bool
	// State returns a copy of the current value.
	State() State
	// Spec returns a description that rebuilds this node with its current
	// free parameters.
	Spec() NodeSpec
	// Accept double-dispatches v to the variant handler and returns whether
	// the node's value changed.
	Accept(v Visitor) bool

	base() *nodule
	recompute(g *Graph)
	restore(s State) error
}

// nodule holds what every variant shares: identity, links and flags.
type nodule struct {
	id           NodeID
	name         string
	variant      Variant
	construction Construction
	parents      []NodeID
	children     []NodeID
	params       Params
	label        NodeID

	outOfDate bool
	selected  bool
	glowing   bool
	showing   bool

	// styles and plot are held here while the node is out of the registry
	styles map[Panel]Style
	plot   Plottable
}

func newNodule(id NodeID, name string, spec NodeSpec) nodule {
	return nodule{
		id:           id,
		name:         name,
		variant:      spec.Variant,
		construction: spec.Construction,
		parents:      append([]NodeID(nil), spec.Parents...),
		params:       spec.Params,
		showing:      true,
	}
}

func (n *nodule) ID() NodeID                 { return n.id }
func (n *nodule) Name() string               { return n.name }
func (n *nodule) Variant() Variant           { return n.variant }
func (n *nodule) Construction() Construction { return n.construction }
func (n *nodule) IsFree() bool               { return len(n.parents) == 0 }
func (n *nodule) OutOfDate() bool            { return n.outOfDate }
func (n *nodule) Selected() bool             { return n.selected }
func (n *nodule) Glowing() bool              { return n.glowing }
func (n *nodule) Showing() bool              { return n.showing }
func (n *nodule) base() *nodule              { return n }

func (n *nodule) Parents() []NodeID {
	return append([]NodeID(nil), n.parents...)
}

func (n *nodule) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

// spec returns the construction part of a NodeSpec; variants fill in their
// current free values on top of it.
func (n *nodule) spec() NodeSpec {
	return NodeSpec{
		ID:           n.id,
		Variant:      n.variant,
		Construction: n.construction,
		Parents:      n.Parents(),
		Params:       n.params,
	}
}

func (n *nodule) addChild(id NodeID) {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i] >= id })
	if i < len(n.children) && n.children[i] == id {
		return
	}
	n.children = append(n.children, 0)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = id
}

func (n *nodule) removeChild(id NodeID) {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i] >= id })
	if i < len(n.children) && n.children[i] == id {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
}
