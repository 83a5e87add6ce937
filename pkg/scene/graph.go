// Package scene is the dependency graph of geometric nodes on the unit sphere:
// the registry that owns every node, the variants and their recomputation
// rules, visitor dispatch, and the mark/order/recompute propagation pass.
//
// A Graph is not safe for concurrent use. All mutation happens synchronously
// on the caller's goroutine, one gesture at a time.
package scene

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-sphere/pkg/algorithms"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/metrics"
	"github.com/dd0wney/cluso-sphere/pkg/pubsub"
)

// Config configures a Graph. Zero values get defaults.
type Config struct {
	Tolerances geom.Tolerances
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// Graph is the registry owning every node. Parent and child links are ids
// resolved through it.
type Graph struct {
	tol     geom.Tolerances
	logger  logging.Logger
	metrics *metrics.Registry

	nodes    map[NodeID]Node
	names    map[string]NodeID
	lastID   NodeID
	counters map[Variant]int
	counts   map[Variant]int

	dirty   map[NodeID]struct{}
	roots   map[NodeID]struct{}
	passing bool

	plottables map[NodeID]Plottable
	changes    *pubsub.Bus[NodeID, Change]
	styles     map[NodeID]map[Panel]Style

	inverseRotation geom.Matrix
}

// New creates an empty graph
func New(cfg Config) *Graph {
	tol := cfg.Tolerances
	if tol == (geom.Tolerances{}) {
		tol = geom.DefaultTolerances()
	}
	return &Graph{
		tol:             tol,
		logger:          logging.OrNop(cfg.Logger).With(logging.Component("scene")),
		metrics:         cfg.Metrics,
		nodes:           make(map[NodeID]Node),
		names:           make(map[string]NodeID),
		counters:        make(map[Variant]int),
		counts:          make(map[Variant]int),
		dirty:           make(map[NodeID]struct{}),
		roots:           make(map[NodeID]struct{}),
		plottables:      make(map[NodeID]Plottable),
		changes:         pubsub.NewBus[NodeID, Change](),
		styles:          make(map[NodeID]map[Panel]Style),
		inverseRotation: geom.Identity(),
	}
}

// Tolerances returns the degeneracy thresholds in use
func (g *Graph) Tolerances() geom.Tolerances {
	return g.tol
}

type parentRule []map[Variant]bool

func variantSet(vs ...Variant) map[Variant]bool {
	set := make(map[Variant]bool, len(vs))
	for _, v := range vs {
		set[v] = true
	}
	return set
}

var (
	points   = variantSet(PointVariant)
	straight = variantSet(LineVariant, SegmentVariant)
	curves   = variantSet(LineVariant, SegmentVariant, CircleVariant)
	anchors  = variantSet(PointVariant, LineVariant, SegmentVariant, CircleVariant, AngleMarkerVariant)
)

// constructions lists the legal constructions per variant and what each
// parent position may be.
var constructions = map[Variant]map[Construction]parentRule{
	PointVariant: {
		Free:           nil,
		AntipodeOf:     {points},
		IntersectionOf: {curves, curves},
	},
	LineVariant: {
		Free:            nil,
		ThroughPoints:   {points, points},
		PerpendicularTo: {straight, points},
	},
	SegmentVariant: {
		Free:          nil,
		ThroughPoints: {points, points},
	},
	CircleVariant: {
		Free:          nil,
		ThroughPoints: {points, points},
	},
	AngleMarkerVariant: {
		FromPoints: {points, points, points},
		FromLines:  {straight, straight},
	},
	LabelVariant: {
		AnchoredTo: {anchors},
	},
}

// NewNode validates spec against the registry and builds the node with its
// initial value. The node is not registered; pass it to Insert (normally via
// a command). A rejected spec leaves the graph untouched and consumes no id.
func (g *Graph) NewNode(spec NodeSpec) (Node, error) {
	if err := g.checkSpec(spec); err != nil {
		return nil, err
	}

	id := spec.ID
	if id == 0 {
		id = g.lastID + 1
	}
	name := fmt.Sprintf("%s-%d", namePrefix[spec.Variant], g.counters[spec.Variant]+1)

	n, err := g.build(id, name, spec)
	if err != nil {
		return nil, NewError("create").ID(id).Cause(err).Err()
	}

	g.lastID = id
	g.counters[spec.Variant]++
	return n, nil
}

func (g *Graph) checkSpec(spec NodeSpec) error {
	rules, ok := constructions[spec.Variant]
	if !ok {
		return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).Context("variant %s", spec.Variant).Err()
	}
	rule, ok := rules[spec.Construction]
	if !ok {
		return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).
			Context("%s cannot be built as %q", spec.Variant, spec.Construction).Err()
	}

	// Cycle check runs before anything else looks at the parents.
	if spec.ID != 0 && algorithms.Closes(registryView{g}, spec.ID, spec.Parents) {
		return NewError("create").ID(spec.ID).Cause(ErrCycle).Err()
	}
	if spec.ID != 0 && spec.ID <= g.lastID {
		return NewError("create").ID(spec.ID).Cause(ErrDuplicateID).Err()
	}

	if len(spec.Parents) != len(rule) {
		return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).
			Context("%s %s needs %d parents, got %d", spec.Construction, spec.Variant, len(rule), len(spec.Parents)).Err()
	}
	seen := make(map[NodeID]bool, len(spec.Parents))
	for i, pid := range spec.Parents {
		if seen[pid] {
			return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).Context("parent %d repeated", pid).Err()
		}
		seen[pid] = true

		parent, ok := g.nodes[pid]
		if !ok {
			return NewError("create").ID(spec.ID).Cause(ErrDanglingParent).Context("parent %d", pid).Err()
		}
		if !rule[i][parent.Variant()] {
			return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).
				Context("parent %s cannot be used by %s %s", parent.Name(), spec.Construction, spec.Variant).Err()
		}
		if spec.Variant == LabelVariant && parent.base().label != 0 {
			return NewError("create").Node(parent).Cause(ErrLabelExists).Err()
		}
	}

	if spec.Construction == IntersectionOf && spec.Params.Index != 0 && spec.Params.Index != 1 {
		return NewError("create").ID(spec.ID).Cause(ErrInvalidSpec).Context("intersection index %d", spec.Params.Index).Err()
	}
	return nil
}

func (g *Graph) build(id NodeID, name string, spec NodeSpec) (Node, error) {
	b := newNodule(id, name, spec)
	free := spec.Construction == Free
	p := spec.Params

	var n Node
	switch spec.Variant {
	case PointVariant:
		pt := &Point{nodule: b}
		if free {
			loc, ok := geom.Normalize(p.Location)
			if !ok {
				return nil, fmt.Errorf("%w: point location is zero", ErrInvalidSpec)
			}
			pt.state = PointState{Location: loc, Exists: true}
		}
		n = pt

	case LineVariant:
		l := &Line{nodule: b}
		if free {
			normal, ok := geom.Normalize(p.Normal)
			if !ok {
				return nil, fmt.Errorf("%w: line normal is zero", ErrInvalidSpec)
			}
			l.state = LineState{Normal: normal, Exists: true}
		}
		n = l

	case SegmentVariant:
		s := &Segment{nodule: b}
		if free {
			normal, ok := geom.Normalize(p.Normal)
			if !ok {
				return nil, fmt.Errorf("%w: segment normal is zero", ErrInvalidSpec)
			}
			start, ok := geom.ProjectToGreatCircle(p.Start, normal)
			if !ok {
				return nil, fmt.Errorf("%w: segment start is a pole of its plane", ErrInvalidSpec)
			}
			if !validArcLength(g.tol, p.ArcLength) {
				return nil, fmt.Errorf("%w: segment arc length %g", ErrInvalidSpec, p.ArcLength)
			}
			s.state = SegmentState{Start: start, Normal: normal, ArcLength: p.ArcLength, Exists: true}
		}
		n = s

	case CircleVariant:
		c := &Circle{nodule: b}
		if free {
			center, ok := geom.Normalize(p.Center)
			if !ok {
				return nil, fmt.Errorf("%w: circle center is zero", ErrInvalidSpec)
			}
			if !g.tol.ValidRadius(p.Radius) {
				return nil, fmt.Errorf("%w: circle radius %g", ErrInvalidSpec, p.Radius)
			}
			c.state = CircleState{Center: center, Radius: p.Radius, Exists: true}
		}
		n = c

	case AngleMarkerVariant:
		n = &AngleMarker{nodule: b}

	case LabelVariant:
		loc, _ := geom.Normalize(p.Location)
		n = &Label{nodule: b, state: LabelState{Location: loc, Text: p.Text}}
	}

	if !n.IsFree() {
		n.recompute(g)
	}
	return n, nil
}

// Insert registers n and links it as a child of each parent. It is the only
// way a node enters the registry.
func (g *Graph) Insert(n Node) error {
	if g.passing {
		return NewError("insert").Node(n).Cause(ErrReentrantPass).Err()
	}
	b := n.base()
	if _, dup := g.nodes[b.id]; dup {
		return NewError("insert").Node(n).Cause(ErrDuplicateID).Err()
	}
	if len(b.children) > 0 {
		return NewError("insert").Node(n).Cause(ErrHasDependents).Context("node still lists %d children", len(b.children)).Err()
	}
	for _, pid := range b.parents {
		if _, ok := g.nodes[pid]; !ok {
			return NewError("insert").Node(n).Cause(ErrDanglingParent).Context("parent %d", pid).Err()
		}
	}
	if algorithms.Closes(registryView{g}, b.id, b.parents) {
		return NewError("insert").Node(n).Cause(ErrCycle).Err()
	}
	if b.variant == LabelVariant {
		if target := g.nodes[b.parents[0]].base(); target.label != 0 && target.label != b.id {
			return NewError("insert").Node(n).Cause(ErrLabelExists).Err()
		}
	}

	g.nodes[b.id] = n
	g.names[b.name] = b.id
	for _, pid := range b.parents {
		g.nodes[pid].base().addChild(b.id)
	}
	if b.variant == LabelVariant {
		g.nodes[b.parents[0]].base().label = b.id
	}
	if b.id > g.lastID {
		g.lastID = b.id
	}
	if b.styles != nil {
		g.styles[b.id] = b.styles
	} else {
		g.styles[b.id] = defaultStyles(b.variant)
	}
	if b.plot != nil {
		g.plottables[b.id] = b.plot
	}
	b.styles, b.plot = nil, nil
	g.count(b.variant, 1)

	g.logger.Debug("node inserted", logging.NodeID(b.id), logging.NodeName(b.name), logging.Variant(b.variant.String()))
	return nil
}

// Remove unregisters a node with no dependents and unlinks it from its
// parents. The removed node is returned so a command can re-insert it; it
// takes its styles and attached visual along, and gets them back on Insert.
func (g *Graph) Remove(id NodeID) (Node, error) {
	if g.passing {
		return nil, NewError("remove").ID(id).Cause(ErrReentrantPass).Err()
	}
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("remove", id)
	}
	b := n.base()
	if len(b.children) > 0 {
		return nil, NewError("remove").Node(n).Cause(ErrHasDependents).Context("%d children", len(b.children)).Err()
	}

	for _, pid := range b.parents {
		parent := g.nodes[pid].base()
		parent.removeChild(id)
		if parent.label == id {
			parent.label = 0
		}
	}
	b.styles = g.styles[id]
	b.plot = g.plottables[id]
	delete(g.styles, id)
	delete(g.plottables, id)
	delete(g.nodes, id)
	delete(g.names, b.name)
	delete(g.dirty, id)
	delete(g.roots, id)
	b.outOfDate = false
	g.count(b.variant, -1)

	g.logger.Debug("node removed", logging.NodeID(id), logging.NodeName(b.name))
	return n, nil
}

func (g *Graph) count(v Variant, delta int) {
	g.counts[v] += delta
	if g.metrics != nil {
		g.metrics.SetNodeCount(v.String(), g.counts[v])
	}
}

// Get returns the registered node with the given id
func (g *Graph) Get(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("get", id)
	}
	return n, nil
}

// MustGet is Get for ids known to be registered. It panics otherwise.
func (g *Graph) MustGet(id NodeID) Node {
	n, err := g.Get(id)
	if err != nil {
		panic(err)
	}
	return n
}

// Lookup finds a node by name
func (g *Graph) Lookup(name string) (Node, error) {
	id, ok := g.names[name]
	if !ok {
		return nil, NewError("lookup").Cause(ErrNodeNotFound).Context("name %q", name).Err()
	}
	return g.nodes[id], nil
}

// Has reports whether id is registered
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of registered nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Count returns the number of registered nodes of one variant
func (g *Graph) Count(v Variant) int {
	return g.counts[v]
}

// IDs returns every registered id in ascending order
func (g *Graph) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Nodes returns every registered node in id order
func (g *Graph) Nodes() []Node {
	ids := g.IDs()
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// FreeIDs returns the ids of all free nodes in ascending order
func (g *Graph) FreeIDs() []NodeID {
	var ids []NodeID
	for _, id := range g.IDs() {
		if g.nodes[id].IsFree() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Closure returns id and all of its descendants in topological order,
// parents before children.
func (g *Graph) Closure(id NodeID) ([]NodeID, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, notFound("closure", id)
	}
	members := make(map[NodeID]bool)
	for _, d := range algorithms.Reachable(registryView{g}, id) {
		members[d] = true
	}
	order, err := algorithms.TopologicalSort(subgraphView{g: g, members: members})
	if err != nil {
		return nil, NewError("closure").ID(id).Cause(ErrCycle).Context("%v", err).Err()
	}
	return order, nil
}

// LabelOf returns the label attached to id
func (g *Graph) LabelOf(id NodeID) (*Label, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("label", id)
	}
	lid := n.base().label
	if lid == 0 {
		return nil, NewError("label").Node(n).Cause(ErrMissingLabel).Err()
	}
	return g.nodes[lid].(*Label), nil
}

// Digraph returns a read-only view of the registry with an edge from each
// parent to each of its children.
func (g *Graph) Digraph() algorithms.Digraph {
	return registryView{g}
}

// registryView exposes the registry as a Digraph with parent->child edges.
type registryView struct {
	g *Graph
}

func (v registryView) Nodes() []uint64 {
	return v.g.IDs()
}

func (v registryView) Successors(id uint64) []uint64 {
	n, ok := v.g.nodes[id]
	if !ok {
		return nil
	}
	return n.base().children
}

// subgraphView restricts registryView to a member set.
type subgraphView struct {
	g       *Graph
	members map[NodeID]bool
}

func (v subgraphView) Nodes() []uint64 {
	ids := make([]uint64, 0, len(v.members))
	for id := range v.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (v subgraphView) Successors(id uint64) []uint64 {
	n, ok := v.g.nodes[id]
	if !ok {
		return nil
	}
	var out []uint64
	for _, c := range n.base().children {
		if v.members[c] {
			out = append(out, c)
		}
	}
	return out
}
