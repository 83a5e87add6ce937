package scene

import (
	"time"

	"github.com/dd0wney/cluso-sphere/pkg/algorithms"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
)

// Pass describes one mark/order/recompute cycle.
type Pass struct {
	// Roots are the nodes the pass was started from.
	Roots []NodeID
	// Order is every marked node in the order it was processed.
	Order []NodeID
	// Recomputed lists the constrained nodes whose recompute ran, in order.
	// Free nodes are processed but never recomputed.
	Recomputed []NodeID
	// Changed lists the recomputed nodes whose value differs afterwards.
	Changed  []NodeID
	Duration time.Duration
}

// Change is delivered to observers once per node processed by a pass.
type Change struct {
	ID         NodeID
	Name       string
	Variant    Variant
	State      State
	Recomputed bool
	Changed    bool
}

// MarkOutOfDate flags each node and everything downstream of it. The flood
// stops at nodes already flagged, so diamonds are walked once.
func (g *Graph) MarkOutOfDate(ids ...NodeID) error {
	if g.passing {
		g.refuseReentry()
		return NewError("mark").Cause(ErrReentrantPass).Err()
	}
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return notFound("mark", id)
		}
	}
	for _, id := range ids {
		g.roots[id] = struct{}{}
		g.mark(id)
	}
	return nil
}

func (g *Graph) mark(root NodeID) {
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := g.nodes[id].base()
		if b.outOfDate {
			continue
		}
		b.outOfDate = true
		g.dirty[id] = struct{}{}
		stack = append(stack, b.children...)
	}
}

// Pending returns the number of nodes currently marked out of date
func (g *Graph) Pending() int {
	return len(g.dirty)
}

// Update marks the roots and runs one propagation pass.
func (g *Graph) Update(roots ...NodeID) (Pass, error) {
	if err := g.MarkOutOfDate(roots...); err != nil {
		return Pass{}, err
	}
	return g.Propagate()
}

// Propagate recomputes every marked node exactly once, parents before
// children, smallest id first among independent nodes. With nothing marked
// it does nothing.
func (g *Graph) Propagate() (Pass, error) {
	if g.passing {
		g.refuseReentry()
		return Pass{}, NewError("propagate").Cause(ErrReentrantPass).Err()
	}
	if len(g.dirty) == 0 {
		return Pass{}, nil
	}

	g.passing = true
	defer func() { g.passing = false }()
	start := time.Now()

	members := make(map[NodeID]bool, len(g.dirty))
	for id := range g.dirty {
		members[id] = true
	}
	order, err := algorithms.TopologicalSort(subgraphView{g: g, members: members})
	if err != nil {
		g.logger.Error("marked subgraph is cyclic", logging.Error(err))
		return Pass{}, NewError("propagate").Cause(ErrCycle).Context("%v", err).Err()
	}

	pass := Pass{Roots: sortedKeys(g.roots), Order: order}
	for _, id := range order {
		n := g.nodes[id]
		b := n.base()
		b.outOfDate = false
		delete(g.dirty, id)

		if n.IsFree() {
			g.notify(n, false, true)
			continue
		}

		before := n.State()
		n.recompute(g)
		after := n.State()
		changed := before != after

		pass.Recomputed = append(pass.Recomputed, id)
		if changed {
			pass.Changed = append(pass.Changed, id)
		}
		if before.Present() != after.Present() {
			g.existenceFlipped(n, after.Present())
		}
		g.notify(n, true, changed)
	}
	g.roots = make(map[NodeID]struct{})

	pass.Duration = time.Since(start)
	if g.metrics != nil {
		g.metrics.RecordPass(len(order), len(pass.Recomputed), pass.Duration)
	}
	g.logger.Debug("propagation pass",
		logging.Int("roots", len(pass.Roots)),
		logging.Int("marked", len(order)),
		logging.Int("recomputed", len(pass.Recomputed)),
		logging.Int("changed", len(pass.Changed)),
		logging.Latency(pass.Duration),
	)
	return pass, nil
}

func (g *Graph) existenceFlipped(n Node, exists bool) {
	if g.metrics != nil {
		g.metrics.RecordExistenceChange(n.Variant().String(), exists)
	}
	if exists {
		g.logger.Debug("node reappeared", logging.NodeName(n.Name()))
		return
	}
	g.logger.Warn("node became degenerate", logging.NodeName(n.Name()), logging.Variant(n.Variant().String()))
}

func (g *Graph) refuseReentry() {
	if g.metrics != nil {
		g.metrics.PropagationReentryRefused.Inc()
	}
}

// notify asks the plottable to redisplay and tells observers about n.
func (g *Graph) notify(n Node, recomputed, changed bool) {
	if p, ok := g.plottables[n.ID()]; ok {
		if changed {
			p.MarkDirty()
		} else {
			p.MarkClean()
		}
	}
	g.changes.Publish(n.ID(), Change{
		ID:         n.ID(),
		Name:       n.Name(),
		Variant:    n.Variant(),
		State:      n.State(),
		Recomputed: recomputed,
		Changed:    changed,
	})
}

// Subscribe registers fn for changes to one node. Observers run inside the
// pass; they may read the graph but must not mutate it.
func (g *Graph) Subscribe(id NodeID, fn func(Change)) (unsubscribe func()) {
	return g.changes.Subscribe(id, func(_ NodeID, c Change) { fn(c) })
}

// SubscribeAll registers fn for changes to every node
func (g *Graph) SubscribeAll(fn func(Change)) (unsubscribe func()) {
	return g.changes.SubscribeAll(func(_ NodeID, c Change) { fn(c) })
}

func sortedKeys(set map[NodeID]struct{}) []NodeID {
	members := make(map[NodeID]bool, len(set))
	for id := range set {
		members[id] = true
	}
	return subgraphView{members: members}.Nodes()
}
