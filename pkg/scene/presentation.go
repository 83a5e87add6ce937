package scene

// Plottable is the rendering layer's handle on a node's visual.
type Plottable interface {
	MarkDirty()
	MarkClean()
}

// Attach associates a visual with a node. After each pass that processes the
// node the visual is marked dirty if the value changed and clean otherwise.
func (g *Graph) Attach(id NodeID, p Plottable) error {
	if _, ok := g.nodes[id]; !ok {
		return notFound("attach", id)
	}
	g.plottables[id] = p
	return nil
}

// Detach drops the visual of a node
func (g *Graph) Detach(id NodeID) {
	delete(g.plottables, id)
}

// Select makes ids the selection, clearing every other node.
func (g *Graph) Select(ids ...NodeID) error {
	want := make(map[NodeID]bool, len(ids))
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return notFound("select", id)
		}
		want[id] = true
	}
	for id, n := range g.nodes {
		n.base().selected = want[id]
	}
	return nil
}

// Selection returns the selected ids in ascending order
func (g *Graph) Selection() []NodeID {
	var ids []NodeID
	for _, id := range g.IDs() {
		if g.nodes[id].Selected() {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetGlowing sets the hover highlight of one node
func (g *Graph) SetGlowing(id NodeID, glowing bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("glow", id)
	}
	n.base().glowing = glowing
	return nil
}

// UnglowAll clears the highlight of every node
func (g *Graph) UnglowAll() {
	for _, n := range g.nodes {
		n.base().glowing = false
	}
}

// SetShowing hides or shows a node without affecting its existence
func (g *Graph) SetShowing(id NodeID, showing bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("show", id)
	}
	n.base().showing = showing
	if p, ok := g.plottables[id]; ok {
		p.MarkDirty()
	}
	return nil
}
