package algorithms

// Cycle represents a detected cycle as a sequence of node IDs
type Cycle []uint64

// DetectCycles finds cycles in the graph using DFS with three-color marking.
//
// Algorithm: Uses depth-first search with three colors:
//   - WHITE (0): Unvisited node
//   - GRAY (1): Currently visiting (node is in the recursion stack)
//   - BLACK (2): Finished visiting (all descendants have been explored)
//
// When we encounter a GRAY node during DFS, we've found a back edge, which indicates a cycle.
func DetectCycles(g Digraph) []Cycle {
	d := &cycleDetector{
		g:      g,
		color:  make(map[uint64]int),
		parent: make(map[uint64]uint64),
	}

	for _, id := range g.Nodes() {
		if d.color[id] == white {
			d.visit(id)
		}
	}
	return d.cycles
}

const (
	white = iota
	gray
	black
)

type cycleDetector struct {
	g      Digraph
	color  map[uint64]int
	parent map[uint64]uint64
	cycles []Cycle
}

func (d *cycleDetector) visit(id uint64) {
	d.color[id] = gray

	for _, next := range d.g.Successors(id) {
		if next == id {
			d.cycles = append(d.cycles, Cycle{id})
			continue
		}

		switch d.color[next] {
		case white:
			d.parent[next] = id
			d.visit(next)
		case gray:
			d.cycles = append(d.cycles, d.extract(next, id))
		}
	}

	d.color[id] = black
}

// extract reconstructs the cycle closed by the back edge end->start
func (d *cycleDetector) extract(start, end uint64) Cycle {
	cycle := Cycle{start}
	for current := end; current != start; {
		cycle = append(cycle, current)
		p, ok := d.parent[current]
		if !ok {
			break
		}
		current = p
	}
	return cycle
}

// Closes reports whether adding edges from each parent to child would close
// a cycle in g, i.e. whether child already reaches one of the parents.
func Closes(g Digraph, child uint64, parents []uint64) bool {
	want := make(map[uint64]bool, len(parents))
	for _, p := range parents {
		if p == child {
			return true
		}
		want[p] = true
	}
	for _, id := range Reachable(g, child) {
		if want[id] {
			return true
		}
	}
	return false
}
