package algorithms

import "sort"

// Digraph is a read-only view of a directed graph keyed by uint64 ids.
// Successors must only return ids that Nodes also returns.
type Digraph interface {
	Nodes() []uint64
	Successors(id uint64) []uint64
}

// AdjacencyList is a small in-memory Digraph, used to order snapshot records
// before they are replayed into a scene.
type AdjacencyList struct {
	edges map[uint64][]uint64
}

// NewAdjacencyList creates an empty adjacency list
func NewAdjacencyList() *AdjacencyList {
	return &AdjacencyList{edges: make(map[uint64][]uint64)}
}

// AddNode registers id with no edges. Adding an existing id is a no-op.
func (a *AdjacencyList) AddNode(id uint64) {
	if _, ok := a.edges[id]; !ok {
		a.edges[id] = nil
	}
}

// AddEdge adds from->to, registering both endpoints
func (a *AdjacencyList) AddEdge(from, to uint64) {
	a.AddNode(from)
	a.AddNode(to)
	a.edges[from] = append(a.edges[from], to)
}

// Nodes returns all ids in ascending order
func (a *AdjacencyList) Nodes() []uint64 {
	ids := make([]uint64, 0, len(a.edges))
	for id := range a.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Successors returns the targets of id's outgoing edges
func (a *AdjacencyList) Successors(id uint64) []uint64 {
	return a.edges[id]
}
