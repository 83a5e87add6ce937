package algorithms

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrNotDAG is returned when an ordering is requested over a cyclic graph
var ErrNotDAG = errors.New("graph contains cycles")

// IsDAG checks if the graph is a Directed Acyclic Graph
func IsDAG(g Digraph) bool {
	return len(DetectCycles(g)) == 0
}

// TopologicalSort returns the nodes of g in topological order using Kahn's
// algorithm. For every edge u->v, u comes before v. Among nodes that are ready
// at the same time the smallest id is emitted first, so the order is fully
// determined by the graph.
func TopologicalSort(g Digraph) ([]uint64, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return []uint64{}, nil
	}

	inDegree := make(map[uint64]int, len(nodes))
	for _, id := range nodes {
		inDegree[id] += 0
		for _, next := range g.Successors(id) {
			inDegree[next]++
		}
	}

	ready := &idHeap{}
	for _, id := range nodes {
		if inDegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	sorted := make([]uint64, 0, len(nodes))
	for ready.Len() > 0 {
		current := heap.Pop(ready).(uint64)
		sorted = append(sorted, current)

		for _, next := range g.Successors(current) {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(sorted) != len(nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes could not be ordered", ErrNotDAG, len(nodes)-len(sorted), len(nodes))
	}
	return sorted, nil
}

// Reachable returns every node reachable from the roots by following edges,
// the roots themselves included, in ascending id order.
func Reachable(g Digraph, roots ...uint64) []uint64 {
	visited := make(map[uint64]bool)
	stack := append([]uint64(nil), roots...)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, next := range g.Successors(current) {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}

	out := make(idHeap, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	heap.Init(&out)
	sorted := make([]uint64, 0, len(out))
	for out.Len() > 0 {
		sorted = append(sorted, heap.Pop(&out).(uint64))
	}
	return sorted
}

// idHeap is a min-heap of node ids
type idHeap []uint64

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *idHeap) Push(x any) {
	*h = append(*h, x.(uint64))
}

func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
