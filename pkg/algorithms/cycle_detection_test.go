package algorithms

import (
	"testing"
)

// graphOf builds an adjacency list from edge pairs
func graphOf(edges ...[2]uint64) *AdjacencyList {
	g := NewAdjacencyList()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

// TestDetectCycles_NoCycles tests a graph with no cycles (linear path)
func TestDetectCycles_NoCycles(t *testing.T) {
	// 1 -> 2 -> 3
	g := graphOf([2]uint64{1, 2}, [2]uint64{2, 3})

	if cycles := DetectCycles(g); len(cycles) != 0 {
		t.Errorf("Expected no cycles, got %d", len(cycles))
	}
}

// TestDetectCycles_SimpleCycle tests a simple 2-node cycle
func TestDetectCycles_SimpleCycle(t *testing.T) {
	g := graphOf([2]uint64{1, 2}, [2]uint64{2, 1})

	cycles := DetectCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0]) != 2 {
		t.Errorf("Expected cycle length 2, got %d", len(cycles[0]))
	}
}

// TestDetectCycles_SelfLoop tests a self-referencing node
func TestDetectCycles_SelfLoop(t *testing.T) {
	g := graphOf([2]uint64{1, 1})

	cycles := DetectCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0]) != 1 || cycles[0][0] != 1 {
		t.Errorf("Expected cycle [1], got %v", cycles[0])
	}
}

// TestDetectCycles_TriangleCycle tests a 3-node cycle
func TestDetectCycles_TriangleCycle(t *testing.T) {
	g := graphOf([2]uint64{1, 2}, [2]uint64{2, 3}, [2]uint64{3, 1})

	cycles := DetectCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	seen := make(map[uint64]bool)
	for _, id := range cycles[0] {
		seen[id] = true
	}
	for _, id := range []uint64{1, 2, 3} {
		if !seen[id] {
			t.Errorf("Cycle %v is missing node %d", cycles[0], id)
		}
	}
}

// TestDetectCycles_Diamond has two paths to one node but no cycle
func TestDetectCycles_Diamond(t *testing.T) {
	g := graphOf([2]uint64{1, 2}, [2]uint64{1, 3}, [2]uint64{2, 4}, [2]uint64{3, 4})

	if cycles := DetectCycles(g); len(cycles) != 0 {
		t.Errorf("Diamond should be acyclic, got %v", cycles)
	}
	if !IsDAG(g) {
		t.Error("Diamond should be a DAG")
	}
}

func TestCloses(t *testing.T) {
	// 1 -> 2 -> 3, 4 isolated
	g := graphOf([2]uint64{1, 2}, [2]uint64{2, 3})
	g.AddNode(4)

	tests := []struct {
		name    string
		child   uint64
		parents []uint64
		want    bool
	}{
		{"new node", 5, []uint64{1, 3}, false},
		{"own parent", 4, []uint64{4}, true},
		{"descendant as parent", 1, []uint64{3}, true},
		{"unrelated parent", 1, []uint64{4}, false},
		{"ancestor as parent", 3, []uint64{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Closes(g, tt.child, tt.parents); got != tt.want {
				t.Errorf("Closes(%d, %v) = %v, want %v", tt.child, tt.parents, got, tt.want)
			}
		})
	}
}
