package visualization

import (
	"github.com/dd0wney/cluso-sphere/pkg/algorithms"
)

// HierarchicalLayout arranges nodes in rows by dependency depth: free nodes
// on the top row and every other node one row below its deepest parent.
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// Levels groups the nodes of g by depth. Each level is in ascending id order.
// A cyclic graph has no levels and returns algorithms.ErrNotDAG.
func Levels(g algorithms.Digraph) ([][]uint64, error) {
	order, err := algorithms.TopologicalSort(g)
	if err != nil {
		return nil, err
	}

	depth := make(map[uint64]int, len(order))
	deepest := -1
	for _, id := range order {
		d := depth[id]
		if d > deepest {
			deepest = d
		}
		for _, next := range g.Successors(id) {
			if depth[next] < d+1 {
				depth[next] = d + 1
			}
		}
	}

	levels := make([][]uint64, deepest+1)
	for _, id := range g.Nodes() {
		levels[depth[id]] = append(levels[depth[id]], id)
	}
	return levels, nil
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(g algorithms.Digraph) (map[uint64]Position, error) {
	positions := make(map[uint64]Position)

	levels, err := Levels(g)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return positions, nil
	}

	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		levelWidth := hl.config.Width - 2*hl.config.Padding
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, nodeID := range level {
			x := hl.config.Padding + spacing*float64(nodeIdx+1)
			positions[nodeID] = Position{X: x, Y: y}
		}
	}

	return positions, nil
}
