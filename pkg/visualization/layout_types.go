// Package visualization places the nodes of a dependency graph for display.
package visualization

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width   float64 // Canvas width
	Height  float64 // Canvas height
	Padding float64 // Padding from edges
}
