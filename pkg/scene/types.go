package scene

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
)

// NodeID identifies a node for the lifetime of a Graph. IDs are handed out in
// increasing order and never reused, even after the node is removed.
type NodeID = uint64

// Variant is the closed set of node kinds.
type Variant uint8

const (
	PointVariant Variant = iota + 1
	LineVariant
	SegmentVariant
	CircleVariant
	AngleMarkerVariant
	LabelVariant
)

// Variants lists every variant in declaration order
var Variants = []Variant{PointVariant, LineVariant, SegmentVariant, CircleVariant, AngleMarkerVariant, LabelVariant}

var variantNames = map[Variant]string{
	PointVariant:       "point",
	LineVariant:        "line",
	SegmentVariant:     "segment",
	CircleVariant:      "circle",
	AngleMarkerVariant: "angle_marker",
	LabelVariant:       "label",
}

// namePrefix is the human-readable prefix of generated node names
var namePrefix = map[Variant]string{
	PointVariant:       "P",
	LineVariant:        "L",
	SegmentVariant:     "Ls",
	CircleVariant:      "C",
	AngleMarkerVariant: "Am",
	LabelVariant:       "Lb",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// ParseVariant resolves a variant name as produced by String.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, name := range variantNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidSpec, s)
}

func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, fmt.Errorf("%w: unknown variant %d", ErrInvalidSpec, uint8(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Construction names how a node's value is derived from its parents.
type Construction string

const (
	// Free nodes have no parents and take direct writes.
	Free Construction = "free"
	// AntipodeOf places a point opposite its parent point.
	AntipodeOf Construction = "antipode"
	// IntersectionOf is one of the two crossings of two curves.
	IntersectionOf Construction = "intersection"
	// ThroughPoints builds a line, segment or circle from two points.
	ThroughPoints Construction = "through_points"
	// PerpendicularTo is the line through a point perpendicular to a line.
	PerpendicularTo Construction = "perpendicular"
	// FromPoints measures the angle at a vertex point.
	FromPoints Construction = "from_points"
	// FromLines measures the angle between two great circles.
	FromLines Construction = "from_lines"
	// AnchoredTo attaches a label to a node.
	AnchoredTo Construction = "anchored"
)

// Params carries the free parameters of a node. Only the fields relevant to
// the node's variant and construction are read.
type Params struct {
	Location  geom.Vector `yaml:"location,omitempty"`
	Normal    geom.Vector `yaml:"normal,omitempty"`
	Start     geom.Vector `yaml:"start,omitempty"`
	Center    geom.Vector `yaml:"center,omitempty"`
	ArcLength float64     `yaml:"arc_length,omitempty"`
	Radius    float64     `yaml:"radius,omitempty"`
	// Index selects between the two solutions of an intersection.
	Index int    `yaml:"index,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// NodeSpec describes a node to build.
type NodeSpec struct {
	// ID requests a specific id. Zero allocates the next free one.
	ID           NodeID
	Variant      Variant
	Construction Construction
	Parents      []NodeID
	Params       Params
}
