package scene

import "github.com/dd0wney/cluso-sphere/pkg/geom"

// State is the complete value of a node at one moment. Every implementation
// is a plain comparable struct, so a State held by a command can never alias
// live node data.
type State interface {
	Variant() Variant
	Present() bool
}

type PointState struct {
	Location geom.Vector
	Exists   bool
}

type LineState struct {
	Normal geom.Vector
	Exists bool
}

type SegmentState struct {
	Start     geom.Vector
	Normal    geom.Vector
	ArcLength float64
	Exists    bool
}

type CircleState struct {
	Center geom.Vector
	Radius float64
	Exists bool
}

type AngleMarkerState struct {
	Vertex geom.Vector
	Value  float64
	Exists bool
}

type LabelState struct {
	Location geom.Vector
	Text     string
	Exists   bool
}

func (PointState) Variant() Variant       { return PointVariant }
func (LineState) Variant() Variant        { return LineVariant }
func (SegmentState) Variant() Variant     { return SegmentVariant }
func (CircleState) Variant() Variant      { return CircleVariant }
func (AngleMarkerState) Variant() Variant { return AngleMarkerVariant }
func (LabelState) Variant() Variant       { return LabelVariant }

func (s PointState) Present() bool       { return s.Exists }
func (s LineState) Present() bool        { return s.Exists }
func (s SegmentState) Present() bool     { return s.Exists }
func (s CircleState) Present() bool      { return s.Exists }
func (s AngleMarkerState) Present() bool { return s.Exists }
func (s LabelState) Present() bool       { return s.Exists }

// End is the far endpoint of the segment
func (s SegmentState) End() geom.Vector {
	return geom.PointAlong(s.Start, s.Normal, s.ArcLength)
}
