package scene

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
)

// Visitor is one operation applied across node variants by double dispatch.
// Each handler reports whether it changed the node. Visitors never trigger
// propagation; the caller marks and updates once per batch.
type Visitor interface {
	VisitPoint(p *Point) bool
	VisitLine(l *Line) bool
	VisitSegment(s *Segment) bool
	VisitCircle(c *Circle) bool
	VisitAngleMarker(m *AngleMarker) bool
	VisitLabel(l *Label) bool
}

// NoopVisitor ignores every variant. Embed it to handle only some of them.
type NoopVisitor struct{}

func (NoopVisitor) VisitPoint(*Point) bool             { return false }
func (NoopVisitor) VisitLine(*Line) bool               { return false }
func (NoopVisitor) VisitSegment(*Segment) bool         { return false }
func (NoopVisitor) VisitCircle(*Circle) bool           { return false }
func (NoopVisitor) VisitAngleMarker(*AngleMarker) bool { return false }
func (NoopVisitor) VisitLabel(*Label) bool             { return false }

// RotationVisitor rotates every stored vector of every variant. Constrained
// nodes are rotated too so their values stay consistent until the follow-up
// pass recomputes them.
type RotationVisitor struct {
	Matrix geom.Matrix
}

func (v RotationVisitor) rotate(x geom.Vector) geom.Vector {
	return geom.Rotate(v.Matrix, x)
}

func (v RotationVisitor) VisitPoint(p *Point) bool {
	p.state.Location = v.rotate(p.state.Location)
	return true
}

func (v RotationVisitor) VisitLine(l *Line) bool {
	l.state.Normal = v.rotate(l.state.Normal)
	return true
}

func (v RotationVisitor) VisitSegment(s *Segment) bool {
	s.state.Start = v.rotate(s.state.Start)
	s.state.Normal = v.rotate(s.state.Normal)
	return true
}

func (v RotationVisitor) VisitCircle(c *Circle) bool {
	c.state.Center = v.rotate(c.state.Center)
	return true
}

func (v RotationVisitor) VisitAngleMarker(m *AngleMarker) bool {
	m.state.Vertex = v.rotate(m.state.Vertex)
	return true
}

func (v RotationVisitor) VisitLabel(l *Label) bool {
	l.state.Location = v.rotate(l.state.Location)
	return true
}

// PointMover drags a free point to Location.
type PointMover struct {
	NoopVisitor
	Location geom.Vector
}

func (v PointMover) VisitPoint(p *Point) bool {
	if !p.IsFree() {
		return false
	}
	loc, ok := geom.Normalize(v.Location)
	if !ok {
		return false
	}
	p.state.Location = loc
	return true
}

// LabelMover drags a label; the next recompute snaps it onto its target.
type LabelMover struct {
	NoopVisitor
	Location geom.Vector
}

func (v LabelMover) VisitLabel(l *Label) bool {
	loc, ok := geom.Normalize(v.Location)
	if !ok {
		return false
	}
	l.state.Location = loc
	return true
}

// LineNormalSetter sets the defining normal of a free line.
type LineNormalSetter struct {
	NoopVisitor
	Normal geom.Vector
}

func (v LineNormalSetter) VisitLine(l *Line) bool {
	if !l.IsFree() {
		return false
	}
	normal, ok := geom.Normalize(v.Normal)
	if !ok {
		return false
	}
	l.state.Normal = normal
	return true
}

// SegmentNormalArcLengthSetter sets the plane and length of a free segment.
// The start point is carried onto the new plane. Arc lengths outside
// [MinimumArcLength, 2pi] are refused, the same bounds a new segment gets.
type SegmentNormalArcLengthSetter struct {
	NoopVisitor
	Normal    geom.Vector
	ArcLength float64

	tol geom.Tolerances
}

func (v SegmentNormalArcLengthSetter) bind(t geom.Tolerances) (Visitor, error) {
	if !validArcLength(t, v.ArcLength) {
		return nil, fmt.Errorf("segment arc length %g", v.ArcLength)
	}
	v.tol = t
	return v, nil
}

func (v SegmentNormalArcLengthSetter) VisitSegment(s *Segment) bool {
	if !s.IsFree() || !validArcLength(orDefault(v.tol), v.ArcLength) {
		return false
	}
	normal, ok := geom.Normalize(v.Normal)
	if !ok {
		return false
	}
	start, ok := geom.ProjectToGreatCircle(s.state.Start, normal)
	if !ok {
		start = geom.Perpendicular(normal)
	}
	s.state.Start = start
	s.state.Normal = normal
	s.state.ArcLength = v.ArcLength
	return true
}

// CircleResizer moves the center and radius of a free circle. A radius the
// graph's tolerances call degenerate is refused.
type CircleResizer struct {
	NoopVisitor
	Center geom.Vector
	Radius float64

	tol geom.Tolerances
}

func (v CircleResizer) bind(t geom.Tolerances) (Visitor, error) {
	if !t.ValidRadius(v.Radius) {
		return nil, fmt.Errorf("circle radius %g", v.Radius)
	}
	v.tol = t
	return v, nil
}

func (v CircleResizer) VisitCircle(c *Circle) bool {
	if !c.IsFree() || !orDefault(v.tol).ValidRadius(v.Radius) {
		return false
	}
	center, ok := geom.Normalize(v.Center)
	if !ok {
		return false
	}
	c.state.Center = center
	c.state.Radius = v.Radius
	return true
}

// boundedVisitor is a visitor whose parameters are limited by the graph's
// tolerances. Graph.Apply binds them before dispatch.
type boundedVisitor interface {
	Visitor
	bind(t geom.Tolerances) (Visitor, error)
}

// orDefault stands in the stock tolerances for a visitor used without a graph
func orDefault(t geom.Tolerances) geom.Tolerances {
	if t == (geom.Tolerances{}) {
		return geom.DefaultTolerances()
	}
	return t
}

func validArcLength(t geom.Tolerances, arc float64) bool {
	return arc >= t.MinimumArcLength && arc <= 2*math.Pi
}
