package scene

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
)

// curve is implemented by the variants an intersection can be built from.
type curve interface {
	Node
	circle() (pole geom.Vector, radius float64)
	onCurve(x geom.Vector, tol geom.Tolerances) bool
}

// greatCircle is implemented by Line and Segment.
type greatCircle interface {
	Node
	pole() geom.Vector
}

func mismatch(n Node, s State) error {
	return NewError("restore").Node(n).Cause(ErrStateMismatch).
		Context("got %s state", s.Variant()).Err()
}

// Point is a location on the sphere.
type Point struct {
	nodule
	state PointState
}

func (p *Point) Exists() bool          { return p.state.Exists }
func (p *Point) State() State          { return p.state }
func (p *Point) Location() geom.Vector { return p.state.Location }
func (p *Point) Accept(v Visitor) bool { return v.VisitPoint(p) }

func (p *Point) Spec() NodeSpec {
	s := p.spec()
	if p.IsFree() {
		s.Params.Location = p.state.Location
	}
	return s
}

func (p *Point) restore(s State) error {
	ps, ok := s.(PointState)
	if !ok {
		return mismatch(p, s)
	}
	p.state = ps
	return nil
}

func (p *Point) recompute(g *Graph) {
	switch p.construction {
	case AntipodeOf:
		parent := g.nodes[p.parents[0]].(*Point)
		if !parent.state.Exists {
			p.state.Exists = false
			return
		}
		p.state = PointState{Location: geom.Antipode(parent.state.Location), Exists: true}

	case IntersectionOf:
		a := g.nodes[p.parents[0]].(curve)
		b := g.nodes[p.parents[1]].(curve)
		if !a.Exists() || !b.Exists() {
			p.state.Exists = false
			return
		}
		poleA, radiusA := a.circle()
		poleB, radiusB := b.circle()
		first, second, ok := geom.IntersectCircles(poleA, radiusA, poleB, radiusB, g.tol.Zero)
		if !ok {
			p.state.Exists = false
			return
		}
		x := first
		if p.params.Index == 1 {
			x = second
		}
		p.state = PointState{Location: x, Exists: a.onCurve(x, g.tol) && b.onCurve(x, g.tol)}
	}
}

// Line is a full great circle, stored as its unit normal.
type Line struct {
	nodule
	state LineState
}

func (l *Line) Exists() bool          { return l.state.Exists }
func (l *Line) State() State          { return l.state }
func (l *Line) Normal() geom.Vector   { return l.state.Normal }
func (l *Line) Accept(v Visitor) bool { return v.VisitLine(l) }

func (l *Line) pole() geom.Vector                           { return l.state.Normal }
func (l *Line) circle() (geom.Vector, float64)              { return l.state.Normal, math.Pi / 2 }
func (l *Line) onCurve(geom.Vector, geom.Tolerances) bool { return true }

func (l *Line) Spec() NodeSpec {
	s := l.spec()
	if l.IsFree() {
		s.Params.Normal = l.state.Normal
	}
	return s
}

func (l *Line) restore(s State) error {
	ls, ok := s.(LineState)
	if !ok {
		return mismatch(l, s)
	}
	l.state = ls
	return nil
}

func (l *Line) recompute(g *Graph) {
	switch l.construction {
	case ThroughPoints:
		a := g.nodes[l.parents[0]].(*Point)
		b := g.nodes[l.parents[1]].(*Point)
		if !a.state.Exists || !b.state.Exists || !g.tol.DefinesGreatCircle(a.state.Location, b.state.Location) {
			l.state.Exists = false
			return
		}
		normal, ok := geom.Normalize(a.state.Location.Cross(b.state.Location))
		l.state = LineState{Normal: normal, Exists: ok}

	case PerpendicularTo:
		base := g.nodes[l.parents[0]].(greatCircle)
		through := g.nodes[l.parents[1]].(*Point)
		if !base.Exists() || !through.state.Exists {
			l.state.Exists = false
			return
		}
		// A point at a pole of the base line lies on every perpendicular.
		if !g.tol.DefinesGreatCircle(through.state.Location, base.pole()) {
			l.state.Exists = false
			return
		}
		normal, ok := geom.Normalize(through.state.Location.Cross(base.pole()))
		l.state = LineState{Normal: normal, Exists: ok}
	}
}

// Segment is an arc of a great circle from Start, counterclockwise about
// Normal, of length ArcLength.
type Segment struct {
	nodule
	state SegmentState
}

func (s *Segment) Exists() bool          { return s.state.Exists }
func (s *Segment) State() State          { return s.state }
func (s *Segment) Start() geom.Vector    { return s.state.Start }
func (s *Segment) End() geom.Vector      { return s.state.End() }
func (s *Segment) Normal() geom.Vector   { return s.state.Normal }
func (s *Segment) ArcLength() float64    { return s.state.ArcLength }
func (s *Segment) Accept(v Visitor) bool { return v.VisitSegment(s) }

func (s *Segment) pole() geom.Vector              { return s.state.Normal }
func (s *Segment) circle() (geom.Vector, float64) { return s.state.Normal, math.Pi / 2 }

func (s *Segment) onCurve(x geom.Vector, tol geom.Tolerances) bool {
	return geom.ArcPosition(x, s.state.Start, s.state.Normal) <= s.state.ArcLength+tol.Zero
}

func (s *Segment) Spec() NodeSpec {
	spec := s.spec()
	if s.IsFree() {
		spec.Params.Start = s.state.Start
		spec.Params.Normal = s.state.Normal
		spec.Params.ArcLength = s.state.ArcLength
	}
	return spec
}

func (s *Segment) restore(st State) error {
	ss, ok := st.(SegmentState)
	if !ok {
		return mismatch(s, st)
	}
	s.state = ss
	return nil
}

func (s *Segment) recompute(g *Graph) {
	if s.construction != ThroughPoints {
		return
	}
	a := g.nodes[s.parents[0]].(*Point)
	b := g.nodes[s.parents[1]].(*Point)
	if !a.state.Exists || !b.state.Exists || g.tol.Coincident(a.state.Location, b.state.Location) {
		s.state.Exists = false
		return
	}

	start, end := a.state.Location, b.state.Location
	var normal geom.Vector
	if g.tol.Antipodal(start, end) {
		normal = s.keptNormal(start, g.tol)
	} else {
		normal, _ = geom.Normalize(start.Cross(end))
	}
	s.state = SegmentState{
		Start:     start,
		Normal:    normal,
		ArcLength: geom.AngleBetween(start, end),
		Exists:    true,
	}
}

// keptNormal picks the plane of a half circle between nearly antipodal
// endpoints: the previous plane when it still contains start, else the
// previous normal projected to be orthogonal to start.
func (s *Segment) keptNormal(start geom.Vector, tol geom.Tolerances) geom.Vector {
	prev := s.state.Normal
	if math.Abs(prev.Length()-1) < tol.Zero && tol.IsZero(prev.Dot(start)) {
		return prev
	}
	if n, ok := geom.ProjectToGreatCircle(prev, start); ok {
		return n
	}
	return geom.Perpendicular(start)
}

// Circle is a small circle: all points at angle Radius from Center.
type Circle struct {
	nodule
	state CircleState
}

func (c *Circle) Exists() bool          { return c.state.Exists }
func (c *Circle) State() State          { return c.state }
func (c *Circle) Center() geom.Vector   { return c.state.Center }
func (c *Circle) Radius() float64       { return c.state.Radius }
func (c *Circle) Accept(v Visitor) bool { return v.VisitCircle(c) }

func (c *Circle) circle() (geom.Vector, float64)             { return c.state.Center, c.state.Radius }
func (c *Circle) onCurve(geom.Vector, geom.Tolerances) bool { return true }

func (c *Circle) Spec() NodeSpec {
	s := c.spec()
	if c.IsFree() {
		s.Params.Center = c.state.Center
		s.Params.Radius = c.state.Radius
	}
	return s
}

func (c *Circle) restore(s State) error {
	cs, ok := s.(CircleState)
	if !ok {
		return mismatch(c, s)
	}
	c.state = cs
	return nil
}

func (c *Circle) recompute(g *Graph) {
	if c.construction != ThroughPoints {
		return
	}
	center := g.nodes[c.parents[0]].(*Point)
	through := g.nodes[c.parents[1]].(*Point)
	if !center.state.Exists || !through.state.Exists {
		c.state.Exists = false
		return
	}
	radius := geom.AngleBetween(center.state.Location, through.state.Location)
	c.state = CircleState{
		Center: center.state.Location,
		Radius: radius,
		Exists: g.tol.ValidRadius(radius),
	}
}

// AngleMarker measures an angle on the sphere.
type AngleMarker struct {
	nodule
	state AngleMarkerState
}

func (m *AngleMarker) Exists() bool          { return m.state.Exists }
func (m *AngleMarker) State() State          { return m.state }
func (m *AngleMarker) Vertex() geom.Vector   { return m.state.Vertex }
func (m *AngleMarker) Value() float64        { return m.state.Value }
func (m *AngleMarker) Accept(v Visitor) bool { return v.VisitAngleMarker(m) }
func (m *AngleMarker) Spec() NodeSpec        { return m.spec() }

func (m *AngleMarker) restore(s State) error {
	as, ok := s.(AngleMarkerState)
	if !ok {
		return mismatch(m, s)
	}
	m.state = as
	return nil
}

func (m *AngleMarker) recompute(g *Graph) {
	switch m.construction {
	case FromPoints:
		a := g.nodes[m.parents[0]].(*Point)
		v := g.nodes[m.parents[1]].(*Point)
		b := g.nodes[m.parents[2]].(*Point)
		if !a.state.Exists || !v.state.Exists || !b.state.Exists {
			m.state.Exists = false
			return
		}
		vertex := v.state.Location
		m.state.Vertex = vertex
		if !g.tol.DefinesGreatCircle(a.state.Location, vertex) || !g.tol.DefinesGreatCircle(b.state.Location, vertex) {
			m.state.Exists = false
			return
		}
		value, ok := geom.SphericalAngle(a.state.Location, vertex, b.state.Location)
		m.state = AngleMarkerState{Vertex: vertex, Value: value, Exists: ok}

	case FromLines:
		first := g.nodes[m.parents[0]].(greatCircle)
		second := g.nodes[m.parents[1]].(greatCircle)
		if !first.Exists() || !second.Exists() || !g.tol.DefinesGreatCircle(first.pole(), second.pole()) {
			m.state.Exists = false
			return
		}
		vertex, ok := geom.Normalize(first.pole().Cross(second.pole()))
		m.state = AngleMarkerState{
			Vertex: vertex,
			Value:  geom.AngleBetween(first.pole(), second.pole()),
			Exists: ok,
		}
	}
}

// Label is a text tag attached to exactly one other node. Its location is
// kept on the parent and it exists exactly when the parent does.
type Label struct {
	nodule
	state LabelState
}

func (l *Label) Exists() bool          { return l.state.Exists }
func (l *Label) State() State          { return l.state }
func (l *Label) Location() geom.Vector { return l.state.Location }
func (l *Label) Text() string          { return l.state.Text }
func (l *Label) Target() NodeID        { return l.parents[0] }
func (l *Label) Accept(v Visitor) bool { return v.VisitLabel(l) }

func (l *Label) Spec() NodeSpec {
	s := l.spec()
	s.Params.Location = l.state.Location
	s.Params.Text = l.state.Text
	return s
}

func (l *Label) restore(s State) error {
	ls, ok := s.(LabelState)
	if !ok {
		return mismatch(l, s)
	}
	l.state = ls
	return nil
}

func (l *Label) recompute(g *Graph) {
	parent := g.nodes[l.parents[0]]
	l.state.Exists = parent.Exists()
	if !l.state.Exists {
		return
	}
	if loc, ok := attach(parent, l.state.Location, g.tol); ok {
		l.state.Location = loc
	}
}

// attach moves loc onto the parent's geometry. A zero loc is seeded from the
// parent's natural anchor; a loc already on the parent is returned unchanged.
func attach(parent Node, loc geom.Vector, tol geom.Tolerances) (geom.Vector, bool) {
	seeded := loc.Length() > 0.5
	switch p := parent.(type) {
	case *Point:
		return p.state.Location, true
	case *Line:
		if !seeded {
			return geom.Perpendicular(p.state.Normal), true
		}
		if tol.IsZero(loc.Dot(p.state.Normal)) {
			return loc, true
		}
		return geom.ProjectToGreatCircle(loc, p.state.Normal)
	case *Segment:
		if !seeded {
			return geom.PointAlong(p.state.Start, p.state.Normal, p.state.ArcLength/2), true
		}
		if tol.IsZero(loc.Dot(p.state.Normal)) && p.onCurve(loc, tol) {
			return loc, true
		}
		return clampToSegment(loc, p.state)
	case *Circle:
		if !seeded {
			loc = geom.Perpendicular(p.state.Center)
		} else if tol.IsZero(geom.AngleBetween(loc, p.state.Center) - p.state.Radius) {
			return loc, true
		}
		return geom.ClosestOnCircle(loc, p.state.Center, p.state.Radius)
	case *AngleMarker:
		return p.state.Vertex, true
	}
	panic(fmt.Sprintf("scene: label parent of unexpected type %T", parent))
}

func clampToSegment(loc geom.Vector, s SegmentState) (geom.Vector, bool) {
	onCircle, ok := geom.ProjectToGreatCircle(loc, s.Normal)
	if !ok {
		return geom.Vector{}, false
	}
	if geom.ArcPosition(onCircle, s.Start, s.Normal) <= s.ArcLength {
		return onCircle, true
	}
	end := s.End()
	if geom.AngleBetween(onCircle, s.Start) <= geom.AngleBetween(onCircle, end) {
		return s.Start, true
	}
	return end, true
}
