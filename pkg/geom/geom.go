// Package geom holds the unit-sphere primitives the scene recomputes with.
// Points are unit vectors; arc lengths and circle radii are angles in radians.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vector is a position or direction in R3
type Vector = v3.Vec

// Matrix is a homogeneous 4x4 transform; only rotations are used here.
type Matrix = sdf.M44

// Axes
var (
	XAxis = Vector{X: 1}
	YAxis = Vector{Y: 1}
	ZAxis = Vector{Z: 1}
)

// epsilon guards divisions; it is far below any configurable tolerance.
const epsilon = 1e-12

// unitSlack is a few ulps around 1. A vector whose length falls inside it is
// already unit and comes back untouched, so normalizing twice is a no-op.
const unitSlack = 1e-15

// Normalize returns v scaled to unit length. It reports false for a vector
// too short to have a direction.
func Normalize(v Vector) (Vector, bool) {
	n := v.Length()
	if n < epsilon {
		return Vector{}, false
	}
	if math.Abs(n-1) <= unitSlack {
		return v, true
	}
	return v.DivScalar(n), true
}

// Perpendicular returns some unit vector orthogonal to v, built against the
// axis least aligned with v.
func Perpendicular(v Vector) Vector {
	axis := XAxis
	if math.Abs(v.Y) < math.Abs(v.X) && math.Abs(v.Y) <= math.Abs(v.Z) {
		axis = YAxis
	} else if math.Abs(v.Z) < math.Abs(v.X) {
		axis = ZAxis
	}
	p, ok := Normalize(v.Cross(axis))
	if !ok {
		return ZAxis
	}
	return p
}

// Antipode returns the point diametrically opposite v
func Antipode(v Vector) Vector {
	return v.MulScalar(-1)
}

// AngleBetween is the great-circle distance between two unit vectors.
// atan2 keeps precision near 0 and pi where acos does not.
func AngleBetween(a, b Vector) float64 {
	return math.Atan2(a.Cross(b).Length(), a.Dot(b))
}

// Identity returns the identity transform
func Identity() Matrix {
	return sdf.Identity3d()
}

// Rotation returns the rotation by angle radians about axis
func Rotation(axis Vector, angle float64) Matrix {
	if unit, ok := Normalize(axis); ok {
		axis = unit
	}
	return sdf.Rotate3d(axis, angle)
}

// Rotate applies m to v
func Rotate(m Matrix, v Vector) Vector {
	return m.MulPosition(v)
}

// PointAlong walks angle radians from start along the great circle with the
// given pole. start must lie on that circle.
func PointAlong(start, pole Vector, angle float64) Vector {
	tangent := pole.Cross(start)
	return start.MulScalar(math.Cos(angle)).Add(tangent.MulScalar(math.Sin(angle)))
}

// ProjectToGreatCircle returns the point of the great circle with the given
// pole that is closest to v. It fails when v is the pole or its antipode.
func ProjectToGreatCircle(v, pole Vector) (Vector, bool) {
	return Normalize(v.Sub(pole.MulScalar(v.Dot(pole))))
}

// ClosestOnCircle returns the point of the small circle (center, radius)
// closest to v. It fails when v is the center or its antipode.
func ClosestOnCircle(v, center Vector, radius float64) (Vector, bool) {
	dir, ok := ProjectToGreatCircle(v, center)
	if !ok {
		return Vector{}, false
	}
	return center.MulScalar(math.Cos(radius)).Add(dir.MulScalar(math.Sin(radius))), true
}

// SphericalAngle is the angle at vertex swept counterclockwise (seen from
// outside the sphere) from the direction of a to the direction of b, in
// [0, 2pi). It fails when a or b is the vertex or its antipode.
func SphericalAngle(a, vertex, b Vector) (float64, bool) {
	ta, ok := ProjectToGreatCircle(a, vertex)
	if !ok {
		return 0, false
	}
	tb, ok := ProjectToGreatCircle(b, vertex)
	if !ok {
		return 0, false
	}
	angle := math.Atan2(ta.Cross(tb).Dot(vertex), ta.Dot(tb))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle, true
}

// ArcPosition is the angle from start to v measured along the great circle
// with the given pole, in [0, 2pi).
func ArcPosition(v, start, pole Vector) float64 {
	tangent := pole.Cross(start)
	angle := math.Atan2(v.Dot(tangent), v.Dot(start))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// IntersectCircles intersects the circles {x : angle(x, c1) = r1} and
// {x : angle(x, c2) = r2}. A great circle is the case r = pi/2 about its pole.
// The two solutions are returned in a fixed order determined by c1 x c2.
// ok is false when the circles share an axis or do not meet.
func IntersectCircles(c1 Vector, r1 float64, c2 Vector, r2 float64, zero float64) (first, second Vector, ok bool) {
	axis := c1.Cross(c2)
	d := axis.Length()
	if d < zero {
		return Vector{}, Vector{}, false
	}

	g := c1.Dot(c2)
	a, b := math.Cos(r1), math.Cos(r2)
	det := 1 - g*g
	alpha := (a - g*b) / det
	beta := (b - g*a) / det
	base := c1.MulScalar(alpha).Add(c2.MulScalar(beta))

	h2 := (1 - base.Dot(base)) / (d * d)
	if h2 < -zero {
		return Vector{}, Vector{}, false
	}
	if h2 < 0 {
		h2 = 0
	}
	offset := axis.MulScalar(math.Sqrt(h2))

	first, ok1 := Normalize(base.Add(offset))
	second, ok2 := Normalize(base.Sub(offset))
	return first, second, ok1 && ok2
}
