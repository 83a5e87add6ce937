package geom

import "math"

// Tolerances are the thresholds at which recomputation declares a
// construction degenerate. They are configuration, not constants.
type Tolerances struct {
	// NearlyAntipodal: two unit vectors whose sum has a smaller norm are
	// treated as antipodal.
	NearlyAntipodal float64 `yaml:"nearly_antipodal" validate:"gt=0,lt=1"`
	// Zero is the threshold below which a length or determinant is zero.
	Zero float64 `yaml:"zero" validate:"gt=0,lt=0.001"`
	// MinimumArcLength is the shortest arc between two points that still
	// defines a direction.
	MinimumArcLength float64 `yaml:"minimum_arc_length" validate:"gt=0,lt=1"`
	// MinimumRadius is the smallest circle radius that still exists.
	MinimumRadius float64 `yaml:"minimum_radius" validate:"gt=0,lt=1"`
}

// DefaultTolerances returns the editor's stock thresholds
func DefaultTolerances() Tolerances {
	return Tolerances{
		NearlyAntipodal:  0.01,
		Zero:             1e-7,
		MinimumArcLength: 0.02,
		MinimumRadius:    0.02,
	}
}

// IsZero reports whether |x| is below the zero threshold
func (t Tolerances) IsZero(x float64) bool {
	return math.Abs(x) < t.Zero
}

// Antipodal reports whether a and b are nearly antipodal
func (t Tolerances) Antipodal(a, b Vector) bool {
	return a.Add(b).Length() < t.NearlyAntipodal
}

// Coincident reports whether a and b are too close to define a direction
func (t Tolerances) Coincident(a, b Vector) bool {
	return AngleBetween(a, b) < t.MinimumArcLength
}

// DefinesGreatCircle reports whether a and b pin down a unique great circle
func (t Tolerances) DefinesGreatCircle(a, b Vector) bool {
	return !t.Coincident(a, b) && !t.Antipodal(a, b)
}

// ValidRadius reports whether a circle of radius r is non-degenerate
func (t Tolerances) ValidRadius(r float64) bool {
	return r >= t.MinimumRadius && r <= math.Pi-t.MinimumRadius
}
