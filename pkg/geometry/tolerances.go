package geometry

import "github.com/Faultbox/brushlight/pkg/math"

// Tolerances holds the numeric thresholds used when building and clipping
// polygons. The zero value is not useful; start from DefaultTolerances.
type Tolerances struct {
	// Epsilon is the plane thickness used to classify points as on a plane.
	Epsilon float64 `yaml:"epsilon"`
	// SeedRadius is the half-size of the quad grown from each bounding plane
	// before it is clipped down to a face.
	SeedRadius float64 `yaml:"seed_radius"`
	// MinExtent is the smallest bounding box dimension a solid may have.
	MinExtent float64 `yaml:"min_extent"`
}

// DefaultTolerances returns the thresholds used by the editor.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Epsilon:    math.DefaultEpsilon,
		SeedRadius: 1000000,
		MinExtent:  0.001,
	}
}
