package mapobject

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/math"
)

// ErrInvalidDisplacement is returned for displacement data that does not fit
// its face.
var ErrInvalidDisplacement = errors.New("invalid displacement")

// Displacement power limits.
const (
	MinDisplacementPower = 2
	MaxDisplacementPower = 4
)

// Displacement is a subdivided surface stretched over a four-sided face.
//
// The grid has Resolution()+1 points per side. Normals and Distances are
// stored row by row; either may be empty, in which case points are only
// offset by Elevation.
type Displacement struct {
	Power         int
	StartPosition math.Vec3
	Elevation     float64
	Normals       []math.Vec3
	Distances     []float64
}

// Resolution returns the number of grid cells per side.
func (d *Displacement) Resolution() int {
	return 1 << d.Power
}

// Clone returns a deep copy.
func (d *Displacement) Clone() *Displacement {
	c := *d
	c.Normals = slices.Clone(d.Normals)
	c.Distances = slices.Clone(d.Distances)
	return &c
}

// Points returns the displaced grid points over face, row by row. The first
// row starts at the face corner closest to StartPosition.
func (d *Displacement) Points(face geometry.Polygon) ([]math.Vec3, error) {
	if d.Power < MinDisplacementPower || d.Power > MaxDisplacementPower {
		return nil, fmt.Errorf("%w: power %d", ErrInvalidDisplacement, d.Power)
	}
	if len(face.Vertices) != 4 {
		return nil, fmt.Errorf("%w: face has %d vertices, want 4", ErrInvalidDisplacement, len(face.Vertices))
	}
	size := d.Resolution() + 1
	if (len(d.Normals) != 0 && len(d.Normals) != size*size) || (len(d.Distances) != 0 && len(d.Distances) != size*size) {
		return nil, fmt.Errorf("%w: want %d grid values", ErrInvalidDisplacement, size*size)
	}

	start := 0
	for i, v := range face.Vertices {
		if v.Distance(d.StartPosition) < face.Vertices[start].Distance(d.StartPosition) {
			start = i
		}
	}
	corner := func(i int) math.Vec3 { return face.Vertices[(start+i)%4] }
	c0, c1, c2, c3 := corner(0), corner(1), corner(2), corner(3)
	lift := face.Plane.Normal.Scale(d.Elevation)
	res := float64(d.Resolution())

	points := make([]math.Vec3, 0, size*size)
	for row := 0; row < size; row++ {
		t := float64(row) / res
		left := lerp(c0, c3, t)
		right := lerp(c1, c2, t)
		for col := 0; col < size; col++ {
			p := lerp(left, right, float64(col)/res).Add(lift)
			idx := row*size + col
			if len(d.Normals) > 0 && len(d.Distances) > 0 {
				p = p.Add(d.Normals[idx].Scale(d.Distances[idx]))
			}
			points = append(points, p)
		}
	}
	return points, nil
}

func lerp(a, b math.Vec3, t float64) math.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
