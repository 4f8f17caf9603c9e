package geometry

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/brushlight/pkg/math"
)

// ErrInvalidSolid is returned when a set of planes does not bound a usable
// convex solid.
var ErrInvalidSolid = errors.New("invalid solid")

// SolidFromPlanes builds the faces of the convex solid bounded by planes.
// Every plane's normal points out of the solid.
//
// Each plane is grown into a large quad and clipped by all the other planes,
// keeping the part behind them. Planes whose quad is clipped away entirely do
// not contribute a face. Equivalent planes are merged first. Plane sets that
// leave the solid open are rejected. The resulting
// faces follow the order of the planes that produced them, and their geometry
// does not depend on the order of the input.
func SolidFromPlanes(planes []math.Plane, tol Tolerances) ([]Polygon, error) {
	faces, _, err := SolidFromPlanesIndexed(planes, tol)
	return faces, err
}

// SolidFromPlanesIndexed is SolidFromPlanes that also returns, for every
// face, the index in planes of the plane that produced it. Of several
// equivalent planes the first one is reported.
func SolidFromPlanesIndexed(planes []math.Plane, tol Tolerances) ([]Polygon, []int, error) {
	unique, index := dedupePlanes(planes, tol.Epsilon)
	if len(unique) < 4 {
		return nil, nil, fmt.Errorf("%w: %d distinct planes", ErrInvalidSolid, len(unique))
	}

	faces := make([]Polygon, 0, len(unique))
	source := make([]int, 0, len(unique))
	for i, plane := range unique {
		if !plane.Normal.IsFinite() || !isFinite(plane.D) {
			return nil, nil, fmt.Errorf("%w: plane %d is not finite", ErrInvalidSolid, index[i])
		}
		poly := PolygonFromPlane(plane, tol.SeedRadius)
		kept := true
		for j, clip := range unique {
			if i == j {
				continue
			}
			next, err := poly.Clip(clip, tol.Epsilon)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: plane %d: %w", ErrInvalidSolid, index[i], err)
			}
			if next == nil {
				kept = false
				break
			}
			poly = *next
		}
		if kept && len(poly.Vertices) >= 3 {
			faces = append(faces, poly)
			source = append(source, index[i])
		}
	}

	if len(faces) < 4 {
		return nil, nil, fmt.Errorf("%w: %d faces", ErrInvalidSolid, len(faces))
	}
	d := facesBox(faces).Dimensions()
	if d.X < tol.MinExtent || d.Y < tol.MinExtent || d.Z < tol.MinExtent {
		return nil, nil, fmt.Errorf("%w: extent %v below %v", ErrInvalidSolid, d, tol.MinExtent)
	}
	// A face still reaching half way to the seed quad's edge was never closed
	// off by the other planes.
	if limit := tol.SeedRadius / 2; d.X > limit || d.Y > limit || d.Z > limit {
		return nil, nil, fmt.Errorf("%w: planes do not enclose a volume", ErrInvalidSolid)
	}
	return faces, source, nil
}

// dedupePlanes drops planes equivalent to an earlier one. index holds the
// input position of every kept plane.
func dedupePlanes(planes []math.Plane, eps float64) (out []math.Plane, index []int) {
	out = make([]math.Plane, 0, len(planes))
	for i, p := range planes {
		dup := false
		for _, q := range out {
			if p.EquivalentTo(q, eps) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
			index = append(index, i)
		}
	}
	return out, index
}

func facesBox(faces []Polygon) math.Box {
	box := faces[0].Box()
	for _, f := range faces[1:] {
		box = box.Union(f.Box())
	}
	return box
}

func isFinite(f float64) bool {
	return !gomath.IsNaN(f) && !gomath.IsInf(f, 0)
}
