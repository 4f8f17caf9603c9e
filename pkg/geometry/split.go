package geometry

import (
	"fmt"
	"slices"

	"github.com/Faultbox/brushlight/pkg/math"
)

// SplitResult holds the outcome of splitting a polygon by a plane. Exactly one
// of the coplanar fields is set when the polygon lies on the plane; otherwise
// Back, Front, or both are set.
type SplitResult struct {
	Back          *Polygon
	Front         *Polygon
	CoplanarBack  *Polygon
	CoplanarFront *Polygon
}

// Spanning reports whether the split produced two pieces.
func (r SplitResult) Spanning() bool {
	return r.Back != nil && r.Front != nil
}

// Split divides p by clip. A polygon that does not span the plane is returned
// whole on the side it lies; a polygon on the plane is reported as coplanar
// front when its normal agrees with clip, coplanar back otherwise.
//
// Both pieces of a spanning split keep the parent plane and winding. Vertices
// on the plane go to both pieces.
func (p Polygon) Split(clip math.Plane, eps float64) (SplitResult, error) {
	switch p.Classify(clip, eps) {
	case Back:
		whole := p.clone()
		return SplitResult{Back: &whole}, nil
	case Front:
		whole := p.clone()
		return SplitResult{Front: &whole}, nil
	case OnPlane:
		whole := p.clone()
		if p.Plane.Normal.Dot(clip.Normal) > 0 {
			return SplitResult{CoplanarFront: &whole}, nil
		}
		return SplitResult{CoplanarBack: &whole}, nil
	}

	n := len(p.Vertices)
	back := make([]math.Vec3, 0, n+2)
	front := make([]math.Vec3, 0, n+2)
	prev := math.SideOn
	for i := 0; i <= n; i++ {
		end := p.Vertices[i%n]
		side := clip.OnPlane(end, eps)
		if i > 0 && side != math.SideOn && prev != math.SideOn && side != prev {
			edge := math.Line{Start: p.Vertices[i-1], End: end}
			hit, ok := clip.IntersectLine(edge, true, true)
			if !ok || !hit.IsFinite() {
				return SplitResult{}, fmt.Errorf("%w: edge %d does not cross the plane", ErrMalformedSplit, i-1)
			}
			back = append(back, hit)
			front = append(front, hit)
		}
		if i < n {
			if side >= math.SideOn {
				front = append(front, end)
			}
			if side <= math.SideOn {
				back = append(back, end)
			}
		}
		prev = side
	}

	if len(back) < 3 || len(front) < 3 {
		return SplitResult{}, fmt.Errorf("%w: piece with %d/%d vertices", ErrMalformedSplit, len(back), len(front))
	}
	b := Polygon{Vertices: back, Plane: p.Plane}.Simplify(eps)
	f := Polygon{Vertices: front, Plane: p.Plane}.Simplify(eps)
	return SplitResult{Back: &b, Front: &f}, nil
}

// Clip keeps the part of p behind clip. It returns nil when p lies wholly in
// front. A polygon on the plane is kept.
func (p Polygon) Clip(clip math.Plane, eps float64) (*Polygon, error) {
	res, err := p.Split(clip, eps)
	if err != nil {
		return nil, err
	}
	switch {
	case res.Back != nil:
		return res.Back, nil
	case res.CoplanarBack != nil:
		return res.CoplanarBack, nil
	case res.CoplanarFront != nil:
		return res.CoplanarFront, nil
	}
	return nil, nil
}

func (p Polygon) clone() Polygon {
	return Polygon{Vertices: slices.Clone(p.Vertices), Plane: p.Plane}
}
