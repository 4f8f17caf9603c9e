// Package geometry builds and clips the convex polygons that bound brush solids.
package geometry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/brushlight/pkg/math"
)

// Polygon errors.
var (
	ErrDegeneratePolygon = errors.New("degenerate polygon")
	ErrMalformedSplit    = errors.New("malformed polygon split")
)

// Classification describes where a polygon lies relative to a plane.
type Classification int

// Classification values.
const (
	Front Classification = iota
	Back
	OnPlane
	Spanning
)

// String returns a human-readable classification name.
func (c Classification) String() string {
	switch c {
	case Front:
		return "Front"
	case Back:
		return "Back"
	case OnPlane:
		return "OnPlane"
	case Spanning:
		return "Spanning"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Polygon is a planar vertex loop with at least 3 vertices. Counter-clockwise
// winding, seen from the front, matches Plane.Normal.
//
// Polygons are values: every operation returns a new polygon and leaves the
// receiver's vertex slice untouched.
type Polygon struct {
	Vertices []math.Vec3
	Plane    math.Plane
}

// NewPolygon builds a polygon from a vertex loop. Collinear and duplicate
// vertices are removed. It fails when fewer than 3 vertices remain, when the
// loop has no area, or when the vertices are not coplanar within eps.
func NewPolygon(vertices []math.Vec3, eps float64) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(vertices))
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return Polygon{}, fmt.Errorf("%w: vertex %d is not finite", ErrDegeneratePolygon, i)
		}
	}
	plane, ok := planeFromLoop(vertices)
	if !ok {
		return Polygon{}, fmt.Errorf("%w: vertices are collinear", ErrDegeneratePolygon)
	}
	p := Polygon{Vertices: slices.Clone(vertices), Plane: plane}.Simplify(eps)
	if !p.IsValid(eps) {
		return Polygon{}, fmt.Errorf("%w: vertices are not coplanar", ErrDegeneratePolygon)
	}
	return p, nil
}

// PolygonFromPlane returns a square lying on plane, centred on the point of
// the plane closest to the origin, with its corners radius away from the
// centre.
func PolygonFromPlane(plane math.Plane, radius float64) Polygon {
	helper := math.UnitZ.Neg()
	if plane.ClosestAxisToNormal() == math.UnitZ {
		helper = math.UnitY.Neg()
	}
	up, _ := helper.Cross(plane.Normal).Normalize()
	right, _ := up.Cross(plane.Normal).Normalize()

	c := plane.PointOnPlane()
	quad := Polygon{
		Vertices: []math.Vec3{
			c.Add(right).Add(up), // top right
			c.Sub(right).Add(up), // top left
			c.Sub(right).Sub(up), // bottom left
			c.Add(right).Sub(up), // bottom right
		},
		Plane: plane,
	}
	return quad.Expand(radius)
}

// planeFromLoop computes the plane of a vertex loop with Newell's method.
func planeFromLoop(vertices []math.Vec3) (math.Plane, bool) {
	var n, centre math.Vec3
	for i, cur := range vertices {
		next := vertices[(i+1)%len(vertices)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
		centre = centre.Add(cur)
	}
	centre = centre.Div(float64(len(vertices)))
	return math.PlaneFromPointNormal(centre, n)
}

// Origin returns the average of the vertices.
func (p Polygon) Origin() math.Vec3 {
	var sum math.Vec3
	for _, v := range p.Vertices {
		sum = sum.Add(v)
	}
	return sum.Div(float64(len(p.Vertices)))
}

// Edges returns the edges of the loop, including the closing edge.
func (p Polygon) Edges() []math.Line {
	lines := make([]math.Line, len(p.Vertices))
	for i, v := range p.Vertices {
		lines[i] = math.Line{Start: v, End: p.Vertices[(i+1)%len(p.Vertices)]}
	}
	return lines
}

// Box returns the bounding box of the vertices.
func (p Polygon) Box() math.Box {
	return math.BoxFromPoints(p.Vertices)
}

// Area returns the area of the polygon measured in its plane.
func (p Polygon) Area() float64 {
	if len(p.Vertices) < 3 {
		return 0
	}
	var area float64
	v0 := p.Vertices[0]
	for i := 1; i < len(p.Vertices)-1; i++ {
		e1 := p.Vertices[i].Sub(v0)
		e2 := p.Vertices[i+1].Sub(v0)
		area += e1.Cross(e2).Dot(p.Plane.Normal)
	}
	return area / 2
}

// IsValid reports whether every vertex lies on the polygon plane.
func (p Polygon) IsValid(eps float64) bool {
	if len(p.Vertices) < 3 {
		return false
	}
	for _, v := range p.Vertices {
		if p.Plane.OnPlane(v, eps) != math.SideOn {
			return false
		}
	}
	return true
}

// IsConvex reports whether every corner of the loop turns towards the front
// of the polygon plane.
func (p Polygon) IsConvex(eps float64) bool {
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		v1 := p.Vertices[i]
		v2 := p.Vertices[(i+1)%n]
		v3 := p.Vertices[(i+2)%n]
		e1, ok1 := v2.Sub(v1).Normalize()
		e2, ok2 := v3.Sub(v2).Normalize()
		if !ok1 || !ok2 {
			return false
		}
		if p.Plane.OnPlane(v2.Add(e1.Cross(e2)), eps) != math.SideFront {
			return false
		}
	}
	return true
}

// Simplify removes vertices that lie on the segment joining their neighbours,
// including duplicates, until none are left. It never goes below 3 vertices.
func (p Polygon) Simplify(eps float64) Polygon {
	verts := slices.Clone(p.Vertices)
	for removed := true; removed && len(verts) > 3; {
		removed = false
		n := len(verts)
		for i := 0; i < n; i++ {
			cur := verts[i]
			line := math.Line{Start: verts[(i+n-1)%n], End: verts[(i+1)%n]}
			if line.ClosestPoint(cur).EquivalentTo(cur, eps) {
				verts = slices.Delete(verts, i, i+1)
				removed = true
				break
			}
		}
	}
	return Polygon{Vertices: verts, Plane: p.Plane}
}

// Expand moves every vertex to radius distance from the polygon origin, along
// the line from the origin through the vertex.
func (p Polygon) Expand(radius float64) Polygon {
	origin := p.Origin()
	verts := make([]math.Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		dir, _ := v.Sub(origin).Normalize()
		verts[i] = origin.Add(dir.Scale(radius))
	}
	return Polygon{Vertices: verts, Plane: p.Plane}
}

// Flip reverses the winding and the plane.
func (p Polygon) Flip() Polygon {
	verts := slices.Clone(p.Vertices)
	slices.Reverse(verts)
	return Polygon{Vertices: verts, Plane: p.Plane.Flip()}
}

// Transform applies m to every vertex and recomputes the plane.
func (p Polygon) Transform(m math.Mat4) (Polygon, error) {
	verts := make([]math.Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = m.TransformPoint(v)
	}
	plane, ok := planeFromLoop(verts)
	if !ok {
		return Polygon{}, fmt.Errorf("%w: transform collapsed the polygon", ErrDegeneratePolygon)
	}
	return Polygon{Vertices: verts, Plane: plane}, nil
}

// Classify tallies every vertex against clip. Vertices on the plane count as
// both in front and behind.
func (p Polygon) Classify(clip math.Plane, eps float64) Classification {
	var front, back, on int
	for _, v := range p.Vertices {
		side := clip.OnPlane(v, eps)
		if side <= math.SideOn {
			back++
		}
		if side >= math.SideOn {
			front++
		}
		if side == math.SideOn {
			on++
		}
	}
	n := len(p.Vertices)
	switch {
	case on == n:
		return OnPlane
	case front == n:
		return Front
	case back == n:
		return Back
	}
	return Spanning
}
