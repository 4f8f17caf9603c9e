package math

import "math"

// DefaultEpsilon is the distance within which a point counts as on a plane.
const DefaultEpsilon = 0.001

// parallelEpsilon rejects line/plane intersections whose denominator is
// effectively zero.
const parallelEpsilon = 0.00001

// Side is the result of classifying a point against a plane.
type Side int

// Side values. The numeric values match the sign of the signed distance.
const (
	SideBack  Side = -1
	SideOn    Side = 0
	SideFront Side = 1
)

// String returns a human-readable side name.
func (s Side) String() string {
	switch s {
	case SideBack:
		return "back"
	case SideFront:
		return "front"
	default:
		return "on"
	}
}

// Plane is an oriented plane: every point p on it satisfies Normal·p == D.
// Normal always has unit length.
type Plane struct {
	Normal Vec3
	D      float64
}

// NewPlane normalises normal and scales d to match. ok is false for a
// zero-length normal.
func NewPlane(normal Vec3, d float64) (Plane, bool) {
	l := normal.Length()
	if l < 1e-12 {
		return Plane{}, false
	}
	return Plane{Normal: normal.Div(l), D: d / l}, true
}

// PlaneFromPoints builds the plane through a, b and c. Counter-clockwise
// winding, seen from the front, gives the front normal. ok is false when the
// points are collinear.
func PlaneFromPoints(a, b, c Vec3) (Plane, bool) {
	n, ok := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, D: n.Dot(a)}, true
}

// PlaneFromPointNormal builds the plane with the given normal through p.
func PlaneFromPointNormal(p, normal Vec3) (Plane, bool) {
	n, ok := normal.Normalize()
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, D: n.Dot(p)}, true
}

// PointOnPlane returns the point of the plane closest to the origin.
func (p Plane) PointOnPlane() Vec3 {
	return p.Normal.Scale(p.D)
}

// EvalAtPoint returns the signed distance from the plane to pt.
func (p Plane) EvalAtPoint(pt Vec3) float64 {
	return p.Normal.Dot(pt) - p.D
}

// OnPlane classifies pt as in front of, behind, or on the plane.
func (p Plane) OnPlane(pt Vec3, eps float64) Side {
	d := p.EvalAtPoint(pt)
	if math.Abs(d) <= eps {
		return SideOn
	}
	if d > 0 {
		return SideFront
	}
	return SideBack
}

// Project returns the orthogonal projection of pt onto the plane.
func (p Plane) Project(pt Vec3) Vec3 {
	return pt.Sub(p.Normal.Scale(p.EvalAtPoint(pt)))
}

// IntersectLine intersects the line through l with the plane.
//
// ok is false when the line is parallel to the plane. Unless
// ignorePlaneDirection is set, lines travelling along the normal (from the back
// side to the front side) do not hit. Unless ignoreDirection is set, the hit
// must lie on the segment between l.Start and l.End.
func (p Plane) IntersectLine(l Line, ignoreDirection, ignorePlaneDirection bool) (Vec3, bool) {
	dir := l.End.Sub(l.Start)
	denominator := -p.Normal.Dot(dir)
	numerator := p.EvalAtPoint(l.Start)
	if math.Abs(denominator) < parallelEpsilon || (!ignorePlaneDirection && denominator < 0) {
		return Vec3{}, false
	}
	u := numerator / denominator
	if !ignoreDirection && (u < 0 || u > 1) {
		return Vec3{}, false
	}
	return l.Start.Add(dir.Scale(u)), true
}

// Flip returns the same plane facing the other way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), D: -p.D}
}

// ClosestAxisToNormal returns the unit axis most aligned with the normal.
func (p Plane) ClosestAxisToNormal() Vec3 {
	return p.Normal.ClosestAxis()
}

// EquivalentTo reports whether both planes have the same orientation and
// offset within eps.
func (p Plane) EquivalentTo(other Plane, eps float64) bool {
	return p.Normal.EquivalentTo(other.Normal, eps) && math.Abs(p.D-other.D) <= eps
}
