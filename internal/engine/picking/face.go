package picking

import (
	gomath "math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// parallelEpsilon rejects segments running along the face plane.
	parallelEpsilon = 0.00001
	// vertexEpsilon is the squared distance product below which a hit is
	// treated as landing on a face vertex.
	vertexEpsilon = 0.00001
	// windingEpsilon is the allowed deviation of the angle sum from 2π.
	windingEpsilon = 0.001
	// boxSlack pads face boxes before the ray/box rejection test.
	boxSlack = 0.01
)

// Face is a convex planar polygon prepared for segment casting.
type Face struct {
	Vertices []mgl32.Vec3
	Normal   mgl32.Vec3
	D        float32
	Box      AABB
}

// NewFace builds a face from a counter-clockwise vertex loop. The plane is
// taken from the first three vertices. ok is false when they are collinear.
func NewFace(vertices []mgl32.Vec3) (Face, bool) {
	if len(vertices) < 3 {
		return Face{}, false
	}
	n := vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0]))
	l := n.Len()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return Face{}, false
	}
	n = n.Mul(1 / l)
	return Face{
		Vertices: vertices,
		Normal:   n,
		D:        n.Dot(vertices[0]),
		Box:      NewAABB(vertices...),
	}, true
}

// EvalAtPoint returns the signed distance from the face plane to p.
func (f *Face) EvalAtPoint(p mgl32.Vec3) float32 {
	return f.Normal.Dot(p) - f.D
}

// IntersectSegment returns the point where the segment from start to end
// crosses the face. Both sides of the face block the segment.
func (f *Face) IntersectSegment(start, end mgl32.Vec3) (mgl32.Vec3, bool) {
	ray, length, ok := RayFromSegment(start, end)
	if !ok {
		return mgl32.Vec3{}, false
	}
	if t, hit := ray.IntersectAABB(f.Box.Expand(boxSlack)); !hit || t > length+boxSlack {
		return mgl32.Vec3{}, false
	}

	dir := end.Sub(start)
	denominator := -f.Normal.Dot(dir)
	if math32.Abs(denominator) < parallelEpsilon {
		return mgl32.Vec3{}, false
	}
	u := f.EvalAtPoint(start) / denominator
	if u < 0 || u > 1 {
		return mgl32.Vec3{}, false
	}
	hit := start.Add(dir.Mul(u))
	if !f.Contains(hit) {
		return mgl32.Vec3{}, false
	}
	return hit, true
}

// Contains reports whether p, a point on the face plane, lies inside the
// face. It sums the angles subtended by every edge; the sum is 2π inside.
func (f *Face) Contains(p mgl32.Vec3) bool {
	var sum float64
	for i, a := range f.Vertices {
		b := f.Vertices[(i+1)%len(f.Vertices)]
		v1 := a.Sub(p)
		v2 := b.Sub(p)

		nom := float64(v1.LenSqr()) * float64(v2.LenSqr())
		if nom < vertexEpsilon {
			// p sits on a vertex
			return true
		}
		cos := float64(v1.Dot(v2)) / gomath.Sqrt(nom)
		sum += gomath.Acos(gomath.Max(-1, gomath.Min(1, cos)))
	}
	return gomath.Abs(sum-2*gomath.Pi) < windingEpsilon
}
