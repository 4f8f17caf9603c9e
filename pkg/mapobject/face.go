package mapobject

import (
	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/math"
)

// Texture holds the material and alignment of a face.
type Texture struct {
	Name     string
	UAxis    math.Vec3
	VAxis    math.Vec3
	XShift   float64
	YShift   float64
	XScale   float64
	YScale   float64
	Rotation float64
	Opacity  float64
}

// DefaultTexture returns a world-aligned texture with unit scale.
func DefaultTexture(name string) Texture {
	return Texture{
		Name:    name,
		UAxis:   math.UnitX,
		VAxis:   math.UnitY.Neg(),
		XScale:  1,
		YScale:  1,
		Opacity: 1,
	}
}

// UV is an integer lightmap atlas coordinate.
type UV struct {
	U, V int16
}

// Face is one bounding polygon of a solid.
type Face struct {
	ID      FaceID
	Solid   SolidID
	Polygon geometry.Polygon
	Box     math.Box
	Texture Texture

	// LightmapUV holds one atlas coordinate per vertex once the map has been
	// baked.
	LightmapUV []UV

	Selected bool
	Hidden   bool

	displacement *Displacement
}

// Plane returns the face plane.
func (f *Face) Plane() math.Plane {
	return f.Polygon.Plane
}

// Vertices returns the face vertex loop.
func (f *Face) Vertices() []math.Vec3 {
	return f.Polygon.Vertices
}

// Displacement returns the displacement surface of the face, if it has one.
func (f *Face) Displacement() (*Displacement, bool) {
	return f.displacement, f.displacement != nil
}

// SetDisplacement turns the face into a displacement face. Pass nil to
// make it flat again.
func (f *Face) SetDisplacement(d *Displacement) {
	f.displacement = d
}

// UpdateBox recomputes the bounding box. Displacement faces are bounded by
// their displaced points.
func (f *Face) UpdateBox() error {
	if d, ok := f.Displacement(); ok {
		points, err := d.Points(f.Polygon)
		if err != nil {
			return err
		}
		f.Box = math.BoxFromPoints(points).Union(f.Polygon.Box())
		return nil
	}
	f.Box = f.Polygon.Box()
	return nil
}

// AlignTextureToWorld projects the texture along the axis closest to the
// face normal.
func (f *Face) AlignTextureToWorld() {
	axis := f.Polygon.Plane.ClosestAxisToNormal()
	f.Texture.UAxis = math.UnitX
	if axis == math.UnitX {
		f.Texture.UAxis = math.UnitY
	}
	f.Texture.VAxis = math.UnitZ.Neg()
	if axis == math.UnitZ {
		f.Texture.VAxis = math.UnitY.Neg()
	}
	f.Texture.Rotation = 0
}

// TriangleIndices fan-triangulates the vertex loop around vertex 0.
func (f *Face) TriangleIndices() []int {
	n := len(f.Polygon.Vertices)
	if n < 3 {
		return nil
	}
	indices := make([]int, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		indices = append(indices, 0, i, i+1)
	}
	return indices
}
