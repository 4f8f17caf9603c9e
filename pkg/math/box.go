package math

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// BoxFromPoints returns the smallest box containing every point. It returns
// the zero box for an empty slice.
func BoxFromPoints(points []Vec3) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Union returns the smallest box containing b and other.
func (b Box) Union(other Box) Box {
	return Box{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Expand grows the box by pad on every side.
func (b Box) Expand(pad float64) Box {
	d := Vec3{pad, pad, pad}
	return Box{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Intersects reports whether the boxes overlap. Touching boxes intersect.
func (b Box) Intersects(other Box) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Contains reports whether p lies inside the box or on its boundary.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Dimensions returns the extent along each axis.
func (b Box) Dimensions() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
