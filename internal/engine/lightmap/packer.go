package lightmap

import (
	"cmp"
	"fmt"
	gomath "math"
	"slices"

	"github.com/Faultbox/brushlight/pkg/mapobject"
	"github.com/Faultbox/brushlight/pkg/math"
)

// Rect is an atlas rectangle in luxels. X and Y are inclusive, X+W and Y+H
// exclusive.
type Rect struct {
	X, Y, W, H int
}

// Overlaps reports whether both rectangles share a luxel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Inside reports whether r lies within a square atlas of the given size.
func (r Rect) Inside(size int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= size && r.Y+r.H <= size
}

// CapacityError is returned by Pack when some groups do not fit the atlas.
// The layout is still complete; luxels outside the atlas are dropped when
// baking.
type CapacityError struct {
	AtlasSize int
	Groups    int // groups that do not fit
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("lightmap: %d groups exceed the %dx%d atlas", e.Groups, e.AtlasSize, e.AtlasSize)
}

// Layout is the result of packing groups into the atlas.
type Layout struct {
	Size     int
	Groups   []*Group // in packing order
	Overflow []*Group // groups whose rectangle leaves the atlas

	downscale float64
	byFace    map[mapobject.FaceID]*Group
}

// Pack assigns every group a UV basis and an atlas rectangle. Groups are
// placed in columns, narrowest extent last. A *CapacityError is returned
// together with the layout when some groups do not fit.
func Pack(groups []*Group, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ds := opts.DownscaleFactor
	for _, g := range groups {
		g.project(ds)
	}

	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b *Group) int {
		return cmp.Compare(b.Extent.X, a.Extent.X)
	})

	layout := &Layout{
		Size:      opts.AtlasSize,
		Groups:    sorted,
		downscale: ds,
		byFace:    make(map[mapobject.FaceID]*Group),
	}

	var writeX, writeY, writeMaxX int
	for _, g := range sorted {
		if writeY > 0 && writeY+g.Rect.H > opts.AtlasSize {
			writeX += writeMaxX
			writeY = 0
			writeMaxX = 0
		}
		g.Rect.X, g.Rect.Y = writeX, writeY
		writeY += g.Rect.H + opts.GroupMargin
		writeMaxX = max(writeMaxX, g.Rect.W+opts.GroupMargin)

		if !g.Rect.Inside(opts.AtlasSize) {
			layout.Overflow = append(layout.Overflow, g)
		}
		for _, f := range g.Faces {
			layout.byFace[f.ID] = g
		}
	}

	if len(layout.Overflow) > 0 {
		return layout, &CapacityError{AtlasSize: opts.AtlasSize, Groups: len(layout.Overflow)}
	}
	return layout, nil
}

// project computes the UV basis and projected extents of the group, and the
// size of its rectangle.
func (g *Group) project(ds float64) {
	n := g.Plane.Normal
	helper := math.Vec3{Z: -1}
	if n.ClosestAxis().Z != 0 {
		helper = math.Vec3{Y: -1}
	}
	g.U, _ = n.Cross(helper).Normalize()
	g.V, _ = g.U.Cross(n).Normalize()

	lo := math.Vec2{X: gomath.Inf(1), Y: gomath.Inf(1)}
	hi := math.Vec2{X: gomath.Inf(-1), Y: gomath.Inf(-1)}
	for _, f := range g.Faces {
		for _, p := range f.Vertices() {
			uv := math.Vec2{X: g.U.Dot(p), Y: g.V.Dot(p)}
			lo = lo.Min(uv)
			hi = hi.Max(uv)
		}
	}
	g.Swapped = false
	if hi.X-lo.X > hi.Y-lo.Y {
		g.U, g.V = g.V, g.U
		lo.X, lo.Y = lo.Y, lo.X
		hi.X, hi.Y = hi.Y, hi.X
		g.Swapped = true
	}
	g.Min = lo
	g.Extent = hi.Sub(lo)
	g.Rect = Rect{W: int(g.Extent.X/ds) + 1, H: int(g.Extent.Y/ds) + 1}
}

// Luxel returns the atlas luxel containing the projection of p, which may
// lie outside the group rectangle.
func (g *Group) Luxel(p math.Vec3, ds float64) (x, y int) {
	x = g.Rect.X + int(gomath.Floor((g.U.Dot(p)-g.Min.X)/ds))
	y = g.Rect.Y + int(gomath.Floor((g.V.Dot(p)-g.Min.Y)/ds))
	return x, y
}

// GroupOf returns the group that holds the face, or nil.
func (l *Layout) GroupOf(id mapobject.FaceID) *Group {
	return l.byFace[id]
}

// Luxel returns the atlas luxel of point p on face id. ok is false when the
// face was not packed.
func (l *Layout) Luxel(id mapobject.FaceID, p math.Vec3) (x, y int, ok bool) {
	g := l.byFace[id]
	if g == nil {
		return 0, 0, false
	}
	x, y = g.Luxel(p, l.downscale)
	return x, y, true
}

// AssignUVs stores the lightmap UV of every vertex of every packed face.
func (l *Layout) AssignUVs() {
	for _, g := range l.Groups {
		for _, f := range g.Faces {
			verts := f.Vertices()
			uvs := make([]mapobject.UV, len(verts))
			for i, p := range verts {
				x, y := g.Luxel(p, l.downscale)
				uvs[i] = mapobject.UV{U: int16(min(x, MaxAtlasSize)), V: int16(min(y, MaxAtlasSize))}
			}
			f.LightmapUV = uvs
		}
	}
}
