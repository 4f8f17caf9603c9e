package lightmap

import (
	gomath "math"
	"slices"
	"strings"

	"github.com/Faultbox/brushlight/pkg/mapobject"
	"github.com/Faultbox/brushlight/pkg/math"
)

// Group is a set of faces lying on one plane that share a region of the
// atlas.
type Group struct {
	ID    int
	Plane math.Plane
	Box   math.Box // padded by Options.BoxPadding
	Faces []*mapobject.Face

	seedSum   math.Vec3
	seedCount int

	// Filled by Pack.
	U, V    math.Vec3 // world axes of the atlas x and y directions
	Min     math.Vec2 // smallest projection of any member vertex on U and V
	Extent  math.Vec2 // projected size in world units
	Rect    Rect      // atlas rectangle in luxels
	Swapped bool      // U and V were exchanged to make the group tall
}

// BakeableFaces returns the faces of m that receive light, in arena order.
// Hidden faces and faces with the removal texture are left out and counted.
func BakeableFaces(m *mapobject.Map, opts Options) (faces []*mapobject.Face, excluded int) {
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.Hidden || strings.EqualFold(f.Texture.Name, opts.RemoveTexture) {
			excluded++
			continue
		}
		faces = append(faces, f)
	}
	return faces, excluded
}

// GroupFaces collects coplanar faces into groups. Faces join the first group
// with a matching normal whose padded box touches theirs and whose plane
// passes within Options.PlaneDistance of their first vertex. Touching groups
// with matching normals are merged afterwards.
func GroupFaces(faces []*mapobject.Face, opts Options) []*Group {
	var groups []*Group
	for _, f := range faces {
		verts := f.Vertices()
		if len(verts) == 0 {
			continue
		}
		box := f.Box.Expand(opts.BoxPadding)
		normal := f.Plane().Normal

		var target *Group
		for _, g := range groups {
			if g.matches(normal, box, opts) && gomath.Abs(g.Plane.EvalAtPoint(verts[0])) <= opts.PlaneDistance {
				target = g
				break
			}
		}
		if target == nil {
			groups = append(groups, &Group{
				Plane:     f.Plane(),
				Box:       box,
				Faces:     []*mapobject.Face{f},
				seedSum:   verts[0],
				seedCount: 1,
			})
			continue
		}
		target.Faces = append(target.Faces, f)
		target.Box = target.Box.Union(box)
		target.addSeeds(verts[0], 1)
	}

	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			a, b := groups[i], groups[j]
			if !a.matches(b.Plane.Normal, b.Box, opts) {
				continue
			}
			a.Faces = append(a.Faces, b.Faces...)
			a.Box = a.Box.Union(b.Box)
			a.addSeeds(b.seedSum, b.seedCount)
			groups = slices.Delete(groups, j, j+1)
			j = i
		}
	}

	for i, g := range groups {
		g.ID = i
	}
	return groups
}

func (g *Group) matches(normal math.Vec3, box math.Box, opts Options) bool {
	return g.Plane.Normal.Sub(normal).LengthSquared() < opts.NormalDeviation && g.Box.Intersects(box)
}

// addSeeds moves the group plane through the mean of all member seed
// points, keeping its normal.
func (g *Group) addSeeds(sum math.Vec3, count int) {
	g.seedSum = g.seedSum.Add(sum)
	g.seedCount += count
	center := g.seedSum.Div(float64(g.seedCount))
	g.Plane = math.Plane{Normal: g.Plane.Normal, D: g.Plane.Normal.Dot(center)}
}
