package lightmap

import (
	"testing"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/mapobject"
	"github.com/Faultbox/brushlight/pkg/math"
)

func boxSides(lo, hi math.Vec3, texture string) []mapobject.Side {
	tex := mapobject.DefaultTexture(texture)
	return []mapobject.Side{
		{Plane: math.Plane{Normal: math.UnitX, D: hi.X}, Texture: tex},
		{Plane: math.Plane{Normal: math.UnitX.Neg(), D: -lo.X}, Texture: tex},
		{Plane: math.Plane{Normal: math.UnitY, D: hi.Y}, Texture: tex},
		{Plane: math.Plane{Normal: math.UnitY.Neg(), D: -lo.Y}, Texture: tex},
		{Plane: math.Plane{Normal: math.UnitZ, D: hi.Z}, Texture: tex},
		{Plane: math.Plane{Normal: math.UnitZ.Neg(), D: -lo.Z}, Texture: tex},
	}
}

func addBox(t *testing.T, m *mapobject.Map, lo, hi math.Vec3) mapobject.SolidID {
	t.Helper()
	id, err := m.AddSolid(boxSides(lo, hi, "dev/test"), geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("AddSolid() error = %v", err)
	}
	return id
}

// faceWithNormal returns the face of solid id whose normal is n.
func faceWithNormal(t *testing.T, m *mapobject.Map, id mapobject.SolidID, n math.Vec3) *mapobject.Face {
	t.Helper()
	for _, f := range m.SolidFaces(id) {
		if f.Plane().Normal.EquivalentTo(n, 1e-9) {
			return f
		}
	}
	t.Fatalf("solid %d has no face with normal %v", id, n)
	return nil
}

func quadFace(id mapobject.FaceID, verts ...math.Vec3) *mapobject.Face {
	p, err := geometry.NewPolygon(verts, math.DefaultEpsilon)
	if err != nil {
		panic(err)
	}
	return &mapobject.Face{ID: id, Polygon: p, Box: p.Box(), Texture: mapobject.DefaultTexture("dev/test")}
}

func floorQuad(id mapobject.FaceID, x0, y0, x1, y1, z float64) *mapobject.Face {
	return quadFace(id,
		math.Vec3{X: x0, Y: y0, Z: z},
		math.Vec3{X: x1, Y: y0, Z: z},
		math.Vec3{X: x1, Y: y1, Z: z},
		math.Vec3{X: x0, Y: y1, Z: z},
	)
}

func ceilingQuad(id mapobject.FaceID, x0, y0, x1, y1, z float64) *mapobject.Face {
	return quadFace(id,
		math.Vec3{X: x0, Y: y0, Z: z},
		math.Vec3{X: x0, Y: y1, Z: z},
		math.Vec3{X: x1, Y: y1, Z: z},
		math.Vec3{X: x1, Y: y0, Z: z},
	)
}

func TestBakeableFaces(t *testing.T) {
	m := mapobject.New()
	id := addBox(t, m, math.Vec3{X: -8, Y: -8, Z: -8}, math.Vec3{X: 8, Y: 8, Z: 8})
	faces := m.SolidFaces(id)
	faces[0].Texture.Name = "ToolTextures/Remove_Face"
	faces[1].Hidden = true

	got, excluded := BakeableFaces(m, DefaultOptions())
	if len(got) != 4 || excluded != 2 {
		t.Fatalf("BakeableFaces() = %d faces, %d excluded, want 4 and 2", len(got), excluded)
	}
	for _, f := range got {
		if f.ID == faces[0].ID || f.ID == faces[1].ID {
			t.Errorf("BakeableFaces() kept excluded face %d", f.ID)
		}
	}
}

func TestGroupFacesBox(t *testing.T) {
	m := mapobject.New()
	addBox(t, m, math.Vec3{X: -16, Y: -16, Z: -16}, math.Vec3{X: 16, Y: 16, Z: 16})
	faces, _ := BakeableFaces(m, DefaultOptions())

	groups := GroupFaces(faces, DefaultOptions())
	if len(groups) != 6 {
		t.Fatalf("GroupFaces() = %d groups, want 6", len(groups))
	}
	for i, g := range groups {
		if g.ID != i {
			t.Errorf("group %d has ID %d", i, g.ID)
		}
		if len(g.Faces) != 1 {
			t.Errorf("group %d has %d faces, want 1", i, len(g.Faces))
		}
	}
}

func TestGroupFacesDeterministic(t *testing.T) {
	a := floorQuad(0, 0, 0, 32, 32, 0)
	b := floorQuad(1, 32, 0, 64, 32, 0)
	wall := quadFace(2,
		math.Vec3{X: 0, Y: 0, Z: 0},
		math.Vec3{X: 0, Y: 0, Z: 32},
		math.Vec3{X: 0, Y: 32, Z: 32},
		math.Vec3{X: 0, Y: 32, Z: 0},
	)
	orders := [][]*mapobject.Face{
		{a, b, wall},
		{b, a, wall},
		{wall, a, b},
		{b, wall, a},
	}
	for _, faces := range orders {
		groups := GroupFaces(faces, DefaultOptions())
		if len(groups) != 2 {
			t.Fatalf("GroupFaces() = %d groups, want 2", len(groups))
		}
		var floor *Group
		for _, g := range groups {
			if g.Plane.Normal.EquivalentTo(math.UnitZ, 1e-9) {
				floor = g
			}
		}
		if floor == nil || len(floor.Faces) != 2 {
			t.Fatalf("floor group = %+v, want both floor faces", floor)
		}
		if floor.Plane.D != 0 {
			t.Errorf("floor plane D = %v, want 0", floor.Plane.D)
		}
	}
}

func TestGroupFacesSeparation(t *testing.T) {
	tests := []struct {
		name  string
		faces []*mapobject.Face
		want  int
	}{
		{"apart", []*mapobject.Face{floorQuad(0, 0, 0, 16, 16, 0), floorQuad(1, 32, 0, 48, 16, 0)}, 2},
		{"within padding", []*mapobject.Face{floorQuad(0, 0, 0, 16, 16, 0), floorQuad(1, 17, 0, 33, 16, 0)}, 1},
		{"stacked", []*mapobject.Face{floorQuad(0, 0, 0, 16, 16, 0), floorQuad(1, 0, 0, 16, 16, 8)}, 2},
		{"small step", []*mapobject.Face{floorQuad(0, 0, 0, 16, 16, 0), floorQuad(1, 16, 0, 32, 16, 0.5)}, 1},
		{"opposite", []*mapobject.Face{floorQuad(0, 0, 0, 16, 16, 0), ceilingQuad(1, 0, 0, 16, 16, 0)}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GroupFaces(tc.faces, DefaultOptions()); len(got) != tc.want {
				t.Errorf("GroupFaces() = %d groups, want %d", len(got), tc.want)
			}
		})
	}
}

func TestGroupFacesMergePass(t *testing.T) {
	// a and c are far apart and start two groups; b bridges them and joins
	// the first, after which the groups touch and merge.
	a := floorQuad(0, 0, 0, 16, 16, 0)
	c := floorQuad(1, 40, 0, 56, 16, 0)
	b := floorQuad(2, 16, 0, 40, 16, 0)

	groups := GroupFaces([]*mapobject.Face{a, c, b}, DefaultOptions())
	if len(groups) != 1 {
		t.Fatalf("GroupFaces() = %d groups, want 1", len(groups))
	}
	if len(groups[0].Faces) != 3 {
		t.Errorf("group has %d faces, want 3", len(groups[0].Faces))
	}
	want := math.Box{Min: math.Vec3{X: -0.75, Y: -0.75, Z: -0.75}, Max: math.Vec3{X: 56.75, Y: 16.75, Z: 0.75}}
	if groups[0].Box != want {
		t.Errorf("group box = %v, want %v", groups[0].Box, want)
	}
}

func TestGroupPlaneRunningMean(t *testing.T) {
	a := floorQuad(0, 0, 0, 16, 16, 0)
	b := floorQuad(1, 16, 0, 32, 16, 1)
	c := floorQuad(2, 32, 0, 48, 16, 2)

	groups := GroupFaces([]*mapobject.Face{a, b, c}, DefaultOptions())
	if len(groups) != 1 {
		t.Fatalf("GroupFaces() = %d groups, want 1", len(groups))
	}
	if got := groups[0].Plane.D; got != 1 {
		t.Errorf("group plane D = %v, want mean seed height 1", got)
	}
}
