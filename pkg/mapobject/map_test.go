package mapobject

import (
	"errors"
	"testing"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/math"
)

func boxSides(min, max math.Vec3, texture string) []Side {
	return []Side{
		{Plane: math.Plane{Normal: math.UnitX, D: max.X}, Texture: DefaultTexture(texture)},
		{Plane: math.Plane{Normal: math.UnitX.Neg(), D: -min.X}, Texture: DefaultTexture(texture)},
		{Plane: math.Plane{Normal: math.UnitY, D: max.Y}, Texture: DefaultTexture(texture)},
		{Plane: math.Plane{Normal: math.UnitY.Neg(), D: -min.Y}, Texture: DefaultTexture(texture)},
		{Plane: math.Plane{Normal: math.UnitZ, D: max.Z}, Texture: DefaultTexture(texture + "_top")},
		{Plane: math.Plane{Normal: math.UnitZ.Neg(), D: -min.Z}, Texture: DefaultTexture(texture)},
	}
}

func TestAddSolidFromPlanes(t *testing.T) {
	m := New()
	id, err := m.AddSolid(boxSides(math.Vec3{X: -16, Y: -16, Z: -16}, math.Vec3{X: 16, Y: 16, Z: 16}, "dev/wall"), geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("AddSolid() error = %v", err)
	}
	if len(m.Solids) != 1 || len(m.Faces) != 6 {
		t.Fatalf("map has %d solids and %d faces, want 1 and 6", len(m.Solids), len(m.Faces))
	}
	s := m.Solid(id)
	want := math.Box{Min: math.Vec3{X: -16, Y: -16, Z: -16}, Max: math.Vec3{X: 16, Y: 16, Z: 16}}
	if !s.Box.Min.EquivalentTo(want.Min, 1e-6) || !s.Box.Max.EquivalentTo(want.Max, 1e-6) {
		t.Errorf("solid box = %v, want %v", s.Box, want)
	}
	for i, f := range m.SolidFaces(id) {
		if f.Solid != id {
			t.Errorf("face %d owner = %d, want %d", i, f.Solid, id)
		}
		if f.ID != s.Faces[i] {
			t.Errorf("face %d id = %d, want %d", i, f.ID, s.Faces[i])
		}
		wantTex := "dev/wall"
		if f.Plane().Normal == math.UnitZ {
			wantTex = "dev/wall_top"
		}
		if f.Texture.Name != wantTex {
			t.Errorf("face %d texture = %q, want %q", i, f.Texture.Name, wantTex)
		}
	}
}

func TestAddSolidTextureFromProducingSide(t *testing.T) {
	box := boxSides(math.Vec3{X: -16, Y: -16, Z: -16}, math.Vec3{X: 16, Y: 16, Z: 16}, "dev/wall")
	// Same normal as the x=16 side, but it lies outside the box.
	outside := Side{Plane: math.Plane{Normal: math.UnitX, D: 100}, Texture: DefaultTexture("tooltextures/remove_face")}
	sides := append([]Side{outside}, box...)

	m := New()
	id, err := m.AddSolid(sides, geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("AddSolid() error = %v", err)
	}
	faces := m.SolidFaces(id)
	if len(faces) != 6 {
		t.Fatalf("solid has %d faces, want 6", len(faces))
	}
	for _, f := range faces {
		if f.Texture.Name == "tooltextures/remove_face" {
			t.Errorf("face %d on %+v took the texture of the outside side", f.ID, f.Plane())
		}
	}
	if got := faces[0].Plane(); got.Normal != math.UnitX || got.D != 16 {
		t.Errorf("first face plane = %+v, want +X at 16", got)
	}
}

func TestAddSolidFromStoredVertices(t *testing.T) {
	// A tetrahedron with outward-facing, counter-clockwise loops.
	a := math.Vec3{X: 0, Y: 0, Z: 0}
	b := math.Vec3{X: 32, Y: 0, Z: 0}
	c := math.Vec3{X: 0, Y: 32, Z: 0}
	d := math.Vec3{X: 0, Y: 0, Z: 32}
	sides := []Side{
		{Vertices: []math.Vec3{a, c, b}, Texture: DefaultTexture("a")},
		{Vertices: []math.Vec3{a, b, d}, Texture: DefaultTexture("b")},
		{Vertices: []math.Vec3{a, d, c}, Texture: DefaultTexture("c")},
		{Vertices: []math.Vec3{b, c, d}, Texture: DefaultTexture("d")},
	}
	m := New()
	id, err := m.AddSolid(sides, geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("AddSolid() error = %v", err)
	}
	faces := m.SolidFaces(id)
	if len(faces) != 4 {
		t.Fatalf("solid has %d faces, want 4", len(faces))
	}
	if got := faces[0].Plane().Normal; !got.EquivalentTo(math.UnitZ.Neg(), 1e-9) {
		t.Errorf("bottom face normal = %v, want -Z", got)
	}
	if faces[3].Texture.Name != "d" {
		t.Errorf("face 3 texture = %q, want %q", faces[3].Texture.Name, "d")
	}
}

func TestAddSolidRejected(t *testing.T) {
	m := New()
	flat := boxSides(math.Vec3{X: 0, Y: 0, Z: 0}, math.Vec3{X: 10, Y: 10, Z: 0.0001}, "flat")
	_, err := m.AddSolid(flat, geometry.DefaultTolerances())
	if !errors.Is(err, geometry.ErrInvalidSolid) {
		t.Errorf("AddSolid() error = %v, want %v", err, geometry.ErrInvalidSolid)
	}
	if len(m.Solids) != 0 || len(m.Faces) != 0 {
		t.Errorf("rejected solid was inserted: %d solids, %d faces", len(m.Solids), len(m.Faces))
	}
}

func TestAddSolidsCollectsErrors(t *testing.T) {
	m := New()
	good := boxSides(math.Vec3{}, math.Vec3{X: 8, Y: 8, Z: 8}, "good")
	bad := good[:3]
	ids, err := m.AddSolids([][]Side{good, bad, good}, geometry.DefaultTolerances())
	if len(ids) != 2 {
		t.Errorf("AddSolids() inserted %d solids, want 2", len(ids))
	}
	if !errors.Is(err, geometry.ErrInvalidSolid) {
		t.Errorf("AddSolids() error = %v, want %v", err, geometry.ErrInvalidSolid)
	}
	if ids[1] != 1 || m.Solid(ids[1]).Faces[0] != 6 {
		t.Errorf("arena ids are not contiguous: %v", ids)
	}
}

func TestDisplacementHidesFlatFaces(t *testing.T) {
	sides := boxSides(math.Vec3{X: -64, Y: -64, Z: -8}, math.Vec3{X: 64, Y: 64, Z: 0}, "nature/grass")
	sides[4].Displacement = &Displacement{Power: 2, StartPosition: math.Vec3{X: -64, Y: -64}, Elevation: 4}
	m := New()
	id, err := m.AddSolid(sides, geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("AddSolid() error = %v", err)
	}
	for _, f := range m.SolidFaces(id) {
		_, isDisp := f.Displacement()
		if f.Hidden == isDisp {
			t.Errorf("face %d hidden = %v, displacement = %v", f.ID, f.Hidden, isDisp)
		}
		if isDisp {
			if f.Box.Max.Z != 4 {
				t.Errorf("displacement box top = %v, want 4", f.Box.Max.Z)
			}
			if f.Texture.UAxis != math.UnitX || f.Texture.VAxis != math.UnitY.Neg() {
				t.Errorf("displacement texture not world aligned: %+v", f.Texture)
			}
		}
	}
}
