package formats

import (
	"errors"
	"testing"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/math"
)

const testScene = `
solids:
  - id: 1
    sides:
      - plane: [[-16,-16,16],[16,-16,16],[16,16,16]]
        texture: dev/floor
      - normal: [0,0,-1]
        distance: 16
        texture: tooltextures/remove_face
      - normal: [1,0,0]
        distance: 16
        texture: dev/wall
      - normal: [-1,0,0]
        distance: 16
        texture: dev/wall
      - normal: [0,1,0]
        distance: 16
        texture: dev/wall
      - normal: [0,-1,0]
        distance: 16
        texture: dev/wall
  - id: 2
    sides:
      - normal: [0,0,1]
        distance: 1
        texture: dev/flat
      - normal: [0,0,-1]
        distance: -1
        texture: dev/flat
      - normal: [1,0,0]
        distance: 8
        texture: dev/flat
      - normal: [-1,0,0]
        distance: 8
        texture: dev/flat
entities:
  - classname: light
    origin: [0, 0, 100]
    properties: {range: "200", color: 255 255 255}
  - classname: info_player_start
    origin: [1, 2, 3]
`

func TestParseScene_ValidFile(t *testing.T) {
	scene, err := ParseScene([]byte(testScene))
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	if len(scene.Solids) != 2 {
		t.Fatalf("expected 2 solids, got %d", len(scene.Solids))
	}
	if len(scene.Solids[0].Sides) != 6 {
		t.Errorf("expected 6 sides, got %d", len(scene.Solids[0].Sides))
	}
	if len(scene.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(scene.Entities))
	}

	props := scene.Entities[0].Properties
	if len(props) != 2 || props[0].Key != "range" || props[1].Key != "color" {
		t.Fatalf("expected properties range and color in order, got %+v", props)
	}
	if props[1].Value != "255 255 255" {
		t.Errorf("expected color '255 255 255', got %q", props[1].Value)
	}
}

func TestParseScene_Invalid(t *testing.T) {
	tests := []string{
		"solids: {",
		"entities:\n  - classname: light\n    properties: [1, 2]\n",
	}
	for _, data := range tests {
		if _, err := ParseScene([]byte(data)); !errors.Is(err, ErrInvalidScene) {
			t.Errorf("%q: expected ErrInvalidScene, got %v", data, err)
		}
	}
}

func TestScene_Build(t *testing.T) {
	scene, err := ParseScene([]byte(testScene))
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}

	m, err := scene.Build(geometry.DefaultTolerances())
	// The second solid is open along Y and cannot be built.
	if !errors.Is(err, geometry.ErrInvalidSolid) {
		t.Errorf("expected ErrInvalidSolid for solid 2, got %v", err)
	}
	if len(m.Solids) != 1 || len(m.Faces) != 6 {
		t.Fatalf("expected 1 solid with 6 faces, got %d solids and %d faces", len(m.Solids), len(m.Faces))
	}

	textures := map[string]int{}
	for _, f := range m.Faces {
		textures[f.Texture.Name]++
		if f.Plane().Normal == math.UnitZ && f.Texture.Name != "dev/floor" {
			t.Errorf("expected top face texture dev/floor, got %s", f.Texture.Name)
		}
	}
	if textures["dev/wall"] != 4 || textures["tooltextures/remove_face"] != 1 {
		t.Errorf("unexpected texture counts %v", textures)
	}

	if len(m.Entities) != 2 || m.Entities[0].ClassName != "light" {
		t.Fatalf("unexpected entities %+v", m.Entities)
	}
	if m.Entities[0].Origin != (math.Vec3{Z: 100}) {
		t.Errorf("expected light origin (0,0,100), got %v", m.Entities[0].Origin)
	}
	if p, ok := m.Entities[0].Property("RANGE"); !ok || p.Value != "200" {
		t.Errorf("expected range 200, got %+v", p)
	}
}

func TestScene_BadSide(t *testing.T) {
	scene := &Scene{Solids: []SceneSolid{{
		ID: 5,
		Sides: []SceneSide{
			{Plane: [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}},
		},
	}}}
	m, err := scene.Build(geometry.DefaultTolerances())
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("expected ErrInvalidScene, got %v", err)
	}
	if len(m.Solids) != 0 {
		t.Errorf("expected no solids, got %d", len(m.Solids))
	}
}

func TestSceneFromMap_RoundTrip(t *testing.T) {
	scene, err := ParseScene([]byte(testScene))
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	m, _ := scene.Build(geometry.DefaultTolerances())

	data, err := SceneFromMap(m).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	again, err := ParseScene(data)
	if err != nil {
		t.Fatalf("ParseScene of marshalled scene failed: %v", err)
	}
	m2, err := again.Build(geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("Build of marshalled scene failed: %v", err)
	}

	if len(m2.Faces) != len(m.Faces) {
		t.Fatalf("expected %d faces, got %d", len(m.Faces), len(m2.Faces))
	}
	for i := range m.Faces {
		a, b := m.Faces[i].Vertices(), m2.Faces[i].Vertices()
		if len(a) != len(b) {
			t.Fatalf("face %d: expected %d vertices, got %d", i, len(a), len(b))
		}
		for j := range a {
			if !a[j].EquivalentTo(b[j], 1e-9) {
				t.Errorf("face %d vertex %d: expected %v, got %v", i, j, a[j], b[j])
			}
		}
	}
	if len(m2.Entities[0].Properties) != 2 {
		t.Errorf("expected 2 light properties, got %+v", m2.Entities[0].Properties)
	}
}

const displacementScene = `
solids:
  - id: 1
    sides:
      - normal: [0,0,1]
        distance: 0
        texture: nature/grass
        alignment: {u_axis: [1,0,0], v_axis: [0,-1,0], shift: [8,-4], scale: [0.5,0.5], opacity: 1}
        displacement: {power: 2, start_position: [-64,-64,0], elevation: 4}
      - normal: [0,0,-1]
        distance: 8
        texture: nature/dirt
      - normal: [1,0,0]
        distance: 64
        texture: nature/dirt
      - normal: [-1,0,0]
        distance: 64
        texture: nature/dirt
      - normal: [0,1,0]
        distance: 64
        texture: nature/dirt
      - normal: [0,-1,0]
        distance: 64
        texture: nature/dirt
`

func TestSceneFromMap_RoundTripDisplacement(t *testing.T) {
	scene, err := ParseScene([]byte(displacementScene))
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	m, err := scene.Build(geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := SceneFromMap(m).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	again, err := ParseScene(data)
	if err != nil {
		t.Fatalf("ParseScene of marshalled scene failed: %v", err)
	}
	m2, err := again.Build(geometry.DefaultTolerances())
	if err != nil {
		t.Fatalf("Build of marshalled scene failed: %v", err)
	}

	if len(m2.Faces) != len(m.Faces) {
		t.Fatalf("expected %d faces, got %d", len(m.Faces), len(m2.Faces))
	}
	hidden, displaced := 0, 0
	for i := range m2.Faces {
		a, b := &m.Faces[i], &m2.Faces[i]
		if a.Hidden != b.Hidden {
			t.Errorf("face %d: expected hidden %v, got %v", i, a.Hidden, b.Hidden)
		}
		if b.Hidden {
			hidden++
		}
		if a.Texture != b.Texture {
			t.Errorf("face %d: expected texture %+v, got %+v", i, a.Texture, b.Texture)
		}
		if !a.Plane().EquivalentTo(b.Plane(), 1e-9) {
			t.Errorf("face %d: expected plane %+v, got %+v", i, a.Plane(), b.Plane())
		}
		d, ok := b.Displacement()
		if !ok {
			continue
		}
		displaced++
		if d.Power != 2 || d.Elevation != 4 {
			t.Errorf("face %d: expected power 2 elevation 4, got %d %v", i, d.Power, d.Elevation)
		}
		if b.Box.Max.Z != 4 {
			t.Errorf("face %d: expected displaced box top 4, got %v", i, b.Box.Max.Z)
		}
	}
	if hidden != 5 {
		t.Errorf("expected 5 hidden faces, got %d", hidden)
	}
	if displaced != 1 {
		t.Errorf("expected 1 displacement, got %d", displaced)
	}
}
