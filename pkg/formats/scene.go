package formats

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/mapobject"
	"github.com/Faultbox/brushlight/pkg/math"
)

// ErrInvalidScene is returned for scene data that cannot describe a map.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is a YAML map description: brush solids given by their sides and
// point entities.
type Scene struct {
	Solids   []SceneSolid  `yaml:"solids"`
	Entities []SceneEntity `yaml:"entities"`
}

// SceneSolid is one brush.
type SceneSolid struct {
	ID    int         `yaml:"id"`
	Sides []SceneSide `yaml:"sides"`
}

// SceneSide is a bounding plane of a solid. The plane is given either by
// three points, counter-clockwise seen from the front, or by a normal and
// distance. Vertices, when every side of a solid has them, are used as the
// face loop directly.
type SceneSide struct {
	Plane        [][3]float64       `yaml:"plane,omitempty"`
	Normal       []float64          `yaml:"normal,omitempty"`
	Distance     float64            `yaml:"distance,omitempty"`
	Vertices     [][3]float64       `yaml:"vertices,omitempty"`
	Texture      string             `yaml:"texture"`
	Alignment    *SceneAlignment    `yaml:"alignment,omitempty"`
	Displacement *SceneDisplacement `yaml:"displacement,omitempty"`
}

// SceneAlignment is the texture alignment of a side. A side without one is
// world aligned with unit scale.
type SceneAlignment struct {
	UAxis    [3]float64 `yaml:"u_axis"`
	VAxis    [3]float64 `yaml:"v_axis"`
	Shift    [2]float64 `yaml:"shift"`
	Scale    [2]float64 `yaml:"scale"`
	Rotation float64    `yaml:"rotation,omitempty"`
	Opacity  float64    `yaml:"opacity"`
}

// SceneDisplacement describes a displacement surface over a side.
type SceneDisplacement struct {
	Power         int          `yaml:"power"`
	StartPosition [3]float64   `yaml:"start_position"`
	Elevation     float64      `yaml:"elevation"`
	Normals       [][3]float64 `yaml:"normals,omitempty"`
	Distances     []float64    `yaml:"distances,omitempty"`
}

// SceneEntity is a point entity such as a light.
type SceneEntity struct {
	ClassName  string       `yaml:"classname"`
	Origin     [3]float64   `yaml:"origin"`
	Properties PropertyList `yaml:"properties,omitempty"`
}

// PropertyList is an ordered list of entity properties, written in YAML as
// a mapping.
type PropertyList []mapobject.Property

// UnmarshalYAML implements yaml.Unmarshaler, keeping the key order.
func (p *PropertyList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: properties must be a mapping", ErrInvalidScene, node.Line)
	}
	list := make(PropertyList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: property values must be scalars", ErrInvalidScene, key.Line)
		}
		list = append(list, mapobject.Property{Key: key.Value, Value: value.Value})
	}
	*p = list
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p PropertyList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, prop := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// ParseScene parses a scene from YAML.
func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	return &scene, nil
}

// ParseSceneFile parses a scene file from disk.
func ParseSceneFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return ParseScene(data)
}

// Build creates a map from the scene. Solids that cannot be built are
// left out and reported in the joined error; the map holds everything
// else.
func (s *Scene) Build(tol geometry.Tolerances) (*mapobject.Map, error) {
	m := mapobject.New()
	var errs []error
	for _, solid := range s.Solids {
		sides, err := solid.sides()
		if err == nil {
			_, err = m.AddSolid(sides, tol)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("solid %d: %w", solid.ID, err))
		}
	}
	for _, e := range s.Entities {
		m.AddEntity(mapobject.Entity{
			ClassName:  e.ClassName,
			Origin:     vec3(e.Origin),
			Properties: append([]mapobject.Property(nil), e.Properties...),
		})
	}
	return m, errors.Join(errs...)
}

func (s SceneSolid) sides() ([]mapobject.Side, error) {
	sides := make([]mapobject.Side, len(s.Sides))
	for i, ss := range s.Sides {
		side := mapobject.Side{Texture: mapobject.DefaultTexture(ss.Texture)}
		if a := ss.Alignment; a != nil {
			side.Texture.UAxis = vec3(a.UAxis)
			side.Texture.VAxis = vec3(a.VAxis)
			side.Texture.XShift, side.Texture.YShift = a.Shift[0], a.Shift[1]
			side.Texture.XScale, side.Texture.YScale = a.Scale[0], a.Scale[1]
			side.Texture.Rotation = a.Rotation
			side.Texture.Opacity = a.Opacity
		}
		for _, v := range ss.Vertices {
			side.Vertices = append(side.Vertices, vec3(v))
		}

		switch {
		case len(ss.Plane) == 3:
			p, ok := math.PlaneFromPoints(vec3(ss.Plane[0]), vec3(ss.Plane[1]), vec3(ss.Plane[2]))
			if !ok {
				return nil, fmt.Errorf("%w: side %d plane points are collinear", ErrInvalidScene, i)
			}
			side.Plane = p
		case len(ss.Normal) == 3:
			p, ok := math.NewPlane(math.Vec3{X: ss.Normal[0], Y: ss.Normal[1], Z: ss.Normal[2]}, ss.Distance)
			if !ok {
				return nil, fmt.Errorf("%w: side %d has a zero normal", ErrInvalidScene, i)
			}
			side.Plane = p
		case len(ss.Vertices) >= 3:
			p, ok := math.PlaneFromPoints(side.Vertices[0], side.Vertices[1], side.Vertices[2])
			if !ok {
				return nil, fmt.Errorf("%w: side %d vertices are collinear", ErrInvalidScene, i)
			}
			side.Plane = p
		default:
			return nil, fmt.Errorf("%w: side %d needs three plane points, a normal or vertices", ErrInvalidScene, i)
		}

		if d := ss.Displacement; d != nil {
			disp := &mapobject.Displacement{
				Power:         d.Power,
				StartPosition: vec3(d.StartPosition),
				Elevation:     d.Elevation,
				Distances:     d.Distances,
			}
			for _, n := range d.Normals {
				disp.Normals = append(disp.Normals, vec3(n))
			}
			side.Displacement = disp
		}
		sides[i] = side
	}
	return sides, nil
}

// SceneFromMap describes the solids and entities of m. Every face is
// written with its plane, vertex loop, texture alignment and displacement so
// the scene rebuilds the same map.
func SceneFromMap(m *mapobject.Map) *Scene {
	scene := &Scene{}
	for _, solid := range m.Solids {
		ss := SceneSolid{ID: int(solid.ID)}
		for _, f := range m.SolidFaces(solid.ID) {
			ss.Sides = append(ss.Sides, sceneSide(f))
		}
		scene.Solids = append(scene.Solids, ss)
	}
	for _, e := range m.Entities {
		scene.Entities = append(scene.Entities, SceneEntity{
			ClassName:  e.ClassName,
			Origin:     array3(e.Origin),
			Properties: PropertyList(e.Properties),
		})
	}
	return scene
}

func sceneSide(f *mapobject.Face) SceneSide {
	plane := f.Plane()
	tex := f.Texture
	side := SceneSide{
		Normal:   []float64{plane.Normal.X, plane.Normal.Y, plane.Normal.Z},
		Distance: plane.D,
		Texture:  tex.Name,
		Alignment: &SceneAlignment{
			UAxis:    array3(tex.UAxis),
			VAxis:    array3(tex.VAxis),
			Shift:    [2]float64{tex.XShift, tex.YShift},
			Scale:    [2]float64{tex.XScale, tex.YScale},
			Rotation: tex.Rotation,
			Opacity:  tex.Opacity,
		},
	}
	for _, v := range f.Vertices() {
		side.Vertices = append(side.Vertices, array3(v))
	}
	if d, ok := f.Displacement(); ok {
		sd := &SceneDisplacement{
			Power:         d.Power,
			StartPosition: array3(d.StartPosition),
			Elevation:     d.Elevation,
			Distances:     append([]float64(nil), d.Distances...),
		}
		for _, n := range d.Normals {
			sd.Normals = append(sd.Normals, array3(n))
		}
		side.Displacement = sd
	}
	return side
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	return data, nil
}

func vec3(v [3]float64) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func array3(v math.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
