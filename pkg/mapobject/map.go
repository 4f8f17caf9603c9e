// Package mapobject stores brush solids, their faces and point entities.
//
// Solids and faces live in index-addressed arenas owned by a Map. A face
// refers to its solid by SolidID; the reference is only used for lookup.
package mapobject

import (
	"errors"
	"fmt"

	"github.com/Faultbox/brushlight/pkg/geometry"
	"github.com/Faultbox/brushlight/pkg/math"
)

// SolidID indexes Map.Solids.
type SolidID int

// FaceID indexes Map.Faces.
type FaceID int

// Map holds every object of a brush map.
type Map struct {
	Solids   []Solid
	Faces    []Face
	Entities []Entity
}

// Solid is a convex brush bounded by its faces.
type Solid struct {
	ID    SolidID
	Faces []FaceID
	Box   math.Box
}

// Side describes one bounding plane of a solid before construction.
//
// When every side of a solid carries a stored vertex loop the loops are used
// as-is; otherwise the faces are rebuilt from the planes.
type Side struct {
	Plane        math.Plane
	Vertices     []math.Vec3
	Texture      Texture
	Displacement *Displacement
}

// New returns an empty map.
func New() *Map {
	return &Map{}
}

// Solid returns the solid with the given id.
func (m *Map) Solid(id SolidID) *Solid {
	return &m.Solids[id]
}

// Face returns the face with the given id.
func (m *Map) Face(id FaceID) *Face {
	return &m.Faces[id]
}

// SolidFaces returns the faces of a solid in order.
func (m *Map) SolidFaces(id SolidID) []*Face {
	s := &m.Solids[id]
	faces := make([]*Face, len(s.Faces))
	for i, fid := range s.Faces {
		faces[i] = &m.Faces[fid]
	}
	return faces
}

// AddEntity appends an entity and returns its ID, which is its index.
func (m *Map) AddEntity(e Entity) int {
	e.ID = len(m.Entities)
	m.Entities = append(m.Entities, e)
	return e.ID
}

// AddSolid builds a solid from its sides and inserts it into the map.
// A solid that cannot be built is not inserted; the error wraps
// geometry.ErrInvalidSolid.
func (m *Map) AddSolid(sides []Side, tol geometry.Tolerances) (SolidID, error) {
	stored := len(sides) > 0
	for _, s := range sides {
		if len(s.Vertices) < 3 {
			stored = false
			break
		}
	}

	var (
		faces []Face
		err   error
	)
	if stored {
		faces, err = facesFromLoops(sides, tol)
	} else {
		faces, err = facesFromPlanes(sides, tol)
	}
	if err != nil {
		return -1, err
	}

	box := faces[0].Box
	hasDisplacement := false
	for i := range faces {
		box = box.Union(faces[i].Box)
		if _, ok := faces[i].Displacement(); ok {
			hasDisplacement = true
		}
	}
	if d := box.Dimensions(); d.X < tol.MinExtent || d.Y < tol.MinExtent || d.Z < tol.MinExtent {
		return -1, fmt.Errorf("%w: extent %v below %v", geometry.ErrInvalidSolid, d, tol.MinExtent)
	}
	// Brushes carrying displacements only show the displaced surfaces.
	if hasDisplacement {
		for i := range faces {
			_, ok := faces[i].Displacement()
			faces[i].Hidden = !ok
		}
	}

	id := SolidID(len(m.Solids))
	solid := Solid{ID: id, Box: box, Faces: make([]FaceID, len(faces))}
	for i := range faces {
		fid := FaceID(len(m.Faces))
		faces[i].ID = fid
		faces[i].Solid = id
		solid.Faces[i] = fid
		m.Faces = append(m.Faces, faces[i])
	}
	m.Solids = append(m.Solids, solid)
	return id, nil
}

func facesFromPlanes(sides []Side, tol geometry.Tolerances) ([]Face, error) {
	planes := make([]math.Plane, len(sides))
	for i, s := range sides {
		planes[i] = s.Plane
	}
	polys, source, err := geometry.SolidFromPlanesIndexed(planes, tol)
	if err != nil {
		return nil, err
	}

	faces := make([]Face, len(polys))
	for i, poly := range polys {
		side := sides[source[i]]
		faces[i] = Face{Polygon: poly, Texture: side.Texture}
		if side.Displacement != nil {
			faces[i].SetDisplacement(side.Displacement.Clone())
			faces[i].AlignTextureToWorld()
		}
		if err := faces[i].UpdateBox(); err != nil {
			return nil, fmt.Errorf("%w: %w", geometry.ErrInvalidSolid, err)
		}
	}
	return faces, nil
}

func facesFromLoops(sides []Side, tol geometry.Tolerances) ([]Face, error) {
	if len(sides) < 4 {
		return nil, fmt.Errorf("%w: %d faces", geometry.ErrInvalidSolid, len(sides))
	}
	faces := make([]Face, len(sides))
	for i, s := range sides {
		poly, err := geometry.NewPolygon(s.Vertices, tol.Epsilon)
		if err != nil {
			return nil, fmt.Errorf("%w: side %d: %w", geometry.ErrInvalidSolid, i, err)
		}
		faces[i] = Face{Polygon: poly, Texture: s.Texture}
		if s.Displacement != nil {
			faces[i].SetDisplacement(s.Displacement.Clone())
		}
		if err := faces[i].UpdateBox(); err != nil {
			return nil, fmt.Errorf("%w: %w", geometry.ErrInvalidSolid, err)
		}
	}
	return faces, nil
}

// AddSolids adds every solid, skipping the ones that cannot be built. It
// returns the ids of the inserted solids and the joined errors of the
// rejected ones.
func (m *Map) AddSolids(solids [][]Side, tol geometry.Tolerances) ([]SolidID, error) {
	ids := make([]SolidID, 0, len(solids))
	var errs []error
	for i, sides := range solids {
		id, err := m.AddSolid(sides, tol)
		if err != nil {
			errs = append(errs, fmt.Errorf("solid %d: %w", i, err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}
