// Package lighting extracts point lights from map entities for baking.
package lighting

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/brushlight/internal/engine/picking"
	"github.com/Faultbox/brushlight/pkg/mapobject"
)

// ClassName is the entity class that defines a point light.
const ClassName = "light"

// ErrInvalidLight is returned for a light entity whose properties cannot be
// used.
var ErrInvalidLight = errors.New("invalid light")

// Light is a point light used by the baker.
type Light struct {
	EntityID int
	Origin   mgl32.Vec3 // World position
	Color    mgl32.Vec3 // RGB, 0-255 per channel
	Range    float32    // Distance at which the light fades to zero
}

// Box returns the cube of side 2*Range centred on the light.
func (l Light) Box() picking.AABB {
	return picking.AABB{
		Min: l.Origin.Sub(mgl32.Vec3{l.Range, l.Range, l.Range}),
		Max: l.Origin.Add(mgl32.Vec3{l.Range, l.Range, l.Range}),
	}
}

// FromEntity converts a light entity. The "range" property must be a
// positive number. The colour comes from "color" (three numbers) or, when
// that is absent, from "_light" ("r g b brightness").
func FromEntity(e *mapobject.Entity) (Light, error) {
	light := Light{
		EntityID: e.ID,
		Origin:   mgl32.Vec3{float32(e.Origin.X), float32(e.Origin.Y), float32(e.Origin.Z)},
	}
	if !finite(light.Origin) {
		return Light{}, fmt.Errorf("%w: entity %d origin is not finite", ErrInvalidLight, e.ID)
	}

	p, err := e.MustProperty("range")
	if err != nil {
		return Light{}, fmt.Errorf("%w: %w", ErrInvalidLight, err)
	}
	r, err := p.Float()
	if err != nil {
		return Light{}, fmt.Errorf("%w: entity %d: %w", ErrInvalidLight, e.ID, err)
	}
	light.Range = float32(r)
	if !(light.Range > 0) || math32.IsInf(light.Range, 0) {
		return Light{}, fmt.Errorf("%w: entity %d range %v must be positive", ErrInvalidLight, e.ID, r)
	}

	light.Color, err = entityColor(e)
	if err != nil {
		return Light{}, fmt.Errorf("%w: entity %d: %w", ErrInvalidLight, e.ID, err)
	}
	if !finite(light.Color) || light.Color.X() < 0 || light.Color.Y() < 0 || light.Color.Z() < 0 {
		return Light{}, fmt.Errorf("%w: entity %d colour %v", ErrInvalidLight, e.ID, light.Color)
	}
	return light, nil
}

func entityColor(e *mapobject.Entity) (mgl32.Vec3, error) {
	if p, ok := e.Property("color"); ok {
		c, err := p.Coordinate()
		if err != nil {
			return mgl32.Vec3{}, err
		}
		return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}, nil
	}
	p, err := e.MustProperty("_light")
	if err != nil {
		return mgl32.Vec3{}, err
	}
	c, err := p.Colour()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// FromEntities returns the lights of every entity of class ClassName, in
// entity order. Invalid lights are left out and reported in the joined
// error; the valid ones are still returned.
func FromEntities(entities []mapobject.Entity) ([]Light, error) {
	var (
		lights []Light
		errs   []error
	)
	for i := range entities {
		e := &entities[i]
		if e.ClassName != ClassName {
			continue
		}
		light, err := FromEntity(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lights = append(lights, light)
	}
	return lights, errors.Join(errs...)
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
