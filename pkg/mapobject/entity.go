package mapobject

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/Faultbox/brushlight/pkg/math"
)

// Property errors.
var (
	ErrMissingProperty = errors.New("missing property")
	ErrInvalidProperty = errors.New("invalid property")
)

// Entity is a point entity such as a light.
type Entity struct {
	ID         int
	ClassName  string
	Origin     math.Vec3
	Properties []Property
}

// Property is a string key/value pair of an entity.
type Property struct {
	Key   string
	Value string
}

// Property returns the first property whose key matches, ignoring case.
func (e *Entity) Property(key string) (Property, bool) {
	for _, p := range e.Properties {
		if strings.EqualFold(p.Key, key) {
			return p, true
		}
	}
	return Property{}, false
}

// MustProperty is like Property but reports a missing key as an error.
func (e *Entity) MustProperty(key string) (Property, error) {
	p, ok := e.Property(key)
	if !ok {
		return Property{}, fmt.Errorf("%w: %q on %s %d", ErrMissingProperty, key, e.ClassName, e.ID)
	}
	return p, nil
}

// Set replaces the value of key, or appends a new property.
func (e *Entity) Set(key, value string) {
	for i, p := range e.Properties {
		if strings.EqualFold(p.Key, key) {
			e.Properties[i].Value = value
			return
		}
	}
	e.Properties = append(e.Properties, Property{Key: key, Value: value})
}

// Float parses the value as a single number.
func (p Property) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidProperty, p.Key, p.Value)
	}
	return f, nil
}

// Coordinate parses the value as exactly three space-separated numbers.
func (p Property) Coordinate() (math.Vec3, error) {
	fields := strings.Fields(p.Value)
	if len(fields) != 3 {
		return math.Vec3{}, fmt.Errorf("%w: %s=%q needs 3 numbers", ErrInvalidProperty, p.Key, p.Value)
	}
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %s=%q is not a coordinate", ErrInvalidProperty, p.Key, p.Value)
		}
		xyz[i] = v
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// Colour parses the value as "r g b brightness", four integers. The
// brightness is validated but not applied.
func (p Property) Colour() (color.RGBA, error) {
	fields := strings.Fields(p.Value)
	if len(fields) != 4 {
		return color.RGBA{}, fmt.Errorf("%w: %s=%q needs 4 integers", ErrInvalidProperty, p.Key, p.Value)
	}
	var c [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %s=%q is not a colour", ErrInvalidProperty, p.Key, p.Value)
		}
		c[i] = v
	}
	for _, v := range c[:3] {
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("%w: %s=%q channel out of range", ErrInvalidProperty, p.Key, p.Value)
		}
	}
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}, nil
}
