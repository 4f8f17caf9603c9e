package mapobject

import (
	"errors"
	"image/color"
	"testing"

	"github.com/Faultbox/brushlight/pkg/math"
)

func TestPropertyCoordinate(t *testing.T) {
	tests := []struct {
		value   string
		want    math.Vec3
		wantErr bool
	}{
		{"255 128 0", math.Vec3{X: 255, Y: 128}, false},
		{" 1.5  -2 3e2 ", math.Vec3{X: 1.5, Y: -2, Z: 300}, false},
		{"1 2", math.Vec3{}, true},
		{"1 2 3 4", math.Vec3{}, true},
		{"1 two 3", math.Vec3{}, true},
		{"", math.Vec3{}, true},
	}
	for _, tc := range tests {
		got, err := Property{Key: "color", Value: tc.value}.Coordinate()
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidProperty) {
				t.Errorf("Coordinate(%q) error = %v, want %v", tc.value, err, ErrInvalidProperty)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Coordinate(%q) = %v, %v, want %v", tc.value, got, err, tc.want)
		}
	}
}

func TestPropertyColour(t *testing.T) {
	got, err := Property{Key: "_light", Value: "255 200 100 300"}.Colour()
	if err != nil {
		t.Fatalf("Colour() error = %v", err)
	}
	if want := (color.RGBA{R: 255, G: 200, B: 100, A: 255}); got != want {
		t.Errorf("Colour() = %v, want %v", got, want)
	}
	for _, bad := range []string{"255 200 100", "255 200 100 x", "256 0 0 1", "1.5 2 3 4"} {
		if _, err := (Property{Key: "_light", Value: bad}).Colour(); !errors.Is(err, ErrInvalidProperty) {
			t.Errorf("Colour(%q) error = %v, want %v", bad, err, ErrInvalidProperty)
		}
	}
}

func TestPropertyFloat(t *testing.T) {
	if got, err := (Property{Key: "range", Value: " 200.5"}).Float(); err != nil || got != 200.5 {
		t.Errorf("Float() = %v, %v, want 200.5", got, err)
	}
	if _, err := (Property{Key: "range", Value: "far"}).Float(); !errors.Is(err, ErrInvalidProperty) {
		t.Errorf("Float() error = %v, want %v", err, ErrInvalidProperty)
	}
}

func TestEntityProperties(t *testing.T) {
	e := Entity{ID: 3, ClassName: "light"}
	e.Set("Range", "100")
	e.Set("range", "200")
	if len(e.Properties) != 1 {
		t.Fatalf("Set() duplicated a key: %v", e.Properties)
	}
	p, ok := e.Property("RANGE")
	if !ok || p.Value != "200" {
		t.Errorf("Property() = %v, %v, want 200", p, ok)
	}
	if _, err := e.MustProperty("color"); !errors.Is(err, ErrMissingProperty) {
		t.Errorf("MustProperty() error = %v, want %v", err, ErrMissingProperty)
	}
}
