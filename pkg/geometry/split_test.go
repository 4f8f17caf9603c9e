package geometry

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/brushlight/pkg/math"
)

func TestSplitCompleteness(t *testing.T) {
	hexagon, err := NewPolygon([]math.Vec3{
		{X: 10, Y: 0}, {X: 5, Y: 8.66}, {X: -5, Y: 8.66},
		{X: -10, Y: 0}, {X: -5, Y: -8.66}, {X: 5, Y: -8.66},
	}, testEps)
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	planes := []struct {
		name   string
		normal math.Vec3
		d      float64
	}{
		{"vertical", math.UnitX, 3},
		{"through two vertices", math.UnitY, 0},
		{"oblique", math.Vec3{X: 1, Y: 1}, 2},
		{"tilted out of plane", math.Vec3{X: 1, Y: -0.5, Z: 0.7}, -1},
	}
	for _, tc := range planes {
		t.Run(tc.name, func(t *testing.T) {
			clip, _ := math.NewPlane(tc.normal, tc.d)
			res, err := hexagon.Split(clip, testEps)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if !res.Spanning() {
				t.Fatalf("Split() did not produce two pieces: %+v", res)
			}
			total := res.Back.Area() + res.Front.Area()
			if gomath.Abs(total-hexagon.Area()) > 1e-6 {
				t.Errorf("piece areas sum to %v, want %v", total, hexagon.Area())
			}
			for name, piece := range map[string]*Polygon{"back": res.Back, "front": res.Front} {
				if !piece.IsConvex(testEps) {
					t.Errorf("%s piece is not convex: %v", name, piece.Vertices)
				}
				if !piece.IsValid(testEps) {
					t.Errorf("%s piece is off the parent plane", name)
				}
			}
			for _, v := range res.Back.Vertices {
				if clip.OnPlane(v, testEps) == math.SideFront {
					t.Errorf("back piece vertex %v is in front of the plane", v)
				}
			}
			for _, v := range res.Front.Vertices {
				if clip.OnPlane(v, testEps) == math.SideBack {
					t.Errorf("front piece vertex %v is behind the plane", v)
				}
			}
		})
	}
}

func TestSplitOnPlaneVerticesGoToBothSides(t *testing.T) {
	p := square(10)
	// The diagonal from (0,0) to (10,10).
	clip, _ := math.NewPlane(math.Vec3{X: 1, Y: -1}, 0)
	res, err := p.Split(clip, testEps)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(res.Back.Vertices) != 3 || len(res.Front.Vertices) != 3 {
		t.Fatalf("pieces have %d/%d vertices, want 3/3", len(res.Back.Vertices), len(res.Front.Vertices))
	}
	for _, want := range []math.Vec3{{}, {X: 10, Y: 10}} {
		for name, piece := range map[string]*Polygon{"back": res.Back, "front": res.Front} {
			found := false
			for _, v := range piece.Vertices {
				if v.EquivalentTo(want, 1e-9) {
					found = true
				}
			}
			if !found {
				t.Errorf("%s piece is missing on-plane vertex %v", name, want)
			}
		}
	}
}

func TestSplitNonSpanning(t *testing.T) {
	p := square(10)
	tests := []struct {
		name  string
		plane math.Plane
		check func(SplitResult) bool
	}{
		{"back", math.Plane{Normal: math.UnitX, D: 50}, func(r SplitResult) bool { return r.Back != nil && r.Front == nil }},
		{"front", math.Plane{Normal: math.UnitX, D: -50}, func(r SplitResult) bool { return r.Front != nil && r.Back == nil }},
		{"coplanar front", math.Plane{Normal: math.UnitZ}, func(r SplitResult) bool { return r.CoplanarFront != nil }},
		{"coplanar back", math.Plane{Normal: math.UnitZ.Neg()}, func(r SplitResult) bool { return r.CoplanarBack != nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := p.Split(tc.plane, testEps)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if !tc.check(res) {
				t.Errorf("Split() = %+v", res)
			}
		})
	}
}

func TestSplitMalformed(t *testing.T) {
	p := Polygon{
		Vertices: []math.Vec3{{X: 0, Y: 0, Z: 5}, {X: gomath.Inf(1), Y: 0, Z: -5}, {X: 1, Y: 0, Z: -5}},
		Plane:    math.Plane{Normal: math.UnitY},
	}
	clip := math.Plane{Normal: math.UnitZ, D: 0}
	if _, err := p.Split(clip, testEps); !errors.Is(err, ErrMalformedSplit) {
		t.Errorf("Split() error = %v, want %v", err, ErrMalformedSplit)
	}
}

func TestClip(t *testing.T) {
	p := square(10)
	kept, err := p.Clip(math.Plane{Normal: math.UnitX, D: 4}, testEps)
	if err != nil {
		t.Fatalf("Clip() error = %v", err)
	}
	if kept == nil || gomath.Abs(kept.Area()-40) > 1e-9 {
		t.Errorf("Clip() kept %v, want a 4x10 rectangle", kept)
	}
	gone, err := p.Clip(math.Plane{Normal: math.UnitX, D: -1}, testEps)
	if err != nil || gone != nil {
		t.Errorf("Clip() of a polygon in front = %v, %v, want nil, nil", gone, err)
	}
}
