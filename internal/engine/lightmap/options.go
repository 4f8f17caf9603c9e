// Package lightmap groups coplanar faces, packs them into a lightmap atlas
// and bakes point light illumination with hard shadows into it.
package lightmap

import (
	"fmt"
	gomath "math"
	"time"
)

// MaxAtlasSize is the largest atlas whose coordinates fit the int16 vertex
// UVs.
const MaxAtlasSize = gomath.MaxInt16

// Options controls grouping, packing and baking.
type Options struct {
	// AtlasSize is the width and height of the square atlas in luxels.
	AtlasSize int `yaml:"atlas_size"`
	// DownscaleFactor is the number of world units covered by one luxel.
	DownscaleFactor float64 `yaml:"downscale"`
	// GroupMargin is the gap in luxels left after every packed group.
	GroupMargin int `yaml:"margin"`

	// NormalDeviation is the squared normal difference below which two
	// faces may share a group.
	NormalDeviation float64 `yaml:"normal_deviation"`
	// PlaneDistance is the largest distance of a face from a group plane.
	PlaneDistance float64 `yaml:"plane_distance"`
	// BoxPadding grows face and group boxes before they are compared.
	BoxPadding float64 `yaml:"box_padding"`

	// SelfShadowDistSq is the squared distance from a luxel within which a
	// blocker hit is ignored.
	SelfShadowDistSq float64 `yaml:"self_shadow_dist_sq"`
	// RemoveTexture marks faces that are never baked (case-insensitive).
	RemoveTexture string `yaml:"remove_texture"`
	// StrictLights fails a bake on any invalid light entity. When false,
	// invalid lights are skipped and counted.
	StrictLights bool `yaml:"strict_lights"`

	// Concurrency is the number of faces baked at the same time.
	Concurrency int `yaml:"concurrency"`
	// FlushInterval is the period of progress snapshots. Zero disables them.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DefaultOptions returns the editor's baking settings.
func DefaultOptions() Options {
	return Options{
		AtlasSize:        2048,
		DownscaleFactor:  10,
		GroupMargin:      3,
		NormalDeviation:  0.1,
		PlaneDistance:    4,
		BoxPadding:       0.75,
		SelfShadowDistSq: 5,
		RemoveTexture:    "tooltextures/remove_face",
		StrictLights:     true,
		Concurrency:      8,
		FlushInterval:    2 * time.Second,
	}
}

// ConfigError reports an unusable option.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("lightmap: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks that every option is usable.
func (o Options) Validate() error {
	switch {
	case o.AtlasSize < 1 || o.AtlasSize > MaxAtlasSize:
		return &ConfigError{"atlas_size", fmt.Sprintf("%d is outside [1, %d]", o.AtlasSize, MaxAtlasSize)}
	case !(o.DownscaleFactor > 0) || gomath.IsInf(o.DownscaleFactor, 0):
		return &ConfigError{"downscale", "must be a positive number"}
	case o.GroupMargin < 1:
		return &ConfigError{"margin", "must be at least 1"}
	case !(o.NormalDeviation > 0):
		return &ConfigError{"normal_deviation", "must be positive"}
	case !(o.PlaneDistance >= 0):
		return &ConfigError{"plane_distance", "must not be negative"}
	case !(o.BoxPadding >= 0):
		return &ConfigError{"box_padding", "must not be negative"}
	case !(o.SelfShadowDistSq >= 0):
		return &ConfigError{"self_shadow_dist_sq", "must not be negative"}
	case o.Concurrency < 1:
		return &ConfigError{"concurrency", "must be at least 1"}
	case o.FlushInterval < 0:
		return &ConfigError{"flush_interval", "must not be negative"}
	}
	return nil
}
