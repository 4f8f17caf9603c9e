// Package config handles lmbake configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Faultbox/brushlight/internal/engine/lightmap"
	"github.com/Faultbox/brushlight/pkg/geometry"
)

// Config holds all bake settings.
type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Lightmap LightmapConfig `yaml:"lightmap"`
	Bake     BakeConfig     `yaml:"bake"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GeometryConfig holds solid construction tolerances.
type GeometryConfig struct {
	Epsilon    float64 `yaml:"epsilon"`
	SeedRadius float64 `yaml:"seed_radius"`
	MinExtent  float64 `yaml:"min_extent"`
}

// LightmapConfig holds grouping, packing and shading settings.
type LightmapConfig struct {
	AtlasSize        int     `yaml:"atlas_size"`
	Downscale        float64 `yaml:"downscale"`         // World units per luxel
	Margin           int     `yaml:"margin"`            // Luxels between packed groups
	NormalDeviation  float64 `yaml:"normal_deviation"`  // Squared normal difference
	PlaneDistance    float64 `yaml:"plane_distance"`    // Coplanar distance tolerance
	BoxPadding       float64 `yaml:"box_padding"`       // Group box padding
	SelfShadowDistSq float64 `yaml:"self_shadow_dist_sq"`
	RemoveTexture    string  `yaml:"remove_texture"`
	StrictLights     bool    `yaml:"strict_lights"`
}

// BakeConfig holds worker pool settings.
type BakeConfig struct {
	Concurrency   int           `yaml:"concurrency"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// OutputConfig holds output file names. Relative names are resolved
// against Dir; an empty name disables that output.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	AtlasPNG    string `yaml:"atlas_png"`
	Mesh        string `yaml:"mesh"`
	GLB         string `yaml:"glb"`
	Preview     string `yaml:"preview"`
	PreviewSize int    `yaml:"preview_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the editor's default values.
func Default() *Config {
	tol := geometry.DefaultTolerances()
	opts := lightmap.DefaultOptions()
	return &Config{
		Geometry: GeometryConfig{
			Epsilon:    tol.Epsilon,
			SeedRadius: tol.SeedRadius,
			MinExtent:  tol.MinExtent,
		},
		Lightmap: LightmapConfig{
			AtlasSize:        opts.AtlasSize,
			Downscale:        opts.DownscaleFactor,
			Margin:           opts.GroupMargin,
			NormalDeviation:  opts.NormalDeviation,
			PlaneDistance:    opts.PlaneDistance,
			BoxPadding:       opts.BoxPadding,
			SelfShadowDistSq: opts.SelfShadowDistSq,
			RemoveTexture:    opts.RemoveTexture,
			StrictLights:     opts.StrictLights,
		},
		Bake: BakeConfig{
			Concurrency:   opts.Concurrency,
			FlushInterval: opts.FlushInterval,
		},
		Output: OutputConfig{
			Dir:         ".",
			AtlasPNG:    "lightmap.png",
			Mesh:        "map.mesh",
			GLB:         "map.glb",
			Preview:     "",
			PreviewSize: 512,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// GeometryTolerances returns the solid construction tolerances.
func (c *Config) GeometryTolerances() geometry.Tolerances {
	return geometry.Tolerances{
		Epsilon:    c.Geometry.Epsilon,
		SeedRadius: c.Geometry.SeedRadius,
		MinExtent:  c.Geometry.MinExtent,
	}
}

// LightmapOptions returns the baker options.
func (c *Config) LightmapOptions() lightmap.Options {
	return lightmap.Options{
		AtlasSize:        c.Lightmap.AtlasSize,
		DownscaleFactor:  c.Lightmap.Downscale,
		GroupMargin:      c.Lightmap.Margin,
		NormalDeviation:  c.Lightmap.NormalDeviation,
		PlaneDistance:    c.Lightmap.PlaneDistance,
		BoxPadding:       c.Lightmap.BoxPadding,
		SelfShadowDistSq: c.Lightmap.SelfShadowDistSq,
		RemoveTexture:    c.Lightmap.RemoveTexture,
		StrictLights:     c.Lightmap.StrictLights,
		Concurrency:      c.Bake.Concurrency,
		FlushInterval:    c.Bake.FlushInterval,
	}
}

// Validate checks that the settings can be used for a bake.
func (c *Config) Validate() error {
	g := c.Geometry
	if !(g.Epsilon > 0) || !(g.SeedRadius > 0) || !(g.MinExtent >= 0) {
		return fmt.Errorf("invalid geometry tolerances: epsilon %v, seed_radius %v, min_extent %v",
			g.Epsilon, g.SeedRadius, g.MinExtent)
	}
	if err := c.LightmapOptions().Validate(); err != nil {
		return err
	}
	if c.Output.PreviewSize < 0 {
		return fmt.Errorf("invalid output preview_size: %d", c.Output.PreviewSize)
	}
	return nil
}

// OutputPath resolves an output file name against the output directory.
// It returns "" for a disabled output.
func (c *Config) OutputPath(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) || c.Output.Dir == "" {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}
