// lmbake builds brush maps and bakes their lightmaps.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/brushlight/internal/config"
	"github.com/Faultbox/brushlight/internal/engine/debug"
	"github.com/Faultbox/brushlight/internal/engine/lighting"
	"github.com/Faultbox/brushlight/internal/engine/lightmap"
	"github.com/Faultbox/brushlight/internal/logger"
	"github.com/Faultbox/brushlight/pkg/formats"
	"github.com/Faultbox/brushlight/pkg/mapobject"
)

var errUsage = errors.New("invalid usage")

func main() {
	// Parse CLI flags first
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "bake":
		err = cmdBake(cfg, rest)
	case "check":
		err = cmdCheck(cfg, rest)
	case "config":
		err = cmdConfig(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, errUsage) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error(command+" failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lmbake - brush map lightmap baker

Usage:
  lmbake [flags] <command> [args]

Commands:
  bake <scene.yaml>      Build the scene, bake its lightmap and write outputs
  check <scene.yaml>     Build the scene and report rejected solids and lights
  config [path]          Print the effective config, or save it to path

Flags:
  -config <path>         Config file (default ./lmbake.yaml)
  -debug                 Enable debug logging
  -concurrency <n>       Faces baked at the same time
  -atlas-size <n>        Lightmap atlas size in luxels
  -out <dir>             Output directory

Examples:
  lmbake bake maps/hall.yaml
  lmbake -atlas-size 1024 -out build bake maps/hall.yaml
  lmbake config > lmbake.yaml`)
}

// buildScene parses and builds a scene file. Rejected solids are logged and
// left out of the map.
func buildScene(cfg *config.Config, path string) (*mapobject.Map, error) {
	scene, err := formats.ParseSceneFile(path)
	if err != nil {
		return nil, err
	}
	m, err := scene.Build(cfg.GeometryTolerances())
	if err != nil {
		logger.Warn("solids rejected", zap.String("scene", path), zap.Error(err))
	}
	logger.Info("scene built",
		zap.String("scene", path),
		zap.Int("solids", len(m.Solids)),
		zap.Int("faces", len(m.Faces)),
		zap.Int("entities", len(m.Entities)))
	return m, nil
}

func cmdBake(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	m, err := buildScene(cfg, args[0])
	if err != nil {
		return err
	}

	opts := cfg.LightmapOptions()
	baker, err := lightmap.NewBaker(opts, logger.Named("bake"))
	if err != nil {
		return err
	}
	if path := cfg.OutputPath(cfg.Output.Preview); path != "" {
		baker.SetProgressSink(debug.NewPreviewWriter(path, cfg.Output.PreviewSize, logger.Named("preview")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := baker.BakeMap(ctx, m)
	if err != nil {
		return err
	}

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	if path := cfg.OutputPath(cfg.Output.AtlasPNG); path != "" {
		if err := writeAtlas(path, res.Atlas); err != nil {
			return err
		}
		logger.Info("atlas written", zap.String("path", path))
	}

	faces, _ := lightmap.BakeableFaces(m, opts)
	mesh := formats.MeshFromFaces(faces)
	if path := cfg.OutputPath(cfg.Output.Mesh); path != "" {
		if err := formats.WriteMeshFile(path, mesh); err != nil {
			return err
		}
		logger.Info("mesh written", zap.String("path", path), zap.Int("vertices", mesh.VertexCount()))
	}
	if path := cfg.OutputPath(cfg.Output.GLB); path != "" {
		if err := formats.WriteGLBFile(path, mesh, res.Atlas); err != nil {
			return err
		}
		logger.Info("glb written", zap.String("path", path))
	}

	fmt.Println(res.Report.String())
	return nil
}

func writeAtlas(path string, atlas *lightmap.Atlas) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating atlas file: %w", err)
	}
	if err := atlas.WritePNG(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func cmdCheck(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	scene, err := formats.ParseSceneFile(args[0])
	if err != nil {
		return err
	}
	m, buildErr := scene.Build(cfg.GeometryTolerances())
	lights, lightErr := lighting.FromEntities(m.Entities)
	faces, excluded := lightmap.BakeableFaces(m, cfg.LightmapOptions())

	fmt.Printf("%s: %d of %d solids, %d bakeable faces (%d excluded), %d lights\n",
		args[0], len(m.Solids), len(scene.Solids), len(faces), excluded, len(lights))
	if buildErr != nil {
		fmt.Printf("solids:\n%v\n", buildErr)
	}
	if lightErr != nil {
		fmt.Printf("lights:\n%v\n", lightErr)
	}
	return errors.Join(buildErr, lightErr)
}

func cmdConfig(cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	case 1:
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		logger.Info("config saved", zap.String("path", args[0]))
		return nil
	default:
		return errUsage
	}
}
