package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagConcurrency = flag.Int("concurrency", 0, "Faces baked at the same time")
	flagAtlasSize   = flag.Int("atlas-size", 0, "Lightmap atlas width and height in luxels")
	flagOut         = flag.String("out", "", "Output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagConcurrency > 0 {
		cfg.Bake.Concurrency = *flagConcurrency
	}
	if *flagAtlasSize > 0 {
		cfg.Lightmap.AtlasSize = *flagAtlasSize
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
