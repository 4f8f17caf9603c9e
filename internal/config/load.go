package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file
// when -config is not given.
const EnvConfig = "LMBAKE_CONFIG"

// ErrConfigNotFound is returned when an explicitly requested config file
// does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Load loads configuration with priority: defaults < file < flags.
//
// The file is the -config path, then $LMBAKE_CONFIG, then the first of
// ./lmbake.yaml and ConfigDir()/config.yaml that exists. An explicit path
// must exist; the searched locations are optional.
func Load() (*Config, error) {
	cfg := Default()

	path, err := resolveConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func resolveConfigFile() (string, error) {
	explicit := ConfigPath()
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		info, err := os.Stat(explicit)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		case err != nil:
			return "", fmt.Errorf("config %s: %w", explicit, err)
		case info.IsDir():
			return "", fmt.Errorf("config %s: is a directory", explicit)
		}
		return explicit, nil
	}
	return findConfigFile(), nil
}

// findConfigFile returns the first config file found in the working
// directory or ConfigDir, or "".
func findConfigFile() string {
	candidates := []string{"lmbake.yaml"}
	if dir := ConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the brushlight directory under the user's config
// directory, or "" when the platform has none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "brushlight")
}

// loadFromFile merges a YAML file into cfg. Keys that do not name a
// setting are rejected with their line number. An empty file leaves cfg
// unchanged.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
