package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project config file looked up in the working directory
const FileName = ".cratebump.yaml"

// DefaultManifest is updated when nothing else selects targets
const DefaultManifest = "Cargo.toml"

var (
	ErrNoManifests       = errors.New("no manifests configured")
	ErrEmptyManifestPath = errors.New("manifest path is empty")
	ErrDuplicateManifest = errors.New("manifest listed more than once")
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrConfigNotReadable = errors.New("config file is not readable")
	ErrConfigInvalidYAML = errors.New("config file is not valid YAML")
)

// Presets are the built-in target lists. "crate" updates a single crate in
// the working directory; "workspace" updates the CLI options crate and the
// CLI crate of the momento workspace, in that order.
var Presets = map[string][]string{
	"crate":     {DefaultManifest},
	"workspace": {"momento-cli-opts/Cargo.toml", "momento/Cargo.toml"},
}

// Config represents the project configuration
type Config struct {
	// Manifests lists the manifests to update, relative to the config file
	// directory unless absolute. Order is the update order.
	Manifests []string `yaml:"manifests"`
	// Preset names a built-in target list, used when Manifests is empty
	Preset string `yaml:"preset,omitempty"`

	dir string
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{Manifests: []string{DefaultManifest}}
}

// Load reads FileName from dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	return LoadFrom(filepath.Join(dir, FileName))
}

// LoadFrom reads configuration from a specific file path. A missing file
// yields Default(); nothing is created on disk.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrConfigNotReadable, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigInvalidYAML, path, err)
	}
	cfg.dir = filepath.Dir(path)

	if len(cfg.Manifests) == 0 && cfg.Preset != "" {
		paths, err := PresetManifests(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Manifests = paths
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// PresetManifests returns a copy of the named preset's target list
func PresetManifests(name string) ([]string, error) {
	paths, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return append([]string(nil), paths...), nil
}

// PresetNames returns the preset names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that at least one manifest is listed, that no entry is
// blank and that no manifest appears twice after cleaning.
func (c *Config) Validate() error {
	return ValidateManifests(c.Manifests)
}

// ValidateManifests applies the Config.Validate rules to a bare list
func ValidateManifests(paths []string) error {
	if len(paths) == 0 {
		return ErrNoManifests
	}
	seen := make(map[string]bool, len(paths))
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyManifestPath, i+1)
		}
		clean := filepath.Clean(p)
		if seen[clean] {
			return fmt.Errorf("%w: %s", ErrDuplicateManifest, p)
		}
		seen[clean] = true
	}
	return nil
}

// ManifestPaths returns the manifests resolved against the config file
// directory. Absolute entries are returned unchanged.
func (c *Config) ManifestPaths() []string {
	paths := make([]string, len(c.Manifests))
	for i, p := range c.Manifests {
		if filepath.IsAbs(p) || c.dir == "" {
			paths[i] = p
			continue
		}
		paths[i] = filepath.Join(c.dir, p)
	}
	return paths
}
