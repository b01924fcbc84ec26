package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gopkg.in/yaml.v3"
)

// genManifestList generates non-empty lists of distinct relative manifest paths
func genManifestList() gopter.Gen {
	return gen.SliceOfN(4, gen.RegexMatch(`^[a-z][a-z0-9-]{0,10}$`)).
		SuchThat(func(dirs []string) bool {
			seen := map[string]bool{}
			for _, d := range dirs {
				if seen[d] {
					return false
				}
				seen[d] = true
			}
			return len(dirs) > 0
		}).
		Map(func(dirs []string) []string {
			paths := make([]string, len(dirs))
			for i, d := range dirs {
				paths[i] = d + "/Cargo.toml"
			}
			return paths
		})
}

// TestConfigRoundTrip tests that a saved config loads back with the same
// manifests in the same order
func TestConfigRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Config YAML round-trip preserves manifest order", prop.ForAll(
		func(manifests []string) bool {
			tmpDir, err := os.MkdirTemp("", "config-test-*")
			if err != nil {
				t.Logf("Failed to create temp dir: %v", err)
				return false
			}
			defer os.RemoveAll(tmpDir)

			configPath := filepath.Join(tmpDir, FileName)
			cfg := &Config{Manifests: manifests}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				t.Logf("Failed to marshal config: %v", err)
				return false
			}
			if err := os.WriteFile(configPath, data, 0644); err != nil {
				t.Logf("Failed to write config: %v", err)
				return false
			}

			loaded, err := LoadFrom(configPath)
			if err != nil {
				t.Logf("Failed to load config: %v", err)
				return false
			}
			return reflect.DeepEqual(cfg.Manifests, loaded.Manifests)
		},
		genManifestList(),
	))

	properties.TestingRun(t)
}

// TestMissingConfigFileYieldsDefault tests that no file means Cargo.toml and
// that nothing is created
func TestMissingConfigFileYieldsDefault(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(cfg.Manifests, []string{"Cargo.toml"}) {
		t.Errorf("Expected default manifests, got: %v", cfg.Manifests)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, FileName)); !os.IsNotExist(err) {
		t.Error("Loading a missing config must not create it")
	}
}

func TestLoadResolvesPathsAgainstConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	content := "manifests:\n  - momento-cli-opts/Cargo.toml\n  - /abs/Cargo.toml\n"
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{filepath.Join(tmpDir, "momento-cli-opts", "Cargo.toml"), "/abs/Cargo.toml"}
	if got := cfg.ManifestPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("ManifestPaths() = %v, want %v", got, want)
	}
}

func TestLoadPresetFromConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("preset: workspace\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Manifests, Presets["workspace"]) {
		t.Errorf("Manifests = %v, want %v", cfg.Manifests, Presets["workspace"])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"invalid yaml", "manifests: [unclosed\n", ErrConfigInvalidYAML},
		{"empty list", "manifests: []\n", ErrNoManifests},
		{"blank entry", "manifests:\n  - \"  \"\n", ErrEmptyManifestPath},
		{"duplicate after clean", "manifests:\n  - a/Cargo.toml\n  - ./a/Cargo.toml\n", ErrDuplicateManifest},
		{"unknown preset", "preset: nope\n", ErrUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFrom() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPresetManifestsReturnsCopy(t *testing.T) {
	paths, err := PresetManifests("workspace")
	if err != nil {
		t.Fatalf("PresetManifests: %v", err)
	}
	paths[0] = "mutated"
	if Presets["workspace"][0] == "mutated" {
		t.Error("PresetManifests must not expose the preset slice")
	}

	if _, err := PresetManifests("missing"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetNamesSorted(t *testing.T) {
	if got := PresetNames(); !reflect.DeepEqual(got, []string{"crate", "workspace"}) {
		t.Errorf("PresetNames() = %v", got)
	}
}
