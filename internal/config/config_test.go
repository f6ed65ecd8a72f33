package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/ripple/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.FrameRate != DefaultFrameRate {
		t.Errorf("FrameRate = %d, want %d", cfg.FrameRate, DefaultFrameRate)
	}
	if cfg.MaxFlushRounds != DefaultMaxFlushRounds {
		t.Errorf("MaxFlushRounds = %d, want %d", cfg.MaxFlushRounds, DefaultMaxFlushRounds)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Inspector.Enabled {
		t.Error("Inspector.Enabled = true by default")
	}
	if cfg.Hydration.ReservedPrefix != DefaultReservedPrefix {
		t.Errorf("Hydration.ReservedPrefix = %q, want %q", cfg.Hydration.ReservedPrefix, DefaultReservedPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if errors.Code(err) != "E022" {
		t.Errorf("Load on empty dir = %v, want E022", err)
	}

	configJSON := `{
  "name": "counter",
  "frameRate": 30,
  "logLevel": "debug",
  "inspector": {
    "enabled": true
  }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := New()
	want.Name = "counter"
	want.FrameRate = 30
	want.LogLevel = "debug"
	want.Inspector.Enabled = true
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `name: list
maxFlushRounds: 8
metrics:
  enabled: true
  namespace: app
hydration:
  reservedPrefix: data-keep
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists = false with ripple.yaml")
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "list" || cfg.MaxFlushRounds != 8 {
		t.Errorf("Name, MaxFlushRounds = %q, %d", cfg.Name, cfg.MaxFlushRounds)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "app" || cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Hydration.ReservedPrefix != "data-keep" {
		t.Errorf("ReservedPrefix = %q", cfg.Hydration.ReservedPrefix)
	}
	if cfg.FrameRate != DefaultFrameRate {
		t.Errorf("FrameRate = %d, want default", cfg.FrameRate)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if errors.Code(err) != "E020" {
		t.Errorf("LoadFile = %v, want E020", err)
	}

	_, err = LoadFile(filepath.Join(tmpDir, "ripple.toml"))
	if errors.Code(err) != "E021" {
		t.Errorf("LoadFile(.toml) = %v, want E021", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Name = "saved"
			cfg.Inspector.Enabled = true
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			loaded.FrameRate = 120
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
			again, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if again.FrameRate != 120 {
				t.Errorf("FrameRate = %d after Save, want 120", again.FrameRate)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		detail string
	}{
		{"frame rate", func(c *Config) { c.FrameRate = -1 }, "frameRate"},
		{"rounds", func(c *Config) { c.MaxFlushRounds = 0 }, "maxFlushRounds"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "logLevel"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if errors.Code(err) != "E020" {
				t.Fatalf("Validate = %v, want E020", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot = %q, want %q", got, want)
	}
}
