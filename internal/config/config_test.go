package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Property != PropertyMomentum {
		t.Errorf("Property = %q, want %q", cfg.Property, PropertyMomentum)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `property: charge
exclusive: true
target: [5, -5]
select:
  pdg: [211]
workers: 4
output:
  format: json
telemetry:
  metrics: prometheus
  metrics_addr: localhost:9464
`)

	cfg, gotPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if gotPath != path {
		t.Errorf("path = %q, want %q", gotPath, path)
	}
	if cfg.Property != PropertyCharge || !cfg.Exclusive || cfg.Workers != 4 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Target) != 2 || cfg.Target[1] != -5 {
		t.Errorf("Target = %v", cfg.Target)
	}
	if cfg.Telemetry.Traces != "none" {
		t.Errorf("Telemetry.Traces = %q, want default none", cfg.Telemetry.Traces)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown property", "property: mass\n"},
		{"too many workers", "workers: 1000\n"},
		{"zero target", "target: [0]\n"},
		{"unknown format", "output:\n  format: toml\n"},
		{"otlp without endpoint", "telemetry:\n  traces: otlp\n"},
		{"prometheus bad addr", "telemetry:\n  metrics: prometheus\n  metrics_addr: nowhere\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			if _, _, err := LoadFromPath(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeConfig(t, t.TempDir(), "property: [\n")
	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindConfigPathPriority(t *testing.T) {
	explicit := writeConfig(t, t.TempDir(), "workers: 2\n")
	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %q, want %q", got, explicit)
	}

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != explicit || cfg.Workers != 2 {
		t.Errorf("Load() = %+v from %q", cfg, path)
	}

	xdg := t.TempDir()
	dir := filepath.Join(xdg, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	xdgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(xdgPath, []byte("workers: 3\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())
	if got := FindConfigPath(); got != xdgPath {
		t.Errorf("FindConfigPath() = %q, want %q", got, xdgPath)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", t.TempDir())
	if got := FindConfigPath(); got != "" {
		t.Errorf("FindConfigPath() = %q, want empty", got)
	}
	cfg, path, err = Load()
	if err != nil || path != "" || cfg.Workers != 1 {
		t.Errorf("Load() without file = %+v, %q, %v", cfg, path, err)
	}
}
