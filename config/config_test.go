package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BenchDefaultIterations != 10 {
		t.Fatalf("got %d, want 10", cfg.BenchDefaultIterations)
	}
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	t.Setenv("SOLITE_SNAPSHOT_DIRECTORY", "/tmp/snaps")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnapshotDirectory != "/tmp/snaps" {
		t.Fatalf("got %q", cfg.SnapshotDirectory)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solite.yaml")
	contents := "bench_default_iterations: 3\nextensions:\n  - path: /usr/lib/ext.so\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BenchDefaultIterations != 3 {
		t.Fatalf("got %d, want 3", cfg.BenchDefaultIterations)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0].Path != "/usr/lib/ext.so" {
		t.Fatalf("got %+v", cfg.Extensions)
	}
}

func TestLoadRejectsInvalidIterations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solite.yaml")
	if err := os.WriteFile(path, []byte("bench_default_iterations: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
