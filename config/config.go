// Package config loads solite's ambient configuration: a YAML file,
// defaults, and `.env`-sourced environment overrides. Load sources `.env`
// first, starts from the defaults, lays the file over them, and then
// applies environment overrides over both.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrValidation is returned when a loaded config fails validation.
var ErrValidation = errors.New("config: validation failed")

// Config is solite's process-wide configuration. Three of its fields can
// also be supplied by the environment variables named in spec.md §6; when
// such a variable is set and non-empty, Load lets it override the file.
type Config struct {
	// SnapshotDirectory overrides the default "<file-parent>/__snapshots__"
	// snapshot output location. Mirrors SOLITE_SNAPSHOT_DIRECTORY.
	SnapshotDirectory string `yaml:"snapshot_directory"`

	// Editor is invoked by REPL-style front-ends for the "\e" shortcut.
	// Mirrors $EDITOR.
	Editor string `yaml:"editor"`

	// OpenRouterAPIKey is consumed by the optional `.ask` command.
	// Mirrors $OPENROUTER_API_KEY.
	OpenRouterAPIKey string `yaml:"-"`

	// Extensions lists shared-library paths, each with an optional entry
	// point. Load parses them and rejects an empty path; nothing in this
	// module loads them onto a connection.
	Extensions []ExtensionConfig `yaml:"extensions"`

	// BenchDefaultIterations defaults to 10 and must be positive. It is
	// not read by `.bench`, whose parser in dotcmd/parse.go falls back to
	// a fixed 10 runs when `-n` is absent.
	BenchDefaultIterations int `yaml:"bench_default_iterations"`
}

// ExtensionConfig names one extension to load automatically.
type ExtensionConfig struct {
	Path       string `yaml:"path"`
	Entrypoint string `yaml:"entrypoint"`
}

// Load reads path (a missing file yields defaults, not an error), then
// applies environment overrides loaded via `.env` into the process
// environment before they're read.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := defaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		BenchDefaultIterations: 10,
	}
}

// loadDotEnv loads a ".env" file in the working directory if present;
// a missing file is not an error, mirroring loadEnvFiles's fileExists
// guard.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

// applyEnvOverrides lets SOLITE_SNAPSHOT_DIRECTORY / EDITOR /
// OPENROUTER_API_KEY win over whatever the YAML file set, matching
// spec.md §6's description of these as environment-resolved values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOLITE_SNAPSHOT_DIRECTORY"); v != "" {
		cfg.SnapshotDirectory = v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		cfg.Editor = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.OpenRouterAPIKey = v
	}
}

func validate(cfg *Config) error {
	if cfg.BenchDefaultIterations <= 0 {
		return fmt.Errorf("bench_default_iterations must be positive, got %d", cfg.BenchDefaultIterations)
	}
	for _, ext := range cfg.Extensions {
		if ext.Path == "" {
			return errors.New("extensions: path must not be empty")
		}
	}
	return nil
}
