// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/fbpgn/lib/archive"
	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "FBPGN_CONFIG"

// ArchiveExtension is appended to output names derived by
// [Config.OutputPath].
const ArchiveExtension = ".fbpgn"

// Config holds encoder defaults. Command-line flags override
// individual fields.
type Config struct {
	// Compression names the chunk codec: zlib, zstd, lz4, or none.
	// Default: zlib
	Compression string `yaml:"compression"`

	// Workers bounds parallel parsing. 0 and 1 both mean sequential.
	// Default: 1
	Workers int `yaml:"workers"`

	// Strict fails encoding when a game has unparseable header lines.
	// Default: false
	Strict bool `yaml:"strict"`

	// LogLevel is debug, info, warn, or error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// Keys maps full tag names to short codes, merged over the
	// default table. Mapping a default tag to a new code replaces its
	// default code.
	Keys map[string]string `yaml:"keys"`

	// OutputDir is where "fbpgn encode" writes archives when no
	// output path is given and the input is a file. Empty means next
	// to the input. ${VAR} and ${VAR:-default} are expanded.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Compression: archive.CompressionZlib.String(),
		Workers:     1,
		LogLevel:    "info",
	}
}

// Load loads configuration from the file named by FBPGN_CONFIG, or
// returns [Default] when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.OutputDir = expandVars(c.OutputDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.CompressionTag(); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if _, err := c.KeyTable(); err != nil {
		errs = append(errs, fmt.Errorf("keys: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CompressionTag returns the configured chunk codec.
func (c *Config) CompressionTag() (archive.CompressionTag, error) {
	return archive.ParseCompressionTag(c.Compression)
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}

// KeyTable returns the default key table with the configured
// overrides applied.
func (c *Config) KeyTable() (*pgn.KeyTable, error) {
	if len(c.Keys) == 0 {
		return pgn.DefaultKeys, nil
	}
	return pgn.DefaultKeys.With(c.Keys)
}

// OutputPath returns where to write the archive for an input file:
// the input's base name with its extension replaced by ".fbpgn",
// inside OutputDir when set and next to the input otherwise.
func (c *Config) OutputPath(inputPath string) string {
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ArchiveExtension
	if c.OutputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}
	return filepath.Join(c.OutputDir, name)
}

// EnsureOutputDir creates OutputDir if it is set and missing.
func (c *Config) EnsureOutputDir() error {
	if c.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", c.OutputDir, err)
	}
	return nil
}
