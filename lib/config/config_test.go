// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/fbpgn/lib/archive"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "fbpgn.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Compression != "zlib" {
		t.Errorf("expected compression=zlib, got %s", cfg.Compression)
	}
	if cfg.Workers != 1 {
		t.Errorf("expected workers=1, got %d", cfg.Workers)
	}
	if cfg.Strict {
		t.Error("expected strict=false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_WithoutFBPGNConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Compression != Default().Compression {
		t.Errorf("expected defaults, got compression=%s", cfg.Compression)
	}
}

func TestLoad_WithFBPGNConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, "compression: zstd\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Compression)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("FBPGN_TEST_ARCHIVES", "/data/archives")

	configPath := writeConfig(t, `
compression: lz4
workers: 8
strict: true
log_level: debug
keys:
  TimeControl: TC
  Annotator: An
output_dir: ${FBPGN_TEST_ARCHIVES}/out
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tag, err := cfg.CompressionTag()
	if err != nil || tag != archive.CompressionLZ4 {
		t.Errorf("CompressionTag() = %v, %v; want lz4", tag, err)
	}
	if cfg.Workers != 8 || !cfg.Strict {
		t.Errorf("expected workers=8 strict=true, got workers=%d strict=%t", cfg.Workers, cfg.Strict)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", level)
	}
	if cfg.OutputDir != "/data/archives/out" {
		t.Errorf("expected output_dir=/data/archives/out, got %s", cfg.OutputDir)
	}

	keys, err := cfg.KeyTable()
	if err != nil {
		t.Fatalf("KeyTable: %v", err)
	}
	if got := keys.Shorten("TimeControl"); got != "TC" {
		t.Errorf("Shorten(TimeControl) = %q, want TC", got)
	}
	if got := keys.Shorten("Event"); got != "E" {
		t.Errorf("Shorten(Event) = %q, want the default E", got)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "strict: true\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Compression != "zlib" || cfg.LogLevel != "info" || cfg.Workers != 1 {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "workers: [1, 2]\n")); err == nil {
		t.Error("expected error for mistyped field")
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/archives",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/archives",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "unknown compression",
			modify:  func(c *Config) { c.Compression = "gzip" },
			wantErr: "compression",
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Workers = -1 },
			wantErr: "workers",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
		{
			name:    "colliding key code",
			modify:  func(c *Config) { c.Keys = map[string]string{"Annotator": "W"} },
			wantErr: "keys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Compression = "gzip"
	cfg.Workers = -3

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"compression", "workers"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	if got := cfg.OutputPath("/games/club.pgn"); got != "/games/club.fbpgn" {
		t.Errorf("OutputPath without output_dir = %q", got)
	}

	cfg.OutputDir = "/archives"
	if got := cfg.OutputPath("/games/club.pgn"); got != "/archives/club.fbpgn" {
		t.Errorf("OutputPath with output_dir = %q", got)
	}
	if got := cfg.OutputPath("notes"); got != "/archives/notes.fbpgn" {
		t.Errorf("OutputPath for extensionless input = %q", got)
	}
}

func TestEnsureOutputDir(t *testing.T) {
	cfg := Default()
	if err := cfg.EnsureOutputDir(); err != nil {
		t.Fatalf("EnsureOutputDir with no output_dir: %v", err)
	}

	cfg.OutputDir = filepath.Join(t.TempDir(), "nested", "archives")
	if err := cfg.EnsureOutputDir(); err != nil {
		t.Fatalf("EnsureOutputDir failed: %v", err)
	}
	info, err := os.Stat(cfg.OutputDir)
	if err != nil {
		t.Fatalf("output_dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("output_dir %s is not a directory", cfg.OutputDir)
	}
}
