// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/fbpgn/lib/archive"
	"github.com/bureau-foundation/fbpgn/lib/config"
	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

const twoGames = `[Event "A"]
[White "X"]
[Black "Y"]

1. e4 e5 1-0

[Event "B"]
[White "P"]
[Black "Q"]
[TimeControl "300+2"]

1. d4 d5 1/2-1/2

[Event "A"]
[White "X"]
[Black "Y"]

1. e4 e5 1-0
`

// runCommand runs fbpgn with args and returns what it wrote.
func runCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	var outBuffer, errBuffer bytes.Buffer
	err = run(args, strings.NewReader(stdin), &outBuffer, &errBuffer)
	return outBuffer.String(), errBuffer.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestEncodeStdinToStdout(t *testing.T) {
	stdout, _, err := runCommand(t, twoGames, "encode")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want, err := archive.Encode(twoGames, archive.EncodeOptions{})
	if err != nil {
		t.Fatalf("archive.Encode: %v", err)
	}
	if stdout != string(want) {
		t.Errorf("encode output (%d bytes) differs from archive.Encode (%d bytes)", len(stdout), len(want))
	}
}

func TestEncodeDecodeFiles(t *testing.T) {
	inputPath := writeFile(t, "games.pgn", twoGames)
	archivePath := filepath.Join(t.TempDir(), "games.fbpgn")

	if _, _, err := runCommand(t, "", "encode", "--compression", "zstd", "-o", archivePath, inputPath); err != nil {
		t.Fatalf("encode: %v", err)
	}
	stdout, _, err := runCommand(t, "", "decode", archivePath)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var want []pgn.Game
	for _, block := range pgn.Split(twoGames) {
		want = append(want, pgn.Parse(block))
	}
	var expected bytes.Buffer
	if err := pgn.RenderAll(&expected, want, nil); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if diff := cmp.Diff(expected.String(), stdout); diff != "" {
		t.Errorf("decode output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON(t *testing.T) {
	data, err := archive.Encode(twoGames, archive.EncodeOptions{})
	if err != nil {
		t.Fatalf("archive.Encode: %v", err)
	}

	stdout, _, err := runCommand(t, string(data), "decode", "--json", "-")
	if err != nil {
		t.Fatalf("decode --json: %v", err)
	}

	var games []pgn.Game
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		var game pgn.Game
		if err := json.Unmarshal(scanner.Bytes(), &game); err != nil {
			t.Fatalf("line %q: %v", scanner.Text(), err)
		}
		games = append(games, game)
	}
	if len(games) != 3 {
		t.Fatalf("decoded %d games, want 3", len(games))
	}
	if got := games[1].Metadata["Rs"]; got != "1/2-1/2" {
		t.Errorf("game 1 Rs = %q, want 1/2-1/2", got)
	}
	if diff := cmp.Diff(games[0], games[2]); diff != "" {
		t.Errorf("duplicate games differ:\n%s", diff)
	}
}

func TestEncodeLogsSummary(t *testing.T) {
	_, stderr, err := runCommand(t, twoGames, "encode", "--log-level", "debug")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	messages := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("stderr line %q is not JSON: %v", line, err)
		}
		if record["command"] != "encode" {
			t.Errorf("record %v lacks command=encode", record)
		}
		message, _ := record["msg"].(string)
		messages[message]++
	}
	want := map[string]int{"unique game": 2, "duplicate game": 1, "archive built": 1}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("log messages mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOutputDirFromConfig(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "archives")
	configPath := writeFile(t, "fbpgn.yaml", "compression: lz4\noutput_dir: "+outputDir+"\n")
	inputPath := writeFile(t, "club.pgn", twoGames)

	stdout, _, err := runCommand(t, "", "encode", "--config", configPath, inputPath)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if stdout != "" {
		t.Errorf("encode wrote %d bytes to stdout, want none", len(stdout))
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "club.fbpgn"))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	container, err := archive.ReadContainer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadContainer: %v", err)
	}
	if container.Compression != archive.CompressionLZ4 {
		t.Errorf("compression = %s, want lz4 from config", container.Compression)
	}
}

func TestEncodeFlagsOverrideConfig(t *testing.T) {
	configPath := writeFile(t, "fbpgn.yaml", "compression: lz4\n")

	stdout, _, err := runCommand(t, twoGames, "encode", "--config", configPath, "--debug")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if stdout[5] != archive.VersionTagged || archive.CompressionTag(stdout[6]) != archive.CompressionNone {
		t.Errorf("header = %x, want version 3 with compression none", stdout[:7])
	}

	stdout, _, err = runCommand(t, twoGames, "encode", "--config", configPath, "--compression", "zlib")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if stdout[5] != archive.VersionZlib {
		t.Errorf("version = %d, want %d", stdout[5], archive.VersionZlib)
	}
}

func TestEncodeStrictFailure(t *testing.T) {
	_, _, err := runCommand(t, "[Event \"A\"]\n[Foo bar]\n\n1. e4 *", "encode", "--strict")
	if !errors.Is(err, pgn.ErrMalformedInput) {
		t.Fatalf("encode --strict error = %v, want ErrMalformedInput", err)
	}
	if code := exitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestEncodeRejectsLatin1Input(t *testing.T) {
	inputPath := writeFile(t, "latin1.pgn", "[Event \"T\"]\n[White \"M\xfcller\"]\n\n1. e4 1-0\n")
	archivePath := filepath.Join(t.TempDir(), "latin1.fbpgn")

	_, _, err := runCommand(t, "", "encode", "-o", archivePath, inputPath)
	if !errors.Is(err, pgn.ErrMalformedInput) {
		t.Fatalf("encode error = %v, want ErrMalformedInput", err)
	}
	if !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("error %q should say the input is not UTF-8", err)
	}
	if code := exitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if _, statErr := os.Stat(archivePath); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("encode left an archive behind: stat error = %v", statErr)
	}
}

func TestInspect(t *testing.T) {
	data, err := archive.Encode(twoGames, archive.EncodeOptions{})
	if err != nil {
		t.Fatalf("archive.Encode: %v", err)
	}

	stdout, _, err := runCommand(t, string(data), "inspect")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	stdout = ansi.Strip(stdout)
	for _, want := range []string{"Compression", "zlib", "Games", "3", "Unique", "2", "Dedup ratio", "1.50", "Slots"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output does not contain %q:\n%s", want, stdout)
		}
	}
}

func TestInspectDiag(t *testing.T) {
	data, err := archive.Encode(twoGames, archive.EncodeOptions{})
	if err != nil {
		t.Fatalf("archive.Encode: %v", err)
	}

	stdout, _, err := runCommand(t, string(data), "inspect", "--diag", "1")
	if err != nil {
		t.Fatalf("inspect --diag: %v", err)
	}
	for _, want := range []string{`"mv"`, `"1. d4 d5 1/2-1/2"`, `"TimeControl"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("diagnostic output does not contain %s: %s", want, stdout)
		}
	}

	_, _, err = runCommand(t, string(data), "inspect", "--diag", "5")
	if code := exitCode(err); code != 2 {
		t.Errorf("--diag out of range: exit code %d (%v), want 2", code, err)
	}
}

func TestDecodeCorruptArchive(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad magic", "NOTFBPGN", archive.ErrBadMagicOrVersion},
		{"truncated", "FBPGN\x02\x01\x00", archive.ErrTruncated},
		{"trailing", "FBPGN\x02\x00\x00\x00\x00\x00\x00\x00\x00!", archive.ErrTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(t, tt.input, "decode")
			if !errors.Is(err, tt.want) {
				t.Errorf("decode error = %v, want %v", err, tt.want)
			}
			if code := exitCode(err); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no subcommand", nil},
		{"unknown subcommand", []string{"compress"}},
		{"unknown flag", []string{"encode", "--fast"}},
		{"bad compression", []string{"encode", "--compression", "gzip"}},
		{"bad log level", []string{"decode", "--log-level", "loud"}},
		{"negative workers", []string{"encode", "--workers", "-2"}},
		{"two inputs", []string{"decode", "a.fbpgn", "b.fbpgn"}},
		{"missing config", []string{"encode", "--config", "/nonexistent/fbpgn.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := exitCode(err); code != 2 {
				t.Errorf("exit code = %d (%v), want 2", code, err)
			}
		})
	}
}

func TestHelpAndVersion(t *testing.T) {
	stdout, _, err := runCommand(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(stdout, "fbpgn ") {
		t.Errorf("--version output = %q", stdout)
	}

	stdout, _, err = runCommand(t, "", "encode", "--help")
	if err != nil {
		t.Fatalf("encode --help: %v", err)
	}
	for _, want := range []string{"--compression", "--workers", "--strict"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("encode help does not mention %s", want)
		}
	}
}
