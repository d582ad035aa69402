// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the fbpgn
// command.
//
// Configuration is loaded from a single file specified by either the
// FBPGN_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). Without either, [Default] applies. There is no
// automatic file search.
//
// The file sets encoder defaults (compression codec, worker count,
// strict parsing, log level), tag-shortening overrides merged over
// [pgn.DefaultKeys], and an output directory. Variable expansion is
// performed on output_dir after loading: ${HOME} and ${VAR:-default}
// patterns are expanded.
//
// Key exports:
//
//   - [Config] -- the configuration struct
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
package config
