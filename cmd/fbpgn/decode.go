// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bureau-foundation/fbpgn/lib/archive"
	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

const decodeSynopsis = `Convert an FBPGN archive back to PGN text.

Usage:
  fbpgn decode [flags] [input.fbpgn]

Games are written in their original order, duplicates included. Tag
names are expanded with the key table from the configuration file, so
archives encoded with custom keys should be decoded with the same
configuration. Games without an Event tag are merged into the game
before them if the PGN output is encoded again. With --json, each game is one JSON object per line with
the tag names exactly as stored.`

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		common commonFlags
		asJSON bool
	)
	flagSet := newFlagSet("decode")
	common.add(flagSet)
	flagSet.BoolVar(&asJSON, "json", false, "write one JSON object per game instead of PGN")

	if done, err := parseFlags(flagSet, args, stdout, decodeSynopsis); done || err != nil {
		return err
	}

	cfg, err := common.resolve(flagSet, nil)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	keys, _ := cfg.KeyTable()

	inputPath := inputArg(flagSet)
	logger := newLogger(stderr, level).With("command", "decode", "input", inputPath)

	data, err := readInput(inputPath, stdin)
	if err != nil {
		return err
	}
	games, err := archive.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}
	logger.Debug("archive decoded", "games", len(games), "archive_bytes", len(data))

	return writeOutput(common.output, stdout, func(w io.Writer) error {
		if !asJSON {
			return pgn.RenderAll(w, games, keys)
		}
		encoder := json.NewEncoder(w)
		for i, game := range games {
			if err := encoder.Encode(game); err != nil {
				return fmt.Errorf("writing game %d: %w", i, err)
			}
		}
		return nil
	})
}
