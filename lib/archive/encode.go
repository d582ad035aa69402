// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

// EncodeOptions configures [Build] and [Encode]. The zero value
// produces a version 2 zlib archive with the default key table, parsed
// leniently on one goroutine.
type EncodeOptions struct {
	// Compression selects the chunk codec.
	Compression CompressionTag

	// Debug stores payloads uncompressed, overriding Compression.
	Debug bool

	// Keys shortens tag names. Nil means [pgn.DefaultKeys].
	Keys *pgn.KeyTable

	// Strict fails the encode with [pgn.ErrMalformedInput] when a game
	// has header lines that are not valid tag pairs.
	Strict bool

	// Workers bounds the goroutines that parse, encode, and
	// fingerprint games. Values of 1 or less process games
	// sequentially. Output is identical for every value.
	Workers int

	// Logger receives per-game progress at debug level and a summary
	// at info level. Nil discards.
	Logger *slog.Logger
}

func (options EncodeOptions) compression() CompressionTag {
	if options.Debug {
		return CompressionNone
	}
	return options.Compression
}

// encodedGame is one game after parsing: its canonical payload and
// the payload's fingerprint.
type encodedGame struct {
	payload     []byte
	fingerprint Fingerprint
	err         error
}

// Build splits input into games, deduplicates their payloads, and
// returns the resulting container. Input that is not valid UTF-8 is
// rejected with an error wrapping [pgn.ErrMalformedInput], since
// payload strings must decode as CBOR text.
func Build(input string, options EncodeOptions) (*Container, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	compression := options.compression()
	if !compression.valid() {
		return nil, fmt.Errorf("unsupported compression tag: %d", compression)
	}

	if offset := invalidUTF8Offset(input); offset >= 0 {
		return nil, fmt.Errorf("%w: invalid UTF-8 at byte %d", pgn.ErrMalformedInput, offset)
	}

	games, err := encodeBlocks(pgn.Split(input), options)
	if err != nil {
		return nil, err
	}

	index := NewIndex(compression)
	references := make([]uint32, 0, len(games))
	for position, game := range games {
		slot, inserted, err := index.LookupOrInsert(game.fingerprint, game.payload)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", position, err)
		}
		if inserted {
			logger.Debug("unique game",
				"game", position,
				"slot", slot,
				"chunk_bytes", len(index.Chunks()[slot]),
			)
		} else {
			logger.Debug("duplicate game",
				"game", position,
				"slot", slot,
			)
		}
		references = append(references, uint32(slot))
	}

	container := newContainer(compression, index.Chunks(), references)
	stats := container.Stats()
	logger.Info("archive built",
		"games", stats.Games,
		"unique", stats.Unique,
		"duplicates", stats.Duplicates,
		"chunk_bytes", stats.ChunkBytes,
		"compression", compression.String(),
	)
	return container, nil
}

// Encode converts PGN text into FBPGN archive bytes.
func Encode(input string, options EncodeOptions) ([]byte, error) {
	container, err := Build(input, options)
	if err != nil {
		return nil, err
	}
	return container.MarshalBinary()
}

// Decode reconstructs the games of an archive in original order.
// Trailing bytes after the reference list are rejected with
// [ErrTrailingData].
func Decode(data []byte) ([]pgn.Game, error) {
	reader := bytes.NewReader(data)
	container, err := ReadContainer(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() > 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, reader.Len())
	}
	return container.Games()
}

// encodeBlocks parses, encodes, and fingerprints each block. Results
// are indexed by position; with more than one worker, blocks are
// processed concurrently. The error reported is always the one for
// the lowest failing position.
func encodeBlocks(blocks []string, options EncodeOptions) ([]encodedGame, error) {
	parser := pgn.Parser{Keys: options.Keys}
	results := make([]encodedGame, len(blocks))

	encodeOne := func(position int) {
		results[position] = encodeBlock(parser, blocks[position], options.Strict)
	}

	if options.Workers <= 1 {
		for position := range blocks {
			encodeOne(position)
			if results[position].err != nil {
				break
			}
		}
	} else {
		var group errgroup.Group
		group.SetLimit(options.Workers)
		for position := range blocks {
			group.Go(func() error {
				encodeOne(position)
				return nil
			})
		}
		group.Wait()
	}

	for position, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("game %d: %w", position, result.err)
		}
	}
	return results, nil
}

func encodeBlock(parser pgn.Parser, block string, strict bool) encodedGame {
	var game pgn.Game
	if strict {
		var err error
		game, err = parser.ParseStrict(block)
		if err != nil {
			return encodedGame{err: err}
		}
	} else {
		game = parser.Parse(block)
	}

	payload, err := EncodePayload(game)
	if err != nil {
		return encodedGame{err: err}
	}
	return encodedGame{payload: payload, fingerprint: FingerprintPayload(payload)}
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in s, or -1 if s is valid.
func invalidUTF8Offset(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for offset, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[offset:]); size == 1 {
				return offset
			}
		}
	}
	return -1
}
