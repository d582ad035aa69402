// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pgn

import (
	"bufio"
	"io"
	"slices"
	"strings"
)

// sevenTagRoster is the PGN standard's mandatory tag order. Tags in the
// roster are written first, in this order; all others follow sorted by
// name.
var sevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// Render writes one game as PGN text: tag pairs with their short names
// expanded through keys (nil means [DefaultKeys]), a blank line, then
// the movetext. Tag values are written verbatim, without escaping, so
// that [Parse] reads back exactly the stored value.
func Render(w io.Writer, game Game, keys *KeyTable) error {
	buffered := bufio.NewWriter(w)
	writeGame(buffered, game, keys)
	return buffered.Flush()
}

// RenderAll writes games separated by blank lines. [Split] starts a
// game only at an Event tag, so a game without one (short name "E")
// merges into the preceding game when the output is split again.
func RenderAll(w io.Writer, games []Game, keys *KeyTable) error {
	buffered := bufio.NewWriter(w)
	for i, game := range games {
		if i > 0 {
			buffered.WriteByte('\n')
		}
		writeGame(buffered, game, keys)
	}
	return buffered.Flush()
}

func writeGame(w *bufio.Writer, game Game, keys *KeyTable) {
	if keys == nil {
		keys = DefaultKeys
	}

	for _, tag := range tagOrder(game.Metadata, keys) {
		w.WriteString("[")
		w.WriteString(tag.name)
		w.WriteString(` "`)
		w.WriteString(game.Metadata[tag.code])
		w.WriteString("\"]\n")
	}
	if len(game.Metadata) > 0 {
		w.WriteByte('\n')
	}
	if game.Moves != "" {
		w.WriteString(game.Moves)
		w.WriteByte('\n')
	}
}

// renderedTag pairs a stored key with the tag name it is written as.
type renderedTag struct {
	name string
	code string
}

// tagOrder returns the tags in metadata in output order.
func tagOrder(metadata map[string]string, keys *KeyTable) []renderedTag {
	tags := make([]renderedTag, 0, len(metadata))
	for code := range metadata {
		tags = append(tags, renderedTag{name: keys.Expand(code), code: code})
	}

	rank := func(name string) int {
		if i := slices.Index(sevenTagRoster, name); i >= 0 {
			return i
		}
		return len(sevenTagRoster)
	}
	slices.SortFunc(tags, func(a, b renderedTag) int {
		if ra, rb := rank(a.name), rank(b.name); ra != rb {
			return ra - rb
		}
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.code, b.code)
	})
	return tags
}
