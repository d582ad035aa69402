// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pgn

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedInput is returned by strict parsing when a game block
// contains header lines that are not valid tag pairs. Lenient parsing
// never returns it. Archive encoding also wraps it for input that is
// not valid UTF-8.
var ErrMalformedInput = errors.New("malformed input")

// Game is one parsed game: its tags under their short names, and its
// movetext.
type Game struct {
	// Metadata maps short tag names (see [KeyTable]) to tag values.
	Metadata map[string]string `json:"metadata"`

	// Moves is the movetext with line breaks collapsed to single
	// spaces.
	Moves string `json:"moves"`
}

// Clone returns a copy of g whose Metadata map can be modified
// independently.
func (g Game) Clone() Game {
	metadata := make(map[string]string, len(g.Metadata))
	for key, value := range g.Metadata {
		metadata[key] = value
	}
	return Game{Metadata: metadata, Moves: g.Moves}
}

// resultTag is the full tag name that movetext result tokens overwrite.
const resultTag = "Result"

var (
	// tagPattern matches a tag pair at the start of a line. The value
	// extends to the last `"]` on the line; anything after it is
	// ignored. The separator accepts Unicode whitespace, not only the
	// ASCII set RE2's \s covers.
	tagPattern = regexp.MustCompile(`^\[([\p{L}\p{N}_]+)[\s\v\x1c-\x1f\x{85}\p{Z}]+"(.*)"\]`)

	// resultPattern finds the first game-termination token anywhere in
	// the movetext.
	resultPattern = regexp.MustCompile(`1-0|0-1|1/2-1/2|\*`)
)

// scanMode is the state of the line scanner inside one game block.
type scanMode int

const (
	// modeHeader accepts tag pair lines.
	modeHeader scanMode = iota

	// modeMoves treats every non-blank line as movetext. There is no
	// way back to modeHeader within a block.
	modeMoves
)

func (m scanMode) String() string {
	switch m {
	case modeHeader:
		return "header"
	case modeMoves:
		return "moves"
	default:
		return fmt.Sprintf("scanMode(%d)", int(m))
	}
}

// lineKind says what the scanner does with one trimmed line.
type lineKind int

const (
	lineSkip lineKind = iota // blank line, discarded
	lineTag                  // header line starting with '['
	lineMoves                // movetext
)

// next returns the scanner state after a trimmed line, and how that
// line is to be handled. Blank lines always switch to modeMoves. A
// bracketed line in modeHeader stays in modeHeader whether or not it
// turns out to be a valid tag pair. Anything else is movetext.
func (m scanMode) next(line string) (scanMode, lineKind) {
	switch {
	case line == "":
		return modeMoves, lineSkip
	case m == modeHeader && strings.HasPrefix(line, "["):
		return modeHeader, lineTag
	default:
		return modeMoves, lineMoves
	}
}

// Parser turns game blocks into [Game] values using a particular key
// table. The zero Parser uses [DefaultKeys].
type Parser struct {
	Keys *KeyTable
}

// Parse parses a single game block produced by [Split] using
// [DefaultKeys].
func Parse(block string) Game {
	return Parser{}.Parse(block)
}

// ParseStrict is [Parse], but fails with [ErrMalformedInput] when any
// header line was dropped.
func ParseStrict(block string) (Game, error) {
	return Parser{}.ParseStrict(block)
}

// Parse parses one game block. It never fails: unrecognised header
// lines are dropped and an empty block yields an empty game.
func (p Parser) Parse(block string) Game {
	game, _ := p.parse(block)
	return game
}

// ParseStrict parses one game block and returns an error wrapping
// [ErrMalformedInput] that lists every dropped header line. The
// returned Game is the same one [Parser.Parse] would produce.
func (p Parser) ParseStrict(block string) (Game, error) {
	game, dropped := p.parse(block)
	if len(dropped) > 0 {
		return game, fmt.Errorf("%w: %d unparseable tag line(s): %q", ErrMalformedInput, len(dropped), dropped)
	}
	return game, nil
}

func (p Parser) parse(block string) (Game, []string) {
	var (
		tags    orderedTags
		moves   []string
		dropped []string
		mode    = modeHeader
	)

	for _, line := range splitLines(strings.TrimSpace(block)) {
		line = strings.TrimSpace(line)

		var kind lineKind
		mode, kind = mode.next(line)
		switch kind {
		case lineTag:
			match := tagPattern.FindStringSubmatch(line)
			if match == nil {
				dropped = append(dropped, line)
				continue
			}
			tags.set(match[1], match[2])
		case lineMoves:
			moves = append(moves, line)
		}
	}

	movetext := strings.TrimSpace(strings.Join(moves, " "))
	if result := resultPattern.FindString(movetext); result != "" {
		tags.set(resultTag, result)
	}

	keys := p.Keys
	if keys == nil {
		keys = DefaultKeys
	}
	return Game{Metadata: tags.shorten(keys), Moves: movetext}, dropped
}

// orderedTags remembers the order in which tag names first appeared,
// so that shortening collisions resolve the same way on every run.
type orderedTags struct {
	names  []string
	values map[string]string
}

func (t *orderedTags) set(name, value string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

// shorten applies the key table in first-appearance order. When two
// names shorten to the same key, the one that appeared later wins.
func (t *orderedTags) shorten(keys *KeyTable) map[string]string {
	result := make(map[string]string, len(t.names))
	for _, name := range t.names {
		result[keys.Shorten(name)] = t.values[name]
	}
	return result
}
