// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pgn splits and parses PGN game collections into the compact
// records that the FBPGN archive stores, and renders those records back
// to PGN text.
//
// Parsing is deliberately lenient. It never validates moves and never
// fails on odd input:
//
//   - [Split] cuts a collection into game blocks at lines starting with
//     `[Event `. Text before the first marker becomes its own block.
//   - [Parse] reads `[Name "value"]` tag pairs until the first blank or
//     non-tag line, then treats every remaining non-blank line as
//     movetext. Tag lines that do not match the pattern are dropped.
//   - A result token found anywhere in the movetext (1-0, 0-1, 1/2-1/2,
//     *) replaces the Result tag.
//   - Tag names are shortened through a [KeyTable] (Event becomes E,
//     WhiteElo becomes WE, and so on). Names without an entry pass
//     through unchanged.
//
// [ParseStrict] is the same parse, but reports dropped tag lines as
// [ErrMalformedInput] for callers that want to reject sloppy input.
//
// [Render] goes the other way: it expands short names and writes the
// Seven Tag Roster first, then the remaining tags in name order, then
// the movetext.
package pgn
