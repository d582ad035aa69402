// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pgn

import (
	"fmt"
	"maps"
	"slices"
)

// KeyTable maps full PGN tag names to the short codes stored in
// archives, and back. A KeyTable is immutable once built; [KeyTable.With]
// returns a new table rather than modifying the receiver.
//
// Short codes must be unique across the table so that every stored key
// expands to exactly one tag name.
type KeyTable struct {
	short map[string]string // full name -> short code
	full  map[string]string // short code -> full name
}

// DefaultKeys is the shortening table every FBPGN archive uses unless a
// caller injects another one. Changing it changes the canonical payload
// of every game, and therefore every fingerprint and chunk.
var DefaultKeys = mustKeyTable(map[string]string{
	"Event":    "E",
	"Site":     "S",
	"Date":     "D",
	"Round":    "R",
	"White":    "W",
	"Black":    "B",
	"Result":   "Rs",
	"WhiteElo": "WE",
	"BlackElo": "BE",
	"ECO":      "EC",
})

// NewKeyTable builds a table from full name -> short code pairs.
// Returns an error if two names share a short code, or if a name or
// code is empty.
func NewKeyTable(pairs map[string]string) (*KeyTable, error) {
	table := &KeyTable{
		short: make(map[string]string, len(pairs)),
		full:  make(map[string]string, len(pairs)),
	}
	// Sorted so the error for a collision names the same pair on
	// every run.
	for _, name := range slices.Sorted(maps.Keys(pairs)) {
		code := pairs[name]
		if name == "" || code == "" {
			return nil, fmt.Errorf("key table entry %q -> %q: name and code must be non-empty", name, code)
		}
		if existing, ok := table.full[code]; ok {
			return nil, fmt.Errorf("key table: short code %q used by both %q and %q", code, existing, name)
		}
		table.short[name] = code
		table.full[code] = name
	}
	return table, nil
}

func mustKeyTable(pairs map[string]string) *KeyTable {
	table, err := NewKeyTable(pairs)
	if err != nil {
		panic("pgn: " + err.Error())
	}
	return table
}

// With returns a new table containing the receiver's entries with
// overrides applied on top. An override may remap an existing name to a
// new code or add a new name.
func (t *KeyTable) With(overrides map[string]string) (*KeyTable, error) {
	merged := t.Pairs()
	maps.Copy(merged, overrides)
	return NewKeyTable(merged)
}

// Pairs returns a copy of the full name -> short code mapping.
func (t *KeyTable) Pairs() map[string]string {
	return maps.Clone(t.short)
}

// Shorten returns the short code for a tag name, or the name itself
// when the table has no entry for it.
func (t *KeyTable) Shorten(name string) string {
	if code, ok := t.short[name]; ok {
		return code
	}
	return name
}

// Expand returns the full tag name for a short code, or the code
// itself when it is not one of the table's codes.
func (t *KeyTable) Expand(code string) string {
	if name, ok := t.full[code]; ok {
		return name
	}
	return code
}

// Len returns the number of entries.
func (t *KeyTable) Len() int {
	return len(t.short)
}
