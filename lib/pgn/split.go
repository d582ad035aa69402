// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pgn

import "strings"

// eventMarker starts a new game block when it begins a trimmed line.
const eventMarker = "[Event "

// Split divides a PGN collection into game blocks, one per `[Event `
// line, in input order. Each block is trimmed of surrounding
// whitespace.
//
// Lines before the first marker are not discarded: they form a leading
// block of their own, even if that block trims to the empty string.
// Empty input returns nil.
func Split(text string) []string {
	var (
		blocks  []string
		current []string
	)
	for _, line := range splitLines(text) {
		if strings.HasPrefix(strings.TrimSpace(line), eventMarker) && len(current) > 0 {
			blocks = append(blocks, closeBlock(current))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, closeBlock(current))
	}
	return blocks
}

func closeBlock(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// splitLines breaks text at "\n", "\r\n" and "\r". A trailing line
// break does not produce a final empty line, and empty text produces
// no lines at all.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
