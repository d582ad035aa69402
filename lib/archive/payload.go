// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"

	"github.com/bureau-foundation/fbpgn/lib/codec"
	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

// payload is the wire shape of one game. Field names are format
// constants.
type payload struct {
	Metadata map[string]string `cbor:"m"`
	Moves    string            `cbor:"mv"`
}

// CBOR major types checked before decoding the payload fields.
const (
	majorTypeText = 3
	majorTypeMap  = 5
)

// EncodePayload returns the canonical CBOR encoding of a game. Equal
// games always produce identical bytes. Nil metadata is encoded as an
// empty map.
func EncodePayload(game pgn.Game) ([]byte, error) {
	metadata := game.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	data, err := codec.Marshal(payload{Metadata: metadata, Moves: game.Moves})
	if err != nil {
		return nil, fmt.Errorf("encoding game payload: %w", err)
	}
	return data, nil
}

// DecodePayload decodes a payload produced by [EncodePayload]. The
// top level must be a map with exactly the keys "m" (a map of text to
// text) and "mv" (text); anything else returns an error wrapping
// [ErrPayloadDecode]. The returned metadata map is never nil.
func DecodePayload(data []byte) (pgn.Game, error) {
	var fields map[string]codec.RawMessage
	if err := codec.Unmarshal(data, &fields); err != nil {
		return pgn.Game{}, fmt.Errorf("%w: %w", ErrPayloadDecode, err)
	}
	if len(fields) != 2 {
		return pgn.Game{}, fmt.Errorf("%w: payload has %d fields, want m and mv", ErrPayloadDecode, len(fields))
	}

	rawMetadata, ok := fields["m"]
	if !ok {
		return pgn.Game{}, fmt.Errorf("%w: payload has no m field", ErrPayloadDecode)
	}
	rawMoves, ok := fields["mv"]
	if !ok {
		return pgn.Game{}, fmt.Errorf("%w: payload has no mv field", ErrPayloadDecode)
	}

	// CBOR null and undefined decode silently into Go zero values, so
	// the item types are checked before decoding.
	if majorType(rawMetadata) != majorTypeMap {
		return pgn.Game{}, fmt.Errorf("%w: m is not a map", ErrPayloadDecode)
	}
	if majorType(rawMoves) != majorTypeText {
		return pgn.Game{}, fmt.Errorf("%w: mv is not a text string", ErrPayloadDecode)
	}

	game := pgn.Game{Metadata: map[string]string{}}
	if err := codec.Unmarshal(rawMetadata, &game.Metadata); err != nil {
		return pgn.Game{}, fmt.Errorf("%w: m: %w", ErrPayloadDecode, err)
	}
	if err := codec.Unmarshal(rawMoves, &game.Moves); err != nil {
		return pgn.Game{}, fmt.Errorf("%w: mv: %w", ErrPayloadDecode, err)
	}
	return game, nil
}

func majorType(item []byte) int {
	if len(item) == 0 {
		return -1
	}
	return int(item[0] >> 5)
}
