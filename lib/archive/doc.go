// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive builds and reads FBPGN containers: deduplicated
// binary archives of PGN games.
//
// Each game is canonicalized into a CBOR payload ({"m": metadata,
// "mv": movetext}, see [EncodePayload]), fingerprinted with keyed
// BLAKE3 ([FingerprintPayload]), and stored once per distinct
// fingerprint as a compressed chunk. A reference list with one slot
// index per input game preserves the original order, so duplicates
// cost four bytes each.
//
// Container layout, little-endian throughout:
//
//	"FBPGN"                      5-byte magic
//	version                      1 byte: 2 (zlib chunks) or 3
//	compression tag              1 byte, version 3 only
//	N                            uint32 unique chunk count
//	N × (length uint32, bytes)   compressed payloads in slot order
//	M                            uint32 game count
//	M × uint32                   slot index per game
//
// Version 2 is the original format, always zlib-compressed. Debug
// (uncompressed) archives and the zstd and lz4 codecs use version 3,
// whose extra header byte records the codec so every archive decodes
// without out-of-band flags.
//
// The top-level operations are [Encode] and [Decode]. [Build] and
// [ReadContainer] expose the intermediate [Container] for inspection
// and statistics.
package archive
