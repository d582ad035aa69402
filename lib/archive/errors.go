// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import "errors"

// Decode failures. Every error returned while reading a container
// wraps exactly one of these, so callers can classify failures with
// errors.Is. No partial results accompany any of them.
var (
	// ErrTruncated means the data ended inside a header field, a
	// count, or a declared chunk length.
	ErrTruncated = errors.New("truncated container")

	// ErrBadMagicOrVersion means the data does not start with the
	// FBPGN magic, carries an unsupported version byte, or (version
	// 3) names an unknown compression codec.
	ErrBadMagicOrVersion = errors.New("bad magic or version")

	// ErrDecompression means a chunk is not valid data for the
	// archive's codec.
	ErrDecompression = errors.New("chunk decompression failed")

	// ErrPayloadDecode means a decompressed chunk is not a valid game
	// payload.
	ErrPayloadDecode = errors.New("payload decode failed")

	// ErrInvalidReference means a reference names a slot at or beyond
	// the unique chunk count.
	ErrInvalidReference = errors.New("reference to nonexistent chunk")

	// ErrTrailingData means bytes follow the reference list.
	ErrTrailingData = errors.New("trailing data after reference list")
)
