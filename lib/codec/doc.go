// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration used for FBPGN game
// payloads.
//
// Payloads are hashed to find duplicate games, so the encoding must be
// canonical: the encoder uses Core Deterministic Encoding (RFC 8949
// §4.2), which sorts map keys, uses the shortest integer and length
// forms, and never emits indefinite-length items. Two equal values
// always encode to identical bytes, regardless of Go map iteration
// order.
//
// The decoder is the strict counterpart: it rejects duplicate map keys
// and trailing data.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// [Diagnose] renders raw payload bytes in diagnostic notation for
// "fbpgn inspect --diag".
package codec
