// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint is the 32-byte BLAKE3 digest identifying a canonical
// payload. Fingerprints key the deduplication index and are never
// written to a container, so the algorithm can change without a
// format change.
type Fingerprint [32]byte

// payloadDomainKey is the BLAKE3 key for payload fingerprints: the
// ASCII domain name zero-padded to 32 bytes.
var payloadDomainKey = [32]byte{
	'f', 'b', 'p', 'g', 'n', '.', 'p', 'a', 'y', 'l', 'o', 'a', 'd',
}

// FingerprintPayload computes the fingerprint of canonical payload
// bytes.
func FingerprintPayload(payload []byte) Fingerprint {
	// NewKeyed only fails for a key that is not 32 bytes long.
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint
}

// String returns the hex encoding of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}
