// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import "fmt"

// Index assigns slot indexes to distinct payloads during one encode
// run. Slots are numbered from zero in first-seen order; each slot
// owns one compressed chunk. An Index is not safe for concurrent use.
type Index struct {
	compression CompressionTag
	slots       map[Fingerprint]int
	chunks      [][]byte
}

// NewIndex creates an empty index whose chunks are compressed with
// the given codec.
func NewIndex(compression CompressionTag) *Index {
	return &Index{
		compression: compression,
		slots:       make(map[Fingerprint]int),
	}
}

// LookupOrInsert returns the slot for fingerprint. The first time a
// fingerprint is seen its payload is compressed and stored as a new
// chunk and inserted is true. Later calls return the same slot without
// touching payload.
func (idx *Index) LookupOrInsert(fingerprint Fingerprint, payload []byte) (slot int, inserted bool, err error) {
	if slot, ok := idx.slots[fingerprint]; ok {
		return slot, false, nil
	}

	chunk, err := CompressChunk(payload, idx.compression)
	if err != nil {
		return 0, false, fmt.Errorf("compressing chunk %d: %w", len(idx.chunks), err)
	}

	slot = len(idx.chunks)
	idx.chunks = append(idx.chunks, chunk)
	idx.slots[fingerprint] = slot
	return slot, true, nil
}

// Chunks returns the stored chunks in slot order. The slice is shared
// with the index.
func (idx *Index) Chunks() [][]byte {
	return idx.chunks
}

// Len returns the number of distinct payloads stored.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Compression returns the codec applied to stored chunks.
func (idx *Index) Compression() CompressionTag {
	return idx.compression
}
