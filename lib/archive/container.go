// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/fbpgn/lib/pgn"
)

// Container format constants.
const (
	// VersionZlib is the original layout: no codec byte, chunks are
	// always zlib.
	VersionZlib = 2

	// VersionTagged adds a compression tag byte after the version.
	VersionTagged = 3

	// maxPreallocation caps slice capacity taken from a count field,
	// so a corrupt count fails with ErrTruncated instead of a huge
	// allocation.
	maxPreallocation = 1 << 16
)

// containerMagic is the 5-byte file signature.
var containerMagic = [5]byte{'F', 'B', 'P', 'G', 'N'}

// Container is a decoded FBPGN archive: unique compressed chunks in
// slot order and one slot reference per game. Containers returned by
// [Build] and [ReadContainer] are consistent (every reference is below
// len(Chunks), and Version matches Compression) and should be treated
// as immutable.
type Container struct {
	// Version is the format version byte, [VersionZlib] or
	// [VersionTagged].
	Version byte

	// Compression is the codec applied to every chunk.
	Compression CompressionTag

	// Chunks holds the compressed payloads, indexed by slot.
	Chunks [][]byte

	// References holds one slot index per game in original order.
	References []uint32
}

// Stats summarizes a container.
type Stats struct {
	// Games is the number of games (references).
	Games int

	// Unique is the number of stored chunks.
	Unique int

	// Duplicates counts the games that repeat an earlier game and
	// cost only a reference.
	Duplicates int

	// ChunkBytes is the total size of stored chunk data.
	ChunkBytes int64
}

// versionFor returns the format version that carries the codec.
func versionFor(compression CompressionTag) byte {
	if compression == CompressionZlib {
		return VersionZlib
	}
	return VersionTagged
}

func newContainer(compression CompressionTag, chunks [][]byte, references []uint32) *Container {
	return &Container{
		Version:     versionFor(compression),
		Compression: compression,
		Chunks:      chunks,
		References:  references,
	}
}

// WriteTo writes the container in binary form and returns the number
// of bytes written.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	if !c.Compression.valid() {
		return 0, fmt.Errorf("unsupported compression tag: %d", c.Compression)
	}
	if c.Version != versionFor(c.Compression) {
		return 0, fmt.Errorf("container version %d cannot carry %s chunks", c.Version, c.Compression)
	}

	cw := &countingWriter{w: w}

	if err := cw.write(containerMagic[:]); err != nil {
		return cw.n, fmt.Errorf("writing container magic: %w", err)
	}
	header := []byte{c.Version}
	if c.Version == VersionTagged {
		header = append(header, byte(c.Compression))
	}
	if err := cw.write(header); err != nil {
		return cw.n, fmt.Errorf("writing container version: %w", err)
	}

	if err := cw.writeUint32(uint32(len(c.Chunks))); err != nil {
		return cw.n, fmt.Errorf("writing chunk count: %w", err)
	}
	for i, chunk := range c.Chunks {
		if err := cw.writeUint32(uint32(len(chunk))); err != nil {
			return cw.n, fmt.Errorf("writing chunk %d length: %w", i, err)
		}
		if err := cw.write(chunk); err != nil {
			return cw.n, fmt.Errorf("writing chunk %d data: %w", i, err)
		}
	}

	if err := cw.writeUint32(uint32(len(c.References))); err != nil {
		return cw.n, fmt.Errorf("writing reference count: %w", err)
	}
	for i, slot := range c.References {
		if err := cw.writeUint32(slot); err != nil {
			return cw.n, fmt.Errorf("writing reference %d: %w", i, err)
		}
	}

	return cw.n, nil
}

// MarshalBinary returns the container in binary form.
func (c *Container) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(c.encodedSize())
	if _, err := c.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c *Container) encodedSize() int {
	size := len(containerMagic) + 1 + 4 + 4 + 4*len(c.References)
	if c.Version == VersionTagged {
		size++
	}
	for _, chunk := range c.Chunks {
		size += 4 + len(chunk)
	}
	return size
}

// ReadContainer reads one container from r. The reader is left
// positioned immediately after the reference list. Errors wrap
// [ErrBadMagicOrVersion], [ErrTruncated], or [ErrInvalidReference].
func ReadContainer(r io.Reader) (*Container, error) {
	var magic [5]byte
	if err := readFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("reading container magic: %w", err)
	}
	if magic != containerMagic {
		return nil, fmt.Errorf("%w: not an FBPGN archive (magic %q)", ErrBadMagicOrVersion, magic[:])
	}

	var version [1]byte
	if err := readFull(r, version[:]); err != nil {
		return nil, fmt.Errorf("reading container version: %w", err)
	}

	container := &Container{Version: version[0]}
	switch version[0] {
	case VersionZlib:
		container.Compression = CompressionZlib

	case VersionTagged:
		var tag [1]byte
		if err := readFull(r, tag[:]); err != nil {
			return nil, fmt.Errorf("reading compression tag: %w", err)
		}
		container.Compression = CompressionTag(tag[0])
		if container.Compression == CompressionZlib || !container.Compression.valid() {
			return nil, fmt.Errorf("%w: version %d container has compression tag %d",
				ErrBadMagicOrVersion, VersionTagged, tag[0])
		}

	default:
		return nil, fmt.Errorf("%w: container version %d is not supported (want %d or %d)",
			ErrBadMagicOrVersion, version[0], VersionZlib, VersionTagged)
	}

	chunkCount, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("reading chunk count: %w", err)
	}
	container.Chunks = make([][]byte, 0, min(chunkCount, maxPreallocation))
	for i := range chunkCount {
		length, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("reading chunk %d length: %w", i, err)
		}
		chunk, err := io.ReadAll(io.LimitReader(r, int64(length)))
		if err != nil {
			return nil, fmt.Errorf("reading chunk %d data: %w", i, err)
		}
		if len(chunk) != int(length) {
			return nil, fmt.Errorf("reading chunk %d data: %w: got %d of %d bytes",
				i, ErrTruncated, len(chunk), length)
		}
		container.Chunks = append(container.Chunks, chunk)
	}

	referenceCount, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("reading reference count: %w", err)
	}
	container.References = make([]uint32, 0, min(referenceCount, maxPreallocation))
	for i := range referenceCount {
		slot, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("reading reference %d: %w", i, err)
		}
		if slot >= chunkCount {
			return nil, fmt.Errorf("reference %d: %w: slot %d of %d", i, ErrInvalidReference, slot, chunkCount)
		}
		container.References = append(container.References, slot)
	}

	return container, nil
}

// Payload returns the decompressed payload stored in slot.
func (c *Container) Payload(slot int) ([]byte, error) {
	if slot < 0 || slot >= len(c.Chunks) {
		return nil, fmt.Errorf("%w: slot %d of %d", ErrInvalidReference, slot, len(c.Chunks))
	}
	data, err := DecompressChunk(c.Chunks[slot], c.Compression)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", slot, err)
	}
	return data, nil
}

// Game decodes the game at position in the reference list.
func (c *Container) Game(position int) (pgn.Game, error) {
	if position < 0 || position >= len(c.References) {
		return pgn.Game{}, fmt.Errorf("game %d out of range [0, %d)", position, len(c.References))
	}
	return c.decodeSlot(int(c.References[position]))
}

// Games decodes every game in original order. Each referenced chunk is
// decompressed and decoded once; duplicate positions receive
// independent copies of the metadata map.
func (c *Container) Games() ([]pgn.Game, error) {
	decoded := make(map[uint32]pgn.Game)
	games := make([]pgn.Game, len(c.References))
	for position, slot := range c.References {
		if game, ok := decoded[slot]; ok {
			games[position] = game.Clone()
			continue
		}
		game, err := c.decodeSlot(int(slot))
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", position, err)
		}
		decoded[slot] = game
		games[position] = game
	}
	return games, nil
}

func (c *Container) decodeSlot(slot int) (pgn.Game, error) {
	data, err := c.Payload(slot)
	if err != nil {
		return pgn.Game{}, err
	}
	game, err := DecodePayload(data)
	if err != nil {
		return pgn.Game{}, fmt.Errorf("chunk %d: %w", slot, err)
	}
	return game, nil
}

// Stats returns summary counts for the container.
func (c *Container) Stats() Stats {
	stats := Stats{
		Games:  len(c.References),
		Unique: len(c.Chunks),
	}
	referenced := 0
	for _, count := range c.ReferenceCounts() {
		if count > 0 {
			referenced++
		}
	}
	stats.Duplicates = stats.Games - referenced
	for _, chunk := range c.Chunks {
		stats.ChunkBytes += int64(len(chunk))
	}
	return stats
}

// ReferenceCounts returns, for each slot, how many games refer to it.
func (c *Container) ReferenceCounts() []int {
	counts := make([]int, len(c.Chunks))
	for _, slot := range c.References {
		if int(slot) < len(counts) {
			counts[slot]++
		}
	}
	return counts
}

type countingWriter struct {
	w       io.Writer
	n       int64
	scratch [4]byte
}

func (cw *countingWriter) write(p []byte) error {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return err
}

func (cw *countingWriter) writeUint32(value uint32) error {
	binary.LittleEndian.PutUint32(cw.scratch[:], value)
	return cw.write(cw.scratch[:])
}

// readFull is io.ReadFull with end-of-stream reported as ErrTruncated.
func readFull(r io.Reader, buffer []byte) error {
	if _, err := io.ReadFull(r, buffer); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return err
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buffer [4]byte
	if err := readFull(r, buffer[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buffer[:]), nil
}
