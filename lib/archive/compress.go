// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the codec applied to every chunk of an
// archive. Version 3 containers store the tag in their header, so
// these values are format constants.
type CompressionTag uint8

const (
	// CompressionZlib is zlib (RFC 1950) at best compression. It is the
	// zero value and the only codec version 2 containers use.
	CompressionZlib CompressionTag = 0

	// CompressionNone stores payloads verbatim. Debug archives use it
	// so chunk bytes can be inspected directly.
	CompressionNone CompressionTag = 1

	// CompressionZstd is zstd at its best-compression level.
	CompressionZstd CompressionTag = 2

	// CompressionLZ4 is the LZ4 frame format at level 9.
	CompressionLZ4 CompressionTag = 3
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionZlib:
		return "zlib"
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a compression tag from its string
// representation.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "zlib":
		return CompressionZlib, nil
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want zlib, zstd, lz4, or none)", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (tag CompressionTag) MarshalText() ([]byte, error) {
	if !tag.valid() {
		return nil, fmt.Errorf("unknown compression tag %d", uint8(tag))
	}
	return []byte(tag.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so configuration
// files can name a codec directly.
func (tag *CompressionTag) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressionTag(string(text))
	if err != nil {
		return err
	}
	*tag = parsed
	return nil
}

func (tag CompressionTag) valid() bool {
	return tag <= CompressionLZ4
}

// CompressChunk compresses a payload with the given codec. For
// CompressionNone the input is returned unchanged (no copy).
func CompressChunk(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionZlib:
		return compressZlib(data)

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		return compressLZ4(data)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// DecompressChunk reverses [CompressChunk]. Corrupt input returns an
// error wrapping [ErrDecompression].
func DecompressChunk(compressed []byte, tag CompressionTag) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch tag {
	case CompressionNone:
		return compressed, nil

	case CompressionZlib:
		data, err = decompressZlib(compressed)

	case CompressionZstd:
		data, err = zstdDecoder.DecodeAll(compressed, nil)

	case CompressionLZ4:
		data, err = io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))

	default:
		return nil, fmt.Errorf("%w: unsupported compression tag %d", ErrDecompression, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecompression, tag, err)
	}
	return data, nil
}

// Zlib: level 9, matching archives written by earlier tools.

func compressZlib(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buffer, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressZlib(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	// The reader verifies the Adler-32 trailer when it reaches the
	// end of the stream, so ReadAll reports checksum mismatches.
	return io.ReadAll(reader)
}

// Zstd: encoder and decoder are shared. zstd.Encoder and
// zstd.Decoder are safe for concurrent use through EncodeAll and
// DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
	)
	if err != nil {
		panic("archive: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("archive: zstd decoder initialization failed: " + err.Error())
	}
}

// LZ4: frame format, so each chunk is self-delimiting and carries its
// own checksum.

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if err := writer.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}
