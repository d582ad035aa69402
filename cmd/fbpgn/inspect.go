// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/fbpgn/lib/archive"
	"github.com/bureau-foundation/fbpgn/lib/codec"
)

const inspectSynopsis = `Describe an FBPGN archive.

Usage:
  fbpgn inspect [flags] [input.fbpgn]

Prints the format version, codec, game and chunk counts, and for each
slot its stored size and how many games refer to it. With --diag, prints
one decompressed payload in CBOR diagnostic notation instead.`

func runInspect(args []string, stdin io.Reader, stdout io.Writer) error {
	var diagSlot int
	flagSet := newFlagSet("inspect")
	flagSet.IntVar(&diagSlot, "diag", 0, "print the payload in `slot` as CBOR diagnostic notation")

	if done, err := parseFlags(flagSet, args, stdout, inspectSynopsis); done || err != nil {
		return err
	}

	inputPath := inputArg(flagSet)
	data, err := readInput(inputPath, stdin)
	if err != nil {
		return err
	}

	reader := bytes.NewReader(data)
	container, err := archive.ReadContainer(reader)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	if reader.Len() > 0 {
		return fmt.Errorf("reading %s: %w: %d bytes", inputPath, archive.ErrTrailingData, reader.Len())
	}

	if flagSet.Changed("diag") {
		if diagSlot < 0 || diagSlot >= len(container.Chunks) {
			return usage("--diag %d: archive has %d slots", diagSlot, len(container.Chunks))
		}
		payload, err := container.Payload(diagSlot)
		if err != nil {
			return err
		}
		notation, err := codec.Diagnose(payload)
		if err != nil {
			return fmt.Errorf("slot %d: %w: %w", diagSlot, archive.ErrPayloadDecode, err)
		}
		_, err = fmt.Fprintln(stdout, notation)
		return err
	}

	return writeSummary(stdout, container, len(data))
}

func writeSummary(w io.Writer, container *archive.Container, archiveBytes int) error {
	renderer := lipgloss.NewRenderer(w)
	labelStyle := renderer.NewStyle().Bold(true).Width(13)
	headingStyle := renderer.NewStyle().Underline(true)

	stats := container.Stats()
	ratio := "n/a"
	if stats.Unique > 0 {
		ratio = fmt.Sprintf("%.2f", float64(stats.Games)/float64(stats.Unique))
	}

	var buffer bytes.Buffer
	line := func(label string, value any) {
		fmt.Fprintf(&buffer, "%s %v\n", labelStyle.Render(label), value)
	}
	line("Version", container.Version)
	line("Compression", container.Compression)
	line("Archive", humanize.Bytes(uint64(archiveBytes)))
	line("Games", stats.Games)
	line("Unique", stats.Unique)
	line("Duplicates", stats.Duplicates)
	line("Dedup ratio", ratio)
	line("Chunk bytes", humanize.Bytes(uint64(stats.ChunkBytes)))

	if len(container.Chunks) > 0 {
		fmt.Fprintf(&buffer, "\n%s\n", headingStyle.Render("Slots"))
		counts := container.ReferenceCounts()
		for slot, chunk := range container.Chunks {
			fmt.Fprintf(&buffer, "%6d  %8d bytes  %6d refs\n", slot, len(chunk), counts[slot])
		}
	}

	_, err := w.Write(buffer.Bytes())
	return err
}
