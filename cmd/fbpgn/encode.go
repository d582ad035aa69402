// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fbpgn/lib/archive"
	"github.com/bureau-foundation/fbpgn/lib/config"
)

const encodeSynopsis = `Convert PGN text to an FBPGN archive.

Usage:
  fbpgn encode [flags] [input.pgn]

The archive goes to --output, to output_dir from the config file when
the input is a file, or to stdout.`

// commonFlags are shared by encode and decode.
type commonFlags struct {
	output     string
	configPath string
	logLevel   string
}

func (f *commonFlags) add(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.output, "output", "o", "", "output path (default: stdout)")
	flagSet.StringVar(&f.configPath, "config", "", "configuration file (default: $FBPGN_CONFIG)")
	flagSet.StringVar(&f.logLevel, "log-level", "", "debug, info, warn, or error (default: info)")
}

// resolve loads configuration and applies the flags the caller set.
// Invalid results are usage errors.
func (f *commonFlags) resolve(flagSet *pflag.FlagSet, apply func(*config.Config)) (*config.Config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, usage("%w", err)
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, usage("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runEncode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		common      commonFlags
		compression string
		debug       bool
		strict      bool
		workers     int
	)
	flagSet := newFlagSet("encode")
	common.add(flagSet)
	flagSet.StringVar(&compression, "compression", "", "chunk codec: zlib, zstd, lz4, or none (default: zlib)")
	flagSet.BoolVar(&debug, "debug", false, "store payloads uncompressed (overrides --compression)")
	flagSet.BoolVar(&strict, "strict", false, "fail on header lines that are not tag pairs")
	flagSet.IntVar(&workers, "workers", 0, "goroutines for parsing and hashing (default: 1)")

	if done, err := parseFlags(flagSet, args, stdout, encodeSynopsis); done || err != nil {
		return err
	}

	cfg, err := common.resolve(flagSet, func(cfg *config.Config) {
		if flagSet.Changed("compression") {
			cfg.Compression = compression
		}
		if flagSet.Changed("strict") {
			cfg.Strict = strict
		}
		if flagSet.Changed("workers") {
			cfg.Workers = workers
		}
	})
	if err != nil {
		return err
	}
	// Validate has already checked all three.
	tag, _ := cfg.CompressionTag()
	level, _ := cfg.Level()
	keys, _ := cfg.KeyTable()

	inputPath := inputArg(flagSet)
	logger := newLogger(stderr, level).With("command", "encode", "input", inputPath)

	input, err := readInput(inputPath, stdin)
	if err != nil {
		return err
	}

	container, err := archive.Build(string(input), archive.EncodeOptions{
		Compression: tag,
		Debug:       debug,
		Keys:        keys,
		Strict:      cfg.Strict,
		Workers:     cfg.Workers,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	outputPath := common.output
	if outputPath == "" && inputPath != "-" && cfg.OutputDir != "" {
		if err := cfg.EnsureOutputDir(); err != nil {
			return err
		}
		outputPath = cfg.OutputPath(inputPath)
		logger.Info("writing archive", "output", outputPath)
	}

	return writeOutput(outputPath, stdout, func(w io.Writer) error {
		_, err := container.WriteTo(w)
		return err
	})
}
