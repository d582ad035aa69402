// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// fbpgn converts PGN game collections to and from FBPGN, a binary
// archive that stores each distinct game once.
//
// Subcommands:
//
//	fbpgn encode [flags] [input.pgn]     PGN text to archive
//	fbpgn decode [flags] [input.fbpgn]   archive to PGN text or JSON
//	fbpgn inspect [flags] [input.fbpgn]  header, counts, per-slot sizes
//
// Input "-" or no input reads stdin. Exit status is 0 on success, 2
// for usage errors (bad flags, bad configuration), and 1 for anything
// else.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fbpgn/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode returns the process exit status for an error returned by
// run.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return usage("no subcommand given")
	}

	switch args[0] {
	case "--version", "version":
		version.Print(stdout, "fbpgn")
		return nil
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	case "encode":
		return runEncode(args[1:], stdin, stdout, stderr)
	case "decode":
		return runDecode(args[1:], stdin, stdout, stderr)
	case "inspect":
		return runInspect(args[1:], stdin, stdout)
	default:
		return usage("unknown subcommand %q", args[0]).
			WithHint("Run 'fbpgn help' to list subcommands.")
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `fbpgn converts PGN game collections to and from deduplicated FBPGN archives.

Usage:
  fbpgn encode [flags] [input.pgn]
  fbpgn decode [flags] [input.fbpgn]
  fbpgn inspect [flags] [input.fbpgn]
  fbpgn --version

Input "-" or no input reads stdin. Run 'fbpgn <subcommand> --help' for
subcommand flags.
`)
}

// newFlagSet returns a flag set that reports errors through its
// return value instead of printing them.
func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

// parseFlags parses args and handles --help. done is true when help
// was printed and the command should return without doing anything.
func parseFlags(flagSet *pflag.FlagSet, args []string, stdout io.Writer, synopsis string) (done bool, err error) {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandHelp(stdout, flagSet, synopsis)
			return true, nil
		}
		return false, usage("%s: %w", flagSet.Name(), err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printCommandHelp(stdout, flagSet, synopsis)
		return true, nil
	}
	if flagSet.NArg() > 1 {
		return false, usage("%s takes at most one input, got %d", flagSet.Name(), flagSet.NArg())
	}
	return false, nil
}

func printCommandHelp(w io.Writer, flagSet *pflag.FlagSet, synopsis string) {
	fmt.Fprintf(w, "%s\n\nFlags:\n%s", synopsis, flagSet.FlagUsages())
}

// inputArg returns the single positional argument, or "-" for stdin.
func inputArg(flagSet *pflag.FlagSet) string {
	if flagSet.NArg() == 0 {
		return "-"
	}
	return flagSet.Arg(0)
}
