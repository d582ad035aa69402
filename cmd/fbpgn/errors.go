// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

// usageError reports a problem with how fbpgn was invoked: unknown
// subcommands, bad flags, or invalid configuration. It exits with
// status 2.
type usageError struct {
	err error

	// hint is an optional next step appended to the message.
	hint string
}

func usage(format string, args ...any) *usageError {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// WithHint attaches a hint and returns the receiver for chaining.
func (e *usageError) WithHint(hint string) *usageError {
	e.hint = hint
	return e
}

func (e *usageError) Error() string {
	if e.hint == "" {
		return e.err.Error()
	}
	return e.err.Error() + "\n\n" + e.hint
}

func (e *usageError) Unwrap() error { return e.err }

// ExitCode implements the interface main checks for.
func (e *usageError) ExitCode() int { return 2 }
