// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal owns the one process-wide mutable resource the shell's
// main loop must always restore: the controlling terminal's attributes.
//
// Raw-mode entry is a scoped acquire/release: EnterRaw returns a State whose
// Restore method is safe to call multiple times and from a deferred
// recover(), so a panic during the read-parse-execute loop can never leave
// the user's terminal in raw mode.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// State is the saved terminal state plus whether raw mode is currently
// active. The zero value is "never entered raw mode".
type State struct {
	fd      int
	saved   *term.State
	raw     bool
}

// FatalError marks a condition the main loop cannot recover from: the
// controlling terminal could not be read from, or its attributes could not
// be restored. Either terminates the loop with non-zero status.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal terminal error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fatal terminal error: %s", e.Reason)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTTY reports whether stdin is a terminal. The shell still runs against a
// non-TTY stdin (scripted input, tests) but falls back to an ASCII prompt
// and skips raw-mode entry per the external interface contract.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// EnterRaw puts the controlling terminal into raw mode — no echo, no
// canonical processing, no signal or extended processing, no CR->NL
// translation, no output post-processing, 8-bit input, VMIN=1/VTIME=0 —
// and returns a State that must be released via Restore on every exit path.
func EnterRaw() (*State, error) {
	fd := int(os.Stdin.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, &FatalError{Reason: "cannot enter raw mode", Err: err}
	}
	return &State{fd: fd, saved: saved, raw: true}, nil
}

// Restore returns the terminal to the attributes captured by EnterRaw. It
// is idempotent: calling it more than once, or on a State that never
// entered raw mode, is a no-op. Callers defer this immediately after a
// successful EnterRaw so it runs on panics as well as normal returns.
func (s *State) Restore() error {
	if s == nil || !s.raw {
		return nil
	}
	s.raw = false
	if err := term.Restore(s.fd, s.saved); err != nil {
		return &FatalError{Reason: "cannot restore terminal attributes", Err: err}
	}
	return nil
}

// Size returns the current terminal width and height, falling back to
// 80x24 when the size cannot be determined (piped output, no controlling
// terminal).
func Size() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
