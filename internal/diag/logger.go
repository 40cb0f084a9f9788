// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diag is the shell's diagnostic logging layer: structured
// JSON-lines events written to stderr, tagged with a per-process session
// ID, kept separate from the shell's own stdout/stderr command contract.
//
// At normal verbosity only warn/error events are emitted; -v additionally
// emits debug events, such as the one the session records for every
// dispatched command.
package diag

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Field is one key/value pair attached to a log event.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field; a small helper to keep call sites readable.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger emits structured diagnostic events to an io.Writer (normally
// os.Stderr). It is safe for concurrent use — the PATH cache's fsnotify
// goroutine logs from outside the main loop.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	sessionID string
	verbose   bool
}

// New creates a Logger tagged with a fresh session ID.
func New(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, sessionID: uuid.NewString(), verbose: verbose}
}

// SessionID returns the UUID tagging every event this logger emits.
func (l *Logger) SessionID() string { return l.sessionID }

// Debug emits a debug-level event, suppressed unless verbose logging is
// enabled.
func (l *Logger) Debug(component, msg string, fields ...Field) {
	if l == nil || !l.verbose {
		return
	}
	l.emit("debug", component, msg, fields)
}

// Warn emits a warn-level event; always visible.
func (l *Logger) Warn(component, msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.emit("warn", component, msg, fields)
}

// Error emits an error-level event; always visible.
func (l *Logger) Error(component, msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.emit("error", component, msg, fields)
}

func (l *Logger) emit(level, component, msg string, fields []Field) {
	event := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"session":   l.sessionID,
		"level":     level,
		"component": component,
		"msg":       msg,
	}
	for _, f := range fields {
		event[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	enc := json.NewEncoder(l.out)
	_ = enc.Encode(event)
}
