// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session wires the shell's subsystems into the main
// read-parse-execute loop described by the system overview: Terminal
// -> LineEditor -> Parser -> Executor, with CompletionEngine invoked
// synchronously from the editor on TAB.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/morganforge/goshell/internal/builtin"
	"github.com/morganforge/goshell/internal/complete"
	"github.com/morganforge/goshell/internal/config"
	"github.com/morganforge/goshell/internal/diag"
	"github.com/morganforge/goshell/internal/exec"
	"github.com/morganforge/goshell/internal/lexer"
	"github.com/morganforge/goshell/internal/lineedit"
	"github.com/morganforge/goshell/internal/pathcache"
	"github.com/morganforge/goshell/internal/prompt"
	"github.com/morganforge/goshell/internal/shell"
	"github.com/morganforge/goshell/internal/terminal"
)

// Session owns the main loop's process-wide mutable state — the
// terminal's saved attributes, the completion engine's double-tap
// memory (held inside Completer), the builtin table, and the
// executor — as explicit fields rather than module-level statics, per
// the design's explicit-session-object requirement.
type Session struct {
	Builtins  *builtin.Table
	Executor  *exec.Executor
	Completer *complete.Engine
	Cache     *pathcache.Cache
	Config    *config.Config
	Log       *diag.Logger
	Prompt    *prompt.Renderer

	term *terminal.State
}

// New constructs a Session with its full dependency graph wired:
// config loaded (or defaulted), a diagnostic logger tagged for this
// process, a PATH cache watching every PATH directory, and the
// completion engine and executor bound to it.
func New(verbose bool) *Session {
	log := diag.New(os.Stderr, verbose)

	cfg := config.Load(func(msg string, err error) {
		log.Warn("config", msg, diag.F("err", err.Error()))
	})

	cache := pathcache.New(time.Duration(cfg.Cache.DebounceMS)*time.Millisecond, log)
	for _, dir := range pathDirs() {
		cache.Watch(dir)
	}

	builtins := builtin.NewTable()

	return &Session{
		Builtins:  builtins,
		Executor:  exec.New(),
		Completer: complete.NewEngine(builtins.Names(), cache),
		Cache:     cache,
		Config:    cfg,
		Log:       log,
		Prompt:    prompt.NewRenderer(cfg),
	}
}

func pathDirs() []string {
	var dirs []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Run executes the read-parse-execute loop against in/out/errOut until
// exit, EOF, or a FatalTerminalError terminates it. It returns the
// process's intended exit status.
func (s *Session) Run(in *os.File, out, errOut *os.File) int {
	defer s.Cache.Close()

	if terminal.IsTTY() {
		t, err := terminal.EnterRaw()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		s.term = t
		defer s.term.Restore()
	}

	editor := lineedit.NewEditor(in, out, s.renderPrompt(), s.Completer)
	env := builtin.NewEnv(out, errOut, s.Config)
	env.Exit = func(code int) {
		s.term.Restore()
		os.Exit(code)
	}

	for {
		editor.SetPrompt(s.renderPrompt())
		line, eof, err := editor.ReadLine()
		if err != nil {
			s.Log.Error("terminal", "fatal read error", diag.F("err", err.Error()))
			fmt.Fprintln(errOut, err)
			return 1
		}
		if eof {
			return 0
		}

		inv, perr := lexer.Parse(line)
		if perr != nil {
			s.Log.Warn("parser", "syntax error", diag.F("err", perr.Error()))
			fmt.Fprintln(errOut, perr)
			continue
		}
		if inv.Empty() {
			continue
		}

		s.dispatch(inv, env, out, errOut)
	}
}

func (s *Session) dispatch(inv shell.Invocation, env *builtin.Env, out, errOut io.Writer) {
	if b, ok := s.Builtins.Lookup(inv.Name()); ok {
		stdout, closeOut, err := openRedirTarget(s.Executor.Opener, inv.Redir.Stdout, out)
		if err != nil {
			fmt.Fprintln(errOut, err)
			s.Log.Warn("builtin", "io error", diag.F("err", err.Error()))
			return
		}
		defer closeOut()

		stderr, closeErr, err := openRedirTarget(s.Executor.Opener, inv.Redir.Stderr, errOut)
		if err != nil {
			fmt.Fprintln(errOut, err)
			s.Log.Warn("builtin", "io error", diag.F("err", err.Error()))
			return
		}
		defer closeErr()

		// temporarily swap the builtin's I/O for a redirected invocation,
		// then restore — same discipline exec.Executor applies around an
		// external command.
		prevOut, prevErr := env.Stdout, env.Stderr
		env.Stdout, env.Stderr = stdout, stderr
		status := b.Handle(inv, env)
		env.Stdout, env.Stderr = prevOut, prevErr
		s.Log.Debug("executor", "builtin finished", diag.F("builtin", inv.Name()), diag.F("status", status))
		return
	}

	code, err := s.Executor.Run(context.Background(), inv, os.Stdin, out, errOut)
	if err != nil {
		if err == exec.ErrCommandNotFound {
			fmt.Fprintf(errOut, "%s: command not found\n", inv.Name())
			s.Log.Warn("executor", "command not found", diag.F("name", inv.Name()))
			return
		}
		fmt.Fprintln(errOut, err)
		s.Log.Warn("executor", "io error", diag.F("err", err.Error()))
		return
	}
	s.Log.Debug("executor", "command finished", diag.F("name", inv.Name()), diag.F("status", code))
}

// openRedirTarget opens redir's target file through opener if present,
// otherwise returns fallback unchanged. The returned close func is always
// safe to call. Mirrors exec.Executor's own redirection handling so a
// builtin and an external command honor ">"/">>" identically.
func openRedirTarget(opener exec.FileOpener, redir *shell.RedirectTarget, fallback io.Writer) (io.Writer, func(), error) {
	if redir == nil {
		return fallback, func() {}, nil
	}

	f, err := opener.OpenWrite(redir.Path, redir.Append)
	if err != nil {
		return nil, func() {}, &exec.IoError{Path: redir.Path, Err: err}
	}
	return f, func() { f.Close() }, nil
}

func (s *Session) renderPrompt() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "?"
	}
	return s.Prompt.Render(wd)
}
