// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtin implements the shell's built-in commands: cd, echo,
// pwd, exit, type, help, and config. Each handler takes the parsed
// Invocation and an Env bundling the streams and state it may need, and
// returns an integer status — the same contract spec.md gives the
// source's function-pointer table, expressed here as a single ordered
// lookup table.
package builtin

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/morganforge/goshell/internal/config"
	"github.com/morganforge/goshell/internal/exec"
	"github.com/morganforge/goshell/internal/shell"
)

// Env bundles everything a built-in handler may need beyond the
// Invocation itself. Stdout/Stderr are io.Writer rather than *os.File so
// a redirected invocation (e.g. "echo ok > /tmp/x") can bind them to a
// target file for the duration of one call.
type Env struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *config.Config
	Exit     func(code int)
	Resolved func(name string) (string, bool) // PATH lookup, for "type"
}

// NewEnv constructs an Env wired to the real process streams, PATH
// resolution, and os.Exit.
func NewEnv(stdout, stderr io.Writer, cfg *config.Config) *Env {
	return &Env{
		Stdout:   stdout,
		Stderr:   stderr,
		Config:   cfg,
		Exit:     os.Exit,
		Resolved: exec.Lookup,
	}
}

// Handler is one built-in's implementation.
type Handler func(inv shell.Invocation, env *Env) int

// Builtin is one entry in the Table: a name, one-line help text, and
// its Handler.
type Builtin struct {
	Name   string
	Help   string
	Handle Handler
}

// Table is the closed, ordered set of built-in commands.
type Table struct {
	order  []string
	byName map[string]Builtin
}

// NewTable constructs the shell's built-in command table.
func NewTable() *Table {
	t := &Table{byName: make(map[string]Builtin)}
	t.register(Builtin{Name: "cd", Help: "cd [path] -- change the working directory", Handle: cdHandler})
	t.register(Builtin{Name: "echo", Help: "echo [args...] -- print arguments separated by spaces", Handle: echoHandler})
	t.register(Builtin{Name: "pwd", Help: "pwd -- print the working directory", Handle: pwdHandler})
	t.register(Builtin{Name: "exit", Help: "exit [n] -- exit the shell with status n (default 0)", Handle: exitHandler})
	t.register(Builtin{Name: "type", Help: "type name... -- show whether each name is a builtin or resolves via PATH", Handle: typeHandlerFor(t)})
	t.register(Builtin{Name: "config", Help: "config -- print the active resolved configuration", Handle: configHandler})
	t.register(Builtin{Name: "help", Help: "help [name...] -- list builtins or show help for named ones", Handle: helpHandlerFor(t)})
	return t
}

func (t *Table) register(b Builtin) {
	t.order = append(t.order, b.Name)
	t.byName[b.Name] = b
}

// Lookup returns the builtin named name, if any.
func (t *Table) Lookup(name string) (Builtin, bool) {
	b, ok := t.byName[name]
	return b, ok
}

// Names returns the builtin names in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func cdHandler(inv shell.Invocation, env *Env) int {
	args := inv.Args()
	target := ""
	switch {
	case len(args) == 0, args[0] == "~":
		home := os.Getenv("HOME")
		if home == "" {
			fmt.Fprintln(env.Stderr, "cd: HOME not set")
			return 1
		}
		target = home
	case strings.HasPrefix(args[0], "~/"):
		home := os.Getenv("HOME")
		if home == "" {
			fmt.Fprintln(env.Stderr, "cd: HOME not set")
			return 1
		}
		target = home + args[0][1:]
	default:
		target = args[0]
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(env.Stderr, "cd: %s: No such file or directory\n", target)
		return 1
	}
	return 0
}

func echoHandler(inv shell.Invocation, env *Env) int {
	fmt.Fprintln(env.Stdout, strings.Join(inv.Args(), " "))
	return 0
}

func pwdHandler(inv shell.Invocation, env *Env) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(env.Stderr, "pwd: %v\n", err)
		return 1
	}
	fmt.Fprintln(env.Stdout, wd)
	return 0
}

func exitHandler(inv shell.Invocation, env *Env) int {
	args := inv.Args()
	if len(args) == 0 {
		env.Exit(0)
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(env.Stderr, "exit: %s: numeric argument required\n", args[0])
		env.Exit(2)
		return 2
	}
	env.Exit(n)
	return n
}

func typeHandlerFor(t *Table) Handler {
	return func(inv shell.Invocation, env *Env) int {
		status := 0
		for _, name := range inv.Args() {
			if _, ok := t.Lookup(name); ok {
				fmt.Fprintf(env.Stdout, "%s is a shell builtin\n", name)
				continue
			}
			if path, ok := env.Resolved(name); ok {
				fmt.Fprintf(env.Stdout, "%s is %s\n", name, path)
				continue
			}
			fmt.Fprintf(env.Stdout, "%s: not found\n", name)
			status = 1
		}
		return status
	}
}

func configHandler(inv shell.Invocation, env *Env) int {
	cfg := env.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fmt.Fprintf(env.Stdout, "prompt.style = %s\n", cfg.Prompt.Style)
	fmt.Fprintf(env.Stdout, "cache.debounce_ms = %d\n", cfg.Cache.DebounceMS)
	fmt.Fprintf(env.Stdout, "color.force = %s\n", cfg.Color.Force)
	return 0
}

func helpHandlerFor(t *Table) Handler {
	return func(inv shell.Invocation, env *Env) int {
		args := inv.Args()
		if len(args) == 0 {
			for _, name := range t.Names() {
				b, _ := t.Lookup(name)
				fmt.Fprintln(env.Stdout, b.Help)
			}
			return 0
		}

		status := 0
		for _, name := range args {
			b, ok := t.Lookup(name)
			if !ok {
				fmt.Fprintf(env.Stderr, "help: %s: not a shell builtin\n", name)
				status = 1
				continue
			}
			fmt.Fprintln(env.Stdout, b.Help)
		}
		return status
	}
}
