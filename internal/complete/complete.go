// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package complete implements TAB completion: candidate generation over
// three sources (path-qualified names, first-word builtins+PATH,
// cwd entries), longest-common-prefix extension, and the double-tap
// reveal state machine. Engine implements lineedit.TabHandler so the
// editor can invoke it without lineedit importing this package.
package complete

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/morganforge/goshell/internal/lineedit"
	"github.com/morganforge/goshell/internal/pathcache"
)

// doubleTapWindow is how long a repeated TAB on an unchanged prefix is
// still considered the "second tap" that reveals the candidate list.
const doubleTapWindow = time.Second

// Engine generates and applies completions. Builtins is the set of
// built-in command names offered as first-word candidates alongside
// PATH executables.
type Engine struct {
	Builtins []string
	Cache    *pathcache.Cache

	lastTap    time.Time
	lastPrefix string
	havePrior  bool
}

// NewEngine constructs an Engine. cache may be nil, in which case PATH
// directories are scanned fresh on every completion.
func NewEngine(builtins []string, cache *pathcache.Cache) *Engine {
	return &Engine{Builtins: builtins, Cache: cache}
}

// Trigger implements lineedit.TabHandler.
func (e *Engine) Trigger(s lineedit.Surface) {
	buf := s.Buffer()
	prefix := buf.String()[:buf.Cursor()]
	lastWord := wordAfterLastSpace(prefix)
	isFirstWord := !containsUnescapedSpace(prefix[:len(prefix)-len(lastWord)])

	candidates := e.candidates(lastWord, isFirstWord)
	candidates = dedupSorted(candidates)

	switch len(candidates) {
	case 0:
		s.Bell()
		e.reset()

	case 1:
		e.applySingle(buf, lastWord, candidates[0])
		s.Redraw()
		e.reset()

	default:
		lcp := longestCommonPrefix(candidates)
		if len(lcp) > len(lastWord) {
			buf.ReplaceWord(lcp)
			s.Redraw()
			e.record(lastWord)
			return
		}

		now := time.Now()
		if e.havePrior && e.lastPrefix == lastWord && now.Sub(e.lastTap) <= doubleTapWindow {
			s.PrintAbove([]string{strings.Join(candidates, "  ")})
			e.reset()
			return
		}

		s.Bell()
		e.record(lastWord)
	}
}

func (e *Engine) record(prefix string) {
	e.lastTap = time.Now()
	e.lastPrefix = prefix
	e.havePrior = true
}

func (e *Engine) reset() {
	e.havePrior = false
	e.lastPrefix = ""
}

func (e *Engine) applySingle(buf *lineedit.LineBuffer, lastWord, candidate string) {
	buf.ReplaceWord(candidate)
	if !strings.HasSuffix(candidate, "/") {
		buf.Insert(" ")
	}
}

func (e *Engine) candidates(lastWord string, isFirstWord bool) []string {
	switch {
	case strings.Contains(lastWord, "/"):
		return e.pathCandidates(lastWord)
	case isFirstWord:
		return e.firstWordCandidates(lastWord)
	default:
		return e.cwdCandidates(lastWord)
	}
}

// pathCandidates completes last_word as a path: dir_prefix/file_prefix.
func (e *Engine) pathCandidates(lastWord string) []string {
	idx := strings.LastIndex(lastWord, "/")
	dirPrefix := lastWord[:idx+1]
	filePrefix := lastWord[idx+1:]

	dir := dirPrefix
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		cand := dirPrefix + name
		if ent.IsDir() {
			cand += "/"
		}
		out = append(out, cand)
	}
	return out
}

// firstWordCandidates unions builtin names with PATH executables.
func (e *Engine) firstWordCandidates(prefix string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(name string) {
		if !strings.HasPrefix(name, prefix) || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, b := range e.Builtins {
		add(b)
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		var names []string
		if e.Cache != nil {
			names = e.Cache.Names(dir)
		} else {
			names = scanDirExecutables(dir)
		}
		for _, n := range names {
			add(n)
		}
	}

	return out
}

// cwdCandidates completes against entries of the current directory.
func (e *Engine) cwdCandidates(prefix string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}

	var out []string
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if ent.IsDir() {
			name += "/"
		}
		out = append(out, name)
	}
	return out
}

func scanDirExecutables(dir string) []string {
	f, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil
	}

	var out []string
	for _, info := range infos {
		if info.IsDir() || info.Mode()&0o111 == 0 {
			continue
		}
		out = append(out, info.Name())
	}
	return out
}

// wordAfterLastSpace returns the substring of s after the last
// unescaped space, or all of s if there is none.
func wordAfterLastSpace(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' || s[i] == '\t' {
			if i > 0 && s[i-1] == '\\' {
				continue
			}
			return s[i+1:]
		}
	}
	return s
}

func containsUnescapedSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if (s[i] == ' ' || s[i] == '\t') && (i == 0 || s[i-1] != '\\') {
			return true
		}
	}
	return false
}

// dedupSorted sorts candidates byte-wise and removes duplicates.
func dedupSorted(candidates []string) []string {
	if len(candidates) == 0 {
		return candidates
	}
	sort.Strings(candidates)
	out := candidates[:1]
	for _, c := range candidates[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

// longestCommonPrefix returns the longest byte prefix shared by every
// candidate in a sorted slice (the LCP of a sorted set is the LCP of
// its first and last elements).
func longestCommonPrefix(sorted []string) string {
	if len(sorted) == 0 {
		return ""
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	n := len(first)
	if len(last) < n {
		n = len(last)
	}
	i := 0
	for i < n && first[i] == last[i] {
		i++
	}
	return first[:i]
}
