// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package complete

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/goshell/internal/lineedit"
)

// fakeSurface is a minimal lineedit.Surface for testing Trigger in
// isolation from a real terminal.
type fakeSurface struct {
	buf     *lineedit.LineBuffer
	bells   int
	redraws int
	printed [][]string
}

func newFakeSurface(line string) *fakeSurface {
	b := lineedit.NewLineBuffer()
	b.Insert(line)
	return &fakeSurface{buf: b}
}

func (f *fakeSurface) Buffer() *lineedit.LineBuffer { return f.buf }
func (f *fakeSurface) Redraw()                      { f.redraws++ }
func (f *fakeSurface) Bell()                        { f.bells++ }
func (f *fakeSurface) PrintAbove(lines []string)    { f.printed = append(f.printed, lines) }

func TestTrigger_NoCandidatesRingsBell(t *testing.T) {
	e := NewEngine([]string{"echo"}, nil)
	s := newFakeSurface("zzzznonexistent")
	e.Trigger(s)
	assert.Equal(t, 1, s.bells)
}

func TestTrigger_SingleCandidateCompletesWithTrailingSpace(t *testing.T) {
	e := NewEngine([]string{"echo", "exit"}, nil)
	s := newFakeSurface("ech")
	e.Trigger(s)
	assert.Equal(t, "echo ", s.buf.String())
	assert.Equal(t, 1, s.redraws)
}

func TestTrigger_SingleDirectoryCandidateNoTrailingSpace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	e := NewEngine(nil, nil)
	s := newFakeSurface("cd su")
	e.Trigger(s)
	assert.Equal(t, "cd sub/", s.buf.String())
}

func TestTrigger_MultipleCandidatesWithoutLongerLCPRecordsTap(t *testing.T) {
	e := NewEngine([]string{"echo", "exit", "export"}, nil)
	s := newFakeSurface("ex")
	e.Trigger(s)
	assert.Equal(t, "ex", s.buf.String())
	assert.True(t, e.havePrior)
}

func TestTrigger_DoubleTapRevealsCandidates(t *testing.T) {
	e := NewEngine([]string{"cd", "cat"}, nil)

	s1 := newFakeSurface("c")
	e.Trigger(s1)
	require.True(t, e.havePrior)

	s2 := newFakeSurface("c")
	e.Trigger(s2)
	require.Len(t, s2.printed, 1)
	assert.Contains(t, s2.printed[0][0], "cat")
	assert.Contains(t, s2.printed[0][0], "cd")
	assert.False(t, e.havePrior)
}

func TestTrigger_DoubleTapExpiresAfterWindow(t *testing.T) {
	e := NewEngine([]string{"cd", "cat"}, nil)
	s1 := newFakeSurface("c")
	e.Trigger(s1)
	e.lastTap = time.Now().Add(-2 * time.Second)

	s2 := newFakeSurface("c")
	e.Trigger(s2)
	assert.Equal(t, 1, s2.bells)
	assert.Empty(t, s2.printed)
}

func TestLongestCommonPrefix(t *testing.T) {
	assert.Equal(t, "ex", longestCommonPrefix([]string{"exit", "export"}))
	assert.Equal(t, "", longestCommonPrefix([]string{"a", "b"}))
	assert.Equal(t, "abc", longestCommonPrefix([]string{"abc"}))
}

func TestDedupSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupSorted([]string{"c", "a", "b", "a"}))
}

func TestWordAfterLastSpace(t *testing.T) {
	assert.Equal(t, "bar", wordAfterLastSpace("foo bar"))
	assert.Equal(t, "foo", wordAfterLastSpace("foo"))
	assert.Equal(t, "", wordAfterLastSpace(""))
}
