// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lineedit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTabHandler struct {
	calls int
	apply func(s Surface)
}

func (f *fakeTabHandler) Trigger(s Surface) {
	f.calls++
	if f.apply != nil {
		f.apply(s)
	}
}

func TestEditor_ReadLine_SimpleInput(t *testing.T) {
	in := strings.NewReader("echo hi\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, eof, err := e.ReadLine()

	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "echo hi", line)
}

func TestEditor_ReadLine_Backspace(t *testing.T) {
	in := strings.NewReader("abcd\x7f\x7f\n") // "abcd" then two backspaces
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}

func TestEditor_ReadLine_CtrlDOnEmptyBufferSignalsEOF(t *testing.T) {
	in := strings.NewReader("\x04")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, eof, err := e.ReadLine()

	require.NoError(t, err)
	assert.True(t, eof)
	assert.Equal(t, "", line)
}

func TestEditor_ReadLine_CtrlDWithTextIsIgnored(t *testing.T) {
	in := strings.NewReader("ab\x04\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, eof, err := e.ReadLine()

	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "ab", line)
}

func TestEditor_ReadLine_RawEOFReturnsEOFFlag(t *testing.T) {
	in := strings.NewReader("abc") // no trailing newline, reader hits EOF mid-line
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, eof, err := e.ReadLine()

	require.NoError(t, err)
	assert.True(t, eof)
	assert.Equal(t, "", line)
}

func TestEditor_ReadLine_CtrlCResetsBuffer(t *testing.T) {
	in := strings.NewReader("abc\x03def\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, "def", line)
}

func TestEditor_ReadLine_HomeEndViaCtrlAE(t *testing.T) {
	in := strings.NewReader("bcd\x01a\x05e\n") // type bcd, Ctrl-A, insert a, Ctrl-E, insert e
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, "abcde", line)
}

func TestEditor_ReadLine_ArrowKeysMoveCursor(t *testing.T) {
	// type "ac", Left arrow (ESC [ D), insert "b" -> "abc"
	in := strings.NewReader("ac\x1b[Db\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", nil)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, "abc", line)
}

func TestEditor_ReadLine_TabInvokesHandler(t *testing.T) {
	tab := &fakeTabHandler{}
	in := strings.NewReader("ls\t\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", tab)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, 1, tab.calls)
	assert.Equal(t, "ls", line)
}

func TestEditor_ReadLine_TabHandlerCanMutateBufferViaSurface(t *testing.T) {
	tab := &fakeTabHandler{apply: func(s Surface) {
		s.Buffer().Insert("ist") // completes "l" to "list"
	}}
	in := strings.NewReader("l\t\n")
	var out bytes.Buffer

	e := NewEditor(in, &out, "$ ", tab)
	line, _, err := e.ReadLine()

	require.NoError(t, err)
	assert.Equal(t, "list", line)
}

func TestEditor_Bell_WritesBellChar(t *testing.T) {
	var out bytes.Buffer
	e := NewEditor(strings.NewReader(""), &out, "$ ", nil)
	e.Bell()
	assert.Equal(t, "\a", out.String())
}

func TestEditor_PrintAbove_RedrawsPromptAfterLines(t *testing.T) {
	var out bytes.Buffer
	e := NewEditor(strings.NewReader(""), &out, "$ ", nil)
	e.Buffer().Insert("abc")

	e.PrintAbove([]string{"candidate1", "candidate2"})

	got := out.String()
	assert.Contains(t, got, "candidate1")
	assert.Contains(t, got, "candidate2")
	assert.Contains(t, got, "$ ")
	assert.Contains(t, got, "abc")
}

func TestEditor_SetPrompt_ChangesPromptOnRedraw(t *testing.T) {
	var out bytes.Buffer
	e := NewEditor(strings.NewReader(""), &out, "$ ", nil)
	e.SetPrompt("> ")
	e.Redraw()
	assert.Contains(t, out.String(), "> ")
}
