// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lineedit implements the character-level line editor: it reads
// one accepted line from a raw-mode terminal, dispatching each byte
// through the key table described by the shell's editing contract, and
// redraws the prompt and buffer after every mutation.
//
// The editor is a straight read-one-byte, dispatch-one-key loop — no
// goroutines, no event loop — and calls into an optional TabHandler
// synchronously on TAB. Escape-sequence recognition is best-effort:
// an unrecognized ESC [ ... or ESC O ... shape is swallowed without
// corrupting the buffer, matching real-terminal variance.
package lineedit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

const (
	keyTab       = 0x09
	keyEnterCR   = 0x0d
	keyEnterLF   = 0x0a
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
	keyCtrlA     = 0x01
	keyCtrlB     = 0x02
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyCtrlE     = 0x05
	keyCtrlF     = 0x06
	keyCtrlK     = 0x0b
	keyCtrlL     = 0x0c
	keyCtrlU     = 0x15
	keyCtrlW     = 0x17
	keyEsc       = 0x1b
)

// Surface is what a TabHandler needs from the editor it was invoked from:
// access to the buffer being edited, and the ability to redraw, ring the
// bell, or print lines above the prompt (for a candidate list) followed by
// a redraw.
type Surface interface {
	Buffer() *LineBuffer
	Redraw()
	Bell()
	PrintAbove(lines []string)
}

// TabHandler is invoked synchronously when the editor receives TAB. It is
// implemented by the completion engine; the editor package never imports
// it, avoiding an import cycle.
type TabHandler interface {
	Trigger(s Surface)
}

// Editor reads one logical line at a time from a raw-mode terminal.
type Editor struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
	buf    *LineBuffer
	tab    TabHandler
}

// NewEditor constructs an Editor. tab may be nil, in which case TAB is a
// no-op (useful for tests that don't exercise completion).
func NewEditor(in io.Reader, out io.Writer, prompt string, tab TabHandler) *Editor {
	return &Editor{
		in:     bufio.NewReader(in),
		out:    out,
		prompt: prompt,
		buf:    NewLineBuffer(),
		tab:    tab,
	}
}

// SetPrompt changes the prompt shown on the next redraw.
func (e *Editor) SetPrompt(p string) { e.prompt = p }

// Buffer implements Surface.
func (e *Editor) Buffer() *LineBuffer { return e.buf }

// Bell implements Surface.
func (e *Editor) Bell() { fmt.Fprint(e.out, "\a") }

// Redraw implements Surface: it clears the current line and repaints the
// prompt and buffer, placing the cursor at the buffer's logical cursor
// position using rune display width (so multi-byte UTF-8 doesn't throw
// off column math) rather than raw byte count.
func (e *Editor) Redraw() {
	text := e.buf.String()
	cursor := e.buf.Cursor()

	fmt.Fprint(e.out, "\r\x1b[K")
	fmt.Fprint(e.out, e.prompt)
	fmt.Fprint(e.out, text)

	tailWidth := runewidth.StringWidth(text[cursor:])
	if tailWidth > 0 {
		fmt.Fprintf(e.out, "\x1b[%dD", tailWidth)
	}
}

// PrintAbove implements Surface: prints lines (e.g. a completion
// candidate list) above the current prompt, then redraws prompt+buffer so
// the user's in-progress line reappears unchanged beneath them.
func (e *Editor) PrintAbove(lines []string) {
	fmt.Fprint(e.out, "\r\n")
	for _, l := range lines {
		fmt.Fprint(e.out, l, "\r\n")
	}
	e.Redraw()
}

// ReadLine reads and returns one accepted line. eof is true if Ctrl-D was
// pressed against an empty buffer (the main loop should terminate). err is
// non-nil only for FatalTerminalError-class read failures.
func (e *Editor) ReadLine() (line string, eof bool, err error) {
	e.buf.Reset()
	e.Redraw()

	for {
		b, rerr := e.in.ReadByte()
		if rerr != nil {
			if rerr == io.EOF {
				return "", true, nil
			}
			return "", false, rerr
		}

		switch {
		case b == keyEnterCR || b == keyEnterLF:
			fmt.Fprint(e.out, "\r\n")
			return e.buf.String(), false, nil

		case b == keyBackspace || b == keyCtrlH:
			e.buf.DeleteBefore()
			e.Redraw()

		case b == keyCtrlA:
			e.buf.Home()
			e.Redraw()

		case b == keyCtrlE:
			e.buf.End()
			e.Redraw()

		case b == keyCtrlB:
			e.buf.Left()
			e.Redraw()

		case b == keyCtrlF:
			e.buf.Right()
			e.Redraw()

		case b == keyCtrlK:
			e.buf.TruncateAtCursor()
			e.Redraw()

		case b == keyCtrlU:
			e.buf.DeleteToStart()
			e.Redraw()

		case b == keyCtrlW:
			e.buf.DeleteWordBefore()
			e.Redraw()

		case b == keyCtrlL:
			fmt.Fprint(e.out, "\x1b[H\x1b[2J")
			e.Redraw()

		case b == keyCtrlC:
			fmt.Fprint(e.out, "^C\r\n")
			e.buf.Reset()
			e.Redraw()

		case b == keyCtrlD:
			if e.buf.Len() == 0 {
				return "", true, nil
			}

		case b == keyTab:
			if e.tab != nil {
				e.tab.Trigger(e)
			}

		case b == keyEsc:
			if err := e.handleEscape(); err != nil {
				return "", false, err
			}
			e.Redraw()

		default:
			e.buf.Insert(string([]byte{b}))
			e.Redraw()
		}
	}
}

// handleEscape consumes an ESC-prefixed sequence. Unrecognized shapes are
// drained without mutating the buffer.
func (e *Editor) handleEscape() error {
	b1, err := e.in.ReadByte()
	if err != nil {
		return nil
	}

	switch b1 {
	case '[':
		b2, err := e.in.ReadByte()
		if err != nil {
			return nil
		}
		switch b2 {
		case 'A', 'B': // up/down: ignored for now
		case 'C':
			e.buf.Right()
		case 'D':
			e.buf.Left()
		case '1', '3', '4':
			// ESC [ 1 ~ (Home), ESC [ 3 ~ (Delete), ESC [ 4 ~ (End)
			b3, err := e.in.ReadByte()
			if err != nil {
				return nil
			}
			if b3 != '~' {
				e.drainCSI(b3)
				return nil
			}
			switch b2 {
			case '1':
				e.buf.Home()
			case '3':
				e.buf.DeleteAt()
			case '4':
				e.buf.End()
			}
		default:
			e.drainCSI(b2)
		}
	case 'O':
		b2, err := e.in.ReadByte()
		if err != nil {
			return nil
		}
		switch b2 {
		case 'A', 'B': // up/down: ignored for now
		case 'C':
			e.buf.Right()
		case 'D':
			e.buf.Left()
		case 'H':
			e.buf.Home()
		case 'F':
			e.buf.End()
		}
	}
	return nil
}

// drainCSI consumes the rest of an ESC [ sequence whose last byte read was
// b: parameter bytes are skipped until a final byte (0x40-0x7E) ends it.
func (e *Editor) drainCSI(b byte) {
	for b < 0x40 || b > 0x7e {
		next, err := e.in.ReadByte()
		if err != nil {
			return
		}
		b = next
	}
}
