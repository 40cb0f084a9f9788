// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lineedit

// minBufferCapacity is the minimum initial backing-array size for a
// LineBuffer; growth beyond this is handled by append's own doubling.
const minBufferCapacity = 1024

// LineBuffer is editable text with a byte-addressed cursor. Editing is
// byte-addressed rather than rune-addressed, matching the source shell's
// behavior — a multi-byte UTF-8 rune can be split by cursor motion that
// lands mid-rune; display width computation (package lineedit's redraw
// logic) is the layer that understands runes, not the buffer itself.
type LineBuffer struct {
	text   []byte
	cursor int
}

// NewLineBuffer returns an empty buffer pre-sized to minBufferCapacity.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{text: make([]byte, 0, minBufferCapacity)}
}

// String returns the buffer's current contents.
func (b *LineBuffer) String() string { return string(b.text) }

// Len returns the number of bytes currently in the buffer.
func (b *LineBuffer) Len() int { return len(b.text) }

// Cursor returns the current cursor position, always in [0, Len()].
func (b *LineBuffer) Cursor() int { return b.cursor }

// Reset empties the buffer and moves the cursor to 0.
func (b *LineBuffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
}

// SetCursor clamps and sets the cursor position.
func (b *LineBuffer) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.text) {
		pos = len(b.text)
	}
	b.cursor = pos
}

// Insert inserts s at the cursor and advances the cursor past it.
func (b *LineBuffer) Insert(s string) {
	if s == "" {
		return
	}
	b.text = append(b.text[:b.cursor], append([]byte(s), b.text[b.cursor:]...)...)
	b.cursor += len(s)
}

// DeleteBefore deletes the single byte before the cursor (backspace).
// Reports whether a byte was deleted.
func (b *LineBuffer) DeleteBefore() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// DeleteAt deletes the single byte at the cursor (forward delete).
func (b *LineBuffer) DeleteAt() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
	return true
}

// Home moves the cursor to the start of the buffer.
func (b *LineBuffer) Home() { b.cursor = 0 }

// End moves the cursor to the end of the buffer.
func (b *LineBuffer) End() { b.cursor = len(b.text) }

// Left moves the cursor one byte left.
func (b *LineBuffer) Left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// Right moves the cursor one byte right.
func (b *LineBuffer) Right() {
	if b.cursor < len(b.text) {
		b.cursor++
	}
}

// TruncateAtCursor deletes everything from the cursor to the end (Ctrl-K).
func (b *LineBuffer) TruncateAtCursor() {
	b.text = b.text[:b.cursor]
}

// DeleteToStart deletes everything from the start up to the cursor,
// leaving the cursor at position 0 (Ctrl-U).
func (b *LineBuffer) DeleteToStart() {
	b.text = append([]byte{}, b.text[b.cursor:]...)
	b.cursor = 0
}

// DeleteWordBefore deletes the word before the cursor (Ctrl-W): trailing
// whitespace is skipped first, then the run of bytes before it — an
// escaped space does not end the word — is removed.
func (b *LineBuffer) DeleteWordBefore() {
	end := b.cursor
	start := end
	for start > 0 && isSpace(b.text[start-1]) {
		start--
	}
	start = wordStartBefore(b.text, start)
	b.text = append(b.text[:start], b.text[end:]...)
	b.cursor = start
}

// ReplaceWord replaces the word ending at the cursor — the run of bytes
// immediately before it, where an escaped space does not end the word —
// with replacement, moving the cursor to the end of the inserted text.
// Used by the completion engine to commit a chosen candidate; the
// boundary rule matches wordAfterLastSpace in package complete so buffer
// mutation agrees with the candidate the engine resolved.
func (b *LineBuffer) ReplaceWord(replacement string) {
	end := b.cursor
	start := wordStartBefore(b.text, end)
	tail := append([]byte{}, b.text[end:]...)
	b.text = append(b.text[:start], append([]byte(replacement), tail...)...)
	b.cursor = start + len(replacement)
}

// WordBeforeCursor returns the run of bytes immediately before the
// cursor — the token the completion engine completes — where an escaped
// space does not end the word.
func (b *LineBuffer) WordBeforeCursor() string {
	end := b.cursor
	start := wordStartBefore(b.text, end)
	return string(b.text[start:end])
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// wordStartBefore returns the start of the word ending at end: the
// index just past the nearest unescaped space before end, or 0 if there
// is none. A space preceded by a backslash is escaped and does not end
// the word, matching package complete's last-word extraction.
func wordStartBefore(text []byte, end int) int {
	for i := end - 1; i >= 0; i-- {
		if isSpace(text[i]) && !(i > 0 && text[i-1] == '\\') {
			return i + 1
		}
	}
	return 0
}
