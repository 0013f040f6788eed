package rag

import (
	"strings"
	"unicode"
)

// OverlapTail returns roughly the last size bytes of text for repeating at
// the start of the next chunk. The window start is moved forward to the next
// whitespace so no word is split; if the window holds no whitespace the raw
// tail is returned. A text no longer than size is returned whole.
func OverlapTail(text string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(text) <= size {
		return text
	}

	start := alignRune(text, len(text)-size)
	if isWordStart(text, start) {
		return strings.TrimSpace(text[start:])
	}

	if i := strings.IndexFunc(text[start:], unicode.IsSpace); i >= 0 {
		return strings.TrimSpace(text[start+i:])
	}
	return text[start:]
}

// seed builds the next buffer from the emitted chunk's tail and the unit
// that did not fit. The tail is dropped when tail, separator and unit
// together would exceed size.
func seed(emitted, sep, unit string, overlap, size int) string {
	tail := OverlapTail(emitted, overlap)
	if tail == "" || len(tail)+len(sep)+len(unit) > size {
		return unit
	}
	return tail + sep + unit
}
