package rag

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/docproc/langdetect"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

	// sentenceEnd matches terminal punctuation, the whitespace after it and
	// the uppercase letter that opens the next sentence.
	sentenceEnd = regexp.MustCompile(`[.!?]+\s+\p{Lu}`)

	// uncasedSentenceEnd is used for scripts without letter case.
	uncasedSentenceEnd = regexp.MustCompile(`[.!?\x{061F}\x{3002}\x{FF01}\x{FF1F}]+\s+`)

	// cjkSentenceEnd needs no trailing whitespace.
	cjkSentenceEnd = regexp.MustCompile(`[\x{3002}\x{FF01}\x{FF1F}]+|[.!?]+\s+`)
)

// SplitParagraphs splits text on blank lines. Paragraphs are trimmed and
// empty ones dropped.
func SplitParagraphs(text string) []string {
	return nonEmpty(paragraphBreak.Split(text, -1))
}

// SplitSentences splits text into trimmed sentences using the splitter for
// lang. An empty lang means detect it from text.
func SplitSentences(text, lang string) []string {
	if lang == "" {
		lang = langdetect.Detect(text)
	}

	switch lang {
	case langdetect.Chinese, langdetect.Japanese:
		return splitAfter(text, cjkSentenceEnd, 0)
	case langdetect.Korean, langdetect.Arabic:
		return splitAfter(text, uncasedSentenceEnd, 0)
	}

	sentences := splitAfter(text, sentenceEnd, 1)
	if len(sentences) <= 1 {
		return splitOnPeriods(text)
	}
	return sentences
}

// splitAfter cuts text at the end of every match of re, less keep trailing
// bytes of the match which belong to the next sentence.
func splitAfter(text string, re *regexp.Regexp, keep int) []string {
	var parts []string
	start := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		end := loc[1]
		if keep > 0 {
			// Step back over the opening rune of the next sentence.
			_, size := utf8.DecodeLastRuneInString(text[:end])
			end -= size
		}
		parts = append(parts, text[start:end])
		start = end
	}
	parts = append(parts, text[start:])
	return nonEmpty(parts)
}

// splitOnPeriods is the naive fallback: cut after every period followed by
// whitespace, regardless of what follows.
func splitOnPeriods(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if text[i] == '.' && isSpaceByte(text[i+1]) {
			parts = append(parts, text[start:i+1])
			start = i + 1
		}
	}
	parts = append(parts, text[start:])
	return nonEmpty(parts)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// isWordStart reports whether pos begins a word, that is, it is the start of
// text or follows whitespace.
func isWordStart(text string, pos int) bool {
	if pos <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return unicode.IsSpace(r)
}

// alignRune moves pos forward to the start of a rune.
func alignRune(text string, pos int) int {
	for pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	return pos
}
