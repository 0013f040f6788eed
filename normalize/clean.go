// Package normalize cleans extracted text before chunking or indexing.
//
// [Clean] runs an ordered pipeline of independently toggled steps:
// Unicode NFC composition, repair of common mis-decoded byte sequences,
// control-character stripping, line-ending normalization and whitespace
// collapse. With every step disabled it returns its input unchanged.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[\t\f\v\p{Zs}]+`)
	blankLineRun    = regexp.MustCompile(`\n{3,}`)
)

// CleanOptions toggles each normalization step.
type CleanOptions struct {
	NormalizeUnicode      bool `json:"normalize_unicode" yaml:"normalize_unicode"`
	RemoveExtraWhitespace bool `json:"remove_extra_whitespace" yaml:"remove_extra_whitespace"`
	FixEncoding           bool `json:"fix_encoding" yaml:"fix_encoding"`
	RemoveControlChars    bool `json:"remove_control_chars" yaml:"remove_control_chars"`
	NormalizeLineEndings  bool `json:"normalize_line_endings" yaml:"normalize_line_endings"`
}

// DefaultCleanOptions enables every step.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		NormalizeUnicode:      true,
		RemoveExtraWhitespace: true,
		FixEncoding:           true,
		RemoveControlChars:    true,
		NormalizeLineEndings:  true,
	}
}

// Enabled reports whether any step is on.
func (o CleanOptions) Enabled() bool {
	return o.NormalizeUnicode || o.RemoveExtraWhitespace || o.FixEncoding ||
		o.RemoveControlChars || o.NormalizeLineEndings
}

// Clean applies the enabled steps in order. The pipeline is repeated until
// its output is stable so that Clean(Clean(t)) == Clean(t); stripping a
// control character can expose a sequence an earlier step would have fixed,
// and each repair can expose another.
//
// After the first pass the text is already NFC with whitespace collapsed,
// so a later pass only changes it by removing runes: a repair replaces a
// multi-rune sequence with one rune, and stripping drops one. The rune
// count therefore bounds the number of passes.
func Clean(text string, opts CleanOptions) string {
	if !opts.Enabled() {
		return text
	}

	out := cleanOnce(text, opts)
	for limit := utf8.RuneCountInString(out); limit >= 0; limit-- {
		next := cleanOnce(out, opts)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanOnce(text string, opts CleanOptions) string {
	if opts.NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	if opts.FixEncoding {
		text = FixEncoding(text)
	}
	if opts.RemoveControlChars {
		text = RemoveControlChars(text)
	}
	if opts.NormalizeLineEndings {
		text = NormalizeLineEndings(text)
	}
	if opts.RemoveExtraWhitespace {
		text = CollapseWhitespace(text)
	}
	return text
}

// RemoveControlChars drops Unicode control characters except newline, tab
// and carriage return.
func RemoveControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, text)
}

// NormalizeLineEndings converts CRLF and lone CR to LF.
func NormalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// CollapseWhitespace reduces runs of horizontal whitespace to one space,
// trims every line, limits blank-line runs to a single empty line and trims
// the whole text.
func CollapseWhitespace(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimFunc(line, unicode.IsSpace)
	}
	text = strings.Join(lines, "\n")

	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
