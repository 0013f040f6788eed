package normalize

import (
	"testing"
)

func TestClean_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf and spaces", "Hello   world!\r\nThis is a test.", "Hello world!\nThis is a test."},
		{"blank line runs", "Hello    world\n\n\n\nNext paragraph", "Hello world\n\nNext paragraph"},
		{"lone cr", "one\rtwo", "one\ntwo"},
		{"tabs", "a\t\tb", "a b"},
		{"indented lines", "  first  \n\t second\t", "first\nsecond"},
		{"whitespace-only lines between paragraphs", "a\n \n \n \nb", "a\n\nb"},
		{"control chars", "bell\x07 and\x00 null", "bell and null"},
		{"mojibake quote", "don\u00e2\u20ac\u2122t", "don\u2019t"},
		{"mojibake accent", "caf\u00c3\u00a9", "caf\u00e9"},
		{"nbsp run", "a\u00a0\u00a0b", "a b"},
		{"decomposed accent", "cafe\u0301", "caf\u00e9"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input, DefaultCleanOptions()); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_AllDisabledIsIdentity(t *testing.T) {
	inputs := []string{
		"Hello   world!\r\nThis is a test.",
		"don\u00e2\u20ac\u2122t\x07",
		"  padded  ",
		"cafe\u0301",
	}

	for _, in := range inputs {
		if got := Clean(in, CleanOptions{}); got != in {
			t.Errorf("Clean(%q, none) = %q, want input unchanged", in, got)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello   world!\r\nThis is a test.",
		"a\n \n\r\n \n\nb",
		"\u00c3\x01\u00a9 split by a control char",
		"  \t\n\n\n  leading and trailing \n\n\n ",
		"\u00e2\u20ac\u009d closing quote",
		"mixed\u00a0\u2003spaces\tand\r\rbreaks",
		"\x00\x01\x02",
		"\u00c3\x01\u00a2\u00c3\x01\u00a2\u201a\u00ac\u2122",
		"\u00c3\x01\u00c3\x01\u00a2\u00c3\x01\u00a2\u201a\u00ac\u2122 nested twice",
	}

	opts := DefaultCleanOptions()
	for _, in := range inputs {
		once := Clean(in, opts)
		twice := Clean(once, opts)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClean_StackedMojibake(t *testing.T) {
	// Each control-character strip exposes one more level of mis-decoding.
	got := Clean("\u00c3\x01\u00a2\u00c3\x01\u00a2\u201a\u00ac\u2122", DefaultCleanOptions())
	if got != "\u2019" {
		t.Errorf("Clean() = %q, want %q", got, "\u2019")
	}
}

func TestClean_StepToggles(t *testing.T) {
	tests := []struct {
		name  string
		opts  CleanOptions
		input string
		want  string
	}{
		{"only line endings", CleanOptions{NormalizeLineEndings: true}, "a  b\r\nc", "a  b\nc"},
		{"only control chars", CleanOptions{RemoveControlChars: true}, "a\x07b\r\n", "ab\r\n"},
		{"only fix encoding", CleanOptions{FixEncoding: true}, "  \u00c3\u00a9  ", "  \u00e9  "},
		{"only unicode", CleanOptions{NormalizeUnicode: true}, "e\u0301 ", "\u00e9 "},
		{"only whitespace", CleanOptions{RemoveExtraWhitespace: true}, "  a   b  ", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input, tt.opts); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFixEncoding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"\u00e2\u20ac\u0153quoted\u00e2\u20ac\u009d", "\u201cquoted\u201d"},
		{"a \u00e2\u20ac\u201d b \u00e2\u20ac\u201c c", "a \u2014 b \u2013 c"},
		{"\u00e2\u20ac\u00a2 item", "\u2022 item"},
		{"ni\u00c3\u00b1o", "ni\u00f1o"},
		{"plain ascii", "plain ascii"},
	}

	for _, tt := range tests {
		if got := FixEncoding(tt.input); got != tt.want {
			t.Errorf("FixEncoding(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
