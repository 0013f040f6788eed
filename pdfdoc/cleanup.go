package pdfdoc

import (
	"strings"
	"unicode"
)

// trimLines trims every line and drops the empty ones.
func trimLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// RemovePageArtifacts drops lines that look like page furniture: bare page
// numbers, stray one- or two-character lines at the start or end of the text,
// and short "Page N" markers.
func RemovePageArtifacts(text string) string {
	lines := strings.Split(text, "\n")
	last := len(lines) - 1

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isPageArtifact(trimmed, i == 0 || i == last) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isPageArtifact(line string, edge bool) bool {
	if line == "" {
		return false
	}
	if len(line) <= 4 && isDigits(line) {
		return true
	}
	if edge && len(line) < 3 {
		return true
	}
	lower := strings.ToLower(line)
	return strings.Contains(lower, "page ") && len(line) < 20
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InsertParagraphBreaks turns a line break into a blank line where a
// sentence ends and the next line starts with an uppercase letter.
func InsertParagraphBreaks(text string) string {
	lines := strings.Split(text, "\n")

	var b strings.Builder
	b.Grow(len(text) + len(lines))
	for i, line := range lines {
		b.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		b.WriteByte('\n')
		if endsSentence(line) && startsUpper(lines[i+1]) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func endsSentence(line string) bool {
	line = strings.TrimRight(line, " \t")
	if line == "" {
		return false
	}
	switch line[len(line)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func startsUpper(line string) bool {
	for _, r := range strings.TrimLeft(line, " \t") {
		return unicode.IsUpper(r)
	}
	return false
}
