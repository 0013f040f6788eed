// Package textdoc extracts text from the text-based formats: plain text,
// Markdown, CSV, JSON, XML, YAML and RTF.
//
// Every extractor follows the same contract as the binary formats: bytes
// in, best-effort plain text out, or a typed failure from package docerr.
// PreserveFormatting selects structured output (pretty-printed JSON,
// indented XML, tab-separated CSV) over flattened natural text.
package textdoc

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/normalize"
)

// Decode converts content to a UTF-8 string. Valid UTF-8 is returned as is.
// Input with a UTF-8 or UTF-16 byte order mark is transcoded accordingly,
// and anything else is read as Windows-1252, which maps every byte.
func Decode(content []byte) (string, error) {
	if utf8.Valid(content) && !hasBOM(content) {
		return string(content), nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(charmap.Windows1252.NewDecoder()), content)
	if err != nil {
		return "", docerr.Wrap(docerr.Encoding, "Failed to decode text", err)
	}
	return string(out), nil
}

// Encoding names the encoding Decode would use for content.
func Encoding(content []byte) string {
	switch {
	case len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF:
		return "utf-8-bom"
	case len(content) >= 2 && content[0] == 0xFF && content[1] == 0xFE:
		return "utf-16le"
	case len(content) >= 2 && content[0] == 0xFE && content[1] == 0xFF:
		return "utf-16be"
	case utf8.Valid(content):
		return "utf-8"
	default:
		return "windows-1252"
	}
}

func hasBOM(content []byte) bool {
	switch Encoding(content) {
	case "utf-8-bom", "utf-16le", "utf-16be":
		return true
	}
	return false
}

// cleanText normalizes line endings and strips control characters. Unless
// preserve is set, whitespace runs are also collapsed, keeping paragraph
// breaks.
func cleanText(text string, preserve bool) string {
	text = normalize.NormalizeLineEndings(text)
	text = normalize.RemoveControlChars(text)
	if preserve {
		return text
	}
	return normalize.CollapseWhitespace(text)
}

// PlainText implements extract.Extractor and extract.MetadataExtractor for
// plain text files.
type PlainText struct{}

// NewPlainText returns a plain text extractor.
func NewPlainText() PlainText {
	return PlainText{}
}

// Extract decodes content and cleans it.
func (PlainText) Extract(content []byte, opts extract.Options) (string, error) {
	text, err := Decode(content)
	if err != nil {
		return "", err
	}
	text = cleanText(text, opts.PreserveFormatting)
	if strings.TrimSpace(text) == "" {
		return "", docerr.NoText(docerr.EmptyDocument, "No text found in text file")
	}
	return text, nil
}

// Metadata reports the encoding, line, word and character counts, and
// whether the text looks like source code.
func (PlainText) Metadata(content []byte) (map[string]string, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}
	text = normalize.NormalizeLineEndings(text)
	lines := 0
	if text != "" {
		lines = strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
	}
	return map[string]string{
		"encoding":        Encoding(content),
		"line_count":      strconv.Itoa(lines),
		"word_count":      strconv.Itoa(len(strings.Fields(text))),
		"character_count": strconv.Itoa(utf8.RuneCountInString(text)),
		"is_code":         strconv.FormatBool(LooksLikeCode(text)),
	}, nil
}

var codeMarkers = []string{
	"function ", "def ", "class ", "import ", "from ", "const ", "var ",
	"let ", "public ", "private ", "protected ", "void ", "int ", "string ",
	"bool ", "return ", "if (", "for (", "while (", "} else {", "};", "});",
}

var codePrefixes = []string{"//", "/*", "*", "#", "<?", "<%"}

// LooksLikeCode reports whether more than 30% of the first 50 non-blank
// lines carry a source code marker. Texts under five lines are never code.
func LooksLikeCode(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 5 {
		return false
	}
	if len(lines) > 50 {
		lines = lines[:50]
	}

	total, hits := 0, 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++
		if isCodeLine(line) {
			hits++
		}
	}
	return total > 0 && float64(hits)/float64(total) > 0.3
}

func isCodeLine(line string) bool {
	for _, m := range codeMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	for _, p := range codePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
