package textdoc

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

var (
	imageLink     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	referenceLink = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	inlineLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	orderedItem   = regexp.MustCompile(`^[0-9]+\. `)
	thematicBreak = regexp.MustCompile(`^([-*_]\s*){3,}$`)
	tableRule     = regexp.MustCompile(`^:?-+:?$`)
)

// Markdown implements extract.Extractor and extract.MetadataExtractor for
// Markdown.
type Markdown struct{}

// NewMarkdown returns a Markdown extractor.
func NewMarkdown() Markdown {
	return Markdown{}
}

// Extract returns the source with trailing whitespace trimmed under
// PreserveFormatting. Otherwise the document is flattened line by line:
// headings, quotes and list items get "HEADING: ", "QUOTE: " and "LIST: "
// prefixes, fenced code lines get "CODE: ", inline formatting and link
// targets are dropped, and pipe tables become tab-separated rows, wrapped in
// [TABLE] markers when opts.ExtractTables is set. A YAML frontmatter block
// is removed from the body and, with opts.ExtractMetadata, rendered first
// as "key: value" lines.
func (Markdown) Extract(content []byte, opts extract.Options) (string, error) {
	text, err := Decode(content)
	if err != nil {
		return "", err
	}
	text = normalizeNewlines(text)

	var out string
	if opts.PreserveFormatting {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " \t")
		}
		out = strings.TrimRight(strings.Join(lines, "\n"), "\n")
	} else {
		front, body := SplitFrontmatter(text)
		var sb strings.Builder
		if opts.ExtractMetadata {
			for _, kv := range front {
				sb.WriteString(kv[0] + ": " + kv[1] + "\n")
			}
		}
		sb.WriteString(markdownToText(body, opts.ExtractTables))
		out = trimLines(sb.String())
	}

	if out == "" {
		return "", docerr.NoText(docerr.EmptyDocument, "No text found in Markdown")
	}
	return out, nil
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// trimLines trims every line and drops the empty ones.
func trimLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func markdownToText(md string, tableMarkers bool) string {
	var sb strings.Builder
	inCode, inTable := false, false

	closeTable := func() {
		if inTable && tableMarkers {
			sb.WriteString("[/TABLE]\n")
		}
		inTable = false
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			closeTable()
			inCode = !inCode
			if !inCode {
				sb.WriteString("\n[CODE BLOCK]\n")
			}
			continue
		}
		if inCode {
			sb.WriteString("CODE: " + line + "\n")
			continue
		}

		if strings.Contains(trimmed, "|") && !strings.HasPrefix(trimmed, ">") {
			if !inTable && tableMarkers {
				sb.WriteString("\n[TABLE]\n")
			}
			inTable = true
			if row, ok := tableRow(trimmed); ok {
				sb.WriteString(row + "\n")
			}
			continue
		}
		closeTable()

		if s := markdownLine(trimmed); s != "" {
			sb.WriteString(s + "\n")
		}
	}
	closeTable()
	return sb.String()
}

// markdownLine flattens one line of Markdown outside code and tables.
func markdownLine(line string) string {
	if thematicBreak.MatchString(line) {
		return ""
	}
	if strings.HasPrefix(line, "#") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			return ""
		}
		line = "HEADING: " + line
	}
	if strings.HasPrefix(line, ">") {
		line = strings.TrimSpace(strings.TrimLeft(line, ">"))
		if line != "" {
			line = "QUOTE: " + line
		}
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		if item := strings.TrimSpace(line[2:]); item != "" {
			line = "LIST: " + item
		}
	} else if loc := orderedItem.FindStringIndex(line); loc != nil {
		if item := strings.TrimSpace(line[loc[1]:]); item != "" {
			line = "LIST: " + item
		}
	}
	return stripInline(line)
}

// stripInline removes emphasis, code spans, strikethrough and link targets,
// keeping link and image text.
func stripInline(s string) string {
	s = imageLink.ReplaceAllString(s, "$1")
	s = referenceLink.ReplaceAllString(s, "$1")
	s = inlineLink.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("***", "", "**", "", "*", "", "___", "", "__", "", "_", " ", "`", "", "~~", "").Replace(s)
	return s
}

// tableRow returns the non-empty cells of a pipe table row joined by tabs.
// Alignment rows report false.
func tableRow(row string) (string, bool) {
	var cells []string
	rule := true
	for _, cell := range strings.Split(row, "|") {
		if cell = strings.TrimSpace(cell); cell == "" {
			continue
		}
		if !tableRule.MatchString(cell) {
			rule = false
		}
		cells = append(cells, stripInline(cell))
	}
	if len(cells) == 0 || rule {
		return "", false
	}
	return strings.Join(cells, "\t"), true
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// body. The pairs keep document order; values that are not scalars are
// skipped. Without a closed block the whole text is the body.
func SplitFrontmatter(text string) (pairs [][2]string, body string) {
	text = normalizeNewlines(text)
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != "---" {
		return nil, text
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if l := strings.TrimRight(lines[i], " \t"); l == "---" || l == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, text
	}

	block := strings.Join(lines[1:end], "\n")
	body = strings.Join(lines[end+1:], "\n")

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err == nil {
		if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			m := doc.Content[0]
			for i := 0; i+1 < len(m.Content); i += 2 {
				v := m.Content[i+1]
				switch v.Kind {
				case yaml.ScalarNode:
					if v.Tag != "!!null" && v.Value != "" {
						pairs = append(pairs, [2]string{m.Content[i].Value, v.Value})
					}
				case yaml.SequenceNode:
					if items := collectScalars(v, nil); len(items) > 0 {
						pairs = append(pairs, [2]string{m.Content[i].Value, strings.Join(items, ", ")})
					}
				}
			}
		}
		return pairs, body
	}

	for _, line := range lines[1:end] {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if v = strings.Trim(strings.TrimSpace(v), `"`); v != "" {
			pairs = append(pairs, [2]string{strings.TrimSpace(k), v})
		}
	}
	return pairs, body
}

// Metadata reports the frontmatter fields, prefixed "frontmatter_", and the
// heading, code block and link counts.
func (Markdown) Metadata(content []byte) (map[string]string, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}
	front, body := SplitFrontmatter(text)

	meta := make(map[string]string)
	for _, kv := range front {
		meta["frontmatter_"+kv[0]] = kv[1]
		if kv[0] == "title" {
			meta["title"] = kv[1]
		}
	}

	headings, fences, inCode := 0, 0, false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			if inCode {
				fences++
			}
			continue
		}
		if !inCode && strings.HasPrefix(trimmed, "#") {
			headings++
		}
	}
	meta["heading_count"] = strconv.Itoa(headings)
	meta["code_block_count"] = strconv.Itoa(fences)
	meta["link_count"] = strconv.Itoa(len(inlineLink.FindAllStringIndex(body, -1)) + len(referenceLink.FindAllStringIndex(body, -1)))
	return meta, nil
}
