package htmldoc

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// HTML and XHTML.
type Extractor struct {
	// Navigation selects how navigation and page chrome are dropped before
	// rendering. New sets NavigationExclusionStandard.
	Navigation NavigationExclusionMode

	policy *bluemonday.Policy
	md     *converter.Converter
}

// New returns an HTML extractor with standard navigation exclusion.
func New() *Extractor {
	return &Extractor{
		Navigation: NavigationExclusionStandard,
		policy:     bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extract renders the body as text. Without opts.PreserveFormatting, lines
// that look like navigation and lines shorter than three bytes are dropped
// and sentence-final lines are followed by a blank line.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	doc, err := Parse(content, e.Navigation)
	if err != nil {
		return "", docerr.Wrap(docerr.Html, "Failed to parse HTML", err)
	}

	text := processText(doc.Text(opts.ExtractTables), opts.PreserveFormatting)
	if text == "" {
		return "", docerr.NoText(docerr.Html, "No text found in HTML")
	}
	return text, nil
}

// Markdown converts the body to CommonMark with GFM tables. The markup is
// sanitized first and navigation is removed by the extractor's mode.
func (e *Extractor) Markdown(content []byte) (string, error) {
	doc, err := Parse(content, e.Navigation)
	if err != nil {
		return "", docerr.Wrap(docerr.Html, "Failed to parse HTML", err)
	}

	newExclusionChecker(e.Navigation, doc.body).prune(doc.body)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.body); err != nil {
		return "", docerr.Wrap(docerr.Html, "Failed to render HTML", err)
	}

	md, err := e.md.ConvertString(e.policy.Sanitize(buf.String()))
	if err != nil {
		return "", docerr.Wrap(docerr.Html, "Failed to convert HTML to Markdown", err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", docerr.NoText(docerr.Html, "No text found in HTML")
	}
	return md, nil
}

// Metadata returns the title, every named meta tag, the document language
// and counts over the rendered text.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	doc, err := Parse(content, e.Navigation)
	if err != nil {
		return nil, docerr.Wrap(docerr.Html, "Failed to parse HTML", err)
	}

	meta := make(map[string]string, len(doc.Meta)+6)
	for k, v := range doc.Meta {
		meta[k] = v
	}
	if doc.Title != "" {
		meta["title"] = doc.Title
	}
	if doc.Language != "" {
		meta["language"] = doc.Language
	}

	text := doc.Text(false)
	meta["character_count"] = strconv.Itoa(len(text))
	meta["word_count"] = strconv.Itoa(len(strings.Fields(text)))
	meta["heading_count"] = strconv.Itoa(len(doc.Headings()))
	meta["is_webpage"] = strconv.FormatBool(IsWebpage(string(content)))
	return meta, nil
}

// processText trims lines and drops blank ones, then flattens to natural
// text unless preserveFormatting is set.
func processText(text string, preserveFormatting bool) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if preserveFormatting {
		return strings.Join(lines, "\n")
	}
	return flatten(lines)
}

// flatten drops navigation-like and very short lines outside tables and
// puts a blank line after each line ending a sentence.
func flatten(lines []string) string {
	var sb strings.Builder
	inTable := false
	prev := ""
	for _, line := range lines {
		switch line {
		case "[TABLE]":
			inTable = true
		case "[/TABLE]":
			inTable = false
		default:
			if !inTable && (len(line) < 3 || isLikelyNavigation(line)) {
				continue
			}
		}

		if sb.Len() > 0 {
			sb.WriteString(separator(prev))
		}
		sb.WriteString(line)
		prev = line
	}
	return sb.String()
}

func separator(prev string) string {
	if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
		return "\n\n"
	}
	return "\n"
}
