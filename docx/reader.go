// Package docx extracts text and metadata from DOCX (Office Open XML)
// documents.
package docx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ooxml"
)

const documentPart = "word/document.xml"

// appProperties holds the extended properties from docProps/app.xml.
type appProperties struct {
	Application string `xml:"Application"`
	Pages       string `xml:"Pages"`
	Words       string `xml:"Words"`
	Company     string `xml:"Company"`
}

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// DOCX.
type Extractor struct{}

// New returns a DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the body text. Tables are rendered between [TABLE] markers
// when opts.ExtractTables is set. Headers, footers and notes are appended
// when opts.ExtractMetadata is set.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	a, err := open(content)
	if err != nil {
		return "", err
	}

	w, err := walkBody(a, opts.ExtractTables)
	if err != nil {
		return "", err
	}

	if opts.ExtractMetadata {
		for _, part := range auxiliaryParts(a) {
			data, err := a.Read(part)
			if err != nil {
				continue
			}
			_ = w.walk(data)
		}
	}

	raw := w.String()
	if strings.TrimSpace(raw) == "" {
		return "", docerr.NoText(docerr.Docx, "No text found in document")
	}
	return processText(raw, opts.PreserveFormatting), nil
}

// Metadata returns the core properties plus text statistics.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	a, err := open(content)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	a.CoreProperties().Fill(meta)

	if data, err := a.Read("docProps/app.xml"); err == nil {
		var app appProperties
		if xml.Unmarshal(data, &app) == nil {
			for key, val := range map[string]string{
				"application": app.Application,
				"pages":       app.Pages,
				"company":     app.Company,
			} {
				if val = strings.TrimSpace(val); val != "" {
					meta[key] = val
				}
			}
		}
	}

	w, err := walkBody(a, true)
	if err != nil {
		return nil, err
	}
	text := w.String()
	meta["character_count"] = strconv.Itoa(len(text))
	meta["word_count"] = strconv.Itoa(len(strings.Fields(text)))
	meta["paragraph_count"] = strconv.Itoa(w.paragraphs)

	return meta, nil
}

// ExtractLegacy rejects the binary Word format.
func ExtractLegacy(content []byte, opts extract.Options) (string, error) {
	return "", docerr.New(docerr.Docx, "Legacy DOC format not supported. Please convert to DOCX format.")
}

func open(content []byte) (*ooxml.Archive, error) {
	a, err := ooxml.Open(content)
	if err != nil {
		return nil, docerr.Wrap(docerr.Docx, "Failed to parse DOCX", err)
	}
	if !a.Has(documentPart) {
		return nil, docerr.Newf(docerr.CorruptedDocument, "missing required file: %s", documentPart)
	}
	return a, nil
}

func walkBody(a *ooxml.Archive, extractTables bool) (*walker, error) {
	data, err := a.Read(documentPart)
	if err != nil {
		return nil, docerr.Wrap(docerr.Docx, "Failed to parse DOCX", err)
	}

	w := newWalker(extractTables)
	if err := w.walk(data); err != nil {
		return nil, docerr.Wrap(docerr.Docx, "Failed to parse DOCX", err)
	}
	return w, nil
}

// auxiliaryParts lists header, footer and note parts in a stable order.
func auxiliaryParts(a *ooxml.Archive) []string {
	var parts []string
	parts = append(parts, a.Numbered("word/header", ".xml")...)
	parts = append(parts, a.Numbered("word/footer", ".xml")...)
	for _, name := range []string{"word/footnotes.xml", "word/endnotes.xml"} {
		if a.Has(name) {
			parts = append(parts, name)
		}
	}
	return parts
}

// processText trims lines and drops blank ones. Without preserveFormatting,
// a line ending a sentence is followed by a blank line.
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

	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		if endsSentence(line) {
			sb.WriteString("\n\n")
		} else {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func endsSentence(line string) bool {
	return strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?")
}
