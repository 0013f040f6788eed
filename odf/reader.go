// Package odf extracts text and metadata from OpenDocument text,
// spreadsheet and presentation files (ODT, ODS, ODP).
package odf

import (
	"encoding/xml"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ooxml"
)

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// one OpenDocument flavor.
type Extractor struct {
	mode Mode
}

// NewText returns an ODT extractor.
func NewText() *Extractor {
	return &Extractor{mode: ModeText}
}

// NewSpreadsheet returns an ODS extractor.
func NewSpreadsheet() *Extractor {
	return &Extractor{mode: ModeSpreadsheet}
}

// NewPresentation returns an ODP extractor.
func NewPresentation() *Extractor {
	return &Extractor{mode: ModePresentation}
}

// Extract renders content.xml according to the extractor's mode. Speaker
// notes are included for presentations when opts.ExtractMetadata is set.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	kind := strings.ToUpper(e.mode.String())

	a, err := ooxml.Open(content)
	if err != nil {
		return "", docerr.Wrap(docerr.Archive, "Failed to open "+kind+" file", err)
	}
	data, err := a.Read("content.xml")
	if err != nil {
		return "", docerr.New(docerr.Archive, "content.xml not found in ODF file")
	}

	w := &walker{
		mode:          e.mode,
		extractTables: opts.ExtractTables,
		includeNotes:  opts.ExtractMetadata,
	}
	if err := w.walk(data); err != nil {
		return "", docerr.Wrap(docerr.Xml, kind+" XML parsing error", err)
	}

	text := processText(w.out.String(), opts.PreserveFormatting)
	if text == "" {
		return "", docerr.NoText(docerr.Archive, "No text found in "+kind+" file")
	}
	return text, nil
}

// Metadata reads meta.xml. A file without meta.xml yields an empty map.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	a, err := ooxml.Open(content)
	if err != nil {
		return nil, docerr.Wrap(docerr.Archive, "Failed to open "+strings.ToUpper(e.mode.String())+" file", err)
	}

	meta := make(map[string]string)
	data, err := a.Read("meta.xml")
	if err != nil {
		return meta, nil
	}
	var m metaXML
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, docerr.Wrap(docerr.Xml, "meta.xml parsing error", err)
	}
	m.Meta.fill(meta)
	return meta, nil
}

// processText trims lines and drops blank ones. Without preserveFormatting,
// lines of two bytes or fewer are dropped too.
func processText(text string, preserveFormatting bool) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || (!preserveFormatting && len(line) <= 2) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
