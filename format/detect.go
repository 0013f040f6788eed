// Package format classifies a byte buffer and optional filename into a document kind.
//
// Detection is an ordered, first-match-wins chain:
//
//  1. filename extension (case-insensitive), which always wins over content
//  2. magic bytes (%PDF, ZIP, OLE compound file, {\rtf)
//  3. ZIP interior inspection for Office, OpenDocument and EPUB containers
//  4. content sniffing for UTF-8 text (HTML, JSON, CSV, XML, YAML, plain text)
package format

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/docproc/docerr"
)

// Kind is a document kind tag. The string value is the wire name.
type Kind string

const (
	// Unknown indicates an unrecognized kind.
	Unknown  Kind = ""
	PDF      Kind = "pdf"
	DOCX     Kind = "docx"
	DOC      Kind = "doc"
	XLSX     Kind = "xlsx"
	XLS      Kind = "xls"
	PPTX     Kind = "pptx"
	PPT      Kind = "ppt"
	TXT      Kind = "txt"
	Markdown Kind = "markdown"
	HTML     Kind = "html"
	RTF      Kind = "rtf"
	CSV      Kind = "csv"
	JSON     Kind = "json"
	XML      Kind = "xml"
	YAML     Kind = "yaml"
	EPUB     Kind = "epub"
	ODT      Kind = "odt"
	ODS      Kind = "ods"
	ODP      Kind = "odp"

	// LegacyOffice is an OLE compound file (doc, xls or ppt) that magic bytes
	// alone cannot tell apart.
	LegacyOffice Kind = "legacy_office"
	// ZIP is an archive with no recognized document fingerprint.
	ZIP Kind = "zip"
)

// supported lists the recognized kinds in their canonical order.
var supported = []Kind{
	PDF, DOCX, DOC, XLSX, XLS, PPTX, PPT, TXT, Markdown, HTML,
	RTF, CSV, JSON, XML, YAML, EPUB, ODT, ODS, ODP,
}

// extensions maps lowercase filename extensions to kinds.
var extensions = map[string]Kind{
	".pdf":      PDF,
	".docx":     DOCX,
	".doc":      DOC,
	".xlsx":     XLSX,
	".xls":      XLS,
	".pptx":     PPTX,
	".ppt":      PPT,
	".txt":      TXT,
	".md":       Markdown,
	".markdown": Markdown,
	".rtf":      RTF,
	".html":     HTML,
	".htm":      HTML,
	".xml":      XML,
	".csv":      CSV,
	".json":     JSON,
	".yaml":     YAML,
	".yml":      YAML,
	".epub":     EPUB,
	".odt":      ODT,
	".ods":      ODS,
	".odp":      ODP,
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k == Unknown {
		return "unknown"
	}
	return string(k)
}

// Extension returns the typical file extension for the kind.
func (k Kind) Extension() string {
	switch k {
	case Markdown:
		return ".md"
	case Unknown, LegacyOffice, ZIP:
		return ""
	default:
		return "." + string(k)
	}
}

// IsSupported reports whether the kind is one of the recognized document kinds.
func (k Kind) IsSupported() bool {
	for _, s := range supported {
		if s == k {
			return true
		}
	}
	return false
}

// IsText reports whether the kind is a text-based format.
func (k Kind) IsText() bool {
	switch k {
	case TXT, Markdown, HTML, XML, CSV, JSON, YAML, RTF:
		return true
	}
	return false
}

// IsBinary reports whether the kind is a binary container format.
func (k Kind) IsBinary() bool {
	switch k {
	case PDF, DOCX, DOC, XLSX, XLS, PPTX, PPT, ODT, ODS, ODP, EPUB:
		return true
	}
	return false
}

// Supported returns the recognized kinds in canonical order.
// The returned slice is a copy.
func Supported() []Kind {
	out := make([]Kind, len(supported))
	copy(out, supported)
	return out
}

// FromExtension determines the kind from the filename extension alone.
// It returns Unknown if the extension is missing or unrecognized.
func FromExtension(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	if k, ok := extensions[ext]; ok {
		return k
	}
	return Unknown
}

// Detect resolves the kind of content. The filename extension takes absolute
// priority; content is only inspected when the extension does not resolve.
//
// Zero-length content with no resolving extension fails with
// docerr.EmptyDocument. Non-UTF-8 content that matches no magic signature
// fails with docerr.UnsupportedFormat. A ZIP that cannot be opened fails with
// docerr.Archive.
func Detect(filename string, content []byte) (Kind, error) {
	if k := FromExtension(filename); k != Unknown {
		return k, nil
	}
	return DetectContent(content)
}

// DetectContent resolves the kind from content alone.
func DetectContent(content []byte) (Kind, error) {
	if len(content) == 0 {
		return Unknown, docerr.ErrEmptyDocument
	}

	if k := DetectFromMagic(content); k != Unknown {
		if k == ZIP {
			return detectZIPFormat(content)
		}
		return k, nil
	}

	if k := sniff(content); k != Unknown {
		return k, nil
	}

	return Unknown, docerr.Unsupported("unknown")
}

// DetectFromMagic checks leading magic bytes. It returns ZIP for any ZIP
// signature; callers use Detect to look inside the archive.
func DetectFromMagic(data []byte) Kind {
	if len(data) >= 4 {
		switch {
		case data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F':
			return PDF
		case data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04,
			data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x05 && data[3] == 0x06:
			return ZIP
		case data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0:
			return LegacyOffice
		}
	}

	if bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return RTF
	}

	return Unknown
}

// sniff applies the text heuristics. HTML is checked on the raw prefix; the
// remaining checks only apply to valid UTF-8.
func sniff(content []byte) Kind {
	if detectHTMLMagic(content) {
		return HTML
	}

	if !utf8.Valid(content) {
		return Unknown
	}
	text := string(content)
	trimmed := strings.TrimLeft(text, " \t\r\n")

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return JSON
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i >= 5 {
			break
		}
		if strings.Contains(line, ",") {
			return CSV
		}
	}

	if strings.HasPrefix(trimmed, "<") {
		return XML
	}

	if strings.Contains(text, "---") {
		return YAML
	}
	for _, line := range lines {
		if strings.Contains(line, ": ") {
			return YAML
		}
	}

	return TXT
}

// detectHTMLMagic looks for an HTML doctype or root tag in the first 100 bytes.
func detectHTMLMagic(data []byte) bool {
	if len(data) < 5 {
		return false
	}
	if len(data) > 100 {
		data = data[:100]
	}
	lower := strings.ToLower(string(data))
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

// detectZIPFormat inspects archive entry names for format fingerprints.
// The first matching entry in archive order wins. A bare content.xml is
// reported as ODT without consulting the mimetype entry.
func detectZIPFormat(content []byte) (Kind, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Unknown, docerr.Wrap(docerr.Archive, "opening ZIP archive", err)
	}

	hasContainer := false
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return DOCX, nil
		case "xl/workbook.xml":
			return XLSX, nil
		case "ppt/presentation.xml":
			return PPTX, nil
		case "content.xml":
			return ODT, nil
		case "META-INF/container.xml":
			hasContainer = true
		}
	}

	if hasContainer {
		return EPUB, nil
	}
	return ZIP, nil
}
