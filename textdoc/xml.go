package textdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// Elements whose text is labeled with "[name] " in flattened output.
var labeledElements = map[string]bool{
	"title": true, "heading": true, "section": true, "chapter": true,
	"article": true, "abstract": true, "summary": true, "description": true,
	"content": true, "text": true, "paragraph": true, "p": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Elements followed by a line break in flattened output.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "paragraph": true, "chapter": true, "item": true, "entry": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// XML implements extract.Extractor and extract.MetadataExtractor for
// generic XML.
type XML struct{}

// NewXML returns an XML extractor.
func NewXML() XML {
	return XML{}
}

func newXMLDecoder(content []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(content))
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = xml.HTMLEntity
	return d
}

// Extract re-indents the document under PreserveFormatting. Otherwise it
// returns the trimmed character data, labeling title, heading and section
// style elements and breaking lines after block elements.
func (XML) Extract(content []byte, opts extract.Options) (string, error) {
	if opts.PreserveFormatting {
		return formatXML(content)
	}

	var sb strings.Builder
	d := newXMLDecoder(content)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", docerr.Wrap(docerr.Xml, "XML parsing error", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if labeledElements[strings.ToLower(t.Name.Local)] {
				sb.WriteString("[" + t.Name.Local + "] ")
			}
		case xml.EndElement:
			if blockElements[strings.ToLower(t.Name.Local)] {
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if s := strings.TrimSpace(string(t)); s != "" {
				sb.WriteString(s)
				sb.WriteByte(' ')
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", docerr.NoText(docerr.Xml, "No text content found in XML")
	}
	return strings.Join(lines, "\n"), nil
}

// formatXML re-encodes the token stream with two-space indentation,
// dropping whitespace-only character data. Namespace prefixes are kept as
// written.
func formatXML(content []byte) (string, error) {
	d := newXMLDecoder(content)
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	started := false
	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", docerr.Wrap(docerr.Xml, "XML parsing error", err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				// The output is always UTF-8, whatever the input declared.
				if !started {
					buf.WriteString(xml.Header)
				}
				continue
			}
			tok = t.Copy()
		case xml.StartElement:
			t.Name = prefixed(t.Name)
			attrs := make([]xml.Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = xml.Attr{Name: prefixed(a.Name), Value: a.Value}
			}
			t.Attr = attrs
			tok = t
		case xml.EndElement:
			tok = xml.EndElement{Name: prefixed(t.Name)}
		case xml.CharData:
			s := strings.TrimSpace(string(t))
			if s == "" {
				continue
			}
			tok = xml.CharData(s)
		default:
			tok = xml.CopyToken(tok)
		}

		if err := enc.EncodeToken(tok); err != nil {
			return "", docerr.Wrap(docerr.Xml, "XML parsing error", err)
		}
		started = true
	}
	if err := enc.Flush(); err != nil {
		return "", docerr.Wrap(docerr.Xml, "XML parsing error", err)
	}
	if buf.Len() == 0 {
		return "", docerr.NoText(docerr.Xml, "No text content found in XML")
	}
	return buf.String(), nil
}

// prefixed folds a raw namespace prefix into the local name so the encoder
// writes it back verbatim.
func prefixed(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

// Metadata reports the root element name and the element count.
func (XML) Metadata(content []byte) (map[string]string, error) {
	d := newXMLDecoder(content)
	meta := make(map[string]string)
	elements := 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, docerr.Wrap(docerr.Xml, "XML parsing error", err)
		}
		if t, ok := tok.(xml.StartElement); ok {
			if elements == 0 {
				meta["root_element"] = t.Name.Local
				if t.Name.Space != "" {
					meta["namespace"] = t.Name.Space
				}
			}
			elements++
		}
	}
	meta["element_count"] = strconv.Itoa(elements)
	return meta, nil
}
