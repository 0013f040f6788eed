package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// walker renders a WordprocessingML part (document, header, footer, notes)
// as text in document order. Paragraphs end with a newline. Deleted
// revisions and compatibility fallbacks are skipped.
type walker struct {
	extractTables bool

	out  strings.Builder
	para strings.Builder

	paragraphs int
	inText     bool
	runDepth   int
	skipDepth  int
	tables     []*table
}

func newWalker(extractTables bool) *walker {
	return &walker{extractTables: extractTables}
}

// walk consumes one XML part.
func (w *walker) walk(data []byte) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t.Name.Local)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.inText && w.skipDepth == 0 {
				w.para.Write(t)
			}
		}
	}
}

func (w *walker) start(name string) {
	switch name {
	case "del", "moveFrom", "Fallback":
		w.skipDepth++
		return
	}
	if w.skipDepth > 0 {
		return
	}

	switch name {
	case "r":
		w.runDepth++
	case "t":
		w.inText = true
	case "tab":
		if w.runDepth > 0 {
			w.para.WriteByte('\t')
		}
	case "br", "cr":
		if w.runDepth > 0 {
			w.para.WriteByte('\n')
		}
	case "tbl":
		if w.extractTables {
			w.tables = append(w.tables, &table{})
		}
	case "tr":
		if tb := w.table(); tb != nil {
			tb.startRow()
		}
	case "tc":
		if tb := w.table(); tb != nil {
			tb.startCell()
		}
	}
}

func (w *walker) end(name string) {
	switch name {
	case "del", "moveFrom", "Fallback":
		if w.skipDepth > 0 {
			w.skipDepth--
		}
		return
	}
	if w.skipDepth > 0 {
		return
	}

	switch name {
	case "r":
		if w.runDepth > 0 {
			w.runDepth--
		}
	case "t":
		w.inText = false
	case "p":
		w.endParagraph()
	case "tc":
		if tb := w.table(); tb != nil {
			tb.endCell()
		}
	case "tr":
		if tb := w.table(); tb != nil {
			tb.endRow()
		}
	case "tbl":
		if !w.extractTables || len(w.tables) == 0 {
			return
		}
		tb := w.tables[len(w.tables)-1]
		w.tables = w.tables[:len(w.tables)-1]
		if parent := w.table(); parent != nil {
			parent.cell.WriteString(tb.render())
			return
		}
		w.out.WriteString(tb.render())
	}
}

func (w *walker) endParagraph() {
	text := w.para.String()
	w.para.Reset()

	if tb := w.table(); tb != nil {
		tb.cell.WriteString(text)
		tb.cell.WriteByte('\n')
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	w.paragraphs++
	w.out.WriteString(text)
	w.out.WriteByte('\n')
}

func (w *walker) table() *table {
	if len(w.tables) == 0 {
		return nil
	}
	return w.tables[len(w.tables)-1]
}

func (w *walker) String() string {
	return w.out.String()
}
