package odf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Mode selects how content.xml is rendered.
type Mode int

const (
	// ModeText renders paragraphs and headings in order.
	ModeText Mode = iota
	// ModeSpreadsheet renders each table under its name with tab-separated
	// cells.
	ModeSpreadsheet
	// ModePresentation renders each draw:page under a slide header.
	ModePresentation
)

// String returns the file kind the mode renders.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "odt"
	case ModeSpreadsheet:
		return "ods"
	case ModePresentation:
		return "odp"
	default:
		return "unknown"
	}
}

// maxSpaces caps text:s expansion.
const maxSpaces = 1024

// walker renders an OpenDocument content.xml.
type walker struct {
	mode          Mode
	extractTables bool
	includeNotes  bool

	out  strings.Builder
	para strings.Builder
	cell strings.Builder

	paraDepth int
	skipDepth int
	inCell    bool
	slide     int
	pending   string // header written before the next non-blank paragraph
	tables    []*table
}

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
			w.start(t)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.paraDepth > 0 && w.skipDepth == 0 {
				w.para.Write(t)
			}
		}
	}
}

func (w *walker) skipped(name string) bool {
	switch name {
	case "annotation", "tracked-changes":
		return true
	case "notes":
		return !w.includeNotes
	}
	return false
}

func (w *walker) start(t xml.StartElement) {
	name := t.Name.Local
	if w.skipped(name) {
		w.skipDepth++
		return
	}
	if w.skipDepth > 0 {
		return
	}

	switch name {
	case "p", "h":
		if w.paraDepth == 0 {
			w.para.Reset()
		}
		w.paraDepth++
	case "s":
		if w.paraDepth > 0 {
			n := 1
			if c, err := strconv.Atoi(attr(t, "c")); err == nil && c > 0 {
				n = min(c, maxSpaces)
			}
			w.para.WriteString(strings.Repeat(" ", n))
		}
	case "tab":
		if w.paraDepth > 0 {
			w.para.WriteByte('\t')
		}
	case "line-break":
		if w.paraDepth > 0 {
			w.para.WriteByte('\n')
		}
	case "page":
		if w.mode == ModePresentation {
			w.slide++
			w.pending = ""
			fmt.Fprintf(&w.out, "\n=== Slide %d ===\n", w.slide)
		}
	case "notes":
		w.pending = fmt.Sprintf("\n=== Notes %d ===\n", w.slide)
	case "table":
		w.startTable(t)
	case "table-row":
		if tb := w.table(); tb != nil {
			tb.startRow()
		}
	case "table-cell":
		w.startCell()
	}
}

func (w *walker) end(name string) {
	if w.skipped(name) {
		if w.skipDepth > 0 {
			w.skipDepth--
		}
		return
	}
	if w.skipDepth > 0 {
		return
	}

	switch name {
	case "p", "h":
		if w.paraDepth > 0 {
			w.paraDepth--
		}
		if w.paraDepth == 0 {
			w.endParagraph()
		}
	case "notes":
		w.pending = ""
	case "table-cell":
		w.endCell()
	case "table-row":
		if w.mode == ModeSpreadsheet {
			w.out.WriteByte('\n')
		} else if tb := w.table(); tb != nil {
			tb.endRow()
		}
	case "table":
		w.endTable()
	}
}

func (w *walker) endParagraph() {
	text := w.para.String()
	w.para.Reset()

	if cell := w.openCell(); cell != nil {
		cell.WriteString(text)
		cell.WriteByte('\n')
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	if w.pending != "" {
		w.out.WriteString(w.pending)
		w.pending = ""
	}
	w.out.WriteString(text)
	w.out.WriteByte('\n')
}

// openCell returns the buffer of the cell being read, or nil.
func (w *walker) openCell() *strings.Builder {
	if w.mode == ModeSpreadsheet {
		if w.inCell {
			return &w.cell
		}
		return nil
	}
	if tb := w.table(); tb != nil && tb.inCell {
		return &tb.cell
	}
	return nil
}

func (w *walker) startTable(t xml.StartElement) {
	switch {
	case w.mode == ModeSpreadsheet:
		if name := attr(t, "name"); name != "" {
			fmt.Fprintf(&w.out, "\n=== %s ===\n", name)
		}
	case w.extractTables:
		w.tables = append(w.tables, &table{})
	}
}

func (w *walker) endTable() {
	if w.mode == ModeSpreadsheet || !w.extractTables || len(w.tables) == 0 {
		return
	}
	tb := w.tables[len(w.tables)-1]
	w.tables = w.tables[:len(w.tables)-1]
	if cell := w.openCell(); cell != nil {
		cell.WriteString(tb.render())
		return
	}
	w.out.WriteString(tb.render())
}

func (w *walker) startCell() {
	if w.mode == ModeSpreadsheet {
		w.inCell = true
		w.cell.Reset()
		return
	}
	if tb := w.table(); tb != nil {
		tb.inCell = true
		tb.cell.Reset()
	}
}

// endCell writes a spreadsheet cell directly and hands table cells to the
// open table. Blank spreadsheet cells are skipped.
func (w *walker) endCell() {
	cell := w.openCell()
	if cell == nil {
		return
	}
	text := strings.ReplaceAll(strings.TrimSpace(cell.String()), "\n", " ")
	cell.Reset()

	if w.mode == ModeSpreadsheet {
		w.inCell = false
		if text != "" {
			w.out.WriteString(text)
			w.out.WriteByte('\t')
		}
		return
	}
	tb := w.table()
	tb.inCell = false
	tb.row = append(tb.row, text)
}

func (w *walker) table() *table {
	if len(w.tables) == 0 {
		return nil
	}
	return w.tables[len(w.tables)-1]
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// table collects rows of a text-document table.
type table struct {
	rows   []string
	row    []string
	cell   strings.Builder
	inCell bool
}

func (t *table) startRow() {
	t.row = t.row[:0]
}

func (t *table) endRow() {
	line := strings.Join(t.row, "\t")
	if strings.TrimSpace(line) != "" {
		t.rows = append(t.rows, line)
	}
	t.row = t.row[:0]
}

func (t *table) render() string {
	var sb strings.Builder
	sb.WriteString("\n[TABLE]\n")
	for _, row := range t.rows {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	sb.WriteString("[/TABLE]\n")
	return sb.String()
}
