package xlsx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ooxml"
)

// Sheet is a parsed worksheet. Rows is dense from row 0 to the last row
// that appears in the sheet data; missing cells are empty.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Bounds returns the smallest rectangle holding every non-empty cell.
// ok is false for a sheet without data.
func (s *Sheet) Bounds() (minRow, maxRow, minCol, maxCol int, ok bool) {
	minRow, minCol = -1, -1
	maxRow, maxCol = -1, -1
	for r, row := range s.Rows {
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			if minRow < 0 {
				minRow = r
			}
			maxRow = r
			if minCol < 0 || c < minCol {
				minCol = c
			}
			if c > maxCol {
				maxCol = c
			}
		}
	}
	return minRow, maxRow, minCol, maxCol, maxRow >= 0
}

// Workbook is a parsed XLSX file.
type Workbook struct {
	Sheets []*Sheet

	archive       *ooxml.Archive
	sharedStrings []string
}

// Parse reads every worksheet of an XLSX file in workbook order. Sheets
// that fail to parse are skipped.
func Parse(content []byte) (*Workbook, error) {
	a, err := ooxml.Open(content)
	if err != nil {
		return nil, docerr.Wrap(docerr.Excel, "Failed to open Excel file", err)
	}

	data, err := a.Read("xl/workbook.xml")
	if err != nil {
		return nil, docerr.Wrap(docerr.CorruptedDocument, "missing workbook", err)
	}
	var wb workbookXML
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil, docerr.Wrap(docerr.Excel, "Failed to open Excel file", err)
	}

	w := &Workbook{archive: a}
	w.parseSharedStrings()
	targets := w.sheetTargets()

	for i, ref := range wb.Sheets.Sheet {
		target := targets[ref.RID]
		if target == "" {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		}
		data, err := a.Read(target)
		if err != nil {
			continue
		}
		sheet, err := w.parseWorksheet(data, ref.Name)
		if err != nil {
			continue
		}
		w.Sheets = append(w.Sheets, sheet)
	}

	return w, nil
}

// sheetTargets maps relationship IDs to archive paths.
func (w *Workbook) sheetTargets() map[string]string {
	targets := make(map[string]string)
	data, err := w.archive.Read("xl/_rels/workbook.xml.rels")
	if err != nil {
		return targets
	}
	var rels relationshipsXML
	if xml.Unmarshal(data, &rels) != nil {
		return targets
	}
	for _, rel := range rels.Relationship {
		target := rel.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("xl", target)
		}
		targets[rel.ID] = target
	}
	return targets
}

func (w *Workbook) parseSharedStrings() {
	data, err := w.archive.Read("xl/sharedStrings.xml")
	if err != nil {
		return
	}
	var sst sharedStringsXML
	if xml.Unmarshal(data, &sst) != nil {
		return
	}
	w.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		w.sharedStrings[i] = si.text()
	}
}

func (w *Workbook) parseWorksheet(data []byte, name string) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name}
	nextRow := 0
	for _, row := range ws.SheetData.Rows {
		r := nextRow
		if row.R > 0 {
			r = row.R - 1
		}
		nextRow = r + 1

		nextCol := 0
		for _, c := range row.Cells {
			col := nextCol
			if c.R != "" {
				if parsed, _, err := ParseCellRef(c.R); err == nil {
					col = parsed
				}
			}
			nextCol = col + 1

			cell := w.cellValue(c)
			if cell.Type == CellTypeEmpty {
				continue
			}
			sheet.set(r, col, cell)
		}
	}
	return sheet, nil
}

func (s *Sheet) set(r, c int, cell Cell) {
	for len(s.Rows) <= r {
		s.Rows = append(s.Rows, nil)
	}
	for len(s.Rows[r]) <= c {
		s.Rows[r] = append(s.Rows[r], Cell{})
	}
	s.Rows[r][c] = cell
}

func (w *Workbook) cellValue(c cellXML) Cell {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || idx < 0 || idx >= len(w.sharedStrings) {
			return Cell{}
		}
		return Cell{Value: w.sharedStrings[idx], Type: CellTypeString}
	case "inlineStr":
		if c.Is == nil {
			return Cell{}
		}
		return Cell{Value: c.Is.text(), Type: CellTypeString}
	case "str", "d":
		if c.V == "" {
			return Cell{}
		}
		return Cell{Value: c.V, Type: CellTypeString}
	case "b":
		if c.V == "" {
			return Cell{}
		}
		return Cell{Value: FormatBool(c.V), Type: CellTypeBoolean}
	case "e":
		return Cell{Value: "ERROR: " + c.V, Type: CellTypeError}
	default:
		if strings.TrimSpace(c.V) == "" {
			return Cell{}
		}
		return Cell{Value: FormatNumber(c.V), Type: CellTypeNumber}
	}
}

// Text renders one sheet: every row of the content rectangle that holds
// data, cells joined by sep.
func (s *Sheet) Text(sep string) string {
	minRow, maxRow, minCol, maxCol, ok := s.Bounds()
	if !ok {
		return ""
	}

	var sb strings.Builder
	vals := make([]string, 0, maxCol-minCol+1)
	for r := minRow; r <= maxRow; r++ {
		vals = vals[:0]
		hasData := false
		for c := minCol; c <= maxCol; c++ {
			var cell Cell
			if c < len(s.Rows[r]) {
				cell = s.Rows[r][c]
			}
			vals = append(vals, cell.Value)
			if !cell.IsEmpty() {
				hasData = true
			}
		}
		if !hasData {
			continue
		}
		sb.WriteString(strings.Join(vals, sep))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// XLSX.
type Extractor struct{}

// New returns an XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract renders each sheet under a "=== Name ===" header. Cells are
// tab-separated with opts.PreserveFormatting, space-separated otherwise.
// opts.MaxPages caps the number of sheets read.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	wb, err := Parse(content)
	if err != nil {
		return "", err
	}

	sep := " "
	if opts.PreserveFormatting {
		sep = "\t"
	}

	var sb strings.Builder
	for i, sheet := range wb.Sheets {
		if opts.MaxPages > 0 && i >= opts.MaxPages {
			break
		}
		text := sheet.Text(sep)
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n=== %s ===\n", sheet.Name)
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	out := strings.Trim(sb.String(), "\n")
	if strings.TrimSpace(out) == "" {
		return "", docerr.NoText(docerr.Excel, "No data found in Excel file")
	}
	return out, nil
}

// Metadata reports sheet names and cell statistics plus core properties.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	wb, err := Parse(content)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	wb.archive.CoreProperties().Fill(meta)

	names := make([]string, len(wb.Sheets))
	totalCells, totalRows := 0, 0
	for i, sheet := range wb.Sheets {
		names[i] = sheet.Name
		minRow, maxRow, _, _, ok := sheet.Bounds()
		if !ok {
			continue
		}
		totalRows += maxRow - minRow + 1
		for _, row := range sheet.Rows {
			for _, cell := range row {
				if cell.Type != CellTypeEmpty {
					totalCells++
				}
			}
		}
	}

	meta["sheet_count"] = strconv.Itoa(len(wb.Sheets))
	meta["sheet_names"] = strings.Join(names, ", ")
	meta["total_cells"] = strconv.Itoa(totalCells)
	meta["total_rows"] = strconv.Itoa(totalRows)
	return meta, nil
}

// ExtractLegacy rejects the binary Excel format.
func ExtractLegacy(content []byte, opts extract.Options) (string, error) {
	return "", docerr.New(docerr.Excel, "Legacy XLS format not supported. Please convert to XLSX format.")
}
