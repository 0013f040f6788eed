package docx

import "strings"

// table collects the rows of a w:tbl while it is being walked.
type table struct {
	rows []string
	row  []string
	cell strings.Builder
}

func (t *table) startRow() {
	t.row = t.row[:0]
}

func (t *table) startCell() {
	t.cell.Reset()
}

// endCell flattens the cell to a single line.
func (t *table) endCell() {
	text := strings.TrimSpace(t.cell.String())
	text = strings.ReplaceAll(text, "\n", " ")
	t.row = append(t.row, text)
	t.cell.Reset()
}

// endRow keeps the row only if any cell has text.
func (t *table) endRow() {
	line := strings.Join(t.row, "\t")
	if strings.TrimSpace(line) != "" {
		t.rows = append(t.rows, line)
	}
	t.row = t.row[:0]
}

// render returns the table wrapped in [TABLE] markers, one row per line
// with tab-separated cells.
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
