package xlsx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a string value.
	CellTypeString
	// CellTypeNumber indicates a numeric value, including date serials.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeError indicates an error value such as #DIV/0!.
	CellTypeError
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeEmpty:
		return "empty"
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Cell is a single rendered cell value.
type Cell struct {
	Value string
	Type  CellType
}

// IsEmpty reports whether the cell has no text.
func (c Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || strings.TrimSpace(c.Value) == ""
}

// FormatNumber renders a numeric cell: integral values without a fraction,
// everything else with two decimals. Unparseable input is returned as is.
func FormatNumber(raw string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatBool renders a boolean cell from its stored "1" or "0".
func FormatBool(raw string) string {
	switch strings.TrimSpace(raw) {
	case "1", "true", "TRUE":
		return "true"
	default:
		return "false"
	}
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and
// row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference: no column letters")
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference: no row number")
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}

	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", ref[i:])
	}
	return col, rowNum - 1, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26.
func ColumnToIndex(col string) int {
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
