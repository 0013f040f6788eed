package xlsx

import "testing"

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		ref     string
		wantCol int
		wantRow int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"B1", 1, 0, false},
		{"Z1", 25, 0, false},
		{"AA1", 26, 0, false},
		{"AB1", 27, 0, false},
		{"AZ1", 51, 0, false},
		{"BA1", 52, 0, false},
		{"A10", 0, 9, false},
		{"C100", 2, 99, false},
		{"AA100", 26, 99, false},
		{"XFD1048576", 16383, 1048575, false},
		{"", 0, 0, true},
		{"1", 0, 0, true},
		{"A", 0, 0, true},
		{"A0", 0, 0, true},
		{"A-1", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, row, err := ParseCellRef(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCellRef(%q) expected error, got col=%d, row=%d", tt.ref, col, row)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseCellRef(%q) unexpected error: %v", tt.ref, err)
				return
			}
			if col != tt.wantCol {
				t.Errorf("ParseCellRef(%q) col = %d, want %d", tt.ref, col, tt.wantCol)
			}
			if row != tt.wantRow {
				t.Errorf("ParseCellRef(%q) row = %d, want %d", tt.ref, row, tt.wantRow)
			}
		})
	}
}

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		col  string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
		{"AZ", 51},
		{"BA", 52},
		{"ZZ", 701},
		{"AAA", 702},
		{"XFD", 16383},
		{"a", 0},
		{"aa", 26},
	}

	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			got := ColumnToIndex(tt.col)
			if got != tt.want {
				t.Errorf("ColumnToIndex(%q) = %d, want %d", tt.col, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"42", "42"},
		{"42.0", "42"},
		{"3.14159", "3.14"},
		{"-7.5", "-7.50"},
		{"1E3", "1000"},
		{"45123", "45123"},
		{"not a number", "not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := FormatNumber(tt.raw); got != tt.want {
				t.Errorf("FormatNumber(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatBool(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1", "true"},
		{"0", "false"},
		{"", "false"},
	}

	for _, tt := range tests {
		if got := FormatBool(tt.raw); got != tt.want {
			t.Errorf("FormatBool(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCellType_String(t *testing.T) {
	tests := []struct {
		ct   CellType
		want string
	}{
		{CellTypeEmpty, "empty"},
		{CellTypeString, "string"},
		{CellTypeNumber, "number"},
		{CellTypeBoolean, "boolean"},
		{CellTypeError, "error"},
		{CellType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CellType(%d).String() = %q, want %q", tt.ct, got, tt.want)
			}
		})
	}
}
