package xlsx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ziptest"
)

type testSheet struct {
	name string
	data string // contents of <sheetData>
}

// buildXLSX creates a minimal XLSX package with the given sheets in order.
func buildXLSX(t *testing.T, sheets []testSheet, shared []string) []byte {
	t.Helper()

	var wb, rels strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	entries := []ziptest.Entry{
		{Name: "[Content_Types].xml", Body: `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
	}
	for i, s := range sheets {
		fmt.Fprintf(&wb, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, s.name, i+1, i+1)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, i+1, i+1)
		entries = append(entries, ziptest.Entry{
			Name: fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1),
			Body: `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` + s.data + `</sheetData></worksheet>`,
		})
	}
	wb.WriteString(`</sheets></workbook>`)
	rels.WriteString(`</Relationships>`)

	entries = append(entries,
		ziptest.Entry{Name: "xl/workbook.xml", Body: wb.String()},
		ziptest.Entry{Name: "xl/_rels/workbook.xml.rels", Body: rels.String()},
	)

	if shared != nil {
		var sst strings.Builder
		sst.WriteString(`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
		for _, s := range shared {
			sst.WriteString(`<si><t>` + s + `</t></si>`)
		}
		sst.WriteString(`</sst>`)
		entries = append(entries, ziptest.Entry{Name: "xl/sharedStrings.xml", Body: sst.String()})
	}

	return ziptest.Build(t, entries...)
}

const salesData = `<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>1500</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c><c r="B3"><v>2750.456</v></c></row>`

var salesStrings = []string{"Region", "Revenue", "North", "South"}

func TestExtract_Sheet(t *testing.T) {
	data := buildXLSX(t, []testSheet{{"Sales", salesData}}, salesStrings)

	got, err := New().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "=== Sales ===\nRegion Revenue\nNorth 1500\nSouth 2750.46"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_PreserveFormattingUsesTabs(t *testing.T) {
	data := buildXLSX(t, []testSheet{{"Sales", salesData}}, salesStrings)

	opts := extract.DefaultOptions()
	opts.PreserveFormatting = true

	got, err := New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "North\t1500") {
		t.Errorf("Extract() = %q, want tab-separated cells", got)
	}
}

func TestExtract_SparseCells(t *testing.T) {
	sheet := `<row r="2"><c r="B2" t="inlineStr"><is><t>x</t></is></c></row>
<row r="4"><c r="D4" t="b"><v>1</v></c></row>`
	data := buildXLSX(t, []testSheet{{"Grid", sheet}}, nil)

	opts := extract.DefaultOptions()
	opts.PreserveFormatting = true

	got, err := New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "=== Grid ===\nx\t\t\n\t\ttrue"; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_MultipleSheetsSkipsEmpty(t *testing.T) {
	data := buildXLSX(t, []testSheet{
		{"First", `<row r="1"><c r="A1"><v>1</v></c></row>`},
		{"Blank", ``},
		{"Third", `<row r="1"><c r="A1" t="e"><v>#DIV/0!</v></c></row>`},
	}, nil)

	got, err := New().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "=== First ===\n1\n\n\n=== Third ===\nERROR: #DIV/0!"; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_MaxPagesCapsSheets(t *testing.T) {
	data := buildXLSX(t, []testSheet{
		{"One", `<row r="1"><c r="A1"><v>1</v></c></row>`},
		{"Two", `<row r="1"><c r="A1"><v>2</v></c></row>`},
	}, nil)

	opts := extract.DefaultOptions()
	opts.MaxPages = 1

	got, err := New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "Two") {
		t.Errorf("Extract() = %q, want only the first sheet", got)
	}
}

func TestExtract_NoData(t *testing.T) {
	data := buildXLSX(t, []testSheet{{"Empty", `<row r="1"><c r="A1"/></row>`}}, nil)

	_, err := New().Extract(data, extract.DefaultOptions())
	if !errors.Is(err, docerr.ErrNoText) {
		t.Errorf("Extract() error = %v, want ErrNoText", err)
	}
	if kind := docerr.KindOf(err); kind != docerr.Excel {
		t.Errorf("KindOf() = %v, want %v", kind, docerr.Excel)
	}
}

func TestExtract_NotZip(t *testing.T) {
	_, err := New().Extract([]byte("garbage"), extract.DefaultOptions())
	if kind := docerr.KindOf(err); kind != docerr.Excel {
		t.Errorf("KindOf() = %v, want %v", kind, docerr.Excel)
	}
}

func TestExtractLegacy(t *testing.T) {
	_, err := ExtractLegacy(nil, extract.DefaultOptions())
	if kind := docerr.KindOf(err); kind != docerr.Excel {
		t.Errorf("KindOf() = %v, want %v", kind, docerr.Excel)
	}
}

func TestMetadata(t *testing.T) {
	data := buildXLSX(t, []testSheet{
		{"Sales", salesData},
		{"Notes", `<row r="5"><c r="C5" t="str"><v>memo</v></c></row>`},
	}, salesStrings)

	meta, err := New().Metadata(data)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}

	want := map[string]string{
		"sheet_count": "2",
		"sheet_names": "Sales, Notes",
		"total_cells": "7",
		"total_rows":  "4",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta[%q] = %q, want %q", k, meta[k], v)
		}
	}
}

func TestParse_RowsWithoutReferences(t *testing.T) {
	sheet := `<row><c><v>1</v></c><c><v>2</v></c></row><row><c><v>3</v></c></row>`
	data := buildXLSX(t, []testSheet{{"S", sheet}}, nil)

	wb, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := wb.Sheets[0].Text(","), "1,2\n3,\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}
