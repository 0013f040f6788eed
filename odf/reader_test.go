package odf

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ziptest"
)

const contentHeader = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
  xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
  xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"
  xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0"
  xmlns:presentation="urn:oasis:names:tc:opendocument:xmlns:presentation:1.0">
<office:body>`

const contentFooter = `</office:body></office:document-content>`

func buildODF(t *testing.T, body string, extra ...ziptest.Entry) []byte {
	t.Helper()
	entries := []ziptest.Entry{
		{Name: "mimetype", Body: "application/vnd.oasis.opendocument.text"},
		{Name: "content.xml", Body: contentHeader + body + contentFooter},
	}
	return ziptest.Build(t, append(entries, extra...)...)
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeText, "odt"},
		{ModeSpreadsheet, "ods"},
		{ModePresentation, "odp"},
		{Mode(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	body := `<office:text>
  <text:h text:outline-level="1">Project Overview</text:h>
  <text:p>First<text:s text:c="3"/>paragraph<text:tab/>with tab.</text:p>
  <text:p>Line one<text:line-break/>Line two</text:p>
  <text:p>ok</text:p>
  <text:p>Commented<office:annotation><text:p>hidden remark</text:p></office:annotation> text</text:p>
</office:text>`
	data := buildODF(t, body)

	got, err := NewText().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "Project Overview\nFirst   paragraph\twith tab.\nLine one\nLine two\nCommented text"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestText_PreserveKeepsShortLines(t *testing.T) {
	data := buildODF(t, `<office:text><text:p>ok</text:p><text:p>Longer line</text:p></office:text>`)

	opts := extract.DefaultOptions()
	opts.PreserveFormatting = true

	got, err := NewText().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "ok\nLonger line" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestText_Table(t *testing.T) {
	body := `<office:text>
  <text:p>Intro text</text:p>
  <table:table table:name="T1">
    <table:table-row><table:table-cell><text:p>Name</text:p></table:table-cell><table:table-cell><text:p>Qty</text:p></table:table-cell></table:table-row>
    <table:table-row><table:table-cell><text:p>Bolts</text:p></table:table-cell><table:table-cell><text:p>40</text:p></table:table-cell></table:table-row>
  </table:table>
</office:text>`
	data := buildODF(t, body)

	got, err := NewText().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "Intro text\n[TABLE]\nName\tQty\nBolts\t40\n[/TABLE]"; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}

	opts := extract.DefaultOptions()
	opts.ExtractTables = false
	got, err = NewText().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "[TABLE]") || !strings.Contains(got, "Bolts") {
		t.Errorf("Extract() = %q, want cell text without markers", got)
	}
}

func TestSpreadsheet(t *testing.T) {
	body := `<office:spreadsheet>
  <table:table table:name="Inventory">
    <table:table-row>
      <table:table-cell><text:p>Item</text:p></table:table-cell>
      <table:table-cell><text:p>Count</text:p></table:table-cell>
    </table:table-row>
    <table:table-row>
      <table:table-cell><text:p>Widgets</text:p></table:table-cell>
      <table:table-cell/>
      <table:table-cell office:value-type="float" office:value="12"><text:p>12</text:p></table:table-cell>
    </table:table-row>
  </table:table>
</office:spreadsheet>`
	data := buildODF(t, body)

	opts := extract.DefaultOptions()
	opts.PreserveFormatting = true

	got, err := NewSpreadsheet().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "=== Inventory ===\nItem\tCount\nWidgets\t12"; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestPresentation(t *testing.T) {
	body := `<office:presentation>
  <draw:page draw:name="page1">
    <draw:frame><draw:text-box><text:p>Welcome slide</text:p></draw:text-box></draw:frame>
    <presentation:notes><draw:page-thumbnail/><draw:frame><draw:text-box><text:p>Speaker hint</text:p></draw:text-box></draw:frame></presentation:notes>
  </draw:page>
  <draw:page draw:name="page2">
    <draw:frame><draw:text-box><text:p>Second slide</text:p></draw:text-box></draw:frame>
  </draw:page>
</office:presentation>`
	data := buildODF(t, body)

	got, err := NewPresentation().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "=== Slide 1 ===\nWelcome slide\n=== Notes 1 ===\nSpeaker hint\n=== Slide 2 ===\nSecond slide"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}

	opts := extract.DefaultOptions()
	opts.ExtractMetadata = false
	got, err = NewPresentation().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "Speaker hint") {
		t.Errorf("Extract() = %q, want notes skipped", got)
	}
}

func TestExtract_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := NewText().Extract([]byte("plain"), extract.DefaultOptions())
		if kind := docerr.KindOf(err); kind != docerr.Archive {
			t.Errorf("KindOf() = %v, want %v", kind, docerr.Archive)
		}
	})

	t.Run("missing content", func(t *testing.T) {
		data := ziptest.Build(t, ziptest.Entry{Name: "mimetype", Body: "x"})
		_, err := NewText().Extract(data, extract.DefaultOptions())
		if err == nil || !strings.Contains(err.Error(), "content.xml not found") {
			t.Errorf("Extract() error = %v", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		data := ziptest.Build(t, ziptest.Entry{Name: "content.xml", Body: "<office:document-content><unclosed>"})
		_, err := NewSpreadsheet().Extract(data, extract.DefaultOptions())
		if kind := docerr.KindOf(err); kind != docerr.Xml {
			t.Errorf("KindOf() = %v, want %v", kind, docerr.Xml)
		}
	})

	t.Run("no text", func(t *testing.T) {
		data := buildODF(t, `<office:text><text:p>  </text:p></office:text>`)
		_, err := NewText().Extract(data, extract.DefaultOptions())
		if !errors.Is(err, docerr.ErrNoText) {
			t.Errorf("Extract() error = %v, want ErrNoText", err)
		}
	})
}

func TestMetadata(t *testing.T) {
	meta := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<office:meta>
  <dc:title>Field Notes</dc:title>
  <meta:initial-creator>Ana</meta:initial-creator>
  <dc:creator>Ben</dc:creator>
  <meta:keyword>survey</meta:keyword>
  <meta:keyword>2024</meta:keyword>
  <meta:document-statistic meta:page-count="4" meta:word-count="812"/>
</office:meta>
</office:document-meta>`
	data := buildODF(t, `<office:text/>`, ziptest.Entry{Name: "meta.xml", Body: meta})

	got, err := NewText().Metadata(data)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}

	want := map[string]string{
		"title":            "Field Notes",
		"creator":          "Ana",
		"last_modified_by": "Ben",
		"keywords":         "survey, 2024",
		"page_count":       "4",
		"word_count":       "812",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("meta[%q] = %q, want %q", k, got[k], v)
		}
	}
}
