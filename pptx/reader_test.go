package pptx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ziptest"
)

// slideXML wraps paragraphs, each a list of runs, in a slide part.
func slideXML(paragraphs ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, runs := range paragraphs {
		sb.WriteString("<a:p>")
		for _, r := range runs {
			sb.WriteString("<a:r><a:t>" + r + "</a:t></a:r>")
		}
		sb.WriteString("</a:p>")
	}
	sb.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

// buildPPTX lists slides in presentation.xml in the given order. notes maps
// a 1-based slide position to its speaker notes text.
func buildPPTX(t *testing.T, slides []string, notes map[int]string) []byte {
	t.Helper()

	var pres, presRels strings.Builder
	pres.WriteString(`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><p:sldIdLst>`)
	presRels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	var entries []ziptest.Entry
	for i, body := range slides {
		n := i + 1
		fmt.Fprintf(&pres, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, n, n)
		entries = append(entries, ziptest.Entry{Name: fmt.Sprintf("ppt/slides/slide%d.xml", n), Body: body})

		if text, ok := notes[n]; ok {
			entries = append(entries,
				ziptest.Entry{Name: fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), Body: slideXML([]string{text})},
				ziptest.Entry{
					Name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n),
					Body: fmt.Sprintf(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId2" Type="%s" Target="../notesSlides/notesSlide%d.xml"/></Relationships>`, relTypeNotesSlide, n),
				},
			)
		}
	}
	pres.WriteString(`</p:sldIdLst></p:presentation>`)
	presRels.WriteString(`</Relationships>`)

	entries = append(entries,
		ziptest.Entry{Name: "ppt/presentation.xml", Body: pres.String()},
		ziptest.Entry{Name: "ppt/_rels/presentation.xml.rels", Body: presRels.String()},
	)
	return ziptest.Build(t, entries...)
}

func TestExtract_Slides(t *testing.T) {
	data := buildPPTX(t, []string{
		slideXML([]string{"Quarterly", "Review"}, []string{"Revenue grew."}, []string{"Next steps"}),
		slideXML([]string{"Thank you!"}),
	}, nil)

	got, err := New().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "=== Slide 1 ===\nQuarterly Review\nRevenue grew.\n\nNext steps\n\n=== Slide 2 ===\nThank you!"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_Notes(t *testing.T) {
	data := buildPPTX(t, []string{
		slideXML([]string{"Agenda"}),
		slideXML([]string{"Details"}),
	}, map[int]string{2: "Remember the demo"})

	opts := extract.DefaultOptions()
	got, err := New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "=== Slide 2 ===\nDetails\n\n=== Notes 2 ===\nRemember the demo") {
		t.Errorf("Extract() = %q, want notes after slide 2", got)
	}

	opts.ExtractMetadata = false
	got, err = New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "Notes") {
		t.Errorf("Extract() = %q, want no notes without ExtractMetadata", got)
	}
}

func TestExtract_SlideOrderFromPresentation(t *testing.T) {
	entries := []ziptest.Entry{
		{Name: "ppt/slides/slide1.xml", Body: slideXML([]string{"Shown second"})},
		{Name: "ppt/slides/slide2.xml", Body: slideXML([]string{"Shown first"})},
		{Name: "ppt/presentation.xml", Body: `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><p:sldIdLst><p:sldId id="256" r:id="rId7"/><p:sldId id="257" r:id="rId3"/></p:sldIdLst></p:presentation>`},
		{Name: "ppt/_rels/presentation.xml.rels", Body: `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId3" Target="slides/slide1.xml"/><Relationship Id="rId7" Target="slides/slide2.xml"/></Relationships>`},
	}
	data := ziptest.Build(t, entries...)

	got, err := New().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Index(got, "Shown first") > strings.Index(got, "Shown second") {
		t.Errorf("Extract() = %q, want presentation order", got)
	}
}

func TestExtract_FallbackNumericOrder(t *testing.T) {
	data := ziptest.Build(t,
		ziptest.Entry{Name: "ppt/slides/slide10.xml", Body: slideXML([]string{"Ten"})},
		ziptest.Entry{Name: "ppt/slides/slide2.xml", Body: slideXML([]string{"Two"})},
	)

	got, err := New().Extract(data, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "=== Slide 1 ===\nTwo\n\n=== Slide 2 ===\nTen"; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_MaxPages(t *testing.T) {
	data := buildPPTX(t, []string{
		slideXML([]string{"First"}),
		slideXML([]string{"Second"}),
	}, nil)

	opts := extract.DefaultOptions()
	opts.MaxPages = 1
	got, err := New().Extract(data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "=== Slide 1 ===\nFirst" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	data := buildPPTX(t, []string{slideXML([]string{"  "})}, nil)

	_, err := New().Extract(data, extract.DefaultOptions())
	if !errors.Is(err, docerr.ErrNoText) {
		t.Errorf("Extract() error = %v, want ErrNoText", err)
	}
	if kind := docerr.KindOf(err); kind != docerr.PowerPoint {
		t.Errorf("KindOf() = %v, want %v", kind, docerr.PowerPoint)
	}
}

func TestExtractLegacy(t *testing.T) {
	_, err := ExtractLegacy(nil, extract.DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "Legacy PPT format not supported") {
		t.Errorf("ExtractLegacy() error = %v", err)
	}
}

func TestProcessSlideText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		preserve bool
		want     string
	}{
		{"drops single characters", "Title \nx\nBody.\nMore", false, "Title\nBody.\n\nMore"},
		{"preserve keeps short lines", "Title\nx\nBody.", true, "Title\nx\nBody."},
		{"blank", "  \n\n", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processSlideText(tt.input, tt.preserve); got != tt.want {
				t.Errorf("processSlideText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	data := buildPPTX(t, []string{
		slideXML([]string{"One"}),
		slideXML([]string{"Two"}),
		slideXML([]string{"Three"}),
	}, map[int]string{1: "note"})

	meta, err := New().Metadata(data)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if meta["slide_count"] != "3" {
		t.Errorf("slide_count = %q, want 3", meta["slide_count"])
	}
	if meta["has_notes"] != "true" {
		t.Errorf("has_notes = %q, want true", meta["has_notes"])
	}
}
