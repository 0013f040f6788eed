package format

import (
	"errors"
	"testing"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/internal/ziptest"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{PDF, "pdf"},
		{Markdown, "markdown"},
		{LegacyOffice, "legacy_office"},
		{Unknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%q).String() = %q, want %q", string(tt.kind), got, tt.want)
		}
	}
}

func TestKind_Extension(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{PDF, ".pdf"},
		{DOCX, ".docx"},
		{Markdown, ".md"},
		{YAML, ".yaml"},
		{ZIP, ""},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.kind.Extension(); got != tt.want {
			t.Errorf("Kind(%q).Extension() = %q, want %q", string(tt.kind), got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	got := Supported()
	if len(got) != 19 {
		t.Fatalf("Supported() returned %d kinds, want 19", len(got))
	}
	for _, k := range got {
		if !k.IsSupported() {
			t.Errorf("%s.IsSupported() = false", k)
		}
	}

	got[0] = "mutated"
	if Supported()[0] != PDF {
		t.Error("Supported() must return a copy")
	}
}

func TestDetect_ExtensionWinsOverContent(t *testing.T) {
	contents := [][]byte{
		nil,
		[]byte("%PDF-1.7"),
		[]byte("{\"a\": 1}"),
		[]byte("<html><body>hi</body></html>"),
		{0xff, 0xfe, 0x00},
	}

	for _, k := range Supported() {
		for _, ext := range []string{k.Extension(), "." + string(k)} {
			for _, content := range contents {
				got, err := Detect("x"+ext, content)
				if err != nil {
					t.Errorf("Detect(%q) error = %v", "x"+ext, err)
					continue
				}
				if got != k {
					t.Errorf("Detect(%q) = %v, want %v", "x"+ext, got, k)
				}
			}
		}
	}
}

func TestFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     Kind
	}{
		{"document.pdf", PDF},
		{"document.PDF", PDF},
		{"notes.md", Markdown},
		{"page.htm", HTML},
		{"config.yml", YAML},
		{"/path/to/sheet.Xlsx", XLSX},
		{"archive.zip", Unknown},
		{"document", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := FromExtension(tt.filename); got != tt.want {
			t.Errorf("FromExtension(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetect_Empty(t *testing.T) {
	_, err := Detect("test", nil)
	if !errors.Is(err, docerr.ErrEmptyDocument) {
		t.Errorf("Detect(empty) error = %v, want EmptyDocument", err)
	}

	got, err := Detect("test.txt", nil)
	if err != nil || got != TXT {
		t.Errorf("Detect(empty, .txt) = %v, %v; want txt", got, err)
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"PDF", []byte("%PDF-1.4"), PDF},
		{"ZIP local header", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}, ZIP},
		{"ZIP empty archive", []byte{0x50, 0x4B, 0x05, 0x06, 0x00}, ZIP},
		{"OLE compound file", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, LegacyOffice},
		{"RTF", []byte(`{\rtf1\ansi`), RTF},
		{"short", []byte{0x50, 0x4B}, Unknown},
		{"text", []byte("Hello, World!"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectContent_Sniffing(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Kind
	}{
		{"doctype", "<!DOCTYPE html><html></html>", HTML},
		{"html tag late in prefix", "   <html lang=\"en\"><body>x</body></html>", HTML},
		{"json object", "  {\"key\": \"value\"}", JSON},
		{"json array", "[1, 2, 3]", JSON},
		{"csv", "name,age\nalice,30\n", CSV},
		{"xml declaration", "<?xml version=\"1.0\"?><root/>", XML},
		{"xml leading tag", "<root><child/></root>", XML},
		{"yaml document marker", "---\ntitle x\n", YAML},
		{"yaml key", "title: Hello\nauthor: me\n", YAML},
		{"plain text", "Just some words\nacross lines\n", TXT},
		{"rtf", `{\rtf1 Hello}`, RTF},
		{"pdf", "%PDF-1.5 rest", PDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectContent([]byte(tt.content))
			if err != nil {
				t.Fatalf("DetectContent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectContent(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestDetectContent_CSVOnlyInFirstFiveLines(t *testing.T) {
	content := "a\nb\nc\nd\ne\nf,g\n"
	got, err := DetectContent([]byte(content))
	if err != nil {
		t.Fatalf("DetectContent() error = %v", err)
	}
	if got != TXT {
		t.Errorf("DetectContent() = %v, want txt", got)
	}
}

func TestDetectContent_NonUTF8(t *testing.T) {
	_, err := DetectContent([]byte{0x80, 0x81, 0xfe, 0xff, 0x00, 0x01})
	if !errors.Is(err, docerr.ErrUnsupportedFormat) {
		t.Errorf("DetectContent(binary) error = %v, want UnsupportedFormat", err)
	}
}

func TestDetectContent_ZIPInterior(t *testing.T) {
	tests := []struct {
		name    string
		entries []ziptest.Entry
		want    Kind
	}{
		{
			name:    "docx",
			entries: []ziptest.Entry{{Name: "[Content_Types].xml"}, {Name: "word/document.xml"}},
			want:    DOCX,
		},
		{
			name:    "xlsx",
			entries: []ziptest.Entry{{Name: "xl/workbook.xml"}},
			want:    XLSX,
		},
		{
			name:    "pptx",
			entries: []ziptest.Entry{{Name: "ppt/presentation.xml"}},
			want:    PPTX,
		},
		{
			name: "spreadsheet content.xml defaults to odt",
			entries: []ziptest.Entry{
				{Name: "mimetype", Body: "application/vnd.oasis.opendocument.spreadsheet"},
				{Name: "content.xml"},
			},
			want: ODT,
		},
		{
			name:    "epub",
			entries: []ziptest.Entry{{Name: "mimetype", Body: "application/epub+zip"}, {Name: "META-INF/container.xml"}},
			want:    EPUB,
		},
		{
			name:    "generic zip",
			entries: []ziptest.Entry{{Name: "readme.txt", Body: "hi"}},
			want:    ZIP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ziptest.Build(t, tt.entries...)
			got, err := Detect("upload", data)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectContent_BrokenZIP(t *testing.T) {
	data := []byte{0x50, 0x4B, 0x03, 0x04, 0x01, 0x02, 0x03}
	_, err := DetectContent(data)
	if !errors.Is(err, docerr.ErrArchive) {
		t.Errorf("DetectContent(broken zip) error = %v, want Archive", err)
	}
}
