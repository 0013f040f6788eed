package rag

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/docproc/docerr"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelParagraph, "paragraph"},
		{LevelSentence, "sentence"},
		{LevelCharacter, "character"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkText_ThreeSentences(t *testing.T) {
	text := "This is sentence one. This is sentence two. This is sentence three."

	chunks, err := ChunkText(text, 30, 5, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) <= 1 {
		t.Fatalf("ChunkText() returned %d chunks, want more than 1", len(chunks))
	}
	if len(chunks[0]) > 30 {
		t.Errorf("first chunk length = %d, want <= 30", len(chunks[0]))
	}

	want := []string{
		"This is sentence one.",
		"one. This is sentence two.",
		"two. This is sentence three.",
	}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("ChunkText() = %q, want %q", chunks, want)
	}
}

func TestChunkText_ShortCircuit(t *testing.T) {
	texts := []string{"", "short", "  padded text  ", strings.Repeat("x", 50)}

	for _, text := range texts {
		chunks, err := ChunkText(text, 50, 0, DefaultChunkOptions())
		if err != nil {
			t.Fatalf("ChunkText(%q) error = %v", text, err)
		}
		if len(chunks) != 1 || chunks[0] != text {
			t.Errorf("ChunkText(%q) = %q, want exactly the input", text, chunks)
		}
	}
}

func TestChunkText_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		opts    ChunkOptions
	}{
		{"zero size", 0, 0, DefaultChunkOptions()},
		{"negative size", -5, 0, DefaultChunkOptions()},
		{"negative overlap", 10, -1, DefaultChunkOptions()},
		{"overlap equals size", 10, 10, DefaultChunkOptions()},
		{"overlap exceeds size", 10, 20, DefaultChunkOptions()},
		{"overlap exceeds capped size", 100, 60, ChunkOptions{MaxChunkSize: 50}},
		{"negative min", 10, 0, ChunkOptions{MinChunkSize: -1}},
		{"min above max", 10, 0, ChunkOptions{MinChunkSize: 20, MaxChunkSize: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkText("some text", tt.size, tt.overlap, tt.opts)
			if !errors.Is(err, docerr.ErrInvalidConfig) {
				t.Errorf("ChunkText() error = %v, want InvalidConfig", err)
			}
		})
	}
}

func TestChunkText_Paragraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

	chunks, err := ChunkText(text, 50, 0, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}

	want := []string{
		"First paragraph here.\n\nSecond paragraph here.",
		"Third paragraph here.",
	}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("ChunkText() = %q, want %q", chunks, want)
	}
}

func TestChunkText_OversizedParagraphFallsToSentences(t *testing.T) {
	text := "Tiny.\n\nAlpha beta gamma. Delta epsilon zeta. Eta theta iota."

	chunks, err := ChunkText(text, 25, 0, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}

	want := []string{"Tiny.", "Alpha beta gamma.", "Delta epsilon zeta.", "Eta theta iota."}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("ChunkText() = %q, want %q", chunks, want)
	}
}

func TestChunkText_CharacterWindow(t *testing.T) {
	text := "aaaa bbbb cccc dddd eeee ffff"
	opts := ChunkOptions{}

	chunks, err := ChunkText(text, 10, 0, opts)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}

	want := []string{"aaaa bbbb", "cccc dddd", "eeee ffff"}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("ChunkText() = %q, want %q", chunks, want)
	}
}

func TestChunkText_CharacterWindowOverlap(t *testing.T) {
	text := "aaaa bbbb cccc dddd eeee ffff"

	chunks, err := ChunkText(text, 10, 4, ChunkOptions{})
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		last := prevWords[len(prevWords)-1]
		if !strings.HasPrefix(chunks[i], last) {
			t.Errorf("chunk %d = %q does not start with %q from previous chunk", i, chunks[i], last)
		}
	}
	if got := chunks[len(chunks)-1]; !strings.HasSuffix(got, "ffff") {
		t.Errorf("last chunk = %q, want it to end the text", got)
	}
}

func TestChunkText_NoSpacesTerminates(t *testing.T) {
	text := strings.Repeat("x", 1000)

	chunks, err := ChunkText(text, 64, 63, ChunkOptions{})
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("ChunkText() returned no chunks")
	}
	for i, ch := range chunks {
		if len(ch) > 64 {
			t.Errorf("chunk %d length = %d, want <= 64", i, len(ch))
		}
	}
}

func TestChunkText_MultiByteSafe(t *testing.T) {
	text := strings.Repeat("\u65e5\u672c\u8a9e\u30c6\u30ad\u30b9\u30c8", 40)

	chunks, err := ChunkText(text, 50, 10, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	for i, ch := range chunks {
		if !isValidUTF8(ch) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if len(ch) > 50 {
			t.Errorf("chunk %d length = %d, want <= 50", i, len(ch))
		}
	}
}

func TestChunkText_MinChunkSizeDropsShortChunks(t *testing.T) {
	text := "A long enough first paragraph of text.\n\nTiny."

	opts := DefaultChunkOptions()
	opts.MinChunkSize = 10

	chunks, err := ChunkText(text, 40, 0, opts)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "A long enough first paragraph of text." {
		t.Errorf("ChunkText() = %q, want only the long paragraph", chunks)
	}
	for _, ch := range chunks {
		if strings.Contains(ch, "Tiny.") {
			t.Error("short chunk was merged instead of dropped")
		}
	}
}

func TestChunkText_MinChunkSizeAppliesToShortCircuit(t *testing.T) {
	opts := DefaultChunkOptions()
	opts.MinChunkSize = 10

	chunks, err := ChunkText("short", 100, 0, opts)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("ChunkText() = %q, want no chunks", chunks)
	}
}

func TestChunkText_MaxChunkSizeCaps(t *testing.T) {
	text := strings.Repeat("Word ", 100)
	opts := DefaultChunkOptions()
	opts.MaxChunkSize = 40

	chunks, err := ChunkText(text, 1000, 0, opts)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	for i, ch := range chunks {
		if len(ch) > 40 {
			t.Errorf("chunk %d length = %d, want <= 40", i, len(ch))
		}
	}
}

func TestChunkText_OverlapIsPrefixOfNext(t *testing.T) {
	sentences := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
		"How vexingly quick daft zebras jump.",
		"Sphinx of black quartz judge my vow.",
		"Bright vixens jump and dozy fowl quack.",
	}
	text := strings.Join(sentences, " ")

	chunks, err := ChunkText(text, 90, 20, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("ChunkText() returned %d chunks, want at least 2", len(chunks))
	}

	for i := 0; i+1 < len(chunks); i++ {
		tail := OverlapTail(chunks[i], 20)
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Errorf("chunk %d = %q does not start with overlap %q", i+1, chunks[i+1], tail)
		}
	}
}

func TestChunkText_SizeBound(t *testing.T) {
	text := strings.Repeat("Sentence number one is here. Another one follows it! ", 30) +
		"\n\n" + strings.Repeat("paragraph-without-breaks ", 20)

	for _, size := range []int{20, 55, 120, 400} {
		chunks, err := ChunkText(text, size, size/4, DefaultChunkOptions())
		if err != nil {
			t.Fatalf("ChunkText(size=%d) error = %v", size, err)
		}
		for i, ch := range chunks {
			if len(ch) > size {
				t.Errorf("size %d: chunk %d length = %d", size, i, len(ch))
			}
			if strings.TrimSpace(ch) == "" {
				t.Errorf("size %d: chunk %d is blank", size, i)
			}
		}
	}
}

func TestChunker_Reusable(t *testing.T) {
	c, err := NewChunker(30, 5, DefaultChunkOptions())
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}
	text := "This is sentence one. This is sentence two. This is sentence three."

	first := c.Chunk(text)
	second := c.Chunk(text)
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Errorf("Chunk() not deterministic: %q vs %q", first, second)
	}
	if c.Size() != 30 {
		t.Errorf("Size() = %d, want 30", c.Size())
	}
}

func TestDescribe(t *testing.T) {
	chunks := Describe([]string{"This is a test chunk with some text.", "h\u00e9llo"})

	if chunks[0].ByteCount != 36 || chunks[0].WordCount != 8 || chunks[0].EstimatedTokens != 9 {
		t.Errorf("Describe()[0] = %+v", chunks[0])
	}
	if chunks[1].Index != 1 || chunks[1].CharCount != 5 || chunks[1].ByteCount != 6 {
		t.Errorf("Describe()[1] = %+v", chunks[1])
	}
}

func isValidUTF8(s string) bool {
	return strings.ToValidUTF8(s, "\ufffd") == s
}
