package rag

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkText_WindowSnapsBeforeOverlap(t *testing.T) {
	// The first window snaps back to a space closer to its start than the
	// overlap, so the next window cannot step back overlap bytes.
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name:    "space after first rune",
			text:    "a bcdefghijklmnop",
			size:    10,
			overlap: 5,
			want:    []string{"a", "bcdefghijk", "ghijklmnop"},
		},
		{
			name:    "space after first word",
			text:    "ab cdefghijklmnopqrst",
			size:    12,
			overlap: 9,
			want:    []string{"ab", "cdefghijklmn", "fghijklmnopq", "ijklmnopqrst"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChunkText(tt.text, tt.size, tt.overlap, ChunkOptions{})
			if err != nil {
				t.Fatalf("ChunkText() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("ChunkText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkText_OverlapDroppedWhenItWouldOverflow(t *testing.T) {
	first := "Aaaa bbbb cccc dddd eee."
	second := "Ffff gggg hhhh iiii jjjjj."
	text := first + " " + second

	tests := []struct {
		name string
		size int
		want []string
	}{
		{
			// "dddd eee." + " " + second is 36 bytes, over the limit.
			name: "tail dropped",
			size: 30,
			want: []string{first, second},
		},
		{
			name: "tail carried",
			size: 40,
			want: []string{first, "dddd eee. " + second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChunkText(text, tt.size, 10, DefaultChunkOptions())
			if err != nil {
				t.Fatalf("ChunkText() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("ChunkText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkText_RuneWiderThanWindow(t *testing.T) {
	got, err := ChunkText("\u00e9\u00e9", 1, 0, ChunkOptions{})
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(got) != 2 || got[0] != "\u00e9" || got[1] != "\u00e9" {
		t.Errorf("ChunkText() = %q, want two whole runes", got)
	}
}

// randomText mixes words, sentence ends, paragraph breaks, runs of spaces
// and two-byte runes.
func randomText(r *rand.Rand) string {
	var b strings.Builder
	n := 1 + r.Intn(60)
	for i := 0; i < n; i++ {
		switch r.Intn(10) {
		case 0:
			b.WriteString(". ")
		case 1:
			b.WriteString("\n\n")
		case 2:
			b.WriteString(strings.Repeat(" ", 1+r.Intn(3)))
		case 3:
			b.WriteString("\u00e9")
		case 4:
			b.WriteString("! The")
		default:
			w := make([]byte, 1+r.Intn(14))
			for j := range w {
				w[j] = byte('a' + r.Intn(26))
			}
			if r.Intn(3) == 0 {
				w[0] -= 'a' - 'A'
			}
			b.Write(w)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func checkChunks(t *testing.T, text string, size, overlap int, opts ChunkOptions, chunks []string) {
	t.Helper()
	for i, ch := range chunks {
		if len(ch) > size && utf8.RuneCountInString(ch) > 1 {
			t.Errorf("chunk %d is %d bytes, over size %d: %q", i, len(ch), size, ch)
		}
		if len(ch) < opts.MinChunkSize {
			t.Errorf("chunk %d is %d bytes, under min %d: %q", i, len(ch), opts.MinChunkSize, ch)
		}
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, ch)
		}
		if len(text) > size && (ch == "" || ch != strings.TrimSpace(ch)) {
			t.Errorf("chunk %d is empty or untrimmed: %q", i, ch)
		}
	}
}

func TestChunkText_RandomInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		text := randomText(r)
		size := 4 + r.Intn(80)
		overlap := r.Intn(size)
		opts := ChunkOptions{
			RespectParagraphs: r.Intn(2) == 0,
			RespectSentences:  r.Intn(2) == 0,
			MinChunkSize:      r.Intn(8),
			Language:          "en",
		}

		name := fmt.Sprintf("case %d size=%d overlap=%d", i, size, overlap)
		chunks, err := ChunkText(text, size, overlap, opts)
		if err != nil {
			t.Fatalf("%s: ChunkText() error = %v", name, err)
		}
		checkChunks(t, text, size, overlap, opts, chunks)
		if t.Failed() {
			t.Fatalf("%s: text %q", name, text)
		}
	}
}

// uniqueWords returns n fixed-width words, each appearing once, separated by
// one to three spaces.
func uniqueWords(r *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", 1+r.Intn(3)))
		}
		fmt.Fprintf(&b, "w%04d", i)
	}
	return b.String()
}

func TestChunkText_WindowCoverageAndOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		text := uniqueWords(r, 1+r.Intn(40))
		size := 16 + r.Intn(40)
		overlap := r.Intn(size)

		chunks, err := ChunkText(text, size, overlap, ChunkOptions{})
		if err != nil {
			t.Fatalf("ChunkText() error = %v", err)
		}
		checkChunks(t, text, size, overlap, ChunkOptions{}, chunks)
		if len(chunks) == 0 {
			t.Fatalf("no chunks for %q", text)
		}
		if !strings.HasPrefix(text, chunks[0]) {
			t.Errorf("first chunk %q does not start the text", chunks[0])
		}
		if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
			t.Errorf("last chunk %q does not end the text", chunks[len(chunks)-1])
		}

		// Every chunk but the last holds a whole word, so its position is
		// unique; consecutive chunks leave no gap but whitespace and share
		// at most overlap bytes.
		pos := 0
		for j := 1; j < len(chunks)-1; j++ {
			prevEnd := pos + len(chunks[j-1])
			k := strings.Index(text[pos+1:], chunks[j])
			if k < 0 {
				t.Fatalf("chunk %d %q not found after %d in %q", j, chunks[j], pos, text)
			}
			next := pos + 1 + k
			if next > prevEnd && strings.TrimSpace(text[prevEnd:next]) != "" {
				t.Errorf("gap %q before chunk %d", text[prevEnd:next], j)
			}
			if next < prevEnd-overlap {
				t.Errorf("chunk %d starts %d bytes before the previous end, overlap is %d", j, prevEnd-next, overlap)
			}
			pos = next
		}
		if t.Failed() {
			t.Fatalf("size=%d overlap=%d text %q chunks %q", size, overlap, text, chunks)
		}
	}
}

func FuzzChunkText(f *testing.F) {
	f.Add("a bcdefghijklmnop", 10, 5)
	f.Add("This is sentence one. This is sentence two. This is sentence three.", 30, 5)
	f.Add("para one\n\npara two is longer than the rest\n\nthree", 12, 3)
	f.Add("\u00e9\u00e9\u00e9 \u00e9", 2, 1)

	f.Fuzz(func(t *testing.T, text string, size, overlap int) {
		if size < 4 || size > 512 || overlap < 0 || overlap >= size || !utf8.ValidString(text) {
			t.Skip()
		}
		opts := DefaultChunkOptions()
		opts.Language = "en"
		chunks, err := ChunkText(text, size, overlap, opts)
		if err != nil {
			t.Fatalf("ChunkText() error = %v", err)
		}
		checkChunks(t, text, size, overlap, opts, chunks)
	})
}
