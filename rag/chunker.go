package rag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunker splits text into size-bounded, optionally overlapping segments.
// A Chunker holds only configuration and is safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
	opts    ChunkOptions
}

// NewChunker validates the configuration and returns a Chunker. MaxChunkSize
// caps size when set. It fails with docerr.InvalidConfig when size is not
// positive, overlap is negative, or overlap is not smaller than the
// effective size.
//
// Chunks are at most size bytes, with one exception: a character window
// never splits a rune, so a single rune wider than size (size 1 with "\u00e9")
// is emitted whole as a chunk of up to utf8.UTFMax bytes.
func NewChunker(size, overlap int, opts ChunkOptions) (*Chunker, error) {
	size = opts.effectiveSize(size)
	if err := opts.validate(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap, opts: opts}, nil
}

// ChunkText is a convenience wrapper around NewChunker and Chunk.
func ChunkText(text string, size, overlap int, opts ChunkOptions) ([]string, error) {
	c, err := NewChunker(size, overlap, opts)
	if err != nil {
		return nil, err
	}
	return c.Chunk(text), nil
}

// Size returns the effective chunk size in bytes.
func (c *Chunker) Size() int { return c.size }

// Chunk splits text. Text that already fits is returned as the only
// element, unchanged. Otherwise the boundary level is chosen once from the
// options and units are packed greedily; oversized units are re-chunked at
// the next finer level. Chunks shorter than MinChunkSize are dropped.
func (c *Chunker) Chunk(text string) []string {
	var chunks []string
	if len(text) <= c.size {
		chunks = []string{text}
	} else {
		chunks = c.split(text, c.opts.startLevel())
	}
	return c.filter(chunks)
}

// split chunks text at the given level. Recursion only moves to a finer
// level, so depth is bounded by the number of levels.
func (c *Chunker) split(text string, level Level) []string {
	switch level {
	case LevelParagraph:
		return c.pack(SplitParagraphs(text), "\n\n", level)
	case LevelSentence:
		return c.pack(SplitSentences(text, c.opts.Language), " ", level)
	default:
		return c.window(text)
	}
}

// pack accumulates units into a buffer joined by sep. When the next unit
// does not fit, the buffer is emitted and the next buffer is seeded with the
// emitted chunk's overlap tail.
func (c *Chunker) pack(units []string, sep string, level Level) []string {
	var chunks []string
	buf := ""

	emit := func() {
		if s := strings.TrimSpace(buf); s != "" {
			chunks = append(chunks, s)
		}
		buf = ""
	}

	for _, unit := range units {
		if len(unit) > c.size {
			emit()
			chunks = append(chunks, c.split(unit, c.opts.finer(level))...)
			continue
		}

		switch {
		case buf == "":
			buf = unit
		case len(buf)+len(sep)+len(unit) <= c.size:
			buf += sep + unit
		default:
			emitted := buf
			emit()
			buf = seed(emitted, sep, unit, c.overlap, c.size)
		}
	}
	emit()

	return chunks
}

// window slides a byte window over text. The right edge snaps back to the
// last space when not at the end of text; the next window starts overlap
// bytes before the previous right edge, skipping leading whitespace.
func (c *Chunker) window(text string) []string {
	if len(text) <= c.size {
		if s := strings.TrimSpace(text); s != "" {
			return []string{s}
		}
		return nil
	}

	var chunks []string
	start := skipSpace(text, 0)
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				// A single rune wider than the window.
				_, n := utf8.DecodeRuneInString(text[start:])
				end = start + n
			}
			if sp := strings.LastIndexByte(text[start:end], ' '); sp > 0 {
				end = start + sp
			}
		}

		if s := strings.TrimSpace(text[start:end]); s != "" {
			chunks = append(chunks, s)
		}
		if end >= len(text) {
			break
		}

		next := c.nextStart(text, start, end)
		start = skipSpace(text, next)
	}

	return chunks
}

// nextStart steps back overlap bytes from end, aligned to a word start when
// one exists before end. It always makes progress past start.
func (c *Chunker) nextStart(text string, start, end int) int {
	if c.overlap <= 0 {
		return end
	}
	back := end - c.overlap
	if back <= start {
		return end
	}
	next := alignRune(text, back)
	if next <= start {
		return end
	}
	if !isWordStart(text, next) {
		if i := strings.IndexByte(text[next:end], ' '); i >= 0 {
			next += i
		}
	}
	return next
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		r, n := utf8.DecodeRuneInString(text[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += n
	}
	return pos
}

func (c *Chunker) filter(chunks []string) []string {
	if c.opts.MinChunkSize <= 0 {
		return chunks
	}
	out := chunks[:0]
	for _, ch := range chunks {
		if len(ch) >= c.opts.MinChunkSize {
			out = append(out, ch)
		}
	}
	return out
}
