package docproc

import (
	"os"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/format"
	"github.com/tsawler/docproc/langdetect"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// Document provides a fluent interface for extracting content from one
// document. Each configuration method returns a new Document, making it
// safe for concurrent use and allowing method chaining.
type Document struct {
	// Source
	filename string
	content  []byte
	loaded   bool

	proc    *Processor
	options extract.Options

	// Accumulated error (fail-fast)
	err error
}

// Open returns a Document for the file at path. The file is read by the
// first terminal operation.
//
// Example:
//
//	text, err := docproc.Open("report.docx").Text()
func Open(path string) *Document {
	return &Document{
		filename: path,
		options:  extract.DefaultOptions(),
	}
}

// FromBytes returns a Document for content already in memory. The filename
// is used only for its extension and may be empty.
//
// Example:
//
//	text, err := docproc.FromBytes(data, "upload.csv").Text()
func FromBytes(content []byte, filename string) *Document {
	return &Document{
		filename: filename,
		content:  content,
		loaded:   true,
		options:  extract.DefaultOptions(),
	}
}

// clone creates a shallow copy of the Document. The content slice is
// shared and never written.
func (d *Document) clone() *Document {
	c := *d
	return &c
}

func (d *Document) processor() *Processor {
	if d.proc != nil {
		return d.proc
	}
	return defaultProcessor()
}

// load reads the file on first use. Files above the size ceiling are
// rejected before they are read.
func (d *Document) load() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.loaded {
		return d.content, nil
	}
	if d.filename == "" {
		return nil, docerr.New(docerr.Io, "no filename specified")
	}

	info, err := os.Stat(d.filename)
	if err != nil {
		return nil, docerr.Wrap(docerr.Io, "Failed to open file", err)
	}
	if maxSize := d.processor().MaxSize(); info.Size() > maxSize {
		return nil, docerr.TooLarge(info.Size(), maxSize)
	}

	content, err := os.ReadFile(d.filename)
	if err != nil {
		return nil, docerr.Wrap(docerr.Io, "Failed to read file", err)
	}
	return content, nil
}

// ============================================================================
// Configuration Methods (return new Document instance)
// ============================================================================

// WithProcessor uses p instead of the default Processor.
//
// Example:
//
//	proc := docproc.New(docproc.WithMaxSize(10 << 20))
//	text, err := docproc.Open("big.pdf").WithProcessor(proc).Text()
func (d *Document) WithProcessor(p *Processor) *Document {
	c := d.clone()
	if p == nil {
		c.err = docerr.New(docerr.InvalidConfig, "nil processor")
		return c
	}
	c.proc = p
	return c
}

// Options replaces every extraction option at once.
func (d *Document) Options(opts extract.Options) *Document {
	c := d.clone()
	c.options = opts
	return c
}

// OCR enables the OCR fallback for PDFs without a text layer.
func (d *Document) OCR() *Document {
	c := d.clone()
	c.options.EnableOCR = true
	return c
}

// ExcludeTables drops table markers from the output.
//
// Example:
//
//	text, err := docproc.Open("notes.md").ExcludeTables().Text()
func (d *Document) ExcludeTables() *Document {
	c := d.clone()
	c.options.ExtractTables = false
	return c
}

// ExcludeMetadata drops headers, footers, notes and frontmatter from the
// output.
func (d *Document) ExcludeMetadata() *Document {
	c := d.clone()
	c.options.ExtractMetadata = false
	return c
}

// PreserveFormatting switches to structured, tab-delimited output.
func (d *Document) PreserveFormatting() *Document {
	c := d.clone()
	c.options.PreserveFormatting = true
	return c
}

// MaxPages caps the pages, sheets, slides or chapters read. Zero means no
// cap.
//
// Example:
//
//	text, err := docproc.Open("book.epub").MaxPages(3).Text()
func (d *Document) MaxPages(n int) *Document {
	c := d.clone()
	if n < 0 {
		c.err = docerr.Newf(docerr.InvalidConfig, "max pages must not be negative, got %d", n)
		return c
	}
	c.options.MaxPages = n
	return c
}

// LanguageHint sets the advisory language, also used for OCR.
func (d *Document) LanguageHint(lang string) *Document {
	c := d.clone()
	c.options.Language = lang
	return c
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// Kind resolves the document kind without extracting.
func (d *Document) Kind() (format.Kind, error) {
	content, err := d.load()
	if err != nil {
		return format.Unknown, err
	}
	return d.processor().Detect(d.filename, content)
}

// Text extracts the document text.
//
// Example:
//
//	text, err := docproc.Open("report.pdf").MaxPages(5).Text()
func (d *Document) Text() (string, error) {
	content, err := d.load()
	if err != nil {
		return "", err
	}
	return d.processor().Process(content, d.filename, d.options)
}

// Result extracts the document text and reports the resolved kind.
func (d *Document) Result() (Result, error) {
	content, err := d.load()
	if err != nil {
		return Result{}, err
	}
	return d.processor().Extract(content, d.filename, d.options)
}

// CleanText extracts the document text and normalizes it with every
// cleaning step enabled.
func (d *Document) CleanText() (string, error) {
	text, err := d.Text()
	if err != nil {
		return "", err
	}
	return normalize.Clean(text, normalize.DefaultCleanOptions()), nil
}

// Metadata reports the document metadata.
func (d *Document) Metadata() (map[string]string, error) {
	content, err := d.load()
	if err != nil {
		return nil, err
	}
	return d.processor().Metadata(content, d.filename)
}

// Markdown converts html, epub and markdown documents to Markdown.
func (d *Document) Markdown() (string, error) {
	content, err := d.load()
	if err != nil {
		return "", err
	}
	return d.processor().Markdown(content, d.filename)
}

// Language detects the language of the document text.
func (d *Document) Language() (string, error) {
	text, err := d.Text()
	if err != nil {
		return "", err
	}
	return langdetect.Detect(text), nil
}

// Chunks extracts and cleans the document text, then splits it with
// rag.DefaultChunkOptions. The chunk language is taken from the language
// hint when set.
//
// Example:
//
//	chunks, err := docproc.Open("handbook.docx").Chunks(1000, 100)
//	for _, c := range chunks {
//	    fmt.Println(c.Index, c.WordCount)
//	}
func (d *Document) Chunks(size, overlap int) ([]rag.Chunk, error) {
	opts := rag.DefaultChunkOptions()
	opts.Language = d.options.Language
	return d.ChunksWithOptions(size, overlap, opts)
}

// ChunksWithOptions is Chunks with explicit chunk options.
func (d *Document) ChunksWithOptions(size, overlap int, opts rag.ChunkOptions) ([]rag.Chunk, error) {
	text, err := d.CleanText()
	if err != nil {
		return nil, err
	}
	texts, err := rag.ChunkText(text, size, overlap, opts)
	if err != nil {
		return nil, err
	}
	return rag.Describe(texts), nil
}
