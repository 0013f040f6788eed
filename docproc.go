// Package docproc extracts plain text and metadata from documents and
// prepares that text for downstream use such as embedding pipelines.
//
// Nineteen kinds are recognized: pdf, docx, doc, xlsx, xls, pptx, ppt, txt,
// markdown, html, rtf, csv, json, xml, yaml, epub, odt, ods and odp. A
// document's kind is resolved from its filename extension first, then from
// magic bytes, then by sniffing the content.
//
// Basic usage:
//
//	text, err := docproc.ParseDocument(data, "report.docx", nil)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	text, err := docproc.Open("report.pdf").
//	    MaxPages(10).
//	    PreserveFormatting().
//	    Text()
//
// Preparing text for retrieval:
//
//	chunks, err := docproc.Open("handbook.epub").Chunks(1000, 100)
//
// Every failure is a *docerr.Error; use errors.Is with the docerr sentinels
// or docerr.KindOf to classify it. For control over size limits, logging
// and concurrency, build a Processor with New.
package docproc

import (
	"context"
	"sync"

	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/format"
	"github.com/tsawler/docproc/langdetect"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// defaultProcessor backs the package-level functions.
var defaultProcessor = sync.OnceValue(func() *Processor {
	return New()
})

// ParseDocument extracts text from content. The filename is used only for
// its extension and may be empty. A nil opts means extract.DefaultOptions.
//
// Example:
//
//	text, err := docproc.ParseDocument(data, "notes.md", nil)
func ParseDocument(content []byte, filename string, opts *extract.Options) (string, error) {
	return defaultProcessor().Process(content, filename, optionsOrDefault(opts))
}

// ExtractMetadata reports metadata for content. The result always carries
// file_type and file_size once the kind is resolved.
//
// Example:
//
//	meta, err := docproc.ExtractMetadata(data, "deck.pptx")
//	fmt.Println(meta["file_type"], meta["slide_count"])
func ExtractMetadata(content []byte, filename string) (map[string]string, error) {
	return defaultProcessor().Metadata(content, filename)
}

// ToMarkdown converts html, epub and markdown documents to Markdown.
func ToMarkdown(content []byte, filename string) (string, error) {
	return defaultProcessor().Markdown(content, filename)
}

// ProcessBatch extracts every item independently. It returns one result per
// item in input order; a failing item never aborts its siblings.
//
// Example:
//
//	results := docproc.ProcessBatch(ctx, []docproc.BatchItem{
//	    {Content: a, Filename: "a.pdf"},
//	    {Content: b, Filename: "b.csv"},
//	}, nil)
func ProcessBatch(ctx context.Context, items []BatchItem, opts *extract.Options) []BatchResult {
	return defaultProcessor().ProcessBatch(ctx, items, optionsOrDefault(opts))
}

// SupportedFormats returns the recognized kind tags in canonical order.
func SupportedFormats() []string {
	kinds := format.Supported()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

// CleanText normalizes text. A nil opts enables every step.
//
// Example:
//
//	docproc.CleanText("Hello   world!\r\nThis is a test.", nil)
//	// "Hello world!\nThis is a test."
func CleanText(text string, opts *normalize.CleanOptions) string {
	o := normalize.DefaultCleanOptions()
	if opts != nil {
		o = *opts
	}
	return normalize.Clean(text, o)
}

// ChunkText splits text into segments of at most size bytes, repeating
// about overlap bytes between neighbors. A nil opts means
// rag.DefaultChunkOptions.
func ChunkText(text string, size, overlap int, opts *rag.ChunkOptions) ([]string, error) {
	o := rag.DefaultChunkOptions()
	if opts != nil {
		o = *opts
	}
	return rag.ChunkText(text, size, overlap, o)
}

// DetectLanguage returns a language code for text, defaulting to "en".
func DetectLanguage(text string) string {
	return langdetect.Detect(text)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	text := docproc.Must(docproc.Open("document.docx").Text())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func optionsOrDefault(opts *extract.Options) extract.Options {
	if opts == nil {
		return extract.DefaultOptions()
	}
	return *opts
}
