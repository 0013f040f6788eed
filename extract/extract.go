// Package extract defines the contract every per-format extractor implements:
// bytes in, best-effort plain text out, or a typed failure from package docerr.
package extract

// Options configures extraction. The zero value is not the default; use
// DefaultOptions.
type Options struct {
	// EnableOCR attempts OCR when text extraction finds no text.
	EnableOCR bool `json:"enable_ocr" yaml:"enable_ocr"`

	// ExtractTables includes tabular structure markers in the output.
	ExtractTables bool `json:"extract_tables" yaml:"extract_tables"`

	// ExtractImages is reserved and currently ignored.
	ExtractImages bool `json:"extract_images" yaml:"extract_images"`

	// Language is an advisory hint, also passed to OCR.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// MaxPages caps the pages read from paged formats. Zero means no cap.
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`

	// ExtractMetadata includes headers, footers, notes and frontmatter.
	ExtractMetadata bool `json:"extract_metadata" yaml:"extract_metadata"`

	// PreserveFormatting switches from flattened natural text to structured,
	// tab-delimited output.
	PreserveFormatting bool `json:"preserve_formatting" yaml:"preserve_formatting"`
}

// DefaultOptions returns the documented defaults: tables and metadata on,
// everything else off.
func DefaultOptions() Options {
	return Options{
		ExtractTables:   true,
		ExtractMetadata: true,
	}
}

// Extractor converts one document kind to text.
type Extractor interface {
	Extract(content []byte, opts Options) (string, error)
}

// MetadataExtractor is implemented by extractors that can report
// format-specific metadata. Keys are snake_case.
type MetadataExtractor interface {
	Metadata(content []byte) (map[string]string, error)
}

// Func adapts a plain function to Extractor.
type Func func(content []byte, opts Options) (string, error)

// Extract calls f.
func (f Func) Extract(content []byte, opts Options) (string, error) {
	return f(content, opts)
}
