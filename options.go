package docproc

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/format"
	"github.com/tsawler/docproc/htmldoc"
	"github.com/tsawler/docproc/ocr"
)

// DefaultMaxSize is the input size ceiling, 100 MiB.
const DefaultMaxSize int64 = 100 << 20

// OCRFunc recognizes text in rendered page images.
type OCRFunc func(images [][]byte, language string) (string, error)

// Option configures a Processor.
type Option func(*Processor)

// WithMaxSize sets the input size ceiling in bytes. Values below one are
// ignored.
func WithMaxSize(n int64) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// WithConcurrency sets how many batch items are extracted at once. Values
// below one are ignored.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithNavigationExclusion selects how HTML and EPUB navigation chrome is
// removed before rendering.
func WithNavigationExclusion(mode htmldoc.NavigationExclusionMode) Option {
	return func(p *Processor) {
		p.navigation = mode
	}
}

// WithExtractor replaces the extractor used for kind.
func WithExtractor(kind format.Kind, ex extract.Extractor) Option {
	return func(p *Processor) {
		if p.overrides == nil {
			p.overrides = make(map[format.Kind]extract.Extractor)
		}
		p.overrides[kind] = ex
	}
}

// WithOCR sets the recognizer used when a PDF has no text layer and
// extract.Options.EnableOCR is set. By default ocr.Text is used, which fails
// unless the binary was built with the ocr tag.
func WithOCR(fn OCRFunc) Option {
	return func(p *Processor) {
		if fn != nil {
			p.recognize = fn
		}
	}
}

func defaultProcessorConfig() *Processor {
	return &Processor{
		maxSize:     DefaultMaxSize,
		concurrency: runtime.NumCPU(),
		log:         zap.NewNop(),
		navigation:  htmldoc.NavigationExclusionStandard,
		recognize:   ocr.Text,
	}
}
