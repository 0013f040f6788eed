package docproc

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/docx"
	"github.com/tsawler/docproc/epubdoc"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/format"
	"github.com/tsawler/docproc/htmldoc"
	"github.com/tsawler/docproc/langdetect"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/odf"
	"github.com/tsawler/docproc/pdfdoc"
	"github.com/tsawler/docproc/pptx"
	"github.com/tsawler/docproc/textdoc"
	"github.com/tsawler/docproc/xlsx"
)

// Processor validates, classifies and extracts documents. It holds no
// per-call state and is safe for concurrent use.
type Processor struct {
	maxSize     int64
	concurrency int
	log         *zap.Logger
	navigation  htmldoc.NavigationExclusionMode
	recognize   OCRFunc
	overrides   map[format.Kind]extract.Extractor

	extractors map[format.Kind]extract.Extractor
	html       *htmldoc.Extractor
	epub       *epubdoc.Extractor
}

// New returns a Processor with the built-in extractor for every supported
// kind.
func New(opts ...Option) *Processor {
	p := defaultProcessorConfig()
	for _, opt := range opts {
		opt(p)
	}
	p.register()
	return p
}

// register builds the kind to extractor table.
func (p *Processor) register() {
	p.html = htmldoc.New()
	p.html.Navigation = p.navigation
	p.epub = epubdoc.New(p.html)

	p.extractors = map[format.Kind]extract.Extractor{
		format.PDF:      pdfdoc.New(),
		format.DOCX:     docx.New(),
		format.DOC:      extract.Func(docx.ExtractLegacy),
		format.XLSX:     xlsx.New(),
		format.XLS:      extract.Func(xlsx.ExtractLegacy),
		format.PPTX:     pptx.New(),
		format.PPT:      extract.Func(pptx.ExtractLegacy),
		format.TXT:      textdoc.NewPlainText(),
		format.Markdown: textdoc.NewMarkdown(),
		format.HTML:     p.html,
		format.RTF:      textdoc.NewRTF(),
		format.CSV:      textdoc.NewCSV(),
		format.JSON:     textdoc.NewJSON(),
		format.XML:      textdoc.NewXML(),
		format.YAML:     textdoc.NewYAML(),
		format.EPUB:     p.epub,
		format.ODT:      odf.NewText(),
		format.ODS:      odf.NewSpreadsheet(),
		format.ODP:      odf.NewPresentation(),
	}
	for kind, ex := range p.overrides {
		p.extractors[kind] = ex
	}
}

// MaxSize returns the input size ceiling in bytes.
func (p *Processor) MaxSize() int64 {
	return p.maxSize
}

// Detect resolves the kind of content. Containers that resolve to no
// extractable kind, such as a bare ZIP or an unidentified OLE file, fail
// with UnsupportedFormat.
func (p *Processor) Detect(filename string, content []byte) (format.Kind, error) {
	kind, err := format.Detect(filename, content)
	if err != nil {
		return kind, err
	}
	if _, ok := p.extractors[kind]; !ok {
		return kind, docerr.Unsupported(kind.String())
	}
	return kind, nil
}

// Result is the outcome of an extraction.
type Result struct {
	Kind format.Kind `json:"kind"`
	Text string      `json:"text"`
}

// Extract is Process that also reports the resolved kind.
func (p *Processor) Extract(content []byte, filename string, opts extract.Options) (Result, error) {
	text, kind, err := p.process(content, filename, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: kind, Text: text}, nil
}

// Process extracts text from content. Extractor failures are returned
// unchanged. When opts.EnableOCR is set and a PDF has no text layer, the
// page images are passed to the OCR recognizer.
func (p *Processor) Process(content []byte, filename string, opts extract.Options) (string, error) {
	text, _, err := p.process(content, filename, opts)
	return text, err
}

func (p *Processor) process(content []byte, filename string, opts extract.Options) (string, format.Kind, error) {
	if size := int64(len(content)); size > p.maxSize {
		return "", format.Unknown, docerr.TooLarge(size, p.maxSize)
	}

	kind, err := p.Detect(filename, content)
	if err != nil {
		p.log.Debug("detection failed",
			zap.String("filename", filename),
			zap.Int("size", len(content)),
			zap.Error(err),
		)
		return "", kind, err
	}

	start := time.Now()
	text, err := p.extractors[kind].Extract(content, opts)
	if err != nil && opts.EnableOCR && kind == format.PDF && errors.Is(err, docerr.ErrNoText) {
		p.log.Debug("no text layer, trying OCR", zap.String("filename", filename))
		text, err = p.ocr(content, opts)
	}
	if err != nil {
		p.log.Debug("extraction failed",
			zap.String("filename", filename),
			zap.String("kind", kind.String()),
			zap.Stringer("error_kind", docerr.KindOf(err)),
			zap.Error(err),
		)
		return "", kind, err
	}

	p.log.Debug("document extracted",
		zap.String("filename", filename),
		zap.String("kind", kind.String()),
		zap.Int("size", len(content)),
		zap.Int("chars", utf8.RuneCountInString(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, kind, nil
}

// ocr recognizes the images embedded in the pages of a PDF.
func (p *Processor) ocr(content []byte, opts extract.Options) (string, error) {
	images, err := pdfdoc.PageImages(content, opts.MaxPages)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", docerr.NoText(docerr.Ocr, "No page images to recognize")
	}
	return p.recognize(images, opts.Language)
}

// Metadata reports file_type, file_size and mime_type for content, merged
// with the keys the kind's extractor reports. Kinds with no extractor get
// only the base keys. A failing metadata read is reported under
// metadata_error rather than failing the call.
func (p *Processor) Metadata(content []byte, filename string) (map[string]string, error) {
	if size := int64(len(content)); size > p.maxSize {
		return nil, docerr.TooLarge(size, p.maxSize)
	}

	kind, err := format.Detect(filename, content)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		"file_type": kind.String(),
		"file_size": strconv.Itoa(len(content)),
		"mime_type": mimetype.Detect(content).String(),
	}

	ex, ok := p.extractors[kind]
	if !ok {
		return meta, nil
	}

	if mx, ok := ex.(extract.MetadataExtractor); ok {
		extra, err := mx.Metadata(content)
		if err != nil {
			p.log.Debug("metadata read failed",
				zap.String("filename", filename),
				zap.String("kind", kind.String()),
				zap.Error(err),
			)
			meta["metadata_error"] = err.Error()
		}
		for k, v := range extra {
			if _, taken := meta[k]; !taken {
				meta[k] = v
			}
		}
	}

	if text, err := ex.Extract(content, extract.DefaultOptions()); err == nil {
		meta["detected_language"] = langdetect.Detect(text)
		if _, ok := meta["word_count"]; !ok {
			meta["word_count"] = strconv.Itoa(len(strings.Fields(text)))
		}
		if _, ok := meta["character_count"]; !ok {
			meta["character_count"] = strconv.Itoa(utf8.RuneCountInString(text))
		}
	}
	return meta, nil
}

// Markdown converts html, epub and markdown documents to Markdown. Markdown
// input is returned with line endings normalized. Other kinds fail with
// UnsupportedFormat.
func (p *Processor) Markdown(content []byte, filename string) (string, error) {
	if size := int64(len(content)); size > p.maxSize {
		return "", docerr.TooLarge(size, p.maxSize)
	}

	kind, err := p.Detect(filename, content)
	if err != nil {
		return "", err
	}

	switch kind {
	case format.HTML:
		return p.html.Markdown(content)
	case format.EPUB:
		return p.epub.Markdown(content)
	case format.Markdown:
		text, err := textdoc.Decode(content)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(normalize.NormalizeLineEndings(text))
		if text == "" {
			return "", docerr.NoText(docerr.EmptyDocument, "No text found in Markdown")
		}
		return text, nil
	}

	e := docerr.Unsupported(kind.String())
	e.Msg = "Markdown output is available for html, epub and markdown"
	return "", e
}
