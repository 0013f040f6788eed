// Package docerr defines the typed failures returned by every docproc entry point.
//
// Each failure carries a [Kind] naming the failing stage or collaborator.
// Callers branch on the kind with [KindOf] or with errors.Is against one of
// the sentinel values:
//
//	text, err := docproc.ParseDocument(data, "report.pdf", nil)
//	if errors.Is(err, docerr.ErrEmptyDocument) {
//	    // nothing to do
//	}
package docerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Unknown is the escape hatch for unclassified failures.
	Unknown Kind = iota
	// UnsupportedFormat means no detector rule matched, or the matched kind has no extractor.
	UnsupportedFormat
	// Io is an underlying read failure.
	Io
	// Pdf is a PDF extraction failure.
	Pdf
	// Docx is a Word document extraction failure.
	Docx
	// Excel is a spreadsheet extraction failure.
	Excel
	// PowerPoint is a presentation extraction failure.
	PowerPoint
	// Rtf is an RTF extraction failure.
	Rtf
	// Html is an HTML extraction failure.
	Html
	// Xml is an XML extraction failure.
	Xml
	// Csv is a CSV extraction failure.
	Csv
	// Json is a JSON extraction failure.
	Json
	// Encoding means the bytes could not be decoded to text.
	Encoding
	// Ocr is an OCR failure, including OCR not being compiled in.
	Ocr
	// Archive is a ZIP container failure.
	Archive
	// EmptyDocument means zero-length input, or a document with no text.
	EmptyDocument
	// CorruptedDocument means a structurally invalid container.
	CorruptedDocument
	// DocumentTooLarge means the input exceeded the size ceiling.
	DocumentTooLarge
	// Timeout is reserved for caller-imposed deadlines.
	Timeout
	// InvalidConfig means malformed options.
	InvalidConfig
	// OutOfMemory is reserved.
	OutOfMemory
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported_format"
	case Io:
		return "io"
	case Pdf:
		return "pdf"
	case Docx:
		return "docx"
	case Excel:
		return "excel"
	case PowerPoint:
		return "powerpoint"
	case Rtf:
		return "rtf"
	case Html:
		return "html"
	case Xml:
		return "xml"
	case Csv:
		return "csv"
	case Json:
		return "json"
	case Encoding:
		return "encoding"
	case Ocr:
		return "ocr"
	case Archive:
		return "archive"
	case EmptyDocument:
		return "empty_document"
	case CorruptedDocument:
		return "corrupted_document"
	case DocumentTooLarge:
		return "document_too_large"
	case Timeout:
		return "timeout"
	case InvalidConfig:
		return "invalid_config"
	case OutOfMemory:
		return "out_of_memory"
	default:
		return "unknown"
	}
}

// label is the human prefix used in error messages.
func (k Kind) label() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported file format"
	case Io:
		return "IO error"
	case Pdf:
		return "PDF parsing error"
	case Docx:
		return "DOCX parsing error"
	case Excel:
		return "Excel parsing error"
	case PowerPoint:
		return "PowerPoint parsing error"
	case Rtf:
		return "RTF parsing error"
	case Html:
		return "HTML parsing error"
	case Xml:
		return "XML parsing error"
	case Csv:
		return "CSV parsing error"
	case Json:
		return "JSON parsing error"
	case Encoding:
		return "text encoding error"
	case Ocr:
		return "OCR error"
	case Archive:
		return "archive error"
	case EmptyDocument:
		return "empty document"
	case CorruptedDocument:
		return "corrupted document"
	case DocumentTooLarge:
		return "document too large"
	case Timeout:
		return "processing timeout"
	case InvalidConfig:
		return "invalid configuration"
	case OutOfMemory:
		return "memory allocation error"
	default:
		return "unknown error"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Format is the offending format tag for UnsupportedFormat.
	Format string
	// Size and MaxSize are set for DocumentTooLarge.
	Size    int64
	MaxSize int64
	// Msg is the detail message.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case UnsupportedFormat:
		if e.Msg != "" {
			return fmt.Sprintf("%s: %s (%s)", e.Kind.label(), e.Format, e.Msg)
		}
		return fmt.Sprintf("%s: %s", e.Kind.label(), e.Format)
	case DocumentTooLarge:
		return fmt.Sprintf("%s: %d bytes (max: %d bytes)", e.Kind.label(), e.Size, e.MaxSize)
	}

	msg := e.Kind.label()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// Sentinels for errors.Is. They carry no detail and match any error of their kind.
var (
	ErrUnsupportedFormat = &Error{Kind: UnsupportedFormat}
	ErrIo                = &Error{Kind: Io}
	ErrPdf               = &Error{Kind: Pdf}
	ErrDocx              = &Error{Kind: Docx}
	ErrExcel             = &Error{Kind: Excel}
	ErrPowerPoint        = &Error{Kind: PowerPoint}
	ErrRtf               = &Error{Kind: Rtf}
	ErrHtml              = &Error{Kind: Html}
	ErrXml               = &Error{Kind: Xml}
	ErrCsv               = &Error{Kind: Csv}
	ErrJson              = &Error{Kind: Json}
	ErrEncoding          = &Error{Kind: Encoding}
	ErrOcr               = &Error{Kind: Ocr}
	ErrArchive           = &Error{Kind: Archive}
	ErrEmptyDocument     = &Error{Kind: EmptyDocument}
	ErrCorruptedDocument = &Error{Kind: CorruptedDocument}
	ErrDocumentTooLarge  = &Error{Kind: DocumentTooLarge}
	ErrTimeout           = &Error{Kind: Timeout}
	ErrInvalidConfig     = &Error{Kind: InvalidConfig}
	ErrOutOfMemory       = &Error{Kind: OutOfMemory}
)

// ErrNoText marks an extraction that succeeded structurally but produced no
// text. Extractors wrap it so the dispatcher can decide on an OCR fallback.
var ErrNoText = errors.New("no text found")

// New returns an error of the given kind with a detail message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. It returns nil when err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// NoText returns an error of the given kind that also matches ErrNoText.
func NoText(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: ErrNoText}
}

// Unsupported returns an UnsupportedFormat error for the given format tag.
func Unsupported(format string) *Error {
	return &Error{Kind: UnsupportedFormat, Format: format}
}

// TooLarge returns a DocumentTooLarge error.
func TooLarge(size, maxSize int64) *Error {
	return &Error{Kind: DocumentTooLarge, Size: size, MaxSize: maxSize}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
