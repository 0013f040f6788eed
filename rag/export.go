package rag

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
)

// ExportFormat defines the available export formats
type ExportFormat int

const (
	// ExportFormatJSONL exports as JSON Lines (one JSON object per line)
	ExportFormatJSONL ExportFormat = iota
	// ExportFormatJSON exports as a JSON array
	ExportFormatJSON
	// ExportFormatCSV exports as comma-separated values
	ExportFormatCSV
	// ExportFormatTSV exports as tab-separated values
	ExportFormatTSV
)

// String returns the format name accepted by ParseExportFormat.
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSONL:
		return "jsonl"
	case ExportFormatJSON:
		return "json"
	case ExportFormatCSV:
		return "csv"
	case ExportFormatTSV:
		return "tsv"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSONL:
		return ".jsonl"
	case ExportFormatJSON:
		return ".json"
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatTSV:
		return ".tsv"
	default:
		return ".txt"
	}
}

// ParseExportFormat parses jsonl, json, csv or tsv, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jsonl", "":
		return ExportFormatJSONL, nil
	case "json":
		return ExportFormatJSON, nil
	case "csv":
		return ExportFormatCSV, nil
	case "tsv":
		return ExportFormatTSV, nil
	}
	return ExportFormatJSONL, docerr.Newf(docerr.InvalidConfig, "unknown export format %q", s)
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	// Format specifies the export format
	Format ExportFormat

	// Source names the document the chunks came from. It prefixes chunk
	// IDs and fills the source column.
	Source string

	// IncludeHeader includes header row in CSV/TSV exports
	IncludeHeader bool

	// PrettyPrint enables pretty printing for JSON formats
	PrettyPrint bool
}

// DefaultExportConfig returns JSON Lines with a header row for the
// delimited formats.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:        ExportFormatJSONL,
		IncludeHeader: true,
	}
}

// Exporter writes chunks in one of the export formats.
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return NewExporterWithConfig(DefaultExportConfig())
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{config: config}
}

// ExportedChunk represents a chunk prepared for export
type ExportedChunk struct {
	ID        string `json:"id"`
	Source    string `json:"source,omitempty"`
	Index     int    `json:"chunk_index"`
	Text      string `json:"text"`
	ByteCount int    `json:"byte_count"`
	CharCount int    `json:"char_count"`
	WordCount int    `json:"word_count"`
}

var csvColumns = []string{"id", "source", "chunk_index", "byte_count", "char_count", "word_count", "text"}

// Export writes chunks to w.
func (e *Exporter) Export(chunks []Chunk, w io.Writer) error {
	switch e.config.Format {
	case ExportFormatJSONL:
		return e.exportJSONL(chunks, w)
	case ExportFormatJSON:
		return e.exportJSON(chunks, w)
	case ExportFormatCSV:
		return e.exportDelimited(chunks, w, ',')
	case ExportFormatTSV:
		return e.exportDelimited(chunks, w, '\t')
	default:
		return docerr.Newf(docerr.InvalidConfig, "unsupported export format: %v", e.config.Format)
	}
}

// ExportToString exports chunks to a string
func (e *Exporter) ExportToString(chunks []Chunk) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(chunks, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) prepare(c Chunk) ExportedChunk {
	id := "chunk-" + strconv.Itoa(c.Index)
	if e.config.Source != "" {
		id = e.config.Source + "#" + strconv.Itoa(c.Index)
	}
	return ExportedChunk{
		ID:        id,
		Source:    e.config.Source,
		Index:     c.Index,
		Text:      c.Text,
		ByteCount: c.ByteCount,
		CharCount: c.CharCount,
		WordCount: c.WordCount,
	}
}

func (e *Exporter) encoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if e.config.PrettyPrint {
		enc.SetIndent("", "  ")
	}
	return enc
}

// exportJSONL exports chunks as JSON Lines (one JSON object per line)
func (e *Exporter) exportJSONL(chunks []Chunk, w io.Writer) error {
	enc := e.encoder(w)
	for i, c := range chunks {
		if err := enc.Encode(e.prepare(c)); err != nil {
			return fmt.Errorf("encoding chunk %d: %w", i, err)
		}
	}
	return nil
}

// exportJSON exports chunks as a JSON array
func (e *Exporter) exportJSON(chunks []Chunk, w io.Writer) error {
	exported := make([]ExportedChunk, len(chunks))
	for i, c := range chunks {
		exported[i] = e.prepare(c)
	}
	return e.encoder(w).Encode(exported)
}

func (e *Exporter) exportDelimited(chunks []Chunk, w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if e.config.IncludeHeader {
		if err := cw.Write(csvColumns); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, c := range chunks {
		x := e.prepare(c)
		row := []string{
			x.ID,
			x.Source,
			strconv.Itoa(x.Index),
			strconv.Itoa(x.ByteCount),
			strconv.Itoa(x.CharCount),
			strconv.Itoa(x.WordCount),
			x.Text,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
