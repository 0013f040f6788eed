package textdoc

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// MaxCSVRows caps the data rows rendered from one CSV file.
const MaxCSVRows = 10000

// TruncationMarker is appended when a CSV file exceeds MaxCSVRows.
const TruncationMarker = "... (truncated, too many rows)"

// CSV implements extract.Extractor and extract.MetadataExtractor for
// comma-separated values.
type CSV struct{}

// NewCSV returns a CSV extractor.
func NewCSV() CSV {
	return CSV{}
}

func newCSVReader(text string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	return r
}

// Extract renders one line per data row, fields joined by a space, or by a
// tab under PreserveFormatting, which also adds a "Headers:" line. The first
// row is always treated as the header. Output stops after MaxCSVRows data
// rows with TruncationMarker as the last line.
func (CSV) Extract(content []byte, opts extract.Options) (string, error) {
	text, err := Decode(content)
	if err != nil {
		return "", err
	}

	sep := " "
	if opts.PreserveFormatting {
		sep = "\t"
	}

	r := newCSVReader(text)
	var buf bytes.Buffer

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return "", docerr.NoText(docerr.Csv, "No data found in CSV")
	}
	if err != nil {
		return "", docerr.Wrap(docerr.Csv, "CSV parsing error", err)
	}
	if opts.PreserveFormatting {
		buf.WriteString("Headers: " + strings.Join(header, ", ") + "\n\n")
	}

	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", docerr.Wrap(docerr.Csv, "CSV parsing error", err)
		}
		if rows == MaxCSVRows {
			buf.WriteString(TruncationMarker + "\n")
			break
		}
		buf.WriteString(strings.Join(record, sep))
		buf.WriteByte('\n')
		rows++
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", docerr.NoText(docerr.Csv, "No data found in CSV")
	}
	return buf.String(), nil
}

// Metadata reports the header, the column count and the number of data
// rows.
func (CSV) Metadata(content []byte) (map[string]string, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}

	r := newCSVReader(text)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return map[string]string{"row_count": "0", "column_count": "0"}, nil
	}
	if err != nil {
		return nil, docerr.Wrap(docerr.Csv, "CSV parsing error", err)
	}
	meta := map[string]string{
		"headers":      strings.Join(header, ", "),
		"column_count": strconv.Itoa(len(header)),
	}

	rows := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, docerr.Wrap(docerr.Csv, "CSV parsing error", err)
		}
		rows++
	}
	meta["row_count"] = strconv.Itoa(rows)
	return meta, nil
}
