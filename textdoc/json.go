package textdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// meaningfulKeys label the values they hold. A key matches when it contains
// one of these, case-insensitively.
var meaningfulKeys = []string{
	"title", "name", "description", "content", "text", "message",
	"summary", "body", "comment", "note", "label", "caption",
	"heading", "paragraph", "sentence", "word", "phrase",
}

func isMeaningfulKey(key string) bool {
	key = strings.ToLower(key)
	for _, mk := range meaningfulKeys {
		if strings.Contains(key, mk) {
			return true
		}
	}
	return false
}

// JSON implements extract.Extractor and extract.MetadataExtractor for JSON.
type JSON struct{}

// NewJSON returns a JSON extractor.
func NewJSON() JSON {
	return JSON{}
}

// Extract pretty-prints the document under PreserveFormatting. Otherwise it
// lists every non-blank string, number and boolean in document order, one
// per line, prefixing values held by meaningful keys with "key: ".
func (JSON) Extract(content []byte, opts extract.Options) (string, error) {
	text, err := Decode(content)
	if err != nil {
		return "", err
	}
	data := []byte(text)

	if opts.PreserveFormatting {
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
			return "", docerr.Wrap(docerr.Json, "JSON parsing error", err)
		}
		return buf.String(), nil
	}

	w := &jsonWalker{dec: json.NewDecoder(bytes.NewReader(data))}
	w.dec.UseNumber()
	if err := w.value(""); err != nil {
		return "", docerr.Wrap(docerr.Json, "JSON parsing error", err)
	}
	if _, err := w.dec.Token(); !errors.Is(err, io.EOF) {
		return "", docerr.New(docerr.Json, "JSON parsing error: trailing data after top-level value")
	}
	if len(w.out) == 0 {
		return "", docerr.NoText(docerr.Json, "No text found in JSON")
	}
	return strings.Join(w.out, "\n"), nil
}

type jsonWalker struct {
	dec *json.Decoder
	out []string
}

// value consumes one JSON value. label is the meaningful key holding it, if
// any.
func (w *jsonWalker) value(label string) error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		if label != "" {
			w.out = append(w.out, label+":")
		}
		if v == '{' {
			for w.dec.More() {
				kt, err := w.dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				next := ""
				if isMeaningfulKey(key) {
					next = key
				}
				if err := w.value(next); err != nil {
					return err
				}
			}
		} else {
			for w.dec.More() {
				if err := w.value(""); err != nil {
					return err
				}
			}
		}
		_, err := w.dec.Token()
		return err
	case string:
		if strings.TrimSpace(v) != "" {
			w.emit(label, v)
		}
	case json.Number:
		w.emit(label, v.String())
	case bool:
		w.emit(label, strconv.FormatBool(v))
	}
	return nil
}

func (w *jsonWalker) emit(label, s string) {
	if label != "" {
		s = label + ": " + s
	}
	w.out = append(w.out, s)
}

// Metadata reports the type of the top-level value and its size.
func (JSON) Metadata(content []byte) (map[string]string, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, docerr.Wrap(docerr.Json, "JSON parsing error", err)
	}

	meta := make(map[string]string)
	switch root := v.(type) {
	case map[string]any:
		meta["root_type"] = "object"
		meta["key_count"] = strconv.Itoa(len(root))
	case []any:
		meta["root_type"] = "array"
		meta["item_count"] = strconv.Itoa(len(root))
	case string:
		meta["root_type"] = "string"
	case float64:
		meta["root_type"] = "number"
	case bool:
		meta["root_type"] = "boolean"
	default:
		meta["root_type"] = "null"
	}
	return meta, nil
}
