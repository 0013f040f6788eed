package textdoc

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// YAML implements extract.Extractor and extract.MetadataExtractor for YAML.
type YAML struct{}

// NewYAML returns a YAML extractor.
func NewYAML() YAML {
	return YAML{}
}

// Extract returns the cleaned source under PreserveFormatting. Otherwise it
// lists the scalar values of every document, one per line, skipping nulls.
// Input yaml.v3 rejects is scanned line by line for "key: value" pairs and
// "- item" entries instead.
func (YAML) Extract(content []byte, opts extract.Options) (string, error) {
	text, err := Decode(content)
	if err != nil {
		return "", err
	}

	var out string
	if opts.PreserveFormatting {
		out = cleanText(text, true)
	} else {
		values, err := yamlValues(text)
		if err != nil {
			values = yamlLineValues(text)
		}
		out = strings.Join(values, "\n")
	}
	if strings.TrimSpace(out) == "" {
		return "", docerr.NoText(docerr.EmptyDocument, "No values found in YAML")
	}
	return out, nil
}

// decodeYAML returns every document in the stream.
func decodeYAML(text string) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
}

func yamlValues(text string) ([]string, error) {
	docs, err := decodeYAML(text)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, doc := range docs {
		values = collectScalars(doc, values)
	}
	return values, nil
}

// collectScalars appends the non-null scalar values under n. Mapping keys
// are skipped.
func collectScalars(n *yaml.Node, values []string) []string {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			values = collectScalars(c, values)
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			values = collectScalars(n.Content[i], values)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			values = collectScalars(n.Alias, values)
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" && strings.TrimSpace(n.Value) != "" {
			values = append(values, n.Value)
		}
	}
	return values
}

// yamlLineValues is the fallback for input that does not parse.
func yamlLineValues(text string) []string {
	var values []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, ':'); i >= 0 {
			v := strings.TrimSpace(line[i+1:])
			if v == "" || v == "null" || v == "~" {
				continue
			}
			if v = strings.Trim(strings.Trim(v, `"`), `'`); v != "" {
				values = append(values, v)
			}
		} else if strings.HasPrefix(line, "-") {
			if v := strings.TrimSpace(line[1:]); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// Metadata reports the document count and the top-level keys of the first
// document when it is a mapping.
func (YAML) Metadata(content []byte) (map[string]string, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string)
	docs, err := decodeYAML(text)
	if err != nil {
		meta["valid"] = "false"
		return meta, nil
	}
	meta["valid"] = "true"
	meta["document_count"] = strconv.Itoa(len(docs))
	if len(docs) > 0 && len(docs[0].Content) > 0 && docs[0].Content[0].Kind == yaml.MappingNode {
		root := docs[0].Content[0]
		var keys []string
		for i := 0; i < len(root.Content); i += 2 {
			keys = append(keys, root.Content[i].Value)
		}
		meta["top_level_keys"] = strings.Join(keys, ", ")
	}
	return meta, nil
}
