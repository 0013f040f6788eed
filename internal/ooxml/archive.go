// Package ooxml reads the ZIP containers shared by Office Open XML,
// OpenDocument and EPUB files.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Archive is an in-memory ZIP container.
type Archive struct {
	zr    *zip.Reader
	files map[string]*zip.File
}

// Open opens content as a ZIP archive.
func Open(content []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	a := &Archive{
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, dup := a.files[f.Name]; !dup {
			a.files[f.Name] = f
		}
	}
	return a, nil
}

// Has reports whether the archive contains name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Names returns the entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.zr.File))
	for i, f := range a.zr.File {
		names[i] = f.Name
	}
	return names
}

// Read returns the content of the named entry.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Numbered returns the entries matching prefix + N + suffix, sorted by N.
// For example Numbered("ppt/slides/slide", ".xml") yields slide1.xml,
// slide2.xml, ..., slide10.xml in that order.
func (a *Archive) Numbered(prefix, suffix string) []string {
	type entry struct {
		name string
		n    int
	}
	var found []entry
	for name := range a.files {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		mid := name[len(prefix) : len(name)-len(suffix)]
		n, err := strconv.Atoi(mid)
		if err != nil {
			continue
		}
		found = append(found, entry{name, n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, e := range found {
		names[i] = e.name
	}
	return names
}

// CoreProperties holds Dublin Core document properties from
// docProps/core.xml.
type CoreProperties struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	Keywords       string `xml:"keywords"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

// CoreProperties parses docProps/core.xml. A missing or malformed part
// yields empty properties.
func (a *Archive) CoreProperties() CoreProperties {
	var props CoreProperties
	data, err := a.Read("docProps/core.xml")
	if err != nil {
		return props
	}
	_ = xml.Unmarshal(data, &props)
	return props
}

// Fill copies the non-empty properties into meta under snake_case keys.
func (p CoreProperties) Fill(meta map[string]string) {
	for key, val := range map[string]string{
		"title":            p.Title,
		"subject":          p.Subject,
		"creator":          p.Creator,
		"keywords":         p.Keywords,
		"description":      p.Description,
		"last_modified_by": p.LastModifiedBy,
		"created":          p.Created,
		"modified":         p.Modified,
	} {
		if val = strings.TrimSpace(val); val != "" {
			meta[key] = val
		}
	}
}
