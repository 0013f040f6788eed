// Package epubdoc extracts text and metadata from EPUB books.
package epubdoc

import (
	"time"
)

// Package represents the parsed OPF document.
type Package struct {
	Metadata Metadata
	Manifest map[string]ManifestItem // keyed by ID
	Spine    []SpineItem
	Version  string // "2.0" or "3.0"
}

// Metadata contains EPUB metadata (Dublin Core).
type Metadata struct {
	Title       string
	Creator     []string
	Language    string
	Identifier  string // ISBN, UUID, etc.
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	Modified    time.Time
}

// ManifestItem represents a file in the EPUB.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string // "nav", "cover-image", etc.
}

// SpineItem represents a content document in reading order.
type SpineItem struct {
	IDRef  string
	Linear bool
}

// Chapter is one content document in reading order.
type Chapter struct {
	ID      string
	Href    string // path inside the archive
	Content []byte // raw XHTML
}

// TOCEntry is a single navigation entry.
type TOCEntry struct {
	Title    string
	Href     string
	Children []TOCEntry
}

// countEntries returns the number of entries in the tree.
func countEntries(entries []TOCEntry) int {
	n := len(entries)
	for _, e := range entries {
		n += countEntries(e.Children)
	}
	return n
}
