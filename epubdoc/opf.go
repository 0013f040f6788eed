package epubdoc

import (
	"encoding/xml"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/tsawler/docproc/internal/ooxml"
)

// OPF-related errors.
var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// opfPackage represents the OPF package document.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []dcElement `xml:"title"`
	Creator     []dcElement `xml:"creator"`
	Language    []dcElement `xml:"language"`
	Identifier  []dcElement `xml:"identifier"`
	Publisher   []dcElement `xml:"publisher"`
	Date        []dcElement `xml:"date"`
	Description []dcElement `xml:"description"`
	Subject     []dcElement `xml:"subject"`
	Rights      []dcElement `xml:"rights"`
	Meta        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID      string `xml:"id,attr"`
	Content string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Name     string `xml:"name,attr"`    // EPUB 2 style
	Content  string `xml:"content,attr"` // EPUB 2 style
	Value    string `xml:",chardata"`    // EPUB 3 style
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"` // NCX ID for EPUB 2
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseOPF parses the package document. It also returns the directory
// holding it, against which manifest hrefs resolve.
func parseOPF(a *ooxml.Archive, opfPath string) (*Package, string, error) {
	data, err := a.Read(opfPath)
	if err != nil {
		return nil, "", ErrNoOPF
	}

	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	pkg := &Package{
		Version:  opf.Version,
		Metadata: convertMetadata(&opf.Metadata),
		Manifest: convertManifest(&opf.Manifest),
		Spine:    convertSpine(&opf.Spine),
	}
	if len(pkg.Spine) == 0 {
		return nil, "", ErrEmptySpine
	}
	return pkg, baseDir, nil
}

func convertMetadata(m *opfMetadata) Metadata {
	meta := Metadata{
		Title:       first(m.Title),
		Language:    first(m.Language),
		Identifier:  first(m.Identifier),
		Publisher:   first(m.Publisher),
		Date:        first(m.Date),
		Description: first(m.Description),
		Rights:      first(m.Rights),
		Creator:     all(m.Creator),
		Subjects:    all(m.Subject),
	}

	for _, mt := range m.Meta {
		if mt.Property != "dcterms:modified" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(mt.Value)); err == nil {
			meta.Modified = t
		}
	}
	return meta
}

// first returns the first non-blank element, trimmed.
func first(elems []dcElement) string {
	for _, e := range elems {
		if s := strings.TrimSpace(e.Content); s != "" {
			return s
		}
	}
	return ""
}

func all(elems []dcElement) []string {
	var out []string
	for _, e := range elems {
		if s := strings.TrimSpace(e.Content); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func convertManifest(m *opfManifest) map[string]ManifestItem {
	manifest := make(map[string]ManifestItem, len(m.Items))
	for _, item := range m.Items {
		manifest[item.ID] = ManifestItem{
			ID:         item.ID,
			Href:       item.Href,
			MediaType:  item.MediaType,
			Properties: strings.Fields(item.Properties),
		}
	}
	return manifest
}

// convertSpine keeps itemrefs in reading order. linear defaults to yes.
func convertSpine(s *opfSpine) []SpineItem {
	spine := make([]SpineItem, 0, len(s.ItemRefs))
	for _, ref := range s.ItemRefs {
		spine = append(spine, SpineItem{IDRef: ref.IDRef, Linear: ref.Linear != "no"})
	}
	return spine
}
