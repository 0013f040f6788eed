package epubdoc

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/docproc/htmldoc"
)

// ncxDocument represents an EPUB 2 NCX navigation document.
type ncxDocument struct {
	XMLName   xml.Name      `xml:"ncx"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	Label    string        `xml:"navLabel>text"`
	Src      ncxContent    `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// TableOfContents returns the book's navigation entries from the EPUB 3 nav
// document, else the EPUB 2 NCX, else one entry per chapter titled by its
// <title> or first heading.
func (b *Book) TableOfContents() []TOCEntry {
	if b.pkg != nil {
		if item, ok := b.manifestItem(func(mi ManifestItem) bool { return slices.Contains(mi.Properties, "nav") }); ok {
			if data, err := b.archive.Read(b.resolveHref(item.Href)); err == nil {
				if entries := parseNavXHTML(data); len(entries) > 0 {
					return entries
				}
			}
		}
		if item, ok := b.manifestItem(func(mi ManifestItem) bool { return mi.MediaType == "application/x-dtbncx+xml" }); ok {
			if data, err := b.archive.Read(b.resolveHref(item.Href)); err == nil {
				var ncx ncxDocument
				if xml.Unmarshal(data, &ncx) == nil && len(ncx.NavPoints) > 0 {
					return convertNavPoints(ncx.NavPoints)
				}
			}
		}
	}
	return b.spineTOC()
}

func (b *Book) manifestItem(match func(ManifestItem) bool) (ManifestItem, bool) {
	for _, mi := range b.pkg.Manifest {
		if match(mi) {
			return mi, true
		}
	}
	return ManifestItem{}, false
}

func (b *Book) spineTOC() []TOCEntry {
	entries := make([]TOCEntry, 0, len(b.chapters))
	for _, ch := range b.chapters {
		title := chapterTitle(ch.Content)
		if title == "" {
			title = ch.ID
		}
		entries = append(entries, TOCEntry{Title: title, Href: ch.Href})
	}
	return entries
}

// chapterTitle returns the chapter's <title>, or its first heading.
func chapterTitle(content []byte) string {
	doc, err := htmldoc.Parse(content, htmldoc.NavigationExclusionNone)
	if err != nil {
		return ""
	}
	if doc.Title != "" {
		return doc.Title
	}
	if headings := doc.Headings(); len(headings) > 0 {
		return headings[0]
	}
	return ""
}

// parseNavXHTML reads the <nav epub:type="toc"> list of an EPUB 3 nav
// document.
func parseNavXHTML(content []byte) []TOCEntry {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	nav := find(root, func(n *html.Node) bool {
		if n.Data != "nav" {
			return false
		}
		for _, attr := range n.Attr {
			if (attr.Key == "epub:type" || attr.Key == "type") && strings.Contains(attr.Val, "toc") {
				return true
			}
		}
		return false
	})
	if nav == nil {
		return nil
	}
	ol := find(nav, func(n *html.Node) bool { return n.Data == "ol" })
	if ol == nil {
		return nil
	}
	return listEntries(ol)
}

func listEntries(ol *html.Node) []TOCEntry {
	var entries []TOCEntry
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var e TOCEntry
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			if gc.Type != html.ElementNode {
				continue
			}
			switch gc.Data {
			case "a":
				e.Title = nodeText(gc)
				for _, attr := range gc.Attr {
					if attr.Key == "href" {
						e.Href = attr.Val
					}
				}
			case "span":
				if e.Title == "" {
					e.Title = nodeText(gc)
				}
			case "ol":
				e.Children = listEntries(gc)
			}
		}
		if e.Title != "" || e.Href != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func convertNavPoints(points []ncxNavPoint) []TOCEntry {
	entries := make([]TOCEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, TOCEntry{
			Title:    strings.TrimSpace(p.Label),
			Href:     p.Src.Src,
			Children: convertNavPoints(p.Children),
		})
	}
	return entries
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
