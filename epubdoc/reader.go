package epubdoc

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/htmldoc"
	"github.com/tsawler/docproc/internal/ooxml"
)

// Book is an opened EPUB.
type Book struct {
	archive  *ooxml.Archive
	pkg      *Package // nil when the package document is unusable
	baseDir  string
	chapters []Chapter
}

// Open reads the container, package document and spine of an EPUB. A book
// without a usable package document falls back to its XHTML entries in
// archive order.
func Open(content []byte) (*Book, error) {
	a, err := ooxml.Open(content)
	if err != nil {
		return nil, docerr.Wrap(docerr.Archive, "Failed to open EPUB", err)
	}
	if err := checkForDRM(a); err != nil {
		return nil, docerr.Wrap(docerr.Archive, "EPUB cannot be read", err)
	}

	b := &Book{archive: a}
	pkgErr := b.readPackage()
	if pkgErr == nil {
		b.loadSpine()
	}
	if len(b.chapters) == 0 {
		b.loadEntries()
	}
	if len(b.chapters) == 0 {
		if pkgErr == nil {
			pkgErr = ErrEmptySpine
		}
		return nil, docerr.Wrap(docerr.Archive, "No content documents in EPUB", pkgErr)
	}
	return b, nil
}

func (b *Book) readPackage() error {
	opfPath, err := parseContainer(b.archive)
	if err != nil {
		return err
	}
	pkg, baseDir, err := parseOPF(b.archive, opfPath)
	if err != nil {
		return err
	}
	b.pkg = pkg
	b.baseDir = baseDir
	return nil
}

// loadSpine reads each spine item that exists in the manifest and the
// archive. Missing items are skipped.
func (b *Book) loadSpine() {
	for _, item := range b.pkg.Spine {
		mi, ok := b.pkg.Manifest[item.IDRef]
		if !ok {
			continue
		}
		href := b.resolveHref(mi.Href)
		data, err := b.archive.Read(href)
		if err != nil {
			continue
		}
		b.chapters = append(b.chapters, Chapter{ID: mi.ID, Href: href, Content: data})
	}
}

func (b *Book) loadEntries() {
	for _, name := range b.archive.Names() {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".xhtml") && !strings.HasSuffix(lower, ".html") && !strings.HasSuffix(lower, ".htm") {
			continue
		}
		data, err := b.archive.Read(name)
		if err != nil {
			continue
		}
		b.chapters = append(b.chapters, Chapter{ID: name, Href: name, Content: data})
	}
}

// resolveHref resolves a manifest href against the package directory,
// dropping any fragment.
func (b *Book) resolveHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if b.baseDir == "" {
		return path.Clean(href)
	}
	return path.Join(b.baseDir, href)
}

// Chapters returns the content documents in reading order.
func (b *Book) Chapters() []Chapter {
	return b.chapters
}

// Metadata returns the Dublin Core metadata. It is empty when the book was
// read without a package document.
func (b *Book) Metadata() Metadata {
	if b.pkg == nil {
		return Metadata{}
	}
	return b.pkg.Metadata
}

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// EPUB.
type Extractor struct {
	html *htmldoc.Extractor
}

// New returns an EPUB extractor that renders chapters with html.
func New(html *htmldoc.Extractor) *Extractor {
	if html == nil {
		html = htmldoc.New()
	}
	return &Extractor{html: html}
}

// Extract renders each non-empty chapter under a "=== Chapter N ===" header,
// numbering only chapters that produced text. opts.MaxPages caps the
// number of chapters rendered.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	book, err := Open(content)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	n := 0
	for _, ch := range book.Chapters() {
		if opts.MaxPages > 0 && n >= opts.MaxPages {
			break
		}
		text, err := e.html.Extract(ch.Content, opts)
		if errors.Is(err, docerr.ErrNoText) {
			continue
		}
		if err != nil {
			return "", docerr.Wrap(docerr.Archive, "Failed to read chapter "+ch.Href, err)
		}
		n++
		fmt.Fprintf(&sb, "\n=== Chapter %d ===\n%s\n", n, text)
	}

	text := strings.Trim(sb.String(), "\n")
	if text == "" {
		return "", docerr.NoText(docerr.Archive, "No text found in EPUB")
	}
	return text, nil
}

// Markdown converts each chapter to Markdown, separated by horizontal rules.
func (e *Extractor) Markdown(content []byte) (string, error) {
	book, err := Open(content)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, ch := range book.Chapters() {
		md, err := e.html.Markdown(ch.Content)
		if errors.Is(err, docerr.ErrNoText) {
			continue
		}
		if err != nil {
			return "", docerr.Wrap(docerr.Archive, "Failed to read chapter "+ch.Href, err)
		}
		parts = append(parts, md)
	}
	if len(parts) == 0 {
		return "", docerr.NoText(docerr.Archive, "No text found in EPUB")
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}

// Metadata reports the package metadata, the chapter count and the number
// of table of contents entries.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	book, err := Open(content)
	if err != nil {
		return nil, err
	}

	m := book.Metadata()
	meta := make(map[string]string)
	for key, val := range map[string]string{
		"title":       m.Title,
		"creator":     strings.Join(m.Creator, ", "),
		"language":    m.Language,
		"identifier":  m.Identifier,
		"publisher":   m.Publisher,
		"date":        m.Date,
		"description": m.Description,
		"subjects":    strings.Join(m.Subjects, ", "),
		"rights":      m.Rights,
	} {
		if val != "" {
			meta[key] = val
		}
	}
	if !m.Modified.IsZero() {
		meta["modified"] = m.Modified.Format(time.RFC3339)
	}
	if book.pkg != nil && book.pkg.Version != "" {
		meta["epub_version"] = book.pkg.Version
	}
	meta["chapter_count"] = strconv.Itoa(len(book.chapters))
	meta["toc_entries"] = strconv.Itoa(countEntries(book.TableOfContents()))
	return meta, nil
}
