// Package pdfdoc extracts text and metadata from PDF documents.
//
// Text comes from github.com/ledongthuc/pdf, page by page, with each page
// isolated so a malformed page cannot abort the document. Document
// information and page images come from pdfcpu.
package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// wordsPerPage is used to estimate page counts from extracted text.
const wordsPerPage = 500

var disableConfigDir sync.Once

// Extractor implements extract.Extractor and extract.MetadataExtractor for PDF.
type Extractor struct{}

// New returns a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document text. Empty output fails with an error that
// matches docerr.ErrNoText so the caller can fall back to OCR.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	raw, err := PlainText(content, opts.MaxPages)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", docerr.NoText(docerr.Pdf, "No text found in PDF. Consider enabling OCR.")
	}

	text := RemovePageArtifacts(trimLines(raw))
	if opts.PreserveFormatting {
		text = InsertParagraphBreaks(text)
	}
	return text, nil
}

// PlainText returns the raw text of up to maxPages pages (all when maxPages
// is zero). Pages that fail to decode are skipped.
func PlainText(content []byte, maxPages int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", docerr.Wrap(docerr.Pdf, "Failed to extract text", err)
	}

	pages, err := numPages(r)
	if err != nil {
		return "", err
	}
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		text := pageText(r, i)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// numPages reads the page count; the library panics on some malformed trees.
func numPages(r *pdf.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = docerr.Newf(docerr.CorruptedDocument, "reading PDF page tree: %v", rec)
		}
	}()
	return r.NumPage(), nil
}

func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()

	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// Metadata reports document information from pdfcpu plus text statistics.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	ctx, err := readContext(content)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		"page_count": strconv.Itoa(ctx.PageCount),
		"has_images": strconv.FormatBool(hasImages(ctx)),
	}
	for key, val := range map[string]string{
		"title":         ctx.Title,
		"author":        ctx.Author,
		"subject":       ctx.Subject,
		"keywords":      ctx.Keywords,
		"creator":       ctx.Creator,
		"producer":      ctx.Producer,
		"creation_date": ctx.CreationDate,
		"mod_date":      ctx.ModDate,
	} {
		if val = strings.TrimSpace(val); val != "" {
			meta[key] = val
		}
	}

	if text, err := PlainText(content, 0); err == nil {
		words := len(strings.Fields(text))
		meta["estimated_pages"] = strconv.Itoa(EstimatePages(words))
		meta["character_count"] = strconv.Itoa(len(text))
		meta["word_count"] = strconv.Itoa(words)
	}

	return meta, nil
}

// EstimatePages estimates a page count from a word count.
func EstimatePages(words int) int {
	if n := words / wordsPerPage; n > 1 {
		return n
	}
	return 1
}

// PageImages returns the raw bytes of images on up to maxPages pages, in
// page order. Scanned documents usually carry one image per page.
func PageImages(content []byte, maxPages int) ([][]byte, error) {
	ctx, err := readContext(content)
	if err != nil {
		return nil, err
	}

	pages := ctx.PageCount
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var out [][]byte
	for i := 1; i <= pages; i++ {
		imgs, err := pdfcpu.ExtractPageImages(ctx, i, false)
		if err != nil {
			return nil, docerr.Wrap(docerr.Pdf, fmt.Sprintf("extracting images from page %d", i), err)
		}

		objNrs := make([]int, 0, len(imgs))
		for nr := range imgs {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			data, err := io.ReadAll(imgs[nr])
			if err != nil {
				return nil, docerr.Wrap(docerr.Io, "reading page image", err)
			}
			out = append(out, data)
		}
	}
	return out, nil
}

func readContext(content []byte) (*model.Context, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return nil, docerr.Wrap(docerr.Pdf, "pdfcpu read", err)
	}
	return ctx, nil
}

func hasImages(ctx *model.Context) bool {
	for i := 1; i <= ctx.PageCount; i++ {
		if len(pdfcpu.ImageObjNrs(ctx, i)) > 0 {
			return true
		}
	}
	return false
}
