package ocr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/docproc/docerr"
)

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// tesseractLanguages maps ISO 639-1 codes to Tesseract language packs.
var tesseractLanguages = map[string]string{
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"zh": "chi_sim",
	"ja": "jpn",
	"ko": "kor",
	"ru": "rus",
	"ar": "ara",
}

// TesseractLanguage converts a language hint to a Tesseract language pack
// name. Unknown hints are passed through unchanged; an empty hint selects
// English.
func TesseractLanguage(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return "eng"
	}
	if lang, ok := tesseractLanguages[hint]; ok {
		return lang
	}
	return hint
}

// Text recognizes each image in order and joins the page texts with blank
// lines. Images that cannot be decoded are skipped. It fails with an Ocr
// error wrapping ErrNoText when nothing is recognized, and with an Ocr error
// when OCR support is not compiled in.
func Text(images [][]byte, language string) (string, error) {
	c, err := New()
	if err != nil {
		return "", docerr.Wrap(docerr.Ocr, "OCR unavailable", err)
	}
	defer c.Close()

	if err := c.SetLanguage(TesseractLanguage(language)); err != nil {
		return "", docerr.Wrap(docerr.Ocr, "Failed to set OCR language", err)
	}

	var pages []string
	for i, data := range images {
		prepared, err := Preprocess(data)
		if err != nil {
			continue
		}
		text, err := c.RecognizeImage(prepared)
		if err != nil {
			return "", docerr.Wrap(docerr.Ocr, fmt.Sprintf("Failed to recognize image %d", i+1), err)
		}
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", docerr.NoText(docerr.Ocr, "OCR found no text")
	}
	return strings.Join(pages, "\n\n"), nil
}

