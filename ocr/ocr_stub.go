//go:build !ocr

// Package ocr recognizes text in page images with the Tesseract engine.
//
// This is the stub used when the "ocr" build tag is not set: New fails with
// ErrOCRNotEnabled, so every OCR request fails closed with a typed error.
// To enable OCR, install Tesseract and rebuild:
//
//	go build -tags ocr
package ocr

// Client is a stub that fails every operation.
type Client struct{}

// New always fails with ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage fails with ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage fails with ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// Enabled reports whether OCR support is compiled in.
func Enabled() bool {
	return false
}
