//go:build ocr

// Package ocr recognizes text in page images with the Tesseract engine.
//
// This is the gosseract-backed implementation selected by the "ocr" build
// tag. It requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract instance. It is not safe for concurrent use.
type Client struct {
	client *gosseract.Client
}

// New creates a Tesseract client. Close it when done.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases Tesseract resources. It is safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// RecognizeImage returns the trimmed text Tesseract finds in an encoded
// image.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage selects Tesseract language packs, "+" separated, for example
// "eng+fra".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// Enabled reports whether OCR support is compiled in.
func Enabled() bool {
	return true
}
