//go:build ocr

// Package ocr recognizes text in raster images for the image source.
//
// This package wraps the Tesseract OCR engine via gosseract and is only
// compiled with the "ocr" build tag. It requires Tesseract to be installed:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether OCR support was compiled in.
const Enabled = true

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources. It is safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// SetLanguages sets the Tesseract languages, e.g. "eng", "deu".
func (c *Client) SetLanguages(langs ...string) error {
	if len(langs) == 0 {
		return nil
	}
	return c.client.SetLanguage(langs...)
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG, ...).
// Returns the recognized text with leading/trailing whitespace trimmed.
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

// Recognize runs a one-off recognition of imageData in the given languages.
func Recognize(imageData []byte, langs []string) (string, error) {
	c, err := New()
	if err != nil {
		return "", err
	}
	defer c.Close()
	if err := c.SetLanguages(langs...); err != nil {
		return "", fmt.Errorf("setting OCR languages: %w", err)
	}
	return c.RecognizeImage(imageData)
}
