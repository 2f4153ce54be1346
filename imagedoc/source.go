// Package imagedoc turns raster images into markup events: dimensions as
// metadata and, when enabled, recognized text as a paragraph.
package imagedoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/ocr"
)

// Recognizer extracts text from encoded image data.
type Recognizer func(data []byte, langs []string) (string, error)

// Source decodes images.
type Source struct {
	// OCR enables text recognition.
	OCR          bool
	OCRLanguages []string
	// Recognize overrides the recognizer; nil means ocr.Recognize.
	Recognize Recognizer
	Logger    *slog.Logger
}

// Parse emits an img element carrying the image size, the size as
// metadata, and recognized text when OCR is enabled. A recognition failure
// is logged and leaves the text empty.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image header: %w", err)
	}

	width, height := strconv.Itoa(cfg.Width), strconv.Itoa(cfg.Height)
	h.Metadata("tiff:ImageWidth", width)
	h.Metadata("tiff:ImageLength", height)
	h.Metadata("image:format", name)

	h.OpenTag("img", []event.Attr{{Name: "width", Value: width}, {Name: "height", Value: height}})
	h.CloseTag("img")

	if !s.OCR {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	recognize := s.Recognize
	if recognize == nil {
		recognize = ocr.Recognize
	}
	text, err := recognize(data, s.OCRLanguages)
	if err != nil {
		logging.Or(s.Logger).Warn("image text recognition failed", "error", err)
		return nil
	}
	if text != "" {
		h.OpenTag("p", nil)
		h.Characters(text)
		h.CloseTag("p")
	}
	return nil
}
