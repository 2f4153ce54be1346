// Package convdoc decodes formats without a native decoder through docconv.
//
// docconv flattens the document, so the result carries only paragraph
// structure recovered from blank lines, plus whatever metadata docconv
// reports. Several docconv converters shell out to external tools (wv,
// unrtf); when those are missing the conversion fails.
package convdoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"code.sajari.com/docconv"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes through docconv.
type Source struct {
	// MIME is passed to docconv when the hint carries none.
	MIME string
	// Readability enables docconv's main-content extraction for HTML.
	Readability bool
	Logger      *slog.Logger
}

// Parse converts the input and emits one p per blank-line separated block.
func (s Source) Parse(ctx context.Context, r io.Reader, hint event.Hint, h event.Handler) error {
	mimeType := hint.MIME
	if mimeType == "" {
		mimeType = s.MIME
	}
	if mimeType == "" {
		mimeType = docconv.MimeTypeByExtension(hint.Name)
	}

	res, err := docconv.Convert(r, mimeType, s.Readability)
	if err != nil {
		return fmt.Errorf("docconv %s: %w", mimeType, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logging.Or(s.Logger).Debug("docconv conversion", "mime", mimeType, "msecs", res.MSecs)

	keys := make([]string, 0, len(res.Meta))
	for k := range res.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(res.Meta[k]); v != "" {
			h.Metadata(k, v)
		}
	}

	for _, block := range Paragraphs(res.Body) {
		h.OpenTag("p", nil)
		h.Characters(block)
		h.CloseTag("p")
		h.Characters("\n")
	}
	return nil
}

// Paragraphs splits flattened text into non-empty blocks separated by blank
// lines. Line breaks inside a block are kept.
func Paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		if block = strings.Trim(block, "\n"); strings.TrimSpace(block) != "" {
			out = append(out, block)
		}
	}
	return out
}
