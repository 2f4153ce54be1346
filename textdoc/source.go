// Package textdoc turns plain text into markup events.
package textdoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes plain text. The charset comes from a byte order mark, the
// hint's MIME charset parameter, or is guessed (UTF-8, else windows-1252).
type Source struct {
	Logger *slog.Logger
}

// Parse emits the decoded text as a single paragraph. Empty input emits no
// elements.
func (s Source) Parse(ctx context.Context, r io.Reader, hint event.Hint, h event.Handler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := hint.MIME
	if contentType == "" {
		contentType = "text/plain"
	}
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(data) {
		enc, name = encoding.Nop, "utf-8"
	}
	logging.Or(s.Logger).Debug("text encoding", "charset", name, "certain", certain)

	decoded, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return fmt.Errorf("decoding %s text: %w", name, err)
	}
	h.Metadata("Content-Encoding", name)

	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	if text == "" {
		return nil
	}
	h.OpenTag("p", nil)
	h.Characters(text)
	h.CloseTag("p")
	return nil
}
