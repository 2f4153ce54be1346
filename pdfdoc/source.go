// Package pdfdoc turns PDF documents into markup events, one page division
// per page.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes PDF documents.
type Source struct {
	Logger *slog.Logger
}

// infoKeys maps document information dictionary entries to metadata keys.
var infoKeys = []struct{ entry, key string }{
	{"Title", "dc:title"},
	{"Author", "dc:creator"},
	{"Subject", "dc:subject"},
	{"Keywords", "meta:keyword"},
	{"Creator", "xmp:CreatorTool"},
	{"Producer", "pdf:Producer"},
	{"CreationDate", "dcterms:created"},
	{"ModDate", "dcterms:modified"},
}

// Parse emits one <div class="page"> per page, holding the page text in a
// single paragraph. Panics inside the PDF library become errors.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf decoder panic: %v", p)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading PDF: %w", err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening PDF: %w", err)
	}

	pages := reader.NumPage()
	h.Metadata("xmpTPg:NPages", strconv.Itoa(pages))
	info := reader.Trailer().Key("Info")
	for _, k := range infoKeys {
		if v := info.Key(k.entry).Text(); v != "" {
			h.Metadata(k.key, v)
		}
	}

	log := logging.Or(s.Logger)
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := reader.Page(i)

		h.OpenTag("div", []event.Attr{{Name: "class", Value: "page"}})
		h.OpenTag("p", nil)
		if !page.V.IsNull() {
			for _, name := range page.Fonts() {
				if _, ok := fonts[name]; !ok {
					f := page.Font(name)
					fonts[name] = &f
				}
			}
			text, err := page.GetPlainText(fonts)
			if err != nil {
				log.Warn("pdf page text unreadable", "page", i, "error", err)
			} else {
				h.Characters(text)
			}
		}
		h.CloseTag("p")
		h.CloseTag("div")
		h.Characters("\n")
	}
	return nil
}
