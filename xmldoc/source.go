// Package xmldoc turns generic XML documents into markup events.
//
// Every element becomes a span named by its local name, with its
// attributes minus namespace declarations. Character data and CDATA are
// emitted as text; comments, processing instructions and directives are
// dropped. Whitespace-only runs between elements collapse to a single
// newline when they contain one.
package xmldoc

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes XML.
type Source struct {
	Logger *slog.Logger
}

type walker struct {
	h        event.Handler
	log      *slog.Logger
	elements int
	wrote    bool
	lastByte byte
}

// Parse streams r and emits its elements and text to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	w := &walker{h: h, log: logging.Or(s.Logger)}
	for n := 0; ; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := dec.Token()
		if err == io.EOF {
			w.log.Debug("parsed XML", "elements", w.elements)
			return nil
		}
		if err != nil {
			return fmt.Errorf("parsing XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			h.CloseTag(t.Name.Local)
		case xml.CharData:
			w.text(string(t))
		}
	}
}

func (w *walker) start(t xml.StartElement) {
	attrs := make([]event.Attr, 0, len(t.Attr))
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		attrs = append(attrs, event.Attr{Name: a.Name.Local, Value: a.Value})
	}
	w.elements++
	w.h.OpenTag(t.Name.Local, attrs)
}

func (w *walker) text(s string) {
	if s == "" {
		return
	}
	if strings.TrimSpace(s) == "" {
		if !strings.Contains(s, "\n") {
			w.emit(s)
			return
		}
		if w.wrote && w.lastByte != '\n' {
			w.emit("\n")
		}
		return
	}
	w.emit(s)
}

func (w *walker) emit(s string) {
	w.h.Characters(s)
	w.wrote = true
	w.lastByte = s[len(s)-1]
}
