// Package odt turns OpenDocument Text documents into markup events.
//
// content.xml is streamed with an XML token decoder: text:h becomes hN by
// outline level, text:p becomes p, text:span becomes b, i or u according
// to its resolved style, text:a becomes a, lists become ul/li and tables
// become table/tr/td. meta.xml properties are emitted before the body.
package odt

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/internal/xmlmeta"
)

// Source decodes ODT documents.
type Source struct {
	Logger *slog.Logger
}

var metaFields = []xmlmeta.Field{
	xmlmeta.Local("dc:title", "title"),
	xmlmeta.Local("dc:creator", "creator"),
	xmlmeta.Local("dc:subject", "subject"),
	xmlmeta.Local("dc:description", "description"),
	xmlmeta.Local("dc:language", "language"),
	xmlmeta.Local("meta:keyword", "keyword"),
	xmlmeta.Local("meta:initial-author", "initial-creator"),
	xmlmeta.Local("dcterms:created", "creation-date"),
	xmlmeta.Local("dcterms:modified", "date"),
	xmlmeta.Local("generator", "generator"),
	{Key: "meta:page-count", Expr: xpath.MustCompile("//*[local-name()='document-statistic']/@*[local-name()='page-count']")},
	{Key: "meta:word-count", Expr: xpath.MustCompile("//*[local-name()='document-statistic']/@*[local-name()='word-count']")},
}

// Parse reads the whole archive from r and emits its content to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	log := logging.Or(s.Logger)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading ODT: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening ZIP archive: %w", err)
	}

	content := findFile(zr, "content.xml")
	if content == nil {
		return fmt.Errorf("missing required file: content.xml")
	}

	if f := findFile(zr, "meta.xml"); f != nil {
		if rc, err := f.Open(); err == nil {
			if err := xmlmeta.Emit(rc, metaFields, h.Metadata); err != nil {
				log.Debug("odt meta.xml unreadable", "error", err)
			}
			rc.Close()
		}
	}

	styles := newStyleSheet()
	if f := findFile(zr, "styles.xml"); f != nil {
		var sx stylesXML
		if err := decodeFile(f, &sx); err != nil {
			log.Debug("odt styles unavailable", "error", err)
		} else {
			styles.addAll(sx.Styles)
			styles.addAll(sx.AutoStyles)
		}
	}

	rc, err := content.Open()
	if err != nil {
		return fmt.Errorf("opening content.xml: %w", err)
	}
	defer rc.Close()

	w := &walker{h: h, styles: styles}
	return w.walk(ctx, xml.NewDecoder(rc))
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func decodeFile(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// walker translates the content.xml token stream into events.
type walker struct {
	h      event.Handler
	styles *styleSheet

	// closers holds, per open element, the end tags to emit when it ends.
	closers [][]string
	inBody  bool
	para    int
	skip    int

	// automatic style being read from content.xml
	styleName   string
	styleParent string
	inAutoStyle bool
}

// skipped elements carry no body text.
var skipped = map[string]bool{
	"annotation": true, "tracked-changes": true, "note-citation": true,
	"sequence-decls": true, "variable-decls": true, "user-field-decls": true,
	"table-columns": true, "table-column": true, "covered-table-cell": true,
}

func (w *walker) walk(ctx context.Context, dec *xml.Decoder) error {
	for n := 0; ; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parsing content.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.para > 0 && w.skip == 0 {
				w.h.Characters(string(t))
			}
		}
	}
}

func (w *walker) start(t xml.StartElement) {
	name := t.Name.Local

	if !w.inBody {
		w.readStyle(t)
		if name == "body" {
			w.inBody = true
		}
		return
	}
	if w.skip > 0 {
		w.skip++
		return
	}
	if skipped[name] {
		w.skip = 1
		return
	}

	var open []string
	var attrs []event.Attr
	switch name {
	case "h":
		level := 1
		if v, err := strconv.Atoi(attr(t, "outline-level")); err == nil && v > 0 {
			level = min(v, 6)
		}
		open = []string{"h" + strconv.Itoa(level)}
		w.para++
	case "p":
		open = []string{"p"}
		w.para++
	case "span":
		f := w.styles.resolve(attr(t, "style-name"))
		if f.bold == on {
			open = append(open, "b")
		}
		if f.italic == on {
			open = append(open, "i")
		}
		if f.underline == on {
			open = append(open, "u")
		}
	case "a":
		open = []string{"a"}
		if href := attr(t, "href"); href != "" {
			attrs = []event.Attr{{Name: "href", Value: href}}
		}
	case "list":
		open = []string{"ul"}
	case "list-item":
		open = []string{"li"}
	case "table":
		open = []string{"table"}
	case "table-row":
		open = []string{"tr"}
	case "table-cell":
		open = []string{"td"}
	case "s":
		if w.para > 0 {
			n := 1
			if c, err := strconv.Atoi(attr(t, "c")); err == nil && c > 0 {
				n = c
			}
			w.h.Characters(strings.Repeat(" ", n))
		}
	case "tab":
		if w.para > 0 {
			w.h.Characters("\t")
		}
	case "line-break":
		if w.para > 0 {
			w.h.Characters("\n")
		}
	}

	for i, tag := range open {
		if i == 0 {
			w.h.OpenTag(tag, attrs)
		} else {
			w.h.OpenTag(tag, nil)
		}
	}
	w.closers = append(w.closers, open)
}

func (w *walker) end(name string) {
	if !w.inBody {
		w.endStyle(name)
		return
	}
	if w.skip > 0 {
		w.skip--
		return
	}
	if name == "body" {
		w.inBody = false
		return
	}
	if len(w.closers) == 0 {
		return
	}
	open := w.closers[len(w.closers)-1]
	w.closers = w.closers[:len(w.closers)-1]
	for i := len(open) - 1; i >= 0; i-- {
		w.h.CloseTag(open[i])
	}

	switch name {
	case "h", "p":
		w.para--
		w.h.Characters("\n")
	case "table-cell":
		w.h.Characters("\t")
	case "table":
		w.h.Characters("\n")
	}
}

// readStyle records automatic styles declared ahead of the body.
func (w *walker) readStyle(t xml.StartElement) {
	switch t.Name.Local {
	case "automatic-styles":
		w.inAutoStyle = true
	case "style":
		if w.inAutoStyle {
			w.styleName = attr(t, "name")
			w.styleParent = attr(t, "parent-style-name")
			w.styles.byName[w.styleName] = textStyle{parent: w.styleParent}
		}
	case "text-properties":
		if w.inAutoStyle && w.styleName != "" {
			st := w.styles.byName[w.styleName]
			st.flags = flagsOf(attr(t, "font-weight"), attr(t, "font-style"), attr(t, "text-underline-style"))
			w.styles.byName[w.styleName] = st
		}
	}
}

func (w *walker) endStyle(name string) {
	switch name {
	case "automatic-styles":
		w.inAutoStyle = false
	case "style":
		w.styleName, w.styleParent = "", ""
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
