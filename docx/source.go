// Package docx turns Office Open XML word-processing documents into markup
// events.
//
// word/document.xml is streamed with an XML token decoder. Paragraphs become
// p, li or h1..h6 spans (headings are resolved through styles.xml), bold,
// italic and underlined runs become b, i and u spans, hyperlinks become a
// spans with an href, and tables become table/tr/td. Core and extended
// document properties are emitted as metadata before the body.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/internal/xmlmeta"
)

// Source decodes DOCX documents.
type Source struct {
	Logger *slog.Logger
}

// Parse reads the whole archive from r and emits its content to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	log := logging.Or(s.Logger)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading DOCX: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening ZIP archive: %w", err)
	}

	body := findFile(zr, "word/document.xml")
	if body == nil {
		return fmt.Errorf("missing required file: word/document.xml")
	}

	emitProps(zr, "docProps/core.xml", xmlmeta.CoreProperties, h, log)
	emitProps(zr, "docProps/app.xml", xmlmeta.AppProperties, h, log)

	var styles stylesXML
	if err := unmarshalFile(zr, "word/styles.xml", &styles); err != nil {
		log.Debug("docx styles unavailable", "error", err)
	}
	var rels relationshipsXML
	if err := unmarshalFile(zr, "word/_rels/document.xml.rels", &rels); err != nil {
		log.Debug("docx relationships unavailable", "error", err)
	}

	rc, err := body.Open()
	if err != nil {
		return fmt.Errorf("opening word/document.xml: %w", err)
	}
	defer rc.Close()

	w := &walker{
		h:      h,
		styles: newStyleSheet(&styles),
		links:  make(map[string]string),
	}
	for _, rel := range rels.Relationships {
		w.links[rel.ID] = rel.Target
	}
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

func unmarshalFile(zr *zip.Reader, name string, v any) error {
	f := findFile(zr, name)
	if f == nil {
		return fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func emitProps(zr *zip.Reader, name string, fields []xmlmeta.Field, h event.Handler, log *slog.Logger) {
	f := findFile(zr, name)
	if f == nil {
		return
	}
	rc, err := f.Open()
	if err != nil {
		log.Debug("docx properties unavailable", "part", name, "error", err)
		return
	}
	defer rc.Close()
	if err := xmlmeta.Emit(rc, fields, h.Metadata); err != nil {
		log.Debug("docx properties unreadable", "part", name, "error", err)
	}
}

type paraState struct {
	style  string
	list   bool
	name   string
	opened bool
}

type runState struct {
	flags  runFlags
	style  string
	opened []string
	begun  bool
}

// walker translates the document.xml token stream into events.
type walker struct {
	h      event.Handler
	styles *styleSheet
	links  map[string]string

	paras  []*paraState
	runs   []*runState
	inPPr  bool
	inRPr  bool
	inText bool
	skip   int
}

// skipped elements carry no content, or duplicate content found elsewhere.
var skipped = map[string]bool{
	"sectPr": true, "tblPr": true, "tblGrid": true, "trPr": true, "tcPr": true,
	"del": true, "delText": true, "instrText": true, "Fallback": true,
	"footnoteReference": true, "endnoteReference": true, "commentReference": true,
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
			return fmt.Errorf("parsing word/document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.inText && w.skip == 0 {
				w.run().begin(w)
				w.h.Characters(string(t))
			}
		}
	}
}

func (w *walker) para() *paraState {
	if len(w.paras) == 0 {
		return nil
	}
	return w.paras[len(w.paras)-1]
}

func (w *walker) run() *runState {
	if len(w.runs) == 0 {
		// Content outside a run, e.g. a bare w:t; treat as an unformatted run.
		w.runs = append(w.runs, &runState{})
	}
	return w.runs[len(w.runs)-1]
}

func (w *walker) start(t xml.StartElement) {
	name := t.Name.Local
	if w.skip > 0 {
		w.skip++
		return
	}
	if skipped[name] {
		w.skip = 1
		return
	}

	if w.inPPr {
		p := w.para()
		switch name {
		case "pStyle":
			if p != nil {
				p.style = attr(t, "val")
			}
		case "numPr":
			if p != nil {
				p.list = true
			}
		}
		return
	}
	if w.inRPr {
		r := w.run()
		switch name {
		case "b":
			r.flags.bold = set(boolVal(attr(t, "val")))
		case "i":
			r.flags.italic = set(boolVal(attr(t, "val")))
		case "u":
			v := attr(t, "val")
			r.flags.underline = set(v != "none" && boolVal(v))
		case "rStyle":
			r.style = attr(t, "val")
		}
		return
	}

	switch name {
	case "p":
		w.paras = append(w.paras, &paraState{})
	case "pPr":
		w.inPPr = true
	case "r":
		w.openPara()
		w.runs = append(w.runs, &runState{})
	case "rPr":
		if len(w.runs) > 0 {
			w.inRPr = true
		}
	case "t":
		w.inText = true
	case "tab", "ptab":
		w.openPara()
		w.run().begin(w)
		w.h.Characters("\t")
	case "br", "cr":
		w.openPara()
		w.run().begin(w)
		w.h.Characters("\n")
	case "noBreakHyphen":
		w.openPara()
		w.run().begin(w)
		w.h.Characters("-")
	case "hyperlink":
		w.openPara()
		var attrs []event.Attr
		if href, ok := w.links[attr(t, "id")]; ok {
			attrs = append(attrs, event.Attr{Name: "href", Value: href})
		} else if anchor := attr(t, "anchor"); anchor != "" {
			attrs = append(attrs, event.Attr{Name: "href", Value: "#" + anchor})
		}
		w.h.OpenTag("a", attrs)
	case "tbl":
		w.h.OpenTag("table", nil)
	case "tr":
		w.h.OpenTag("tr", nil)
	case "tc":
		w.h.OpenTag("td", nil)
	}
}

func (w *walker) end(name string) {
	if w.skip > 0 {
		w.skip--
		return
	}
	switch name {
	case "pPr":
		w.inPPr = false
	case "rPr":
		w.inRPr = false
	case "t":
		w.inText = false
	case "r":
		if len(w.runs) > 0 {
			r := w.runs[len(w.runs)-1]
			w.runs = w.runs[:len(w.runs)-1]
			for i := len(r.opened) - 1; i >= 0; i-- {
				w.h.CloseTag(r.opened[i])
			}
		}
	case "hyperlink":
		w.h.CloseTag("a")
	case "p":
		if p := w.para(); p != nil {
			w.openPara()
			w.paras = w.paras[:len(w.paras)-1]
			w.h.CloseTag(p.name)
			w.h.Characters("\n")
		}
	case "tbl":
		w.h.CloseTag("table")
		w.h.Characters("\n")
	case "tr":
		w.h.CloseTag("tr")
	case "tc":
		w.h.CloseTag("td")
		w.h.Characters("\t")
	}
}

// openPara emits the OpenTag of the innermost paragraph once its
// properties are known.
func (w *walker) openPara() {
	p := w.para()
	if p == nil || p.opened {
		return
	}
	p.opened = true
	switch level := w.styles.headingLevel(p.style); {
	case level > 0:
		if level > 6 {
			level = 6
		}
		p.name = "h" + strconv.Itoa(level)
	case p.list:
		p.name = "li"
	default:
		p.name = "p"
	}
	var attrs []event.Attr
	if p.style != "" {
		attrs = []event.Attr{{Name: "class", Value: p.style}}
	}
	w.h.OpenTag(p.name, attrs)
}

// begin opens the formatting spans of a run before its first content.
func (r *runState) begin(w *walker) {
	if r.begun {
		return
	}
	r.begun = true
	w.openPara()
	f := r.flags.inherit(w.styles.runFormat(r.style))
	if f.bold == on {
		r.opened = append(r.opened, "b")
	}
	if f.italic == on {
		r.opened = append(r.opened, "i")
	}
	if f.underline == on {
		r.opened = append(r.opened, "u")
	}
	for _, name := range r.opened {
		w.h.OpenTag(name, nil)
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
