package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/internal/xmlmeta"
)

// Source decodes PPTX presentations.
type Source struct {
	// SkipNotes drops speaker notes.
	SkipNotes bool
	// SkipHidden drops slides marked hidden.
	SkipHidden bool
	// Footers keeps footer, date and slide number placeholders.
	Footers bool
	Logger  *slog.Logger
}

// Parse reads the whole archive from r and emits every slide to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	log := logging.Or(s.Logger)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading PPTX: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening ZIP archive: %w", err)
	}
	if findFile(zr, "ppt/presentation.xml") == nil {
		return fmt.Errorf("missing required file: ppt/presentation.xml")
	}

	emitProps(zr, "docProps/core.xml", xmlmeta.CoreProperties, h, log)
	emitProps(zr, "docProps/app.xml", xmlmeta.AppProperties, h, log)

	slides := slideOrder(zr, log)
	log.Debug("pptx slides", "count", len(slides))

	e := &emitter{h: h, footers: s.Footers}
	for i, name := range slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		var sld slideXML
		if err := unmarshalFile(zr, name, &sld); err != nil {
			log.Warn("skipping unreadable slide", "part", name, "error", err)
			continue
		}
		hidden := sld.Show == "0"
		if hidden && s.SkipHidden {
			continue
		}

		class := "slide"
		if hidden {
			class += " hidden"
		}
		h.OpenTag("div", []event.Attr{{Name: "class", Value: class}, {Name: "data-slide", Value: strconv.Itoa(i + 1)}})
		e.tree(&sld.CSld.SpTree)
		h.CloseTag("div")

		if s.SkipNotes {
			continue
		}
		if notes := notesFor(zr, name, log); notes != nil && hasText(&notes.CSld.SpTree) {
			h.OpenTag("div", []event.Attr{{Name: "class", Value: "slide-notes"}})
			e.notes = true
			e.tree(&notes.CSld.SpTree)
			e.notes = false
			h.CloseTag("div")
		}
	}
	return nil
}

// slideOrder lists slide parts in presentation order, falling back to the
// numeric order of ppt/slides/slideN.xml.
func slideOrder(zr *zip.Reader, log *slog.Logger) []string {
	var pres presentationXML
	var rels relationshipsXML
	if err := unmarshalFile(zr, "ppt/presentation.xml", &pres); err != nil {
		log.Debug("pptx presentation unreadable", "error", err)
	}
	if err := unmarshalFile(zr, "ppt/_rels/presentation.xml.rels", &rels); err != nil {
		log.Debug("pptx relationships unavailable", "error", err)
	}
	targets := make(map[string]string, len(rels.Relationship))
	for _, rel := range rels.Relationship {
		targets[rel.ID] = rel.Target
	}

	var out []string
	if pres.SlideIDList != nil {
		for _, id := range pres.SlideIDList.SlideID {
			if t, ok := targets[id.RID]; ok {
				if name := resolve("ppt/presentation.xml", t); findFile(zr, name) != nil {
					out = append(out, name)
				}
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			out = append(out, f.Name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return slideNumber(out[i]) < slideNumber(out[j])
	})
	return out
}

// slideNumber extracts N from a path like "ppt/slides/slideN.xml".
func slideNumber(name string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml"))
	return n
}

func notesFor(zr *zip.Reader, slide string, log *slog.Logger) *notesSlideXML {
	var rels relationshipsXML
	relsName := path.Join(path.Dir(slide), "_rels", path.Base(slide)+".rels")
	if err := unmarshalFile(zr, relsName, &rels); err != nil {
		return nil
	}
	for _, rel := range rels.Relationship {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		var notes notesSlideXML
		name := resolve(slide, rel.Target)
		if err := unmarshalFile(zr, name, &notes); err != nil {
			log.Debug("pptx notes unreadable", "part", name, "error", err)
			return nil
		}
		return &notes
	}
	return nil
}

// resolve turns a relationship target into an archive path relative to the
// part that declared it.
func resolve(from, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(from), target)
}

func isFooterPlaceholder(ph string) bool {
	switch ph {
	case "ftr", "dt", "sldNum":
		return true
	}
	return false
}

func hasText(t *spTreeXML) bool {
	for _, sp := range t.Sp {
		if sp.TxBody == nil || placeholder(&sp) == "sldImg" {
			continue
		}
		for _, p := range sp.TxBody.P {
			if strings.TrimSpace(p.text()) != "" {
				return true
			}
		}
	}
	for i := range t.GrpSp {
		if hasText(&t.GrpSp[i]) {
			return true
		}
	}
	return false
}

func placeholder(sp *spXML) string {
	if sp.NvSpPr.NvPr.Ph == nil {
		return ""
	}
	return sp.NvSpPr.NvPr.Ph.Type
}

func (p *pXML) text() string {
	var b strings.Builder
	for _, in := range p.Content {
		switch in.XMLName.Local {
		case "r", "fld":
			b.WriteString(in.T)
		case "br":
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// listKind reports "ul", "ol" or "" for a paragraph.
func (p *pXML) listKind() string {
	if p.PPr == nil || p.PPr.BuNone != nil {
		return ""
	}
	switch {
	case p.PPr.BuAutoNum != nil:
		return "ol"
	case p.PPr.BuChar != nil, p.PPr.Lvl > 0:
		return "ul"
	}
	return ""
}

type emitter struct {
	h       event.Handler
	footers bool
	notes   bool
	list    string
}

func (e *emitter) tree(t *spTreeXML) {
	for i := range t.Sp {
		e.shape(&t.Sp[i])
	}
	for _, gf := range t.GraphicFrame {
		if tbl := gf.Graphic.GraphicData.Tbl; tbl != nil {
			e.table(tbl)
		}
	}
	for _, pic := range t.Pic {
		alt := pic.NvPicPr.CNvPr.Descr
		if alt == "" {
			alt = pic.NvPicPr.CNvPr.Title
		}
		if alt != "" {
			e.h.OpenTag("img", []event.Attr{{Name: "alt", Value: alt}})
			e.h.CloseTag("img")
		}
	}
	for i := range t.GrpSp {
		e.tree(&t.GrpSp[i])
	}
}

func (e *emitter) shape(sp *spXML) {
	if sp.TxBody == nil {
		return
	}
	ph := placeholder(sp)
	if ph == "sldImg" || (!e.footers && isFooterPlaceholder(ph)) {
		return
	}
	switch {
	case e.notes:
		e.paragraphs(sp.TxBody.P)
	case ph == "title" || ph == "ctrTitle":
		e.heading("h1", sp.TxBody.P)
	case ph == "subTitle":
		e.heading("h2", sp.TxBody.P)
	default:
		e.paragraphs(sp.TxBody.P)
	}
}

func (e *emitter) heading(name string, paras []pXML) {
	opened := false
	for i := range paras {
		p := &paras[i]
		if strings.TrimSpace(p.text()) == "" {
			continue
		}
		if opened {
			e.h.Characters("\n")
		} else {
			e.h.OpenTag(name, nil)
			opened = true
		}
		e.runs(p)
	}
	if opened {
		e.h.CloseTag(name)
		e.h.Characters("\n")
	}
}

func (e *emitter) paragraphs(paras []pXML) {
	for i := range paras {
		p := &paras[i]
		if strings.TrimSpace(p.text()) == "" {
			continue
		}
		kind := p.listKind()
		if kind != e.list {
			e.closeList()
			if kind != "" {
				var attrs []event.Attr
				if n := p.PPr.BuAutoNum; n != nil && n.StartAt > 1 {
					attrs = []event.Attr{{Name: "start", Value: strconv.Itoa(n.StartAt)}}
				}
				e.h.OpenTag(kind, attrs)
				e.list = kind
			}
		}
		name := "p"
		if kind != "" {
			name = "li"
		}
		e.h.OpenTag(name, nil)
		e.runs(p)
		e.h.CloseTag(name)
		e.h.Characters("\n")
	}
	e.closeList()
}

func (e *emitter) closeList() {
	if e.list != "" {
		e.h.CloseTag(e.list)
		e.list = ""
	}
}

func (e *emitter) runs(p *pXML) {
	for _, in := range p.Content {
		switch in.XMLName.Local {
		case "br":
			e.h.Characters("\n")
		case "fld":
			if in.T != "" {
				e.h.Characters(in.T)
			}
		case "r":
			if in.T == "" {
				continue
			}
			var opened []string
			if rp := in.RPr; rp != nil {
				if on(rp.B) {
					opened = append(opened, "b")
				}
				if on(rp.I) {
					opened = append(opened, "i")
				}
				if rp.U != "" && rp.U != "none" {
					opened = append(opened, "u")
				}
			}
			for _, name := range opened {
				e.h.OpenTag(name, nil)
			}
			e.h.Characters(in.T)
			for i := len(opened) - 1; i >= 0; i-- {
				e.h.CloseTag(opened[i])
			}
		}
	}
}

func on(v string) bool { return v == "1" || v == "true" }

func (e *emitter) table(tbl *tblXML) {
	e.h.OpenTag("table", nil)
	for _, tr := range tbl.Tr {
		e.h.OpenTag("tr", nil)
		first := true
		for _, tc := range tr.Tc {
			if on(tc.HMerge) || on(tc.VMerge) {
				continue
			}
			if !first {
				e.h.Characters("\t")
			}
			first = false
			var attrs []event.Attr
			if tc.RowSpan > 1 {
				attrs = append(attrs, event.Attr{Name: "rowspan", Value: strconv.Itoa(tc.RowSpan)})
			}
			if tc.GridSpan > 1 {
				attrs = append(attrs, event.Attr{Name: "colspan", Value: strconv.Itoa(tc.GridSpan)})
			}
			e.h.OpenTag("td", attrs)
			if tc.TxBody != nil {
				sep := false
				for i := range tc.TxBody.P {
					p := &tc.TxBody.P[i]
					if strings.TrimSpace(p.text()) == "" {
						continue
					}
					if sep {
						e.h.Characters(" ")
					}
					sep = true
					e.runs(p)
				}
			}
			e.h.CloseTag("td")
		}
		e.h.CloseTag("tr")
		e.h.Characters("\n")
	}
	e.h.CloseTag("table")
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
		log.Debug("pptx properties unavailable", "part", name, "error", err)
		return
	}
	defer rc.Close()
	if err := xmlmeta.Emit(rc, fields, h.Metadata); err != nil {
		log.Debug("pptx properties unreadable", "part", name, "error", err)
	}
}
