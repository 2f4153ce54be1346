package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
	"github.com/tsawler/annotext/model"
)

const ns = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

func slide(shapes string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><p:sld ` + ns + `><p:cSld><p:spTree>` + shapes + `</p:spTree></p:cSld></p:sld>`
}

func shape(ph, paras string) string {
	nvPr := `<p:nvPr/>`
	if ph != "" {
		nvPr = `<p:nvPr><p:ph type="` + ph + `"/></p:nvPr>`
	}
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="s"/><p:cNvSpPr/>` + nvPr + `</p:nvSpPr><p:txBody>` + paras + `</p:txBody></p:sp>`
}

func para(text string) string { return `<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>` }

func presentation(ids ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><p:presentation ` + ns + `><p:sldIdLst>`)
	for i, id := range ids {
		b.WriteString(`<p:sldId id="` + string(rune('1'+i)) + `" r:id="` + id + `"/>`)
	}
	b.WriteString(`</p:sldIdLst></p:presentation>`)
	return b.String()
}

func createTestPPTX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func parsePPTX(t *testing.T, src Source, data []byte) *markup.Result {
	t.Helper()
	src.Logger = logging.Discard()
	res, err := markup.Drive(context.Background(), src, bytes.NewReader(data),
		event.Hint{Name: "deck.pptx"}, markup.Options{Format: "pptx", Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	return res
}

func spansNamed(res *markup.Result, name string) []model.Span {
	var out []model.Span
	for _, s := range res.Spans() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func attr(s model.Span, name string) string {
	v, _ := s.Attr(name)
	return v
}

func TestParse_TitleAndBody(t *testing.T) {
	body := `<a:p><a:pPr><a:buChar char="•"/></a:pPr><a:r><a:rPr b="1"/><a:t>First</a:t></a:r></a:p>` +
		`<a:p><a:pPr><a:buChar char="•"/></a:pPr><a:r><a:t>Second</a:t></a:r></a:p>` +
		para("Closing")
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":  presentation(),
		"ppt/slides/slide1.xml": slide(shape("title", para("Welcome")) + shape("body", body) + shape("sldNum", para("1"))),
	})
	res := parsePPTX(t, Source{}, data)

	want := "Welcome\nFirst\nSecond\nClosing\n"
	if got := res.Text(); got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
	if h := spansNamed(res, "h1"); len(h) != 1 || res.Covered(h[0]) != "Welcome" {
		t.Errorf("h1 = %+v", h)
	}
	ul := spansNamed(res, "ul")
	if len(ul) != 1 || res.Covered(ul[0]) != "First\nSecond\n" {
		t.Errorf("ul = %+v", ul)
	}
	if n := len(spansNamed(res, "li")); n != 2 {
		t.Errorf("li count = %d, want 2", n)
	}
	if b := spansNamed(res, "b"); len(b) != 1 || res.Covered(b[0]) != "First" {
		t.Errorf("b = %+v", b)
	}
	div := spansNamed(res, "div")
	if len(div) != 1 || attr(div[0], "class") != "slide" || attr(div[0], "data-slide") != "1" {
		t.Errorf("div = %+v", div)
	}
}

func TestParse_FootersOptIn(t *testing.T) {
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":  presentation(),
		"ppt/slides/slide1.xml": slide(shape("ftr", para("Confidential"))),
	})
	if got := parsePPTX(t, Source{}, data).Text(); got != "" {
		t.Errorf("Text = %q, want footer dropped", got)
	}
	if got := parsePPTX(t, Source{Footers: true}, data).Text(); got != "Confidential\n" {
		t.Errorf("Text = %q, want footer kept", got)
	}
}

func TestParse_PresentationOrder(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
</Relationships>`
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":            presentation("rId3", "rId2"),
		"ppt/_rels/presentation.xml.rels": rels,
		"ppt/slides/slide1.xml":           slide(shape("", para("one"))),
		"ppt/slides/slide2.xml":           slide(shape("", para("two"))),
	})
	if got := parsePPTX(t, Source{}, data).Text(); got != "two\none\n" {
		t.Errorf("Text = %q, want presentation order", got)
	}
}

func TestParse_FileOrderFallback(t *testing.T) {
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":   presentation(),
		"ppt/slides/slide10.xml": slide(shape("", para("ten"))),
		"ppt/slides/slide2.xml":  slide(shape("", para("two"))),
	})
	if got := parsePPTX(t, Source{}, data).Text(); got != "two\nten\n" {
		t.Errorf("Text = %q, want numeric order", got)
	}
}

func TestParse_Notes(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide1.xml"/>
</Relationships>`
	notes := `<p:notes ` + ns + `><p:cSld><p:spTree>` + shape("sldImg", "") + shape("body", para("Say hello")) + `</p:spTree></p:cSld></p:notes>`
	files := map[string]string{
		"ppt/presentation.xml":             presentation(),
		"ppt/slides/slide1.xml":            slide(shape("", para("Slide"))),
		"ppt/slides/_rels/slide1.xml.rels": rels,
		"ppt/notesSlides/notesSlide1.xml":  notes,
	}
	data := createTestPPTX(t, files)

	res := parsePPTX(t, Source{}, data)
	if got := res.Text(); got != "Slide\nSay hello\n" {
		t.Errorf("Text = %q", got)
	}
	divs := spansNamed(res, "div")
	if len(divs) != 2 || attr(divs[1], "class") != "slide-notes" {
		t.Errorf("divs = %+v", divs)
	}

	if got := parsePPTX(t, Source{SkipNotes: true}, data).Text(); got != "Slide\n" {
		t.Errorf("Text = %q, want notes skipped", got)
	}
}

func TestParse_Table(t *testing.T) {
	cell := func(text, extra string) string {
		return `<a:tc` + extra + `><a:txBody>` + para(text) + `</a:txBody></a:tc>`
	}
	tbl := `<p:graphicFrame><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>` +
		`<a:tr>` + cell("Head", ` gridSpan="2"`) + cell("", ` hMerge="1"`) + `</a:tr>` +
		`<a:tr>` + cell("a", "") + cell("b", "") + `</a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":  presentation(),
		"ppt/slides/slide1.xml": slide(tbl),
	})
	res := parsePPTX(t, Source{}, data)
	if got := res.Text(); got != "Head\na\tb\n" {
		t.Errorf("Text = %q", got)
	}
	tds := spansNamed(res, "td")
	if len(tds) != 3 || attr(tds[0], "colspan") != "2" {
		t.Errorf("td = %+v", tds)
	}
}

func TestParse_HiddenSlide(t *testing.T) {
	hidden := strings.Replace(slide(shape("", para("secret"))), "<p:sld ", `<p:sld show="0" `, 1)
	data := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml":  presentation(),
		"ppt/slides/slide1.xml": hidden,
	})
	if got := parsePPTX(t, Source{SkipHidden: true}, data).Text(); got != "" {
		t.Errorf("Text = %q, want hidden slide skipped", got)
	}
	res := parsePPTX(t, Source{}, data)
	if div := spansNamed(res, "div"); len(div) != 1 || attr(div[0], "class") != "slide hidden" {
		t.Errorf("div = %+v", div)
	}
}

func TestParse_MissingPresentation(t *testing.T) {
	data := createTestPPTX(t, map[string]string{"ppt/slides/slide1.xml": slide("")})
	_, err := markup.Drive(context.Background(), Source{}, bytes.NewReader(data),
		event.Hint{}, markup.Options{Logger: logging.Discard()})
	if err == nil {
		t.Error("expected error for archive without ppt/presentation.xml")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct{ from, target, want string }{
		{"ppt/presentation.xml", "slides/slide1.xml", "ppt/slides/slide1.xml"},
		{"ppt/slides/slide1.xml", "../notesSlides/notesSlide1.xml", "ppt/notesSlides/notesSlide1.xml"},
		{"ppt/slides/slide1.xml", "/ppt/media/a.png", "ppt/media/a.png"},
	}
	for _, tt := range tests {
		if got := resolve(tt.from, tt.target); got != tt.want {
			t.Errorf("resolve(%q, %q) = %q, want %q", tt.from, tt.target, got, tt.want)
		}
	}
}
