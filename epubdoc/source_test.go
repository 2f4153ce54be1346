package epubdoc

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
	"github.com/tsawler/annotext/model"
)

const containerFile = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const opfFile = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:creator>Second Author</dc:creator>
    <dc:language>en</dc:language>
    <meta property="dcterms:modified">2024-01-01T00:00:00Z</meta>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="chapter1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="text/chapter%202.xhtml" media-type="application/xhtml+xml"/>
    <item id="notes" href="text/notes.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
    <itemref idref="chapter2"/>
    <itemref idref="notes" linear="no"/>
  </spine>
</package>`

const navFile = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body><nav epub:type="toc"><h1>Contents</h1><ol>
  <li><a href="text/chapter1.xhtml">Opening</a></li>
  <li><a href="text/chapter%202.xhtml#start">Closing</a></li>
</ol></nav></body></html>`

func chapter(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>` + title + `</title><meta name="author" content="ignored"/></head>
<body>` + body + `</body>
</html>`
}

func createTestEPUB(t *testing.T, extra map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	mw.Write([]byte("application/epub+zip"))

	files := map[string]string{
		"META-INF/container.xml":      containerFile,
		"OEBPS/content.opf":           opfFile,
		"OEBPS/nav.xhtml":             navFile,
		"OEBPS/text/chapter1.xhtml":   chapter("Chapter 1", `<h1>Introduction</h1><p>First chapter.</p>`),
		"OEBPS/text/chapter 2.xhtml":  chapter("Chapter 2", `<p>Second chapter.</p>`),
		"OEBPS/text/notes.xhtml":      chapter("Notes", `<p>Endnotes.</p>`),
	}
	for name, content := range extra {
		files[name] = content
	}
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func parseEPUB(t *testing.T, src Source, data []byte) (*markup.Result, error) {
	t.Helper()
	src.Logger = logging.Discard()
	return markup.Drive(context.Background(), src, bytes.NewReader(data),
		event.Hint{Name: "book.epub"}, markup.Options{Format: "epub", Logger: logging.Discard()})
}

func chapters(res *markup.Result) []model.Span {
	var out []model.Span
	for _, s := range res.Spans() {
		if v, _ := s.Attr("class"); s.Name == "div" && v == "chapter" {
			out = append(out, s)
		}
	}
	return out
}

func TestParse_Chapters(t *testing.T) {
	res, err := parseEPUB(t, Source{}, createTestEPUB(t, nil))
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	text := res.Text()
	for _, want := range []string{"Introduction", "First chapter.", "Second chapter."} {
		if !strings.Contains(text, want) {
			t.Errorf("Text = %q, missing %q", text, want)
		}
	}
	for _, unwanted := range []string{"Chapter 1", "Endnotes."} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Text = %q, contains %q", text, unwanted)
		}
	}
	if strings.Index(text, "First chapter.") > strings.Index(text, "Second chapter.") {
		t.Error("chapters out of spine order")
	}

	divs := chapters(res)
	if len(divs) != 2 {
		t.Fatalf("chapter divs = %d, want 2", len(divs))
	}
	for i, want := range []string{"Opening", "Closing"} {
		if got, _ := divs[i].Attr("title"); got != want {
			t.Errorf("chapter %d title = %q, want %q", i, got, want)
		}
	}
	for _, s := range res.Spans() {
		if s.Name == "html" || s.Name == "body" || s.Name == "title" {
			t.Errorf("unexpected %s span", s.Name)
		}
	}
}

func TestParse_Metadata(t *testing.T) {
	res, err := parseEPUB(t, Source{}, createTestEPUB(t, nil))
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	md := res.Metadata()
	if got := md.Get("dc:title"); got != "Test Book" {
		t.Errorf("dc:title = %q", got)
	}
	if got := md.All("dc:creator"); len(got) != 2 || got[1] != "Second Author" {
		t.Errorf("dc:creator = %v", got)
	}
	if got := md.Get("dcterms:modified"); got != "2024-01-01T00:00:00Z" {
		t.Errorf("dcterms:modified = %q", got)
	}
	if got := md.Get("epub:version"); got != "3.0" {
		t.Errorf("epub:version = %q", got)
	}
	if _, ok := md.Lookup("author"); ok {
		t.Error("chapter metadata leaked into the publication")
	}
}

func TestParse_NonLinear(t *testing.T) {
	res, err := parseEPUB(t, Source{NonLinear: true}, createTestEPUB(t, nil))
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if !strings.Contains(res.Text(), "Endnotes.") {
		t.Errorf("Text = %q, want non-linear chapter", res.Text())
	}
}

func TestParse_NCXTitles(t *testing.T) {
	opf := strings.Replace(opfFile, `properties="nav"`, ``, 1)
	opf = strings.Replace(opf, `<item id="nav"`, `<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/><item id="nav"`, 1)
	ncx := `<?xml version="1.0"?><ncx xmlns="http://www.daisy.org/z3986/2005/ncx/"><navMap>
  <navPoint id="n1"><navLabel><text>From NCX</text></navLabel><content src="text/chapter1.xhtml"/></navPoint>
</navMap></ncx>`
	res, err := parseEPUB(t, Source{}, createTestEPUB(t, map[string]string{
		"OEBPS/content.opf": opf,
		"OEBPS/toc.ncx":     ncx,
	}))
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	divs := chapters(res)
	if len(divs) == 0 {
		t.Fatal("no chapters")
	}
	if got, _ := divs[0].Attr("title"); got != "From NCX" {
		t.Errorf("title = %q, want From NCX", got)
	}
}

func TestParse_DRM(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  bool
	}{
		{"adobe rights", map[string]string{"META-INF/rights.xml": "<rights/>"}, true},
		{"encrypted content", map[string]string{"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/>
    <CipherData><CipherReference URI="OEBPS/text/chapter1.xhtml"/></CipherData>
  </EncryptedData></encryption>`}, true},
		{"font obfuscation", map[string]string{"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding#obfuscation"/>
    <CipherData><CipherReference URI="OEBPS/fonts/a.otf"/></CipherData>
  </EncryptedData></encryption>`}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEPUB(t, Source{}, createTestEPUB(t, tt.files))
			if got := errors.Is(err, ErrDRMProtected); got != tt.want {
				t.Errorf("err = %v, want DRM rejection %v", err, tt.want)
			}
		})
	}
}

func TestParse_MissingContainer(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("mimetype")
	fw.Write([]byte("application/epub+zip"))
	w.Close()

	_, err := parseEPUB(t, Source{}, buf.Bytes())
	if !errors.Is(err, ErrNoContainer) {
		t.Errorf("err = %v, want ErrNoContainer", err)
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct{ base, href, want string }{
		{"OEBPS", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"OEBPS", "ch%202.xhtml#frag", "OEBPS/ch 2.xhtml"},
		{".", "ch1.xhtml", "ch1.xhtml"},
		{"OEBPS/text", "../images/a.png", "OEBPS/images/a.png"},
	}
	for _, tt := range tests {
		if got := resolveHref(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveHref(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
