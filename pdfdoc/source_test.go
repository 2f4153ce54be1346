package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
)

// minimalPDF builds a one-page PDF with correct cross-reference offsets.
func minimalPDF(title string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		fmt.Sprintf("<< /Title (%s) >>", title),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestParse_PageStructure(t *testing.T) {
	res, err := markup.Drive(context.Background(), Source{Logger: logging.Discard()},
		bytes.NewReader(minimalPDF("Quarterly")), event.Hint{Name: "x.pdf"},
		markup.Options{Format: "pdf", Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}

	md := res.Metadata()
	if got := md.Get("xmpTPg:NPages"); got != "1" {
		t.Errorf("xmpTPg:NPages = %q, want 1", got)
	}
	if got := md.Get("dc:title"); got != "Quarterly" {
		t.Errorf("dc:title = %q", got)
	}

	var divs, ps int
	for _, s := range res.Spans() {
		switch s.Name {
		case "div":
			divs++
			if v, _ := s.Attr("class"); v != "page" {
				t.Errorf("div class = %q", v)
			}
		case "p":
			ps++
		}
	}
	if divs != 1 || ps != 1 {
		t.Errorf("got %d divs and %d paragraphs, want 1 and 1", divs, ps)
	}
}

func TestParse_NotAPDF(t *testing.T) {
	err := (Source{}).Parse(context.Background(), strings.NewReader("hello"), event.Hint{}, &event.Recorder{})
	if err == nil {
		t.Error("expected error for non-PDF input")
	}
}
