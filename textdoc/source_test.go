package textdoc

import (
	"bytes"
	"context"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
)

func parse(t *testing.T, data []byte, mime string) *markup.Result {
	t.Helper()
	res, err := markup.Drive(context.Background(), Source{Logger: logging.Discard()}, bytes.NewReader(data),
		event.Hint{Name: "a.txt", MIME: mime}, markup.Options{Format: "text", Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	return res
}

func TestParse_UTF8(t *testing.T) {
	res := parse(t, []byte("héllo\r\nworld"), "")
	if got := res.Text(); got != "héllo\nworld" {
		t.Errorf("Text = %q", got)
	}
	spans := res.Spans()
	if len(spans) != 1 || spans[0].Name != "p" || spans[0].Begin != 0 || spans[0].End != res.Len() {
		t.Errorf("spans = %+v, want one p covering everything", spans)
	}
	if got := res.Metadata().Get("Content-Encoding"); got != "utf-8" {
		t.Errorf("Content-Encoding = %q", got)
	}
}

func TestParse_BOMStripped(t *testing.T) {
	res := parse(t, []byte("\xef\xbb\xbfabc"), "")
	if got := res.Text(); got != "abc" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_UTF16BOM(t *testing.T) {
	res := parse(t, []byte{0xff, 0xfe, 'h', 0, 'i', 0}, "")
	if got := res.Text(); got != "hi" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_DeclaredCharset(t *testing.T) {
	res := parse(t, []byte("caf\xe9"), "text/plain; charset=iso-8859-1")
	if got := res.Text(); got != "café" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_Empty(t *testing.T) {
	res := parse(t, nil, "")
	if res.Text() != "" || res.SpanCount() != 0 {
		t.Errorf("Text = %q, spans = %d", res.Text(), res.SpanCount())
	}
}
