package xmldoc

import (
	"context"
	"strings"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
	"github.com/tsawler/annotext/model"
)

func parse(t *testing.T, input string) *markup.Result {
	t.Helper()
	res, err := markup.Drive(context.Background(), Source{Logger: logging.Discard()}, strings.NewReader(input),
		event.Hint{Name: "test.xml", MIME: "application/xml"}, markup.Options{Format: "xml", Logger: logging.Discard()})
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

func TestParse_Elements(t *testing.T) {
	input := `<?xml version="1.0"?>
<!-- catalogue -->
<catalog xmlns="urn:books" xmlns:x="urn:extra">
  <book id="b1" x:lang="en">
    <title>Go</title>
    <author>Ann &amp; Bob</author>
  </book>
</catalog>`
	res := parse(t, input)

	if got, want := res.Text(), "Go\nAnn & Bob\n"; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
	book := spansNamed(res, "book")
	if len(book) != 1 {
		t.Fatalf("got %d book spans, want 1", len(book))
	}
	if v, _ := book[0].Attr("id"); v != "b1" {
		t.Errorf("id = %q", v)
	}
	if v, _ := book[0].Attr("lang"); v != "en" {
		t.Errorf("lang = %q", v)
	}
	catalog := spansNamed(res, "catalog")
	if len(catalog) != 1 || len(catalog[0].Attrs) != 0 {
		t.Errorf("catalog spans = %+v, want one without namespace attributes", catalog)
	}
	if title := spansNamed(res, "title"); len(title) != 1 || res.Covered(title[0]) != "Go" {
		t.Errorf("title spans = %+v", title)
	}
}

func TestParse_InlineWhitespaceKept(t *testing.T) {
	res := parse(t, "<p><b>a</b> <i>b</i></p>")
	if got := res.Text(); got != "a b" {
		t.Errorf("Text = %q, want %q", got, "a b")
	}
}

func TestParse_CDATA(t *testing.T) {
	res := parse(t, "<code><![CDATA[x < y]]></code>")
	if got := res.Text(); got != "x < y" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_Charset(t *testing.T) {
	res := parse(t, "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><t>caf\xe9</t>")
	if got := res.Text(); got != "café" {
		t.Errorf("Text = %q, want %q", got, "café")
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := markup.Drive(context.Background(), Source{}, strings.NewReader("<a><b>text"),
		event.Hint{}, markup.Options{Logger: logging.Discard()})
	if err == nil {
		t.Fatal("expected an error for truncated XML")
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Source{}.Parse(ctx, strings.NewReader("<a/>"), event.Hint{}, &event.Recorder{})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
