package mddoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
)

func parse(t *testing.T, input string) *markup.Result {
	t.Helper()
	res, err := markup.Drive(context.Background(), Source{Logger: logging.Discard()}, strings.NewReader(input),
		event.Hint{Name: "doc.md"}, markup.Options{Format: "markdown", Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	return res
}

func spanNames(res *markup.Result) []string {
	var names []string
	for _, s := range res.Spans() {
		names = append(names, s.Name)
	}
	return names
}

func TestParse_HeadingAndParagraph(t *testing.T) {
	res := parse(t, "# Title\n\nSome text here.\n")
	if got, want := res.Text(), "Title\nSome text here.\n"; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
	spans := res.Spans()
	if len(spans) != 2 {
		t.Fatalf("spans = %v", spanNames(res))
	}
	if spans[0].Name != "h1" || res.Covered(spans[0]) != "Title" {
		t.Errorf("span[0] = %s %q", spans[0].Name, res.Covered(spans[0]))
	}
	if spans[1].Name != "p" || res.Covered(spans[1]) != "Some text here." {
		t.Errorf("span[1] = %s %q", spans[1].Name, res.Covered(spans[1]))
	}
}

func TestParse_Emphasis(t *testing.T) {
	res := parse(t, "a *b* **c**\n")
	if got := res.Text(); got != "a b c\n" {
		t.Errorf("Text = %q", got)
	}
	var em, strong string
	for _, s := range res.Spans() {
		switch s.Name {
		case "em":
			em = res.Covered(s)
		case "strong":
			strong = res.Covered(s)
		}
	}
	if em != "b" || strong != "c" {
		t.Errorf("em = %q, strong = %q", em, strong)
	}
}

func TestParse_Lists(t *testing.T) {
	res := parse(t, "- one\n- two\n\n3. three\n")
	var ul, ol, li int
	for _, s := range res.Spans() {
		switch s.Name {
		case "ul":
			ul++
		case "ol":
			ol++
			if v, _ := s.Attr("start"); v != "3" {
				t.Errorf("ol start = %q, want 3", v)
			}
		case "li":
			li++
		}
	}
	if ul != 1 || ol != 1 || li != 3 {
		t.Errorf("ul=%d ol=%d li=%d, spans %v", ul, ol, li, spanNames(res))
	}
	if got := res.Text(); got != "one\ntwo\nthree\n" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_Link(t *testing.T) {
	res := parse(t, "see [docs](https://example.com \"Docs\") now\n")
	for _, s := range res.Spans() {
		if s.Name != "a" {
			continue
		}
		if href, _ := s.Attr("href"); href != "https://example.com" {
			t.Errorf("href = %q", href)
		}
		if title, _ := s.Attr("title"); title != "Docs" {
			t.Errorf("title = %q", title)
		}
		if got := res.Covered(s); got != "docs" {
			t.Errorf("covered = %q", got)
		}
		return
	}
	t.Fatalf("no a span in %v", spanNames(res))
}

func TestParse_CodeBlock(t *testing.T) {
	res := parse(t, "```go\nfmt.Println(1)\n```\n")
	// Close order: the inner code span is finalized first.
	spans := res.Spans()
	if len(spans) != 2 || spans[0].Name != "code" || spans[1].Name != "pre" {
		t.Fatalf("spans = %v, want [code pre]", spanNames(res))
	}
	if class, _ := spans[0].Attr("class"); class != "language-go" {
		t.Errorf("class = %q", class)
	}
	for _, s := range spans {
		if got := res.Covered(s); got != "fmt.Println(1)\n" {
			t.Errorf("%s = %q", s.Name, got)
		}
	}
}

func TestParse_FrontMatter(t *testing.T) {
	res := parse(t, "---\ntitle: Notes\ntags: [a, b]\n---\nBody\n")
	md := res.Metadata()
	if got := md.Get("dc:title"); got != "Notes" {
		t.Errorf("dc:title = %q", got)
	}
	if got := md.All("meta:keyword"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("meta:keyword = %v", got)
	}
	if got := res.Text(); got != "Body\n" {
		t.Errorf("Text = %q", got)
	}
}

func TestParse_RawHTMLSkipped(t *testing.T) {
	res := parse(t, "<div>hidden</div>\n\nshown\n")
	if strings.Contains(res.Text(), "hidden") {
		t.Errorf("Text = %q, raw HTML should be dropped", res.Text())
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	input := strings.Repeat("para\n\n", 1000)
	_, err := markup.Drive(ctx, Source{}, strings.NewReader(input), event.Hint{},
		markup.Options{Logger: logging.Discard()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
