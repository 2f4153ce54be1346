// Package htmldoc turns HTML documents into markup events.
//
// The document is tokenized, not parsed into a tree, so events are emitted
// as the input is read. Elements whose end tag HTML allows to be omitted
// (p, li, td, ...) are closed where the HTML rules imply. An end tag with
// no matching open element is dropped while elements are open and forwarded
// when none are.
package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// DefaultSkip lists the elements whose content is dropped by default.
var DefaultSkip = []string{"script", "style", "noscript", "template"}

// Source decodes HTML.
type Source struct {
	// Skip lists elements dropped with their content. Nil means DefaultSkip.
	Skip []string
	// Navigation controls removal of navigation and boilerplate sections.
	Navigation NavigationExclusionMode
	Logger     *slog.Logger
}

// voidElements never have content or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// impliedBy maps an opening element to the open elements it closes when
// they are innermost.
var impliedBy = map[string]map[string]bool{
	"li":     {"li": true, "p": true},
	"dt":     {"dt": true, "dd": true, "p": true},
	"dd":     {"dt": true, "dd": true, "p": true},
	"tr":     {"tr": true, "td": true, "th": true},
	"td":     {"td": true, "th": true},
	"th":     {"td": true, "th": true},
	"option": {"option": true},
	"body":   {"head": true},
}

// blockElements close an open paragraph.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "fieldset": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "ul": true,
}

// closedAtEOF are elements HTML lets a document end without closing.
var closedAtEOF = map[string]bool{
	"html": true, "head": true, "body": true, "p": true, "li": true,
	"dt": true, "dd": true, "tr": true, "td": true, "th": true,
	"tbody": true, "thead": true, "tfoot": true, "colgroup": true, "option": true,
}

type parser struct {
	h    event.Handler
	log  *slog.Logger
	skip map[string]bool
	nav  *exclusionChecker

	stack     []string
	skipName  string
	skipDepth int

	inTitle bool
	title   strings.Builder
}

// Parse tokenizes r and emits its elements, text and head metadata to h.
// The input is decoded to UTF-8 using hint.MIME, a byte order mark or a
// <meta> charset declaration.
func (s Source) Parse(ctx context.Context, r io.Reader, hint event.Hint, h event.Handler) error {
	utf8r, err := charset.NewReader(r, hint.MIME)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decoding charset: %w", err)
	}

	skip := s.Skip
	if skip == nil {
		skip = DefaultSkip
	}
	p := &parser{
		h:    h,
		log:  logging.Or(s.Logger),
		skip: make(map[string]bool, len(skip)),
		nav:  newExclusionChecker(s.Navigation),
	}
	for _, name := range skip {
		p.skip[strings.ToLower(name)] = true
	}

	z := html.NewTokenizer(utf8r)
	for n := 0; ; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return err
			}
			p.finish()
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			p.start(z.Token(), tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			p.end(z.Token().Data)
		case html.TextToken:
			p.text(string(z.Text()))
		}
	}
}

func (p *parser) start(tok html.Token, selfClosing bool) {
	name := tok.Data
	if p.skipName != "" {
		if name == p.skipName && !selfClosing {
			p.skipDepth++
		}
		return
	}
	if p.skip[name] || p.nav.excludes(name, tok.Attr, p.parent()) {
		if !selfClosing && !voidElements[name] {
			p.skipName, p.skipDepth = name, 1
		}
		return
	}

	p.implyEnds(name)

	attrs := make([]event.Attr, 0, len(tok.Attr))
	for _, a := range tok.Attr {
		attrs = append(attrs, event.Attr{Name: a.Key, Value: a.Val})
	}
	p.h.OpenTag(name, attrs)

	if name == "meta" {
		p.meta(tok.Attr)
	}
	if voidElements[name] || selfClosing {
		p.h.CloseTag(name)
		return
	}
	p.stack = append(p.stack, name)
	if name == "title" {
		p.inTitle = true
		p.title.Reset()
	}
}

func (p *parser) implyEnds(name string) {
	closes := impliedBy[name]
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if closes[top] || (top == "p" && blockElements[name]) {
			p.pop()
			continue
		}
		return
	}
}

func (p *parser) end(name string) {
	if p.skipName != "" {
		if name == p.skipName {
			p.skipDepth--
			if p.skipDepth == 0 {
				p.skipName = ""
			}
		}
		return
	}
	if voidElements[name] {
		return
	}

	i := len(p.stack) - 1
	for ; i >= 0; i-- {
		if p.stack[i] == name {
			break
		}
	}
	if i < 0 {
		if len(p.stack) == 0 {
			p.h.CloseTag(name)
			return
		}
		p.log.Debug("dropping stray end tag", "element", name, "open", p.stack[len(p.stack)-1])
		return
	}
	for len(p.stack) > i {
		p.pop()
	}
}

func (p *parser) pop() {
	name := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	if name == "title" && p.inTitle {
		p.inTitle = false
		if t := strings.TrimSpace(p.title.String()); t != "" {
			p.h.Metadata("title", t)
			p.h.Metadata("dc:title", t)
		}
	}
	p.h.CloseTag(name)
}

func (p *parser) text(s string) {
	if p.skipName != "" || s == "" {
		return
	}
	if p.inTitle {
		p.title.WriteString(s)
	}
	p.h.Characters(s)
}

func (p *parser) meta(attrs []html.Attribute) {
	var name, content string
	for _, a := range attrs {
		switch a.Key {
		case "name", "property", "http-equiv":
			name = a.Val
		case "content":
			content = a.Val
		case "charset":
			p.h.Metadata("Content-Encoding", a.Val)
		}
	}
	if name != "" && content != "" {
		p.h.Metadata(name, content)
	}
}

func (p *parser) parent() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// finish closes the elements HTML allows to run to the end of the document.
// Anything else is left open for the collector to handle.
func (p *parser) finish() {
	for len(p.stack) > 0 && closedAtEOF[p.stack[len(p.stack)-1]] {
		p.pop()
	}
	if len(p.stack) > 0 {
		p.log.Debug("html elements left open at end of input", "open", strings.Join(p.stack, ","))
	}
}
