// Package mddoc turns Markdown into markup events using goldmark's parser.
//
// Block nodes map to their HTML counterparts (h1..h6, p, ul, ol, li, pre,
// blockquote) and inline nodes to em, strong, code, a and img. A YAML front
// matter block, when present, is reported as metadata and excluded from the
// text.
package mddoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes Markdown.
type Source struct {
	Logger *slog.Logger
}

// Parse walks the goldmark AST of the input and emits one element per node.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading markdown: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	body := s.frontMatter(data, h)
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	w := &walker{ctx: ctx, src: body, h: h}
	return ast.Walk(doc, w.visit)
}

// frontMatter reports the scalar keys of a leading "---" YAML block and
// returns the rest of the input. Unparsable front matter is left in the
// body.
func (s Source) frontMatter(data []byte, h event.Handler) []byte {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return data
	}
	start := bytes.IndexByte(data, '\n') + 1
	end := bytes.Index(data[start:], []byte("\n---"))
	if end < 0 {
		return data
	}
	block := data[start : start+end]
	rest := data[start+end+len("\n---"):]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		rest = nil
	}

	var fields yaml.Node
	if err := yaml.Unmarshal(block, &fields); err != nil {
		logging.Or(s.Logger).Debug("ignoring front matter", "error", err)
		return data
	}
	if len(fields.Content) == 0 || fields.Content[0].Kind != yaml.MappingNode {
		return rest
	}
	m := fields.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			emitField(h, key, val.Value)
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					emitField(h, key, item.Value)
				}
			}
		}
	}
	return rest
}

func emitField(h event.Handler, key, value string) {
	h.Metadata(key, value)
	switch key {
	case "title":
		h.Metadata("dc:title", value)
	case "author":
		h.Metadata("dc:creator", value)
	case "description":
		h.Metadata("dc:description", value)
	case "tags", "keywords":
		h.Metadata("meta:keyword", value)
	}
}

type walker struct {
	ctx   context.Context
	src   []byte
	h     event.Handler
	nodes int
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.nodes++
		if w.nodes%256 == 0 {
			if err := w.ctx.Err(); err != nil {
				return ast.WalkStop, err
			}
		}
	}

	switch n := n.(type) {
	case *ast.Document:
	case *ast.Heading:
		w.element(entering, "h"+strconv.Itoa(min(max(n.Level, 1), 6)), nil)
		w.blockEnd(entering)
	case *ast.Paragraph:
		w.element(entering, "p", nil)
		w.blockEnd(entering)
	case *ast.TextBlock:
		if !entering && n.NextSibling() != nil {
			w.h.Characters("\n")
		}
	case *ast.Blockquote:
		w.element(entering, "blockquote", nil)
	case *ast.List:
		name := "ul"
		var attrs []event.Attr
		if n.IsOrdered() {
			name = "ol"
			if n.Start != 1 {
				attrs = []event.Attr{{Name: "start", Value: strconv.Itoa(n.Start)}}
			}
		}
		w.element(entering, name, attrs)
	case *ast.ListItem:
		w.element(entering, "li", nil)
		if !entering && (n.FirstChild() == nil || n.LastChild().Kind() == ast.KindTextBlock) {
			w.h.Characters("\n")
		}
	case *ast.FencedCodeBlock:
		if entering {
			var attrs []event.Attr
			if lang := n.Language(w.src); len(lang) > 0 {
				attrs = []event.Attr{{Name: "class", Value: "language-" + string(lang)}}
			}
			w.code(n, attrs)
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			w.code(n, nil)
		}
		return ast.WalkSkipChildren, nil
	case *ast.ThematicBreak:
		w.element(entering, "hr", nil)
	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	case *ast.Emphasis:
		name := "em"
		if n.Level >= 2 {
			name = "strong"
		}
		w.element(entering, name, nil)
	case *ast.CodeSpan:
		w.element(entering, "code", nil)
	case *ast.Link:
		attrs := []event.Attr{{Name: "href", Value: string(n.Destination)}}
		if len(n.Title) > 0 {
			attrs = append(attrs, event.Attr{Name: "title", Value: string(n.Title)})
		}
		w.element(entering, "a", attrs)
	case *ast.AutoLink:
		if entering {
			w.h.OpenTag("a", []event.Attr{{Name: "href", Value: string(n.URL(w.src))}})
			w.h.Characters(string(n.Label(w.src)))
			w.h.CloseTag("a")
		}
		return ast.WalkSkipChildren, nil
	case *ast.Image:
		if entering {
			attrs := []event.Attr{{Name: "src", Value: string(n.Destination)}}
			if len(n.Title) > 0 {
				attrs = append(attrs, event.Attr{Name: "title", Value: string(n.Title)})
			}
			w.h.OpenTag("img", attrs)
			w.h.CloseTag("img")
		}
		return ast.WalkSkipChildren, nil
	case *ast.Text:
		if entering {
			w.h.Characters(string(n.Segment.Value(w.src)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				w.h.Characters("\n")
			}
		}
	case *ast.String:
		if entering {
			w.h.Characters(string(n.Value))
		}
	}
	return ast.WalkContinue, nil
}

func (w *walker) element(entering bool, name string, attrs []event.Attr) {
	if entering {
		w.h.OpenTag(name, attrs)
	} else {
		w.h.CloseTag(name)
	}
}

func (w *walker) blockEnd(entering bool) {
	if !entering {
		w.h.Characters("\n")
	}
}

func (w *walker) code(n ast.Node, attrs []event.Attr) {
	w.h.OpenTag("pre", nil)
	w.h.OpenTag("code", attrs)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.h.Characters(string(seg.Value(w.src)))
	}
	w.h.CloseTag("code")
	w.h.CloseTag("pre")
	w.h.Characters("\n")
}
