package epubdoc

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/htmldoc"
	"github.com/tsawler/annotext/internal/logging"
)

// Source decodes EPUB publications.
type Source struct {
	// Navigation is applied to every chapter.
	Navigation htmldoc.NavigationExclusionMode
	// Skip lists chapter elements dropped with their content, in addition
	// to the document head. Nil means htmldoc.DefaultSkip.
	Skip []string
	// NonLinear includes spine items marked linear="no".
	NonLinear bool
	Logger    *slog.Logger
}

// Parse reads the whole archive from r and emits the publication to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	log := logging.Or(s.Logger)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading EPUB: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening ZIP archive: %w", err)
	}

	if mt, err := readFile(zr, "mimetype"); err != nil || strings.TrimSpace(string(mt)) != "application/epub+zip" {
		log.Debug("epub mimetype missing or unexpected")
	}
	if err := checkDRM(zr); err != nil {
		return err
	}
	opf, err := rootfile(zr)
	if err != nil {
		return err
	}
	pub, err := parseOPF(zr, opf)
	if err != nil {
		return err
	}

	pub.Meta.emit(h.Metadata)
	if pub.Version != "" {
		h.Metadata("epub:version", pub.Version)
	}

	titles := chapterTitles(zr, pub)
	chapter := htmldoc.Source{
		Skip:       append(s.skip(), "head"),
		Navigation: s.Navigation,
		Logger:     s.Logger,
	}
	ch := &chapterHandler{h: h}

	emitted := 0
	for _, ref := range pub.Spine {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ref.Linear && !s.NonLinear {
			continue
		}
		item, ok := pub.Manifest[ref.IDRef]
		if !ok {
			log.Warn("spine item missing from manifest", "idref", ref.IDRef)
			continue
		}
		content, err := readFile(zr, item.Href)
		if err != nil {
			log.Warn("skipping missing chapter", "href", item.Href, "error", err)
			continue
		}

		attrs := []event.Attr{{Name: "class", Value: "chapter"}, {Name: "id", Value: item.ID}}
		if t := titles[item.Href]; t != "" {
			attrs = append(attrs, event.Attr{Name: "title", Value: t})
		}
		h.OpenTag("div", attrs)
		if err := chapter.Parse(ctx, bytes.NewReader(content), event.Hint{Name: item.Href, MIME: item.MediaType}, ch); err != nil {
			return fmt.Errorf("chapter %s: %w", item.Href, err)
		}
		h.CloseTag("div")
		emitted++
	}
	if emitted == 0 {
		return ErrEmptySpine
	}
	return nil
}

func (s Source) skip() []string {
	if s.Skip == nil {
		return append([]string(nil), htmldoc.DefaultSkip...)
	}
	return append([]string(nil), s.Skip...)
}

// chapterHandler forwards a chapter's body to the publication's handler,
// dropping the html and body wrappers and chapter-level metadata.
type chapterHandler struct {
	h event.Handler
}

func (c *chapterHandler) OpenTag(name string, attrs []event.Attr) {
	if name != "html" && name != "body" {
		c.h.OpenTag(name, attrs)
	}
}

func (c *chapterHandler) CloseTag(name string) {
	if name != "html" && name != "body" {
		c.h.CloseTag(name)
	}
}

func (c *chapterHandler) Characters(text string) { c.h.Characters(text) }

func (c *chapterHandler) Metadata(string, string) {}
