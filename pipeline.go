package annotext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/annotext/collection"
	"github.com/tsawler/annotext/commit"
	"github.com/tsawler/annotext/config"
	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/langdetect"
	"github.com/tsawler/annotext/markup"
	"github.com/tsawler/annotext/model"
	"github.com/tsawler/annotext/parser"
	"github.com/tsawler/annotext/profile"
	"github.com/tsawler/annotext/route"
)

// Metadata keys the pipeline supplies ahead of the decoder's metadata.
const (
	URLKey         = "url"
	ContentTypeKey = "Content-Type"
)

// Pipeline runs documents through decoding, collection, commit and
// language detection. A Pipeline holds no per-document state and may be
// used from several goroutines.
type Pipeline struct {
	cfg      config.Config
	source   event.Source
	detector langdetect.Detector
	router   route.Router
	writer   commit.Writer
	policy   markup.Policy
	log      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the format-detecting decoder.
func WithSource(src event.Source) Option {
	return func(p *Pipeline) {
		p.source = src
	}
}

// WithDetector sets the language detector, regardless of the
// DetectLanguage setting. Nil disables detection.
func WithDetector(d langdetect.Detector) Option {
	return func(p *Pipeline) {
		p.detector = d
	}
}

// WithLogger sets the logger used by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// New builds a pipeline from cfg. Invalid settings are reported as
// ConfigurationErrors; a bad parser profile is not an error.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:    cfg,
		policy: markup.ParsePolicy(cfg.Mismatch),
		log:    logging.Logger(),
	}
	if cfg.DetectLanguage {
		if cfg.LegacyDetector {
			p.detector = langdetect.Legacy{}
		} else {
			p.detector = langdetect.Whatlang{}
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.Or(p.log)

	if p.source == nil {
		p.source = &parser.AutoDetect{
			Profile: profile.Load(cfg.ProfilePath, p.log),
			Digest:  cfg.Digest,
			Logger:  p.log,
		}
	}
	p.router = route.Router{Source: cfg.SourceView, Destination: cfg.TextView, Logger: p.log}
	p.writer = commit.Writer{Logger: p.log}
	return p, nil
}

// Config returns the settings the pipeline was built from.
func (p *Pipeline) Config() config.Config { return p.cfg }

// TextView returns the view of doc that extraction writes to, if present.
func (p *Pipeline) TextView(doc *model.Document) (*model.View, bool) {
	name := p.cfg.TextView
	if name == "" {
		name = route.DefaultTextView
	}
	return doc.View(name)
}

// Annotate extracts the raw bytes of doc's source view into its text view
// and returns the text view. A missing source view falls back to the
// current view.
func (p *Pipeline) Annotate(ctx context.Context, doc *model.Document) (*model.View, error) {
	src, dst, err := p.router.Resolve(doc)
	if err != nil {
		return nil, err
	}
	rc := src.DataReader()
	defer rc.Close()

	hint := event.Hint{MIME: src.MIME()}
	if err := p.populate(ctx, dst, rc, hint, external("", src.MIME()), p.cfg.Language); err != nil {
		return nil, err
	}
	return dst, nil
}

// Populate extracts r into view. url and mimeType, when set, are recorded
// as metadata ahead of the decoder's own. The configured language override
// is applied to view even when decoding fails.
func (p *Pipeline) Populate(ctx context.Context, view *model.View, r io.Reader, url, mimeType string) error {
	return p.populate(ctx, view, r, event.Hint{Name: url, MIME: mimeType}, external(url, mimeType), p.cfg.Language)
}

func external(url, mimeType string) model.Metadata {
	var m model.Metadata
	if url != "" {
		m.Add(URLKey, url)
	}
	if mimeType != "" {
		m.Add(ContentTypeKey, mimeType)
	}
	return m
}

func (p *Pipeline) populate(ctx context.Context, view *model.View, r io.Reader, hint event.Hint, meta model.Metadata, override string) error {
	lang := langdetect.Adapter{
		Detector:  p.detector,
		Override:  override,
		MinLength: p.cfg.MinLanguageText,
		Logger:    p.log,
	}

	res, err := markup.Drive(ctx, p.source, r, hint, markup.Options{Policy: p.policy, Logger: p.log})
	if err != nil {
		if override != "" {
			view.SetLanguage(langdetect.Canonical(override))
		}
		return err
	}
	if err := p.writer.Commit(res, view, meta); err != nil {
		return err
	}
	lang.Apply(view)
	return nil
}

// ProcessFile extracts the file at path into a new Document. language and
// mimeType override the configured values when set.
func (p *Pipeline) ProcessFile(ctx context.Context, path, language, mimeType string) (*model.Document, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return p.ProcessEntry(ctx, &collection.Entry{Path: path, Language: language, MIME: mimeType})
}

// ProcessEntry extracts one collection entry into a new Document. The
// entry's byte stream is released before ProcessEntry returns, and the
// configured timeout bounds the whole extraction.
func (p *Pipeline) ProcessEntry(ctx context.Context, e *collection.Entry) (*model.Document, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	doc := model.NewDocument()
	_, dst, err := p.router.Resolve(doc)
	if err != nil {
		return nil, err
	}

	override := e.Language
	if override == "" {
		override = p.cfg.Language
	}
	mimeType := e.MIME
	if mimeType == "" {
		mimeType = p.cfg.MIME
	}

	rc, err := e.Open()
	if err != nil {
		if override != "" {
			dst.SetLanguage(langdetect.Canonical(override))
		}
		return doc, err
	}
	defer rc.Close()

	url := e.URL()
	hint := event.Hint{Name: e.Path, MIME: mimeType}
	if err := p.populate(ctx, dst, rc, hint, external(url, mimeType), override); err != nil {
		return doc, fmt.Errorf("%s: %w", e.Name(), err)
	}
	return doc, nil
}

// EntryFunc receives each processed entry. err is the entry's extraction
// error, if any; doc is nil only when no Document could be created.
// Returning a non-nil error stops the run.
type EntryFunc func(e *collection.Entry, doc *model.Document, err error) error

// Run processes the collection one document at a time.
func (p *Pipeline) Run(ctx context.Context, it *collection.Iterator, fn EntryFunc) error {
	total := it.Len()
	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := it.Next()
		if err != nil {
			return err
		}
		doc, perr := p.ProcessEntry(ctx, e)
		p.progress(e, total, perr)
		if err := fn(e, doc, perr); err != nil {
			return err
		}
	}
	return nil
}

// Batch processes the collection with up to workers documents in flight.
// fn is never called concurrently. The first error returned by fn, or a
// cancelled ctx, stops the batch.
func (p *Pipeline) Batch(ctx context.Context, it *collection.Iterator, workers int, fn EntryFunc) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Workers must not touch it; only this goroutine advances it.
	total := it.Len()
	var mu sync.Mutex
	for it.HasNext() {
		if gctx.Err() != nil {
			break
		}
		e, err := it.Next()
		if err != nil {
			return errors.Join(err, g.Wait())
		}
		g.Go(func() error {
			doc, perr := p.ProcessEntry(gctx, e)
			mu.Lock()
			defer mu.Unlock()
			p.progress(e, total, perr)
			return fn(e, doc, perr)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pipeline) progress(e *collection.Entry, total int, err error) {
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, extracterr.ErrResource) {
			level = slog.LevelError
		}
		p.log.Log(context.Background(), level, "document failed", "index", e.Index, "total", total, "path", e.Path, "error", err)
		return
	}
	p.log.Info("document processed", "index", e.Index, "total", total, "path", e.Path)
}
