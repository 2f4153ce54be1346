// Package annotext extracts plain text, structural spans and metadata from
// documents in many formats.
//
// Each document is decoded into a stream of markup events, reduced in one
// pass into a frozen (text, spans, metadata) result, and committed into a
// write-once View of a Document.
//
// Basic usage:
//
//	res, err := annotext.Open("report.docx").Result()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(res.Text)
//	for _, a := range res.Annotations {
//	    fmt.Println(a.Name, res.Text[a.Begin:a.End])
//	}
//
// With options:
//
//	res, err := annotext.Open("page.html").
//	    Language("de").
//	    MIME("text/html").
//	    Result()
//
// For collections and multi-view documents, build a [Pipeline] with [New].
package annotext

import (
	"context"
	"log/slog"

	"github.com/tsawler/annotext/langdetect"
)

// Extractor is a fluent, immutable extraction request for one file. Each
// configuration method returns a new Extractor.
type Extractor struct {
	path    string
	options extractOptions
	logger  *slog.Logger
}

// Open returns an Extractor for the file at path. Nothing is read until a
// terminal method such as Result is called.
func Open(path string) *Extractor {
	return &Extractor{path: path, options: defaultOptions()}
}

func (e *Extractor) clone() *Extractor {
	c := *e
	return &c
}

// Language sets the document language, skipping detection.
func (e *Extractor) Language(code string) *Extractor {
	c := e.clone()
	c.options.language = code
	return c
}

// MIME sets the content type instead of detecting it.
func (e *Extractor) MIME(mimeType string) *Extractor {
	c := e.clone()
	c.options.mime = mimeType
	return c
}

// Profile loads parser tuning from a YAML file.
func (e *Extractor) Profile(path string) *Extractor {
	c := e.clone()
	c.options.profilePath = path
	return c
}

// DetectLanguage enables language detection.
func (e *Extractor) DetectLanguage() *Extractor {
	c := e.clone()
	c.options.detect = true
	return c
}

// Detector enables language detection with d.
func (e *Extractor) Detector(d langdetect.Detector) *Extractor {
	c := e.clone()
	c.options.detect = true
	c.options.detector = d
	return c
}

// Strict fails on close tags that do not match the open element.
func (e *Extractor) Strict() *Extractor {
	c := e.clone()
	c.options.strict = true
	return c
}

// Digest records a blake3 digest of the input in the metadata.
func (e *Extractor) Digest() *Extractor {
	c := e.clone()
	c.options.digest = true
	return c
}

// Logger sets the logger.
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	c := e.clone()
	c.logger = l
	return c
}

// Result extracts the file.
func (e *Extractor) Result() (*Result, error) {
	return e.ResultContext(context.Background())
}

// ResultContext extracts the file, honoring ctx.
func (e *Extractor) ResultContext(ctx context.Context) (*Result, error) {
	var opts []Option
	if e.logger != nil {
		opts = append(opts, WithLogger(e.logger))
	}
	if e.options.detector != nil {
		opts = append(opts, WithDetector(e.options.detector))
	}
	p, err := New(e.options.config(), opts...)
	if err != nil {
		return nil, err
	}
	doc, err := p.ProcessFile(ctx, e.path, "", "")
	if err != nil {
		return nil, err
	}
	v, _ := p.TextView(doc)
	return NewResult(v), nil
}

// Text extracts the file and returns only its text.
func (e *Extractor) Text() (string, error) {
	res, err := e.Result()
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	text := annotext.Must(annotext.Open("notes.md").Text())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
