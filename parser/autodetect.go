// Package parser selects a format decoder for an input and runs it.
package parser

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/tsawler/annotext/convdoc"
	"github.com/tsawler/annotext/docx"
	"github.com/tsawler/annotext/epubdoc"
	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/format"
	"github.com/tsawler/annotext/htmldoc"
	"github.com/tsawler/annotext/imagedoc"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/mddoc"
	"github.com/tsawler/annotext/ocr"
	"github.com/tsawler/annotext/odt"
	"github.com/tsawler/annotext/pdfdoc"
	"github.com/tsawler/annotext/pptx"
	"github.com/tsawler/annotext/profile"
	"github.com/tsawler/annotext/textdoc"
	"github.com/tsawler/annotext/xlsx"
	"github.com/tsawler/annotext/xmldoc"
)

// Metadata keys emitted ahead of the decoder's own metadata.
const (
	ContentTypeKey = "Content-Type"
	ParsedByKey    = "X-Parsed-By"
	DigestKey      = "X-Content-Digest"
)

var (
	// ErrUnsupported is returned for formats no decoder handles.
	ErrUnsupported = errors.New("unsupported format")
	// ErrDisabled is returned for formats the profile turns off.
	ErrDisabled = errors.New("format disabled by profile")
	// ErrTooLarge is returned when the input exceeds the profile's MaxBytes.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// AutoDetect is an event.Source that sniffs the input format and delegates
// to the matching decoder.
type AutoDetect struct {
	// Profile tunes decoding; nil means profile.Default().
	Profile *profile.Profile
	// Digest adds a blake3 digest of the raw input as metadata.
	Digest bool
	// Recognize overrides image text recognition.
	Recognize imagedoc.Recognizer
	Logger    *slog.Logger
}

// Detect reports the format AutoDetect would use for data.
func (a *AutoDetect) Detect(data []byte, hint event.Hint) format.Format {
	if f, ok := a.profile().Override(hint.MIME); ok {
		return f
	}
	return format.Sniff(data, hint.Name, hint.MIME)
}

// Parse reads the input once, selects a decoder and runs it. Empty input
// yields only the Content-Type.
func (a *AutoDetect) Parse(ctx context.Context, r io.Reader, hint event.Hint, h event.Handler) error {
	log := logging.Or(a.Logger)
	p := a.profile()

	data, err := readBounded(r, p.MaxBytes)
	if err != nil {
		return err
	}

	f := a.Detect(data, hint)
	if len(data) == 0 {
		log.Debug("empty input", "name", hint.Name, "format", f)
		h.Metadata(ContentTypeKey, f.MIMEType())
		return nil
	}
	src, err := a.Source(f)
	if err != nil {
		return extracterr.NewParseFailure(f.String(), err)
	}
	log.Debug("selected decoder", "name", hint.Name, "format", f, "bytes", len(data))

	contentType := f.MIMEType()
	if f == format.Image {
		if mt := format.ImageMIME(data); mt != "" {
			contentType = mt
		}
	}
	h.Metadata(ContentTypeKey, contentType)
	h.Metadata(ParsedByKey, fmt.Sprintf("%T", src))
	if a.Digest {
		sum := blake3.Sum256(data)
		h.Metadata(DigestKey, "blake3:"+hex.EncodeToString(sum[:]))
	}

	if hint.MIME == "" {
		hint.MIME = contentType
	}
	if err := src.Parse(ctx, bytes.NewReader(data), hint, h); err != nil {
		return extracterr.NewParseFailure(f.String(), err)
	}
	return nil
}

// Source returns the decoder for f, honoring the profile.
func (a *AutoDetect) Source(f format.Format) (event.Source, error) {
	p := a.profile()
	if !p.Enabled(f) {
		return nil, fmt.Errorf("%w: %s", ErrDisabled, f)
	}
	switch f {
	case format.HTML:
		src := htmldoc.Source{Skip: p.SkipElements, Logger: a.Logger}
		if p.Readability {
			src.Navigation = htmldoc.NavigationExclusionStandard
		}
		return src, nil
	case format.DOCX:
		return docx.Source{Logger: a.Logger}, nil
	case format.ODT:
		return odt.Source{Logger: a.Logger}, nil
	case format.PDF:
		return pdfdoc.Source{Logger: a.Logger}, nil
	case format.Markdown:
		return mddoc.Source{Logger: a.Logger}, nil
	case format.Text:
		return textdoc.Source{Logger: a.Logger}, nil
	case format.Image:
		return imagedoc.Source{
			OCR:          p.OCR && (ocr.Enabled || a.Recognize != nil),
			OCRLanguages: p.OCRLanguages,
			Recognize:    a.Recognize,
			Logger:       a.Logger,
		}, nil
	case format.XLSX:
		return xlsx.Source{SkipHidden: p.SkipHidden, Logger: a.Logger}, nil
	case format.PPTX:
		return pptx.Source{
			SkipNotes:  !p.SpeakerNotes,
			SkipHidden: p.SkipHidden,
			Footers:    p.Footers,
			Logger:     a.Logger,
		}, nil
	case format.EPUB:
		src := epubdoc.Source{Skip: p.SkipElements, NonLinear: p.NonLinear, Logger: a.Logger}
		if p.Readability {
			src.Navigation = htmldoc.NavigationExclusionStandard
		}
		return src, nil
	case format.XML:
		return xmldoc.Source{Logger: a.Logger}, nil
	case format.RTF, format.DOC:
		return convdoc.Source{MIME: f.MIMEType(), Readability: p.Readability, Logger: a.Logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f)
	}
}

var defaultProfile = sync.OnceValue(profile.Default)

func (a *AutoDetect) profile() *profile.Profile {
	if a.Profile == nil {
		return defaultProfile()
	}
	return a.Profile
}

// readBounded reads r fully, failing when more than limit bytes are
// available. A limit of zero means unbounded.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, &extracterr.IOError{Op: "read", Err: err}
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &extracterr.IOError{Op: "read", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
