// Package commit writes a frozen markup result into a View.
package commit

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/markup"
	"github.com/tsawler/annotext/model"
)

// ErrNilResult is returned when Commit is called without a result.
var ErrNilResult = errors.New("commit: nil result")

// Writer commits results into views. The zero value is ready to use.
type Writer struct {
	// DropEmpty leaves zero-length spans out of the annotation index.
	// Off by default: filtering is normally a consumer concern.
	DropEmpty bool
	Logger    *slog.Logger
}

// Commit installs res into view. External metadata (for example the source
// URL and content type) is placed ahead of the decoder's metadata so that a
// first-match lookup prefers it. One annotation is created per span, in
// the result's order.
//
// Commit is all-or-nothing: a write-once violation or an out-of-range span
// leaves the view untouched.
func (w *Writer) Commit(res *markup.Result, view *model.View, external model.Metadata) error {
	if res == nil {
		return ErrNilResult
	}
	if view == nil {
		return fmt.Errorf("commit: nil view")
	}

	text := res.Text()

	meta := make(model.Metadata, 0, len(external)+res.Metadata().Len())
	meta.Append(external)
	meta.Append(res.Metadata())

	spans := res.Spans()
	annotations := make([]model.Annotation, 0, len(spans))
	for _, s := range spans {
		if w.DropEmpty && s.Empty() {
			continue
		}
		annotations = append(annotations, model.Annotation{ID: len(annotations), Span: s})
	}

	if err := view.Publish(model.Contents{
		Text:        text,
		Metadata:    meta,
		Annotations: annotations,
	}); err != nil {
		return err
	}

	logging.Or(w.Logger).Debug("committed view",
		"view", view.Name(), "text_len", len(text), "annotations", len(annotations), "metadata", meta.Len())
	return nil
}
