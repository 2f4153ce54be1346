// Package route picks the source and destination views of a Document.
package route

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/model"
)

// DefaultTextView is the destination view name used when none is configured.
const DefaultTextView = "textView"

// Router resolves the views an extraction reads from and writes to.
type Router struct {
	Source      string // Defaults to model.DefaultViewName
	Destination string // Defaults to DefaultTextView
	Logger      *slog.Logger
}

// Resolve returns the source and destination views of doc.
//
// A missing source view is not an error: the document's current view is
// used instead and a warning is logged. The destination view is created
// when absent; an existing destination that already holds text or
// metadata is rejected with a WriteOnceViolation.
func (r Router) Resolve(doc *model.Document) (src, dst *model.View, err error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("route: nil document")
	}
	srcName := r.Source
	if srcName == "" {
		srcName = model.DefaultViewName
	}
	dstName := r.Destination
	if dstName == "" {
		dstName = DefaultTextView
	}

	src, ok := doc.View(srcName)
	if !ok {
		src = doc.CurrentView()
		logging.Or(r.Logger).Warn("source view not found, using current view instead",
			"document", doc.ID, "view", srcName, "using", src.Name())
	}

	dst, ok = doc.View(dstName)
	if ok {
		if dst.Populated() {
			field := "text"
			if !dst.HasText() {
				field = "metadata"
			}
			return nil, nil, &extracterr.WriteOnceViolation{View: dstName, Field: field}
		}
		return src, dst, nil
	}

	dst, err = doc.CreateView(dstName)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}
