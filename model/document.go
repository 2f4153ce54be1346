package model

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultViewName is the name of the view every Document starts with.
const DefaultViewName = "_InitialView"

// Document is a source document with one or more named views.
type Document struct {
	ID string

	views   []*View
	byName  map[string]*View
	current *View
}

// NewDocument creates a document holding only the default view, which is
// also the current view.
func NewDocument() *Document {
	d := &Document{
		ID:     uuid.NewString(),
		byName: make(map[string]*View),
	}
	d.current = d.add(DefaultViewName)
	return d
}

// NewDocumentFromBytes creates a document whose default view holds data.
func NewDocumentFromBytes(data []byte, mime string) *Document {
	d := NewDocument()
	_ = d.current.SetData(data, mime)
	return d
}

func (d *Document) add(name string) *View {
	v := newView(name)
	d.views = append(d.views, v)
	d.byName[name] = v
	return v
}

// View returns the named view.
func (d *Document) View(name string) (*View, bool) {
	v, ok := d.byName[name]
	return v, ok
}

// CreateView adds a new, empty view. It fails if the name is taken.
func (d *Document) CreateView(name string) (*View, error) {
	if name == "" {
		return nil, fmt.Errorf("view name must not be empty")
	}
	if _, ok := d.byName[name]; ok {
		return nil, fmt.Errorf("view %q already exists", name)
	}
	return d.add(name), nil
}

// CurrentView returns the view the document is positioned on.
func (d *Document) CurrentView() *View { return d.current }

// SetCurrentView positions the document on the named view.
func (d *Document) SetCurrentView(name string) error {
	v, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("no view named %q", name)
	}
	d.current = v
	return nil
}

// Views returns the views in creation order.
func (d *Document) Views() []*View {
	out := make([]*View, len(d.views))
	copy(out, d.views)
	return out
}

// ViewCount returns the number of views.
func (d *Document) ViewCount() int { return len(d.views) }
