package model

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/annotext/extracterr"
)

// View is one named content representation of a Document: raw bytes, an
// extracted text with its annotation index, or both.
type View struct {
	name string

	data    []byte
	mime    string
	hasData bool

	text    string
	hasText bool

	meta    Metadata
	hasMeta bool

	index    *Index
	language string
}

func newView(name string) *View {
	return &View{name: name, index: NewIndex(nil)}
}

// Name returns the view name.
func (v *View) Name() string { return v.name }

// SetData sets the raw bytes of the view. It may be called once.
func (v *View) SetData(data []byte, mime string) error {
	if v.hasData {
		return &extracterr.WriteOnceViolation{View: v.name, Field: "data"}
	}
	v.data = data
	v.mime = mime
	v.hasData = true
	return nil
}

// HasData reports whether raw bytes were set.
func (v *View) HasData() bool { return v.hasData }

// Data returns the raw bytes of the view.
func (v *View) Data() []byte { return v.data }

// MIME returns the MIME type recorded with the raw bytes.
func (v *View) MIME() string { return v.mime }

// DataReader returns a stream over the raw bytes. A view without data
// yields an empty stream.
func (v *View) DataReader() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(v.data))
}

// Text returns the committed plain text.
func (v *View) Text() string { return v.text }

// HasText reports whether text has been committed.
func (v *View) HasText() bool { return v.hasText }

// SetText commits the plain text of the view. It may be called once.
func (v *View) SetText(text string) error {
	if v.hasText {
		return &extracterr.WriteOnceViolation{View: v.name, Field: "text"}
	}
	v.text = text
	v.hasText = true
	return nil
}

// Metadata returns a copy of the committed metadata.
func (v *View) Metadata() Metadata { return v.meta.Clone() }

// HasMetadata reports whether metadata has been committed.
func (v *View) HasMetadata() bool { return v.hasMeta }

// SetMetadata commits the metadata of the view. It may be called once.
func (v *View) SetMetadata(m Metadata) error {
	if v.hasMeta {
		return &extracterr.WriteOnceViolation{View: v.name, Field: "metadata"}
	}
	v.meta = m.Clone()
	v.hasMeta = true
	return nil
}

// Annotations returns the annotation index. It is never nil.
func (v *View) Annotations() *Index { return v.index }

// Language returns the document language, or "" when unknown.
func (v *View) Language() string { return v.language }

// SetLanguage records the document language.
func (v *View) SetLanguage(lang string) { v.language = lang }

// Populated reports whether text or metadata has been committed.
func (v *View) Populated() bool { return v.hasText || v.hasMeta }

// CoveredText returns the slice of the view text covered by s, or "" when s
// lies outside the text.
func (v *View) CoveredText(s Span) string {
	if !s.Within(len(v.text)) {
		return ""
	}
	return v.text[s.Begin:s.End]
}

// Contents is everything Publish installs into a View.
type Contents struct {
	Text        string
	Metadata    Metadata
	Annotations []Annotation
}

// Publish installs text, metadata and the annotation index in one step.
// All checks run before anything is assigned: on error the View is left
// exactly as it was.
func (v *View) Publish(c Contents) error {
	if v.hasText {
		return &extracterr.WriteOnceViolation{View: v.name, Field: "text"}
	}
	if v.hasMeta {
		return &extracterr.WriteOnceViolation{View: v.name, Field: "metadata"}
	}
	for _, a := range c.Annotations {
		if !a.Within(len(c.Text)) {
			return fmt.Errorf("view %q: span %s [%d,%d) outside text of length %d",
				v.name, a.Name, a.Begin, a.End, len(c.Text))
		}
	}

	index := NewIndex(c.Annotations)
	meta := c.Metadata.Clone()

	v.text, v.hasText = c.Text, true
	v.meta, v.hasMeta = meta, true
	v.index = index
	return nil
}
