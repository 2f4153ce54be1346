// Package event defines the markup event stream that format decoders emit
// and the collector consumes.
//
// A stream is an ordered sequence of OpenTag, Characters, CloseTag and
// Metadata events, terminated by exactly one EndOfDocument or Error event.
// Decoders implement [Source]; they call a [Handler] for the first four
// kinds and signal the terminal event through Parse's return value.
package event

import (
	"context"
	"fmt"
	"io"

	"github.com/tsawler/annotext/model"
)

// Kind identifies an event.
type Kind int

const (
	OpenTag Kind = iota
	Characters
	CloseTag
	Metadata
	EndOfDocument
	Error
)

func (k Kind) String() string {
	switch k {
	case OpenTag:
		return "OpenTag"
	case Characters:
		return "Characters"
	case CloseTag:
		return "CloseTag"
	case Metadata:
		return "Metadata"
	case EndOfDocument:
		return "EndOfDocument"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attr is an element attribute.
type Attr = model.Attr

// Event is one item of the stream. Only the fields relevant to Kind are set.
type Event struct {
	Kind  Kind
	Name  string // OpenTag, CloseTag
	Attrs []Attr // OpenTag
	Text  string // Characters
	Key   string // Metadata
	Value string // Metadata
	Err   error  // Error
}

// Open returns an OpenTag event.
func Open(name string, attrs ...Attr) Event {
	return Event{Kind: OpenTag, Name: name, Attrs: attrs}
}

// Chars returns a Characters event.
func Chars(text string) Event { return Event{Kind: Characters, Text: text} }

// Close returns a CloseTag event.
func Close(name string) Event { return Event{Kind: CloseTag, Name: name} }

// Meta returns a Metadata event.
func Meta(key, value string) Event { return Event{Kind: Metadata, Key: key, Value: value} }

// End returns an EndOfDocument event.
func End() Event { return Event{Kind: EndOfDocument} }

// Fail returns an Error event.
func Fail(err error) Event { return Event{Kind: Error, Err: err} }

func (e Event) String() string {
	switch e.Kind {
	case OpenTag:
		return fmt.Sprintf("OpenTag(%s)", e.Name)
	case Characters:
		return fmt.Sprintf("Characters(%q)", e.Text)
	case CloseTag:
		return fmt.Sprintf("CloseTag(%s)", e.Name)
	case Metadata:
		return fmt.Sprintf("Metadata(%s=%q)", e.Key, e.Value)
	case Error:
		return fmt.Sprintf("Error(%v)", e.Err)
	default:
		return e.Kind.String()
	}
}

// Handler receives the non-terminal events of a stream.
type Handler interface {
	OpenTag(name string, attrs []Attr)
	Characters(text string)
	CloseTag(name string)
	Metadata(key, value string)
}

// Hint carries what the caller knows about the input.
type Hint struct {
	Name string // File name or URL, used for extension-based detection
	MIME string // Declared content type, may be empty
}

// Source decodes a document format into events.
//
// Parse returns nil once the whole document has been emitted, which the
// driver turns into EndOfDocument. Any other return value becomes an Error
// event. Parse must not retain h after returning.
type Source interface {
	Parse(ctx context.Context, r io.Reader, hint Hint, h Handler) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, r io.Reader, hint Hint, h Handler) error

// Parse calls f.
func (f SourceFunc) Parse(ctx context.Context, r io.Reader, hint Hint, h Handler) error {
	return f(ctx, r, hint, h)
}

// Dispatch delivers a non-terminal event to h. Terminal events are ignored.
func Dispatch(h Handler, e Event) {
	switch e.Kind {
	case OpenTag:
		h.OpenTag(e.Name, e.Attrs)
	case Characters:
		h.Characters(e.Text)
	case CloseTag:
		h.CloseTag(e.Name)
	case Metadata:
		h.Metadata(e.Key, e.Value)
	}
}
