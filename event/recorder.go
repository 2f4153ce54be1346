package event

import (
	"context"
	"io"
)

// Recorder is a Handler that keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OpenTag(name string, attrs []Attr) {
	var cp []Attr
	if len(attrs) > 0 {
		cp = make([]Attr, len(attrs))
		copy(cp, attrs)
	}
	r.Events = append(r.Events, Event{Kind: OpenTag, Name: name, Attrs: cp})
}

func (r *Recorder) Characters(text string) { r.Events = append(r.Events, Chars(text)) }
func (r *Recorder) CloseTag(name string)   { r.Events = append(r.Events, Close(name)) }
func (r *Recorder) Metadata(k, v string)   { r.Events = append(r.Events, Meta(k, v)) }

// Names returns the element names of the recorded OpenTag events.
func (r *Recorder) Names() []string {
	var names []string
	for _, e := range r.Events {
		if e.Kind == OpenTag {
			names = append(names, e.Name)
		}
	}
	return names
}

// Text returns the concatenation of the recorded Characters events.
func (r *Recorder) Text() string {
	var n int
	for _, e := range r.Events {
		n += len(e.Text)
	}
	b := make([]byte, 0, n)
	for _, e := range r.Events {
		if e.Kind == Characters {
			b = append(b, e.Text...)
		}
	}
	return string(b)
}

// Replay is a Source that ignores its input and emits a fixed stream. An
// Error event in the stream stops replay and is returned from Parse;
// events after an EndOfDocument are not emitted.
type Replay []Event

// Parse emits the stream to h.
func (s Replay) Parse(ctx context.Context, _ io.Reader, _ Hint, h Handler) error {
	for _, e := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch e.Kind {
		case Error:
			return e.Err
		case EndOfDocument:
			return nil
		default:
			Dispatch(h, e)
		}
	}
	return nil
}
