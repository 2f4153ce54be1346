package model

import "strings"

// Attr is a markup attribute carried on a span.
type Attr struct {
	Name  string
	Value string
}

// Span is a structural annotation: the half-open interval [Begin, End) of
// the owning View's text covered by the element Name.
type Span struct {
	Name  string
	Begin int
	End   int
	Attrs []Attr
}

// Len returns End - Begin.
func (s Span) Len() int { return s.End - s.Begin }

// Empty reports whether the span covers no text.
func (s Span) Empty() bool { return s.Begin == s.End }

// Attr returns the value of the named attribute. Attribute names are
// matched case-insensitively.
func (s Span) Attr(name string) (string, bool) {
	for _, a := range s.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Within reports whether 0 <= Begin <= End <= length.
func (s Span) Within(length int) bool {
	return s.Begin >= 0 && s.Begin <= s.End && s.End <= length
}

// Clone returns a copy of s with its own attribute slice.
func (s Span) Clone() Span {
	if s.Attrs != nil {
		attrs := make([]Attr, len(s.Attrs))
		copy(attrs, s.Attrs)
		s.Attrs = attrs
	}
	return s
}
