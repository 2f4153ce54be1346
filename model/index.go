package model

import "strings"

// Annotation is a span registered in a View's annotation index.
type Annotation struct {
	ID int // Position in the index, assigned at commit
	Span
}

// Index is the ordered, read-only annotation index of a View.
type Index struct {
	items []Annotation
}

// NewIndex builds an index from annotations. The slice is copied.
func NewIndex(items []Annotation) *Index {
	cp := make([]Annotation, len(items))
	copy(cp, items)
	return &Index{items: cp}
}

// Len returns the number of annotations. A nil index is empty.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.items)
}

// At returns the i-th annotation.
func (ix *Index) At(i int) Annotation {
	return ix.items[i]
}

// All returns a copy of every annotation in index order.
func (ix *Index) All() []Annotation {
	if ix == nil {
		return nil
	}
	out := make([]Annotation, len(ix.items))
	copy(out, ix.items)
	return out
}

// Spans returns the annotations as plain spans, in index order.
func (ix *Index) Spans() []Span {
	if ix == nil {
		return nil
	}
	out := make([]Span, len(ix.items))
	for i, a := range ix.items {
		out[i] = a.Span
	}
	return out
}

// Select returns the annotations whose element name equals name, ignoring
// case, in index order.
func (ix *Index) Select(name string) []Annotation {
	if ix == nil {
		return nil
	}
	var out []Annotation
	for _, a := range ix.items {
		if strings.EqualFold(a.Name, name) {
			out = append(out, a)
		}
	}
	return out
}
