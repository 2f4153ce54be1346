package markup

import "github.com/tsawler/annotext/model"

// Result is the frozen (text, spans, metadata) triple of one document.
// Accessors return copies; a Result never changes after it is produced.
type Result struct {
	text  string
	spans []model.Span
	meta  model.Metadata
}

// Freeze builds a Result from values produced outside a Collector. The
// inputs are copied.
func Freeze(text string, spans []model.Span, meta model.Metadata) *Result {
	cp := make([]model.Span, len(spans))
	for i, s := range spans {
		cp[i] = s.Clone()
	}
	return &Result{text: text, spans: cp, meta: meta.Clone()}
}

// Text returns the extracted plain text.
func (r *Result) Text() string { return r.text }

// Len returns the text length in bytes.
func (r *Result) Len() int { return len(r.text) }

// Spans returns the finalized spans in the order they were closed.
func (r *Result) Spans() []model.Span {
	out := make([]model.Span, len(r.spans))
	for i, s := range r.spans {
		out[i] = s.Clone()
	}
	return out
}

// SpanCount returns the number of spans.
func (r *Result) SpanCount() int { return len(r.spans) }

// Metadata returns the decoder-supplied metadata in encounter order.
func (r *Result) Metadata() model.Metadata { return r.meta.Clone() }

// Covered returns the text covered by s.
func (r *Result) Covered(s model.Span) string {
	if !s.Within(len(r.text)) {
		return ""
	}
	return r.text[s.Begin:s.End]
}
