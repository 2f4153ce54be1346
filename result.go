package annotext

import (
	"sort"

	"github.com/tsawler/annotext/model"
)

// Field is a metadata entry.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Annotation is a structural span over Result.Text. Begin and End are byte
// offsets.
type Annotation struct {
	Name  string            `json:"name"`
	Begin int               `json:"begin"`
	End   int               `json:"end"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Result is a flattened, serializable copy of an extracted text view.
type Result struct {
	URL         string       `json:"url,omitempty"`
	Text        string       `json:"text"`
	Language    string       `json:"language,omitempty"`
	Metadata    []Field      `json:"metadata"`
	Annotations []Annotation `json:"spans"`
}

// NewResult copies the committed contents of v. A nil view yields an empty
// Result.
func NewResult(v *model.View) *Result {
	r := &Result{Metadata: []Field{}, Annotations: []Annotation{}}
	if v == nil {
		return r
	}
	r.Text = v.Text()
	r.Language = v.Language()
	meta := v.Metadata()
	r.URL = meta.Get(URLKey)
	for _, p := range meta {
		r.Metadata = append(r.Metadata, Field{Name: p.Name, Value: p.Value})
	}
	for _, a := range v.Annotations().All() {
		out := Annotation{Name: a.Name, Begin: a.Begin, End: a.End}
		if len(a.Attrs) > 0 {
			out.Attrs = make(map[string]string, len(a.Attrs))
			for _, at := range a.Attrs {
				if _, dup := out.Attrs[at.Name]; !dup {
					out.Attrs[at.Name] = at.Value
				}
			}
		}
		r.Annotations = append(r.Annotations, out)
	}
	return r
}

// Get returns the first metadata value named name, or "".
func (r *Result) Get(name string) string {
	for _, f := range r.Metadata {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Covered returns the text covered by a, or "" when a lies outside it.
func (r *Result) Covered(a Annotation) string {
	if a.Begin < 0 || a.Begin > a.End || a.End > len(r.Text) {
		return ""
	}
	return r.Text[a.Begin:a.End]
}

// Select returns the annotations named name in document order, that is by
// Begin and then by decreasing length.
func (r *Result) Select(name string) []Annotation {
	var out []Annotation
	for _, a := range r.Annotations {
		if a.Name == name {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Begin != out[j].Begin {
			return out[i].Begin < out[j].Begin
		}
		return out[i].End > out[j].End
	})
	return out
}
