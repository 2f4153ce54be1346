package model

import "strings"

// Pair is a single metadata entry.
type Pair struct {
	Name  string
	Value string
}

// Metadata is an ordered sequence of name/value pairs. Duplicate names are
// allowed and kept in insertion order.
type Metadata []Pair

// Add appends a pair.
func (m *Metadata) Add(name, value string) {
	*m = append(*m, Pair{Name: name, Value: value})
}

// Append appends all pairs of other, preserving their order.
func (m *Metadata) Append(other Metadata) {
	*m = append(*m, other...)
}

// Lookup returns the value of the first pair with the given name.
func (m Metadata) Lookup(name string) (string, bool) {
	for _, p := range m {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Get is Lookup without the presence flag.
func (m Metadata) Get(name string) string {
	v, _ := m.Lookup(name)
	return v
}

// LookupFold is Lookup with case-insensitive name matching. HTTP-style names
// such as Content-Type are not consistently cased across decoders.
func (m Metadata) LookupFold(name string) (string, bool) {
	for _, p := range m {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// All returns every value recorded under name, in order.
func (m Metadata) All(name string) []string {
	var out []string
	for _, p := range m {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

// Names returns the distinct names in order of first appearance.
func (m Metadata) Names() []string {
	seen := make(map[string]bool, len(m))
	names := make([]string, 0, len(m))
	for _, p := range m {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// Len returns the number of pairs.
func (m Metadata) Len() int { return len(m) }

// Clone returns a copy that shares no backing array with m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}
