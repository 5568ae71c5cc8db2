package filepulse

import (
	"slices"
	"strings"
)

// FieldPaths is an immutable set of dot-path patterns walked one segment at a
// time alongside a nested record.
//
//	p := NewFieldPaths("a.b.c", "a.d")
//	p.Next("a").AnyMatches("d") // true
type FieldPaths struct {
	paths []string
}

// NewFieldPaths returns a set holding the given paths. Empty and duplicate
// paths are ignored.
func NewFieldPaths(paths ...string) FieldPaths {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return FieldPaths{paths: out}
}

// Next returns the patterns starting with field, with that first segment
// stripped. Patterns equal to field are consumed and dropped.
func (p FieldPaths) Next(field string) FieldPaths {
	var out []string
	for _, path := range p.paths {
		head, rest, nested := strings.Cut(path, ".")
		if nested && head == field && rest != "" && !slices.Contains(out, rest) {
			out = append(out, rest)
		}
	}
	return FieldPaths{paths: out}
}

// AnyMatches reports whether field equals one of the patterns.
func (p FieldPaths) AnyMatches(field string) bool { return slices.Contains(p.paths, field) }

func (p FieldPaths) Len() int { return len(p.paths) }

// Paths returns a copy of the patterns.
func (p FieldPaths) Paths() []string { return slices.Clone(p.paths) }
