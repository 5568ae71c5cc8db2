// Package filepulse provides the typed record model used to read files into
// structured records:
//
// - Type, coercion between primitive kinds, and Parse for raw text literals
// - Schema variants (simple, array, map, struct, none) with lazy inference and Merge
// - TypedValue and TypedStruct, an ordered mutable record addressable by dot-paths
// - FieldPaths to walk configured path patterns alongside nested records
// - A single error model, DataError, keyed by code
//
// Design policy:
// - Keep the data model in the root package; readers live under source/, filters under filter/.
// - Nothing in this package is safe for concurrent mutation. Share records between goroutines by handing them over.
//
// Typical usage:
//
//	rec := filepulse.NewStruct()
//	rec.Put("id", filepulse.Parse("42"))
//	_ = rec.Insert("user.name", filepulse.String("ada"))
//	v, ok := rec.Find("user.name")
//
//	s, err := filepulse.Merge(a.Schema(), b.Schema())
package filepulse
