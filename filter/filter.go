// Package filter transforms records. A Filter receives one record and returns
// zero, one or many records; a Pipeline chains filters.
package filter

import (
	"context"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Filter transforms a record. Implementations may mutate rec in place and
// return it. Returning no record drops it.
type Filter interface {
	Name() string
	Apply(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error)
}

// Func adapts a function to the Filter interface.
func Func(name string, fn func(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error)) Filter {
	return funcFilter{name: name, fn: fn}
}

type funcFilter struct {
	name string
	fn   func(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error)
}

func (f funcFilter) Name() string { return f.name }

func (f funcFilter) Apply(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	return f.fn(ctx, rec)
}

// IgnoreFailure wraps f so that a failing record passes through unchanged.
// The pipeline logs the swallowed error.
func IgnoreFailure(f Filter) Filter { return ignoreFailure{Filter: f} }

type ignoreFailure struct{ Filter }

func one(rec *filepulse.TypedStruct) []*filepulse.TypedStruct {
	return []*filepulse.TypedStruct{rec}
}

// missing returns nil when ignore is set, else a field_not_found error.
func missing(rec *filepulse.TypedStruct, path string, ignore bool) ([]*filepulse.TypedStruct, error) {
	if ignore {
		return one(rec), nil
	}
	return nil, filepulse.FieldNotFound(path)
}
