package filter

import (
	"context"
	"strings"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Explode emits one record per element of the ARRAY at Field, each record
// being a copy of the input holding a single element. Records whose field
// is not an array, or is an empty one, pass through unchanged.
type Explode struct {
	Field         string
	IgnoreMissing bool
}

func (Explode) Name() string { return "explode" }

func (f Explode) Apply(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	v, ok := rec.Find(f.Field)
	if !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	if v.Type() != filepulse.TypeArray {
		return one(rec), nil
	}
	vs, err := v.Array()
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return one(rec), nil
	}
	out := make([]*filepulse.TypedStruct, 0, len(vs))
	for i := range vs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := rec.Clone()
		cv, _ := c.Find(f.Field)
		elems, err := cv.Array()
		if err != nil {
			return nil, err
		}
		ev, err := filepulse.Any(elems[i])
		if err != nil {
			return nil, err
		}
		if err := c.Insert(f.Field, ev); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Split turns the STRING at Field into an ARRAY of strings. Target defaults
// to Field and Separator to ",".
type Split struct {
	Field         string
	Target        string
	Separator     string
	IgnoreMissing bool
}

func (Split) Name() string { return "split" }

func (f Split) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	v, ok := rec.Find(f.Field)
	if !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	if v.IsNull() {
		return one(rec), nil
	}
	s, err := v.As(filepulse.TypeString)
	if err != nil {
		return nil, err
	}
	sep := f.Separator
	if sep == "" {
		sep = ","
	}
	parts := strings.Split(s.Value().(string), sep)
	vs := make([]any, len(parts))
	for i, p := range parts {
		vs[i] = p
	}
	target := f.Target
	if target == "" {
		target = f.Field
	}
	if err := rec.Insert(target, filepulse.ArrayOf(filepulse.Simple(filepulse.TypeString), vs)); err != nil {
		return nil, err
	}
	return one(rec), nil
}
