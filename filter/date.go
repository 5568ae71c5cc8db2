package filter

import (
	"context"
	"fmt"
	"time"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Date parses the STRING at Field and stores its Unix time in milliseconds
// as a LONG at Target (default Field). Layouts are tried in order; with none
// given, RFC 3339 with or without fractional seconds is accepted.
type Date struct {
	Field         string
	Target        string
	Layouts       []string
	IgnoreMissing bool
}

func (Date) Name() string { return "date" }

func (f Date) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
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
	t, err := parseTime(s.Value().(string), f.Layouts)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", f.Field, err)
	}
	target := f.Target
	if target == "" {
		target = f.Field
	}
	if err := rec.Insert(target, filepulse.Long(t.UnixMilli())); err != nil {
		return nil, err
	}
	return one(rec), nil
}

func parseTime(s string, layouts []string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339Nano, time.RFC3339}
	}
	var first error
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}
