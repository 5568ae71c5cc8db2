package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source"
)

// ParseJSON decodes the JSON text held in Field. The result goes to Target,
// which defaults to Field. With Merge, the fields of a decoded object are put
// at the root of the record instead. The text is read with the current
// source JSON driver and must hold exactly one value.
type ParseJSON struct {
	Field         string
	Target        string
	Merge         bool
	IgnoreMissing bool
}

func (ParseJSON) Name() string { return "parse-json" }

func (f ParseJSON) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	v, ok := rec.Find(f.Field)
	if !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	text, err := v.As(filepulse.TypeString)
	if err != nil {
		return nil, err
	}
	raw, _ := text.Value().(string)
	parsed, err := decodeOne(raw)
	if err != nil {
		return nil, fmt.Errorf("field '%s': invalid json: %w", f.Field, err)
	}
	if s, ok := parsed.(*filepulse.TypedStruct); ok && f.Merge {
		for name, fv := range s.All() {
			rec.Put(name, fv)
		}
		return one(rec), nil
	}
	pv, err := filepulse.Any(parsed)
	if err != nil {
		return nil, err
	}
	target := f.Target
	if target == "" {
		target = f.Field
	}
	if err := rec.Insert(target, pv); err != nil {
		return nil, err
	}
	return one(rec), nil
}

func decodeOne(raw string) (any, error) {
	src := source.CurrentJSONDriver().NewTokenSource(strings.NewReader(raw))
	v, err := eng.Decode(src)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after value")
		}
		return nil, err
	}
	return v, nil
}
