package filter

import (
	"context"
	"strings"

	"github.com/google/uuid"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Rename renames the field at Field. Target is the new name of the last
// segment; a dotted Target moves the field instead.
type Rename struct {
	Field         string
	Target        string
	IgnoreMissing bool
}

func (Rename) Name() string { return "rename" }

func (f Rename) Apply(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	if _, ok := rec.Find(f.Field); !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	if strings.Contains(f.Target, ".") {
		return Move{Field: f.Field, Target: f.Target}.Apply(ctx, rec)
	}
	if err := rec.Rename(f.Field, f.Target); err != nil {
		return nil, err
	}
	return one(rec), nil
}

// Move relocates a field to another dot-path, creating intermediate structs.
// Parents left empty are removed.
type Move struct {
	Field         string
	Target        string
	IgnoreMissing bool
}

func (Move) Name() string { return "move" }

func (f Move) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	v, ok := rec.Remove(f.Field)
	if !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	if err := rec.Insert(f.Target, v); err != nil {
		return nil, err
	}
	return one(rec), nil
}

// Exclude removes fields. Missing fields are ignored.
type Exclude struct {
	Fields []string
}

func (Exclude) Name() string { return "exclude" }

func (f Exclude) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	for _, p := range f.Fields {
		rec.Remove(p)
	}
	return one(rec), nil
}

// Append adds Value to the field at Field. An existing ARRAY grows by one
// element, an existing scalar becomes a two element ARRAY. With Overwrite the
// field is replaced.
type Append struct {
	Field     string
	Value     filepulse.TypedValue
	Overwrite bool
}

func (Append) Name() string { return "append" }

func (f Append) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	prev, ok := rec.Find(f.Field)
	next := f.Value
	if ok && !f.Overwrite && !prev.IsNull() {
		if prev.Type() == filepulse.TypeArray {
			vs, err := prev.Array()
			if err != nil {
				return nil, err
			}
			next = filepulse.Array(append(vs, f.Value.Value()))
		} else {
			next = filepulse.Array([]any{prev.Value(), f.Value.Value()})
		}
	}
	if err := rec.Insert(f.Field, next); err != nil {
		return nil, err
	}
	return one(rec), nil
}

// Convert casts the field at Field to To.
type Convert struct {
	Field         string
	To            filepulse.Type
	IgnoreMissing bool
}

func (Convert) Name() string { return "convert" }

func (f Convert) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	v, ok := rec.Find(f.Field)
	if !ok {
		return missing(rec, f.Field, f.IgnoreMissing)
	}
	c, err := v.As(f.To)
	if err != nil {
		if de, ok := filepulse.AsDataError(err); ok && de.Path == "" {
			de.Path = f.Field
		}
		return nil, err
	}
	if err := rec.Insert(f.Field, c); err != nil {
		return nil, err
	}
	return one(rec), nil
}

// GenerateID sets Field to a random UUID.
type GenerateID struct {
	Field string
}

func (GenerateID) Name() string { return "generate-id" }

func (f GenerateID) Apply(_ context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	field := f.Field
	if field == "" {
		field = "id"
	}
	if err := rec.Insert(field, filepulse.String(uuid.NewString())); err != nil {
		return nil, err
	}
	return one(rec), nil
}
