package filepulse

import (
	"bytes"
	"reflect"
	"slices"
)

// TypedValue pairs a raw value with its schema. The raw value is owned by
// the TypedValue, except for *TypedStruct values which are shared by
// reference.
type TypedValue struct {
	schema Schema
	value  any
}

// Of pairs v with schema as is. The caller guarantees that v is the Go
// representation of schema's type.
func Of(schema Schema, v any) TypedValue { return TypedValue{schema: schema, value: v} }

// ValueOf converts v to the representation of t and pairs it with the
// matching schema.
func ValueOf(t Type, v any) (TypedValue, error) {
	if t.isSimple() {
		c, err := t.Convert(v)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{schema: Simple(t), value: c}, nil
	}
	tv, err := Any(v)
	if err != nil {
		return TypedValue{}, err
	}
	return tv.As(t)
}

// Any infers the schema of v.
func Any(v any) (TypedValue, error) {
	switch x := v.(type) {
	case TypedValue:
		return x, nil
	case *TypedStruct:
		return Struct(x), nil
	case uint, uint64:
		if t, _ := TypeOf(x); t == TypeString {
			str, err := toString(x)
			if err != nil {
				return TypedValue{}, err
			}
			return String(str), nil
		}
	}
	s, err := SchemaOf(v)
	if err != nil {
		return TypedValue{}, err
	}
	switch s.Type() {
	case TypeArray:
		if _, ok := v.([]any); !ok {
			v = sliceValues(v)
		}
	case TypeMap:
		if _, ok := v.(map[string]any); !ok {
			v = mapValues(v)
		}
	}
	return TypedValue{schema: s, value: v}, nil
}

func String(s string) TypedValue      { return TypedValue{schema: Simple(TypeString), value: s} }
func Short(n int16) TypedValue        { return TypedValue{schema: Simple(TypeShort), value: n} }
func Int(n int32) TypedValue          { return TypedValue{schema: Simple(TypeInteger), value: n} }
func Long(n int64) TypedValue         { return TypedValue{schema: Simple(TypeLong), value: n} }
func Float(f float32) TypedValue      { return TypedValue{schema: Simple(TypeFloat), value: f} }
func Double(f float64) TypedValue     { return TypedValue{schema: Simple(TypeDouble), value: f} }
func Bool(b bool) TypedValue          { return TypedValue{schema: Simple(TypeBoolean), value: b} }
func Bytes(b []byte) TypedValue       { return TypedValue{schema: Simple(TypeBytes), value: b} }
func Null() TypedValue                { return TypedValue{schema: None()} }
func Array(vs []any) TypedValue       { return TypedValue{schema: LazyArraySchema(vs), value: vs} }
func Map(m map[string]any) TypedValue { return TypedValue{schema: LazyMapSchema(m), value: m} }

// ArrayOf returns an array value with a declared element schema.
func ArrayOf(element Schema, vs []any) TypedValue {
	return TypedValue{schema: NewArraySchema(element), value: vs}
}

// Struct wraps a struct. A nil struct is NULL.
func Struct(s *TypedStruct) TypedValue {
	if s == nil {
		return Null()
	}
	return TypedValue{value: s}
}

// Schema returns the schema of the value. For structs, it is a snapshot of
// the struct's current schema.
func (v TypedValue) Schema() Schema {
	if s, ok := v.value.(*TypedStruct); ok {
		return s.Schema()
	}
	if v.schema == nil {
		return None()
	}
	return v.schema
}

// Type returns the kind of the value.
func (v TypedValue) Type() Type {
	if _, ok := v.value.(*TypedStruct); ok {
		return TypeStruct
	}
	if v.schema == nil {
		return TypeNull
	}
	return v.schema.Type()
}

// Value returns the raw value.
func (v TypedValue) Value() any { return v.value }

// IsNull reports whether the value is NULL.
func (v TypedValue) IsNull() bool { return v.value == nil }

// String renders the value as a string, "null" for NULL.
func (v TypedValue) String() string {
	if v.value == nil {
		return "null"
	}
	s, err := toString(v.value)
	if err != nil {
		return ""
	}
	return s
}

func (v TypedValue) Int16() (int16, error)     { return toInt16(v.nonNull()) }
func (v TypedValue) Int32() (int32, error)     { return toInt32(v.nonNull()) }
func (v TypedValue) Int64() (int64, error)     { return toInt64(v.nonNull()) }
func (v TypedValue) Float32() (float32, error) { return toFloat32(v.nonNull()) }
func (v TypedValue) Float64() (float64, error) { return toFloat64(v.nonNull()) }
func (v TypedValue) Bool() (bool, error)       { return toBool(v.nonNull()) }
func (v TypedValue) Bytes() ([]byte, error)    { return toBytes(v.nonNull()) }

// nonNull substitutes NULL with a marker that no converter accepts so that
// getters fail with a conversion error instead of returning zero values.
func (v TypedValue) nonNull() any {
	if v.value == nil {
		return nullMarker{}
	}
	return v.value
}

type nullMarker struct{}

func (nullMarker) String() string { return "null" }

// Array returns the elements of an ARRAY value.
func (v TypedValue) Array() ([]any, error) {
	switch a := v.value.(type) {
	case []any:
		return a, nil
	case nil:
		return nil, errConversion("null", TypeArray, errUnsupported)
	case []byte, string:
		return nil, errConversion(v.value, TypeArray, errUnsupported)
	}
	if t, ok := TypeOf(v.value); ok && t == TypeArray {
		return sliceValues(v.value), nil
	}
	return nil, errConversion(v.value, TypeArray, errUnsupported)
}

// Map returns the entries of a MAP value. A STRUCT value is converted.
func (v TypedValue) Map() (map[string]any, error) {
	switch m := v.value.(type) {
	case map[string]any:
		return m, nil
	case *TypedStruct:
		return m.ToMap(), nil
	case nil:
		return nil, errConversion("null", TypeMap, errUnsupported)
	}
	if t, ok := TypeOf(v.value); ok && t == TypeMap {
		return mapValues(v.value), nil
	}
	return nil, errConversion(v.value, TypeMap, errUnsupported)
}

// Struct returns the struct of a STRUCT value. A MAP value is converted,
// fields being added in key order.
func (v TypedValue) Struct() (*TypedStruct, error) {
	switch s := v.value.(type) {
	case *TypedStruct:
		return s, nil
	case map[string]any:
		return StructFromMap(s)
	case nil:
		return nil, errConversion("null", TypeStruct, errUnsupported)
	}
	return nil, errConversion(v.value, TypeStruct, errUnsupported)
}

// As casts the value to t. Primitive targets go through the type
// converters; a scalar cast to ARRAY becomes a single element array.
func (v TypedValue) As(t Type) (TypedValue, error) {
	if v.Type() == t {
		return v, nil
	}
	if v.value == nil {
		return Null(), nil
	}
	if t.isSimple() {
		c, err := t.Convert(v.value)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{schema: Simple(t), value: c}, nil
	}
	switch t {
	case TypeArray:
		if vs, err := v.Array(); err == nil {
			return Array(vs), nil
		}
		return ArrayOf(v.Schema(), []any{v.value}), nil
	case TypeMap:
		m, err := v.Map()
		if err != nil {
			return TypedValue{}, err
		}
		return Map(m), nil
	case TypeStruct:
		s, err := v.Struct()
		if err != nil {
			return TypedValue{}, err
		}
		return Struct(s), nil
	}
	return TypedValue{}, errConversion(v.value, t, errUnsupported)
}

// Equal reports whether both values have equal schemas and equal raw values.
func (v TypedValue) Equal(o TypedValue) bool {
	if !v.Schema().Equal(o.Schema()) {
		return false
	}
	return equalRaw(v.value, o.value)
}

func equalRaw(a, b any) bool {
	switch x := a.(type) {
	case *TypedStruct:
		y, ok := b.(*TypedStruct)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case []any:
		y, ok := b.([]any)
		return ok && slices.EqualFunc(x, y, equalRaw)
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !equalRaw(xv, yv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// MarshalJSON renders the raw value; structs keep their field order.
func (v TypedValue) MarshalJSON() ([]byte, error) { return marshalRaw(v.value) }
