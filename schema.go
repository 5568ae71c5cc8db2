package filepulse

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Schema describes the shape of a value without the value. It is a closed
// set: *SimpleSchema, *ArraySchema, *MapSchema, *StructSchema and *NoneSchema.
// Consumers type-switch over these variants.
type Schema interface {
	// Type returns the kind described by the schema.
	Type() Type
	// Equal reports structural equality.
	Equal(other Schema) bool
	// Hash returns a structural hash consistent with Equal.
	Hash() uint64
	// String renders the canonical form, e.g. "ARRAY<STRUCT{a:LONG}>".
	String() string

	isSchema()
}

// ---- Simple ----

// SimpleSchema describes a primitive value or BYTES.
type SimpleSchema struct{ typ Type }

var simpleSchemas = [...]*SimpleSchema{
	TypeShort:   {TypeShort},
	TypeInteger: {TypeInteger},
	TypeLong:    {TypeLong},
	TypeFloat:   {TypeFloat},
	TypeDouble:  {TypeDouble},
	TypeBoolean: {TypeBoolean},
	TypeString:  {TypeString},
	TypeBytes:   {TypeBytes},
}

// Simple returns the shared schema for a primitive type or BYTES. It panics
// for ARRAY, MAP, STRUCT and NULL, which have dedicated constructors.
func Simple(t Type) *SimpleSchema {
	if !t.isSimple() {
		panic("filepulse.Simple: " + t.String() + " is not a simple type")
	}
	return simpleSchemas[t]
}

func (s *SimpleSchema) Type() Type { return s.typ }

func (s *SimpleSchema) Equal(other Schema) bool {
	o, ok := other.(*SimpleSchema)
	return ok && o.typ == s.typ
}

func (s *SimpleSchema) Hash() uint64   { return hashSchema(s) }
func (s *SimpleSchema) String() string { return s.typ.String() }
func (*SimpleSchema) isSchema()        {}

// ---- None ----

// NoneSchema describes the absence of data (NULL).
type NoneSchema struct{}

var noneSchema = &NoneSchema{}

// None returns the NULL schema.
func None() *NoneSchema { return noneSchema }

func (*NoneSchema) Type() Type { return TypeNull }

func (*NoneSchema) Equal(other Schema) bool {
	_, ok := other.(*NoneSchema)
	return ok
}

func (s *NoneSchema) Hash() uint64 { return hashSchema(s) }
func (*NoneSchema) String() string { return TypeNull.String() }
func (*NoneSchema) isSchema()      {}

// ---- Array / Map ----

type resolution uint8

const (
	unresolved resolution = iota
	resolved
)

// ArraySchema describes a homogeneous array. The element schema is either
// declared or inferred from the array values on the first call to
// ValueSchema. Inference is memoized and not safe for concurrent first use.
type ArraySchema struct {
	state  resolution
	value  Schema
	source []any
}

// NewArraySchema returns an array schema with a declared element schema.
func NewArraySchema(value Schema) *ArraySchema {
	return &ArraySchema{state: resolved, value: value}
}

// LazyArraySchema returns an array schema whose element schema is inferred
// from values when first needed.
func LazyArraySchema(values []any) *ArraySchema {
	return &ArraySchema{state: unresolved, source: values}
}

func (a *ArraySchema) Type() Type { return TypeArray }

// ValueSchema returns the element schema, inferring it on first use by
// merging the schema of every element.
func (a *ArraySchema) ValueSchema() (Schema, error) {
	if a.state == resolved {
		return a.value, nil
	}
	s, err := inferValues(len(a.source), slices.Values(a.source))
	if err != nil {
		return nil, err
	}
	a.value, a.state, a.source = s, resolved, nil
	return s, nil
}

// IsResolvable reports whether ValueSchema can currently succeed without an
// inference error due to an empty collection.
func (a *ArraySchema) IsResolvable() bool { return a.state == resolved || len(a.source) > 0 }

func (a *ArraySchema) Equal(other Schema) bool {
	o, ok := other.(*ArraySchema)
	if !ok {
		return false
	}
	return equalLazy(a, o)
}

func (a *ArraySchema) peek() Schema {
	s, _ := a.ValueSchema()
	return s
}

func (a *ArraySchema) Hash() uint64 { return hashSchema(a) }

func (a *ArraySchema) String() string {
	return "ARRAY<" + schemaString(a.peek()) + ">"
}

func (*ArraySchema) isSchema() {}

// MapSchema describes a map with STRING keys and homogeneous values. Like
// ArraySchema, the value schema may be inferred lazily.
type MapSchema struct {
	state  resolution
	value  Schema
	source map[string]any
}

// NewMapSchema returns a map schema with a declared value schema.
func NewMapSchema(value Schema) *MapSchema {
	return &MapSchema{state: resolved, value: value}
}

// LazyMapSchema returns a map schema whose value schema is inferred from
// values when first needed.
func LazyMapSchema(values map[string]any) *MapSchema {
	return &MapSchema{state: unresolved, source: values}
}

func (m *MapSchema) Type() Type { return TypeMap }

// KeySchema always returns the STRING schema.
func (m *MapSchema) KeySchema() Schema { return Simple(TypeString) }

// ValueSchema returns the value schema, inferring it on first use.
func (m *MapSchema) ValueSchema() (Schema, error) {
	if m.state == resolved {
		return m.value, nil
	}
	s, err := inferValues(len(m.source), maps.Values(m.source))
	if err != nil {
		return nil, err
	}
	m.value, m.state, m.source = s, resolved, nil
	return s, nil
}

// IsResolvable reports whether ValueSchema can currently succeed without an
// inference error due to an empty collection.
func (m *MapSchema) IsResolvable() bool { return m.state == resolved || len(m.source) > 0 }

func (m *MapSchema) Equal(other Schema) bool {
	o, ok := other.(*MapSchema)
	if !ok {
		return false
	}
	return equalLazy(m, o)
}

func (m *MapSchema) peek() Schema {
	s, _ := m.ValueSchema()
	return s
}

func (m *MapSchema) Hash() uint64 { return hashSchema(m) }

func (m *MapSchema) String() string {
	return "MAP<STRING," + schemaString(m.peek()) + ">"
}

func (*MapSchema) isSchema() {}

// lazy is implemented by the container schemas that may defer inference.
type lazy interface {
	IsResolvable() bool
	ValueSchema() (Schema, error)
}

var (
	_ lazy = (*ArraySchema)(nil)
	_ lazy = (*MapSchema)(nil)
)

// equalLazy compares inferred value schemas. Two collections that are still
// empty are equal; a collection whose inference fails equals nothing.
func equalLazy(a, b lazy) bool {
	if !a.IsResolvable() || !b.IsResolvable() {
		return !a.IsResolvable() && !b.IsResolvable()
	}
	va, err := a.ValueSchema()
	if err != nil {
		return false
	}
	vb, err := b.ValueSchema()
	if err != nil {
		return false
	}
	return equalSchemas(va, vb)
}

// inferenceError resolves every lazy schema reachable from s and returns the
// first inference failure.
func inferenceError(s Schema) error {
	switch x := s.(type) {
	case lazy:
		if !x.IsResolvable() {
			return nil
		}
		v, err := x.ValueSchema()
		if err != nil {
			return err
		}
		return inferenceError(v)
	case *StructSchema:
		for _, f := range x.fields {
			if err := inferenceError(f.schema); err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
		}
	}
	return nil
}

func inferValues(n int, values iter.Seq[any]) (Schema, error) {
	if n == 0 {
		return nil, errInference("empty collection")
	}
	var acc Schema
	for v := range values {
		s, err := SchemaOf(v)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
			continue
		}
		if acc, err = Merge(acc, s); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ---- Struct ----

// TypedField identifies a struct member: its position in insertion order,
// its name and its schema.
type TypedField struct {
	index  int
	name   string
	schema Schema
}

// NewTypedField returns a field description.
func NewTypedField(index int, name string, schema Schema) TypedField {
	return TypedField{index: index, name: name, schema: schema}
}

func (f TypedField) Index() int     { return f.index }
func (f TypedField) Name() string   { return f.name }
func (f TypedField) Schema() Schema { return f.schema }
func (f TypedField) Type() Type     { return f.schema.Type() }

func (f TypedField) String() string {
	return fmt.Sprintf("%d:%s:%s", f.index, f.name, schemaString(f.schema))
}

// StructSchema describes an ordered set of uniquely named fields. Indices are
// dense and follow insertion order.
type StructSchema struct {
	name   string
	fields []TypedField
	index  map[string]int
}

// NewStructSchema returns an empty struct schema. name is an optional label
// and does not take part in equality.
func NewStructSchema(name string) *StructSchema {
	return &StructSchema{name: name, index: map[string]int{}}
}

func (s *StructSchema) Type() Type   { return TypeStruct }
func (s *StructSchema) Name() string { return s.name }
func (s *StructSchema) Len() int     { return len(s.fields) }

// Field returns the field with the given name.
func (s *StructSchema) Field(name string) (TypedField, bool) {
	i, ok := s.index[name]
	if !ok {
		return TypedField{}, false
	}
	return s.fields[i], true
}

// FieldAt returns the field at the given index.
func (s *StructSchema) FieldAt(index int) (TypedField, bool) {
	if index < 0 || index >= len(s.fields) {
		return TypedField{}, false
	}
	return s.fields[index], true
}

// IndexOf returns the index of a field, or -1.
func (s *StructSchema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Fields returns a copy of the fields in index order.
func (s *StructSchema) Fields() []TypedField { return slices.Clone(s.fields) }

// AddField appends a new field. It fails if the name is already defined.
func (s *StructSchema) AddField(name string, schema Schema) error {
	if _, ok := s.index[name]; ok {
		return errMutation(name, "field already exists")
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, TypedField{index: len(s.fields), name: name, schema: schema})
	return nil
}

// Set replaces the schema of an existing field, keeping its index.
func (s *StructSchema) Set(name string, schema Schema) error {
	i, ok := s.index[name]
	if !ok {
		return errMutation(name, "field does not exist")
	}
	s.fields[i].schema = schema
	return nil
}

// Rename changes a field name, keeping its index and schema.
func (s *StructSchema) Rename(oldName, newName string) error {
	i, ok := s.index[oldName]
	if !ok {
		return errMutation(oldName, "field does not exist")
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.index[newName]; exists {
		return errMutation(newName, "field already exists")
	}
	delete(s.index, oldName)
	s.index[newName] = i
	s.fields[i].name = newName
	return nil
}

// Remove deletes a field and shifts down the index of every following field.
func (s *StructSchema) Remove(name string) (TypedField, error) {
	i, ok := s.index[name]
	if !ok {
		return TypedField{}, errMutation(name, "field does not exist")
	}
	removed := s.fields[i]
	s.fields = slices.Delete(s.fields, i, i+1)
	delete(s.index, name)
	for j := i; j < len(s.fields); j++ {
		s.fields[j].index = j
		s.index[s.fields[j].name] = j
	}
	return removed, nil
}

// Clone returns a deep copy; nested struct schemas are copied as well.
func (s *StructSchema) Clone() *StructSchema {
	c := &StructSchema{
		name:   s.name,
		fields: make([]TypedField, len(s.fields)),
		index:  maps.Clone(s.index),
	}
	for i, f := range s.fields {
		if nested, ok := f.schema.(*StructSchema); ok {
			f.schema = nested.Clone()
		}
		c.fields[i] = f
	}
	return c
}

func (s *StructSchema) Equal(other Schema) bool {
	o, ok := other.(*StructSchema)
	if !ok {
		return false
	}
	if s == o {
		return true
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].name != o.fields[i].name || !equalSchemas(s.fields[i].schema, o.fields[i].schema) {
			return false
		}
	}
	return true
}

func (s *StructSchema) Hash() uint64 { return hashSchema(s) }

func (s *StructSchema) String() string {
	b := &strings.Builder{}
	b.WriteString("STRUCT{")
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.name)
		b.WriteByte(':')
		b.WriteString(schemaString(f.schema))
	}
	b.WriteByte('}')
	return b.String()
}

func (*StructSchema) isSchema() {}

// ---- helpers ----

// SchemaOf infers the schema of a raw value. Arrays and maps get lazy
// schemas; structs report their current schema.
func SchemaOf(v any) (Schema, error) {
	switch x := v.(type) {
	case nil:
		return None(), nil
	case TypedValue:
		return x.Schema(), nil
	case *TypedStruct:
		if x == nil {
			return None(), nil
		}
		return x.Schema(), nil
	case []any:
		return LazyArraySchema(x), nil
	case map[string]any:
		return LazyMapSchema(x), nil
	case []byte:
		return Simple(TypeBytes), nil
	}
	t, ok := TypeOf(v)
	if !ok {
		return nil, errInference(fmt.Sprintf("value of kind %T", v))
	}
	switch t {
	case TypeArray:
		return LazyArraySchema(sliceValues(v)), nil
	case TypeMap:
		return LazyMapSchema(mapValues(v)), nil
	}
	return Simple(t), nil
}

// sliceValues copies a slice or array of any element type into []any.
func sliceValues(v any) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// mapValues copies a string-keyed map into map[string]any.
func mapValues(v any) map[string]any {
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out
}

func equalSchemas(a, b Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func schemaString(s Schema) string {
	if s == nil {
		return "?"
	}
	return s.String()
}

func hashSchema(s Schema) uint64 { return xxhash.Sum64String(s.String()) }
