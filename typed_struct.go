package filepulse

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// TypedStruct is an ordered, named and mutable collection of typed values.
// Its schema is privately owned: Schema returns snapshots, never the live
// field list.
//
// A TypedStruct is not safe for concurrent use. Pipelines that process
// records in parallel must give each worker its own structs.
type TypedStruct struct {
	schema *StructSchema
	values []any
}

// NewStruct returns an empty struct.
func NewStruct() *TypedStruct { return NewNamedStruct("") }

// NewNamedStruct returns an empty struct whose schema carries name.
func NewNamedStruct(name string) *TypedStruct {
	return &TypedStruct{schema: NewStructSchema(name)}
}

// StructFromMap builds a struct from a map. Fields are added in key order;
// nested maps, including maps held in arrays, become structs.
func StructFromMap(m map[string]any) (*TypedStruct, error) {
	s := NewStruct()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v, err := structify(m[k])
		if err != nil {
			return nil, err
		}
		if err := s.PutAny(k, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func structify(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		return StructFromMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := structify(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	return v, nil
}

// Name returns the struct name, possibly empty.
func (s *TypedStruct) Name() string { return s.schema.name }

// Len returns the number of fields.
func (s *TypedStruct) Len() int { return len(s.values) }

// Schema returns a snapshot of the struct schema, nested structs included.
func (s *TypedStruct) Schema() *StructSchema {
	c := &StructSchema{
		name:   s.schema.name,
		fields: make([]TypedField, len(s.schema.fields)),
		index:  maps.Clone(s.schema.index),
	}
	for i, f := range s.schema.fields {
		if child, ok := s.values[i].(*TypedStruct); ok {
			f.schema = child.Schema()
		}
		c.fields[i] = f
	}
	return c
}

// Has reports whether a field exists. name is not interpreted as a path.
func (s *TypedStruct) Has(name string) bool { return s.schema.IndexOf(name) >= 0 }

// Get returns the value of a field. name is not interpreted as a path.
func (s *TypedStruct) Get(name string) (TypedValue, error) {
	i := s.schema.IndexOf(name)
	if i < 0 {
		return TypedValue{}, errFieldNotFound(name)
	}
	return s.valueAt(i), nil
}

func (s *TypedStruct) valueAt(i int) TypedValue {
	return TypedValue{schema: s.schema.fields[i].schema, value: s.values[i]}
}

func (s *TypedStruct) typed(name string, t Type) (TypedValue, error) {
	v, err := s.Get(name)
	if err != nil {
		return TypedValue{}, err
	}
	if actual := v.Type(); actual != t {
		return TypedValue{}, errTypeMismatch(name, t, actual)
	}
	return v, nil
}

func (s *TypedStruct) GetString(name string) (string, error) {
	v, err := s.typed(name, TypeString)
	if err != nil {
		return "", err
	}
	str, _ := v.value.(string)
	return str, nil
}

func (s *TypedStruct) GetInt16(name string) (int16, error) {
	v, err := s.typed(name, TypeShort)
	if err != nil {
		return 0, err
	}
	return v.Int16()
}

func (s *TypedStruct) GetInt32(name string) (int32, error) {
	v, err := s.typed(name, TypeInteger)
	if err != nil {
		return 0, err
	}
	return v.Int32()
}

func (s *TypedStruct) GetInt64(name string) (int64, error) {
	v, err := s.typed(name, TypeLong)
	if err != nil {
		return 0, err
	}
	return v.Int64()
}

func (s *TypedStruct) GetFloat32(name string) (float32, error) {
	v, err := s.typed(name, TypeFloat)
	if err != nil {
		return 0, err
	}
	return v.Float32()
}

func (s *TypedStruct) GetFloat64(name string) (float64, error) {
	v, err := s.typed(name, TypeDouble)
	if err != nil {
		return 0, err
	}
	return v.Float64()
}

func (s *TypedStruct) GetBool(name string) (bool, error) {
	v, err := s.typed(name, TypeBoolean)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func (s *TypedStruct) GetBytes(name string) ([]byte, error) {
	v, err := s.typed(name, TypeBytes)
	if err != nil {
		return nil, err
	}
	return v.Bytes()
}

func (s *TypedStruct) GetArray(name string) ([]any, error) {
	v, err := s.typed(name, TypeArray)
	if err != nil {
		return nil, err
	}
	return v.Array()
}

func (s *TypedStruct) GetMap(name string) (map[string]any, error) {
	v, err := s.typed(name, TypeMap)
	if err != nil {
		return nil, err
	}
	return v.Map()
}

func (s *TypedStruct) GetStruct(name string) (*TypedStruct, error) {
	v, err := s.typed(name, TypeStruct)
	if err != nil {
		return nil, err
	}
	return v.value.(*TypedStruct), nil
}

// Put sets a field. A new name appends a field; an existing name has both
// its schema and its value replaced in place, keeping its index. name is not
// interpreted as a path.
func (s *TypedStruct) Put(name string, v TypedValue) *TypedStruct {
	schema := v.Schema()
	if i := s.schema.IndexOf(name); i >= 0 {
		s.schema.fields[i].schema = schema
		s.values[i] = v.value
		return s
	}
	s.schema.index[name] = len(s.schema.fields)
	s.schema.fields = append(s.schema.fields, TypedField{index: len(s.schema.fields), name: name, schema: schema})
	s.values = append(s.values, v.value)
	return s
}

// PutAny infers the schema of raw and puts it.
func (s *TypedStruct) PutAny(name string, raw any) error {
	v, err := Any(raw)
	if err != nil {
		return err
	}
	s.Put(name, v)
	return nil
}

// Insert puts a value at a dot-path, creating the intermediate structs that
// do not exist yet. It fails when an intermediate field is not a STRUCT.
func (s *TypedStruct) Insert(path string, v TypedValue) error {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		s.Put(path, v)
		return nil
	}
	i := s.schema.IndexOf(head)
	if i < 0 {
		child := NewStruct()
		s.Put(head, Struct(child))
		return child.Insert(rest, v)
	}
	child, ok := s.values[i].(*TypedStruct)
	if !ok {
		return errMutation(head, "cannot insert '"+rest+"' into a field of type "+s.valueAt(i).Type().String())
	}
	if err := child.Insert(rest, v); err != nil {
		return err
	}
	s.schema.fields[i].schema = child.Schema()
	return nil
}

// Find returns the value at a dot-path, or false if any segment is missing.
func (s *TypedStruct) Find(path string) (TypedValue, bool) {
	head, rest, nested := strings.Cut(path, ".")
	i := s.schema.IndexOf(head)
	if i < 0 {
		return TypedValue{}, false
	}
	if !nested {
		return s.valueAt(i), true
	}
	child, ok := s.values[i].(*TypedStruct)
	if !ok {
		return TypedValue{}, false
	}
	return child.Find(rest)
}

// Rename renames the field addressed by path; the last segment is replaced
// by newName. Nothing happens when path does not resolve.
func (s *TypedStruct) Rename(path, newName string) error {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		if !s.Has(path) {
			return nil
		}
		return s.schema.Rename(path, newName)
	}
	i := s.schema.IndexOf(head)
	if i < 0 {
		return nil
	}
	child, ok := s.values[i].(*TypedStruct)
	if !ok {
		return nil
	}
	if err := child.Rename(rest, newName); err != nil {
		return err
	}
	s.schema.fields[i].schema = child.Schema()
	return nil
}

// Remove deletes and returns the value at path. Parents left empty by the
// removal are removed as well.
func (s *TypedStruct) Remove(path string) (TypedValue, bool) {
	head, rest, nested := strings.Cut(path, ".")
	i := s.schema.IndexOf(head)
	if i < 0 {
		return TypedValue{}, false
	}
	if !nested {
		return s.removeAt(i), true
	}
	child, ok := s.values[i].(*TypedStruct)
	if !ok {
		return TypedValue{}, false
	}
	v, ok := child.Remove(rest)
	if !ok {
		return TypedValue{}, false
	}
	if child.Len() == 0 {
		s.removeAt(i)
	} else {
		s.schema.fields[i].schema = child.Schema()
	}
	return v, true
}

func (s *TypedStruct) removeAt(i int) TypedValue {
	v := s.valueAt(i)
	// the field is known to exist
	_, _ = s.schema.Remove(s.schema.fields[i].name)
	s.values = slices.Delete(s.values, i, i+1)
	return v
}

// First returns the first element of an ARRAY field, or the field itself
// when it is not an array or is empty.
func (s *TypedStruct) First(name string) (TypedValue, error) {
	v, err := s.Get(name)
	if err != nil {
		return TypedValue{}, err
	}
	if v.Type() != TypeArray {
		return v, nil
	}
	vs, err := v.Array()
	if err != nil || len(vs) == 0 {
		return v, nil
	}
	// the element takes the array's element type whether or not it was
	// already inferred
	if as, ok := v.schema.(*ArraySchema); ok && vs[0] != nil {
		if es, err := as.ValueSchema(); err == nil {
			if ss, ok := es.(*SimpleSchema); ok {
				if c, err := ss.Type().Convert(vs[0]); err == nil {
					return Of(ss, c), nil
				}
			}
		}
	}
	return Any(vs[0])
}

// All iterates over the fields in index order.
func (s *TypedStruct) All() iter.Seq2[string, TypedValue] {
	return func(yield func(string, TypedValue) bool) {
		for i := range s.values {
			if !yield(s.schema.fields[i].name, s.valueAt(i)) {
				return
			}
		}
	}
}

// Names returns the field names in index order.
func (s *TypedStruct) Names() []string {
	names := make([]string, len(s.schema.fields))
	for i, f := range s.schema.fields {
		names[i] = f.name
	}
	return names
}

// Clone returns a deep copy. Nested structs, arrays and maps are copied.
func (s *TypedStruct) Clone() *TypedStruct {
	c := &TypedStruct{schema: s.schema.Clone(), values: make([]any, len(s.values))}
	for i, v := range s.values {
		c.values[i] = cloneRaw(v)
		switch f := c.schema.fields[i].schema.(type) {
		case *ArraySchema:
			if vs, ok := c.values[i].([]any); ok && f.state == unresolved {
				c.schema.fields[i].schema = LazyArraySchema(vs)
			}
		case *MapSchema:
			if m, ok := c.values[i].(map[string]any); ok && f.state == unresolved {
				c.schema.fields[i].schema = LazyMapSchema(m)
			}
		}
	}
	return c
}

func cloneRaw(v any) any {
	switch x := v.(type) {
	case *TypedStruct:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneRaw(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneRaw(e)
		}
		return out
	case []byte:
		return slices.Clone(x)
	}
	return v
}

// Equal reports whether both structs have the same fields, in the same
// order, with equal schemas and values.
func (s *TypedStruct) Equal(o *TypedStruct) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.values) != len(o.values) {
		return false
	}
	if !s.Schema().Equal(o.Schema()) {
		return false
	}
	for i := range s.values {
		if !equalRaw(s.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// ToMap converts the struct into plain maps and slices, recursively.
func (s *TypedStruct) ToMap() map[string]any {
	m := make(map[string]any, len(s.values))
	for i, f := range s.schema.fields {
		m[f.name] = plain(s.values[i])
	}
	return m
}

func plain(v any) any {
	switch x := v.(type) {
	case *TypedStruct:
		return x.ToMap()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	}
	return v
}
