package filepulse

// Merge unifies two schemas into one that describes values of both. Lazy
// operands, including those nested in structs, are resolved first and an
// inference failure is returned as is. Then, in priority order:
//
//  1. NULL merged with any schema returns the other schema.
//  2. Structurally equal schemas return a unchanged.
//  3. An empty lazy array or map (not yet resolvable) loses to the other
//     operand, whatever the argument order.
//  4. Arrays merge their element schemas, maps merge their value schemas.
//     Structs only merge when equal.
//  5. An array merged with a scalar merges the scalar into the element schema.
//  6. Primitives are promoted: STRING absorbs anything, INTEGER and LONG give
//     LONG, any number with DOUBLE gives DOUBLE.
//
// Any other combination fails with a schema_merge error.
func Merge(a, b Schema) (Schema, error) {
	if err := inferenceError(a); err != nil {
		return nil, err
	}
	if err := inferenceError(b); err != nil {
		return nil, err
	}
	if isNone(a) {
		return b, nil
	}
	if isNone(b) {
		return a, nil
	}
	if a.Equal(b) {
		return a, nil
	}
	if !resolvable(a) {
		return b, nil
	}
	if !resolvable(b) {
		return a, nil
	}

	switch x := a.(type) {
	case *SimpleSchema:
		switch y := b.(type) {
		case *SimpleSchema:
			return promote(x, y)
		case *ArraySchema:
			return Merge(y, x)
		}
	case *ArraySchema:
		switch y := b.(type) {
		case *ArraySchema:
			return mergeElements(x, y, wrapArray)
		case *SimpleSchema:
			return mergeElements(x, arrayOf(y), wrapArray)
		}
	case *MapSchema:
		if y, ok := b.(*MapSchema); ok {
			return mergeElements(x, y, wrapMap)
		}
	}
	return nil, errMerge(a, b)
}

func wrapArray(value Schema) Schema { return NewArraySchema(value) }
func wrapMap(value Schema) Schema   { return NewMapSchema(value) }

func mergeElements(a, b lazy, wrap func(Schema) Schema) (Schema, error) {
	va, err := a.ValueSchema()
	if err != nil {
		return nil, err
	}
	vb, err := b.ValueSchema()
	if err != nil {
		return nil, err
	}
	merged, err := Merge(va, vb)
	if err != nil {
		return nil, err
	}
	if s, ok := a.(Schema); ok && merged.Equal(va) {
		return s, nil
	}
	return wrap(merged), nil
}

func arrayOf(s Schema) *ArraySchema { return NewArraySchema(s) }

func promote(a, b *SimpleSchema) (Schema, error) {
	switch {
	case a.typ == TypeString || b.typ == TypeString:
		return Simple(TypeString), nil
	case isIntegral(a.typ) && isIntegral(b.typ):
		return Simple(TypeLong), nil
	case (a.typ == TypeDouble && b.typ.IsNumber()) || (b.typ == TypeDouble && a.typ.IsNumber()):
		return Simple(TypeDouble), nil
	}
	return nil, errMerge(a, b)
}

func isIntegral(t Type) bool { return t == TypeInteger || t == TypeLong }

func isNone(s Schema) bool {
	if s == nil {
		return true
	}
	_, ok := s.(*NoneSchema)
	return ok
}

func resolvable(s Schema) bool {
	if l, ok := s.(lazy); ok {
		return l.IsResolvable()
	}
	return true
}
