// Package openapi converts record schemas to OpenAPI 3 schemas.
package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// ExtFieldIndex holds the position of a struct field.
const ExtFieldIndex = "x-field-index"

// From converts s. NULL becomes an empty nullable schema. Arrays and maps with
// no elements to infer from get no items / additionalProperties.
func From(s filepulse.Schema) (*openapi3.Schema, error) {
	switch x := s.(type) {
	case nil, *filepulse.NoneSchema:
		return &openapi3.Schema{Nullable: true}, nil
	case *filepulse.SimpleSchema:
		return simple(x.Type())
	case *filepulse.ArraySchema:
		out := &openapi3.Schema{Type: openapi3.TypeArray}
		if !x.IsResolvable() {
			return out, nil
		}
		es, err := x.ValueSchema()
		if err != nil {
			return nil, err
		}
		item, err := From(es)
		if err != nil {
			return nil, err
		}
		out.Items = item.NewRef()
		return out, nil
	case *filepulse.MapSchema:
		out := &openapi3.Schema{Type: openapi3.TypeObject}
		if !x.IsResolvable() {
			return out, nil
		}
		vs, err := x.ValueSchema()
		if err != nil {
			return nil, err
		}
		v, err := From(vs)
		if err != nil {
			return nil, err
		}
		out.AdditionalProperties = openapi3.AdditionalProperties{Schema: v.NewRef()}
		return out, nil
	case *filepulse.StructSchema:
		out := &openapi3.Schema{
			Type:       openapi3.TypeObject,
			Title:      x.Name(),
			Properties: make(openapi3.Schemas, x.Len()),
		}
		for _, f := range x.Fields() {
			p, err := From(f.Schema())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name(), err)
			}
			p.Extensions = map[string]interface{}{ExtFieldIndex: f.Index()}
			out.Properties[f.Name()] = p.NewRef()
			out.Required = append(out.Required, f.Name())
		}
		return out, nil
	}
	return nil, fmt.Errorf("openapi: unsupported schema %T", s)
}

func simple(t filepulse.Type) (*openapi3.Schema, error) {
	switch t {
	case filepulse.TypeString:
		return &openapi3.Schema{Type: openapi3.TypeString}, nil
	case filepulse.TypeBoolean:
		return &openapi3.Schema{Type: openapi3.TypeBoolean}, nil
	case filepulse.TypeShort:
		return &openapi3.Schema{Type: openapi3.TypeInteger, Format: "int16"}, nil
	case filepulse.TypeInteger:
		return &openapi3.Schema{Type: openapi3.TypeInteger, Format: "int32"}, nil
	case filepulse.TypeLong:
		return &openapi3.Schema{Type: openapi3.TypeInteger, Format: "int64"}, nil
	case filepulse.TypeFloat:
		return &openapi3.Schema{Type: openapi3.TypeNumber, Format: "float"}, nil
	case filepulse.TypeDouble:
		return &openapi3.Schema{Type: openapi3.TypeNumber, Format: "double"}, nil
	case filepulse.TypeBytes:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "byte"}, nil
	}
	return nil, fmt.Errorf("openapi: unsupported type %s", t)
}
