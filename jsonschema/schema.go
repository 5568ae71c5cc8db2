// Package jsonschema exports record schemas as JSON Schema documents.
package jsonschema

import (
	"fmt"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Draft is the dialect written by Document.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Draft string `json:"$schema,omitempty"`
	Title string `json:"title,omitempty"`

	// Core
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PropertyOrder        []string           `json:"propertyOrder,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// Document converts s and marks the result as a root document.
func Document(s filepulse.Schema) (*Schema, error) {
	out, err := From(s)
	if err != nil {
		return nil, err
	}
	out.Draft = Draft
	return out, nil
}

// From converts a record schema. Arrays and maps whose element schema cannot
// be inferred (no elements) get no items / additionalProperties constraint.
func From(s filepulse.Schema) (*Schema, error) {
	switch x := s.(type) {
	case nil, *filepulse.NoneSchema:
		return &Schema{Type: "null"}, nil
	case *filepulse.SimpleSchema:
		return simple(x.Type())
	case *filepulse.ArraySchema:
		out := &Schema{Type: "array"}
		if !x.IsResolvable() {
			return out, nil
		}
		es, err := x.ValueSchema()
		if err != nil {
			return nil, err
		}
		if out.Items, err = From(es); err != nil {
			return nil, err
		}
		return out, nil
	case *filepulse.MapSchema:
		out := &Schema{Type: "object"}
		if !x.IsResolvable() {
			return out, nil
		}
		vs, err := x.ValueSchema()
		if err != nil {
			return nil, err
		}
		if out.AdditionalProperties, err = From(vs); err != nil {
			return nil, err
		}
		return out, nil
	case *filepulse.StructSchema:
		out := &Schema{
			Title:      x.Name(),
			Type:       "object",
			Properties: make(map[string]*Schema, x.Len()),
		}
		for _, f := range x.Fields() {
			p, err := From(f.Schema())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name(), err)
			}
			out.Properties[f.Name()] = p
			out.PropertyOrder = append(out.PropertyOrder, f.Name())
		}
		return out, nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported schema %T", s)
}

func simple(t filepulse.Type) (*Schema, error) {
	switch t {
	case filepulse.TypeString:
		return &Schema{Type: "string"}, nil
	case filepulse.TypeBoolean:
		return &Schema{Type: "boolean"}, nil
	case filepulse.TypeShort:
		return &Schema{Type: "integer", Format: "int16"}, nil
	case filepulse.TypeInteger:
		return &Schema{Type: "integer", Format: "int32"}, nil
	case filepulse.TypeLong:
		return &Schema{Type: "integer", Format: "int64"}, nil
	case filepulse.TypeFloat:
		return &Schema{Type: "number", Format: "float"}, nil
	case filepulse.TypeDouble:
		return &Schema{Type: "number", Format: "double"}, nil
	case filepulse.TypeBytes:
		return &Schema{Type: "string", Format: "byte"}, nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported type %s", t)
}
