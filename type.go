package filepulse

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

// Type enumerates the kinds a value or a schema can have.
type Type int

const (
	TypeShort Type = iota
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeString
	TypeBytes
	TypeArray
	TypeMap
	TypeStruct
	TypeNull
)

var typeNames = [...]string{
	TypeShort:   "SHORT",
	TypeInteger: "INTEGER",
	TypeLong:    "LONG",
	TypeFloat:   "FLOAT",
	TypeDouble:  "DOUBLE",
	TypeBoolean: "BOOLEAN",
	TypeString:  "STRING",
	TypeBytes:   "BYTES",
	TypeArray:   "ARRAY",
	TypeMap:     "MAP",
	TypeStruct:  "STRUCT",
	TypeNull:    "NULL",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// ParseType resolves a type name case-insensitively ("int" and "integer" are
// both accepted for INTEGER).
func ParseType(name string) (Type, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch n {
	case "INT", "INT32":
		return TypeInteger, true
	case "INT16":
		return TypeShort, true
	case "INT64":
		return TypeLong, true
	case "FLOAT32":
		return TypeFloat, true
	case "FLOAT64":
		return TypeDouble, true
	case "BOOL":
		return TypeBoolean, true
	}
	for i, s := range typeNames {
		if s == n {
			return Type(i), true
		}
	}
	return TypeNull, false
}

// IsPrimitive reports whether t is one of SHORT, INTEGER, LONG, FLOAT, DOUBLE,
// BOOLEAN or STRING.
func (t Type) IsPrimitive() bool { return t >= TypeShort && t <= TypeString }

// IsNumber reports whether t is a numeric kind.
func (t Type) IsNumber() bool { return t >= TypeShort && t <= TypeDouble }

// isSimple reports whether t can back a SimpleSchema.
func (t Type) isSimple() bool { return t.IsPrimitive() || t == TypeBytes }

// TypeOf maps the natural Go representation of v to the best-fit Type.
// It returns false when v has no Type (channels, funcs, non string-keyed maps...).
func TypeOf(v any) (Type, bool) {
	switch n := v.(type) {
	case nil:
		return TypeNull, true
	case string:
		return TypeString, true
	case bool:
		return TypeBoolean, true
	case int8, int16, uint8:
		return TypeShort, true
	case int32, uint16:
		return TypeInteger, true
	case int, int64, uint32:
		return TypeLong, true
	case uint:
		return unsignedType(uint64(n)), true
	case uint64:
		return unsignedType(n), true
	case float32:
		return TypeFloat, true
	case float64:
		return TypeDouble, true
	case json.Number:
		return numberLiteralType(string(n)), true
	case []byte:
		return TypeBytes, true
	case *TypedStruct:
		if n == nil {
			return TypeNull, true
		}
		return TypeStruct, true
	case []any:
		return TypeArray, true
	case map[string]any:
		return TypeMap, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray, true
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return TypeMap, true
		}
	}
	return TypeNull, false
}

// unsignedType keeps unsigned values beyond the LONG range as STRING so that
// their digits are not lost.
func unsignedType(u uint64) Type {
	if u > math.MaxInt64 {
		return TypeString
	}
	return TypeLong
}

func numberLiteralType(s string) Type {
	if _, ok := parseLong(s); ok {
		return TypeLong
	}
	return TypeDouble
}
