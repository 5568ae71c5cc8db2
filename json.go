package filepulse

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

func marshalRaw(v any) ([]byte, error) { return json.Marshal(v) }

// MarshalJSON renders the struct as a JSON object whose members follow the
// field order.
func (s *TypedStruct) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, f := range s.schema.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalRaw(s.values[i])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.name, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the struct as JSON.
func (s *TypedStruct) String() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", s.ToMap())
	}
	return string(b)
}
