package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// YAMLReader reads a multi-document YAML stream. Documents are split into
// records the same way JSONReader splits JSON documents. Mapping keys keep
// their input order and merge keys ("<<") are expanded.
//
// With StrictKeys, a key repeated within one mapping fails the record with a
// *DuplicateKeyError. Otherwise the last value wins.
type YAMLReader struct {
	StrictKeys bool
}

// DuplicateKeyError reports a key repeated within a YAML mapping, with the
// positions of both occurrences.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (y YAMLReader) Read(ctx context.Context, r io.Reader, emit EmitFunc) error {
	dec := yaml.NewDecoder(r)
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("yaml record %d: %w", index, err)
		}
		root := &doc
		if root.Kind == yaml.DocumentNode {
			if len(root.Content) == 0 {
				continue
			}
			root = root.Content[0]
		}
		values := []*yaml.Node{root}
		if root.Kind == yaml.SequenceNode {
			values = root.Content
		}
		for _, n := range values {
			v, err := fromNode(n, y.StrictKeys)
			if err != nil {
				return fmt.Errorf("yaml record %d: %w", index, err)
			}
			rec, err := asRecord(v)
			if err != nil {
				return fmt.Errorf("yaml record %d: %w", index, err)
			}
			index++
			if err := emit(rec); err != nil {
				return err
			}
		}
	}
}

func fromNode(n *yaml.Node, strict bool) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0], strict)
	case yaml.AliasNode:
		return fromNode(n.Alias, strict)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, strict)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return fromMapping(n, strict)
	}
	return fromScalar(n)
}

func fromMapping(n *yaml.Node, strict bool) (*filepulse.TypedStruct, error) {
	s := filepulse.NewStruct()
	var merged []*filepulse.TypedStruct
	var first map[string][2]int
	if strict {
		first = make(map[string][2]int, len(n.Content)/2)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if strict && k.ShortTag() != "!!merge" {
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
		}
		v, err := fromNode(vn, strict)
		if err != nil {
			return nil, err
		}
		if k.ShortTag() == "!!merge" {
			switch m := v.(type) {
			case *filepulse.TypedStruct:
				merged = append(merged, m)
			case []any:
				for _, e := range m {
					if ms, ok := e.(*filepulse.TypedStruct); ok {
						merged = append(merged, ms)
					}
				}
			}
			continue
		}
		if err := s.PutAny(k.Value, v); err != nil {
			return nil, fmt.Errorf("line %d: %w", k.Line, err)
		}
	}
	for _, m := range merged {
		for name, v := range m.All() {
			if !s.Has(name) {
				s.Put(name, v)
			}
		}
	}
	return s, nil
}

func fromScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if v := filepulse.Parse(n.Value); v.Type() == filepulse.TypeLong {
			return v.Value(), nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			// beyond int64, keep the digits
			return n.Value, nil
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!binary":
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return n.Value, nil
}
