package source

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// XMLReader reads XML documents. With RecordElement empty, each root element
// is a record; otherwise every element with that local name is one.
//
// Attributes become fields. A repeated child element becomes an ARRAY, as
// does every child matched by ForceArrayFields (dot-paths relative to the
// record). An element holding only text becomes a STRING, or a typed value
// with AutoDetect. Text mixed with attributes or children is kept under
// ValueField.
type XMLReader struct {
	RecordElement    string
	ForceArrayFields filepulse.FieldPaths
	AutoDetect       bool
}

type xmlNode struct {
	name     string
	rec      *filepulse.TypedStruct
	text     strings.Builder
	paths    filepulse.FieldPaths
	children bool
}

func (x *XMLReader) Read(ctx context.Context, r io.Reader, emit EmitFunc) error {
	dec := xml.NewDecoder(r)
	var stack []*xmlNode
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return fmt.Errorf("xml record %d: %w", index, io.ErrUnexpectedEOF)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("xml record %d: %w", index, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var n *xmlNode
			switch {
			case len(stack) > 0:
				n = &xmlNode{name: t.Name.Local, paths: stack[len(stack)-1].paths.Next(t.Name.Local)}
			case x.RecordElement == "" || x.RecordElement == t.Name.Local:
				n = &xmlNode{name: t.Name.Local, paths: x.ForceArrayFields}
			default:
				continue
			}
			n.rec = filepulse.NewStruct()
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.rec.Put(a.Name.Local, x.scalar(a.Value))
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v := x.value(n)
			if len(stack) == 0 {
				rec, err := asRecord(v.Value())
				if err != nil {
					return fmt.Errorf("xml record %d: %w", index, err)
				}
				index++
				if err := emit(rec); err != nil {
					return err
				}
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = true
			addChild(parent.rec, n.name, v, parent.paths.AnyMatches(n.name))
		}
	}
}

func (x *XMLReader) value(n *xmlNode) filepulse.TypedValue {
	text := strings.TrimSpace(n.text.String())
	if !n.children && n.rec.Len() == 0 {
		if text == "" {
			return filepulse.Null()
		}
		return x.scalar(text)
	}
	if text != "" {
		n.rec.Put(ValueField, x.scalar(text))
	}
	return filepulse.Struct(n.rec)
}

func (x *XMLReader) scalar(s string) filepulse.TypedValue {
	if x.AutoDetect {
		return filepulse.Parse(s)
	}
	return filepulse.String(s)
}

func addChild(rec *filepulse.TypedStruct, name string, v filepulse.TypedValue, forceArray bool) {
	prev, err := rec.Get(name)
	if err != nil {
		if forceArray {
			rec.Put(name, filepulse.Array([]any{v.Value()}))
			return
		}
		rec.Put(name, v)
		return
	}
	if vs, err := prev.Array(); err == nil && prev.Type() == filepulse.TypeArray {
		rec.Put(name, filepulse.Array(append(vs, v.Value())))
		return
	}
	rec.Put(name, filepulse.Array([]any{prev.Value(), v.Value()}))
}
