// Package gojson provides the default JSON token driver, backed by
// goccy/go-json.
package gojson

import (
	"errors"
	"io"

	j "github.com/goccy/go-json"

	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
)

// Driver is a JSON driver backed by goccy/go-json.
type Driver struct{}

func (Driver) NewTokenSource(r io.Reader) eng.TokenSource { return NewReader(r) }
func (Driver) Name() string                               { return "go-json" }

// ---- engine.TokenSource implementation using go-json Decoder ----

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	in    *countingReader
	stack []frame
}

// NewReader wraps an io.Reader into an engine.TokenSource. Several
// whitespace separated documents may follow each other.
func NewReader(r io.Reader) eng.TokenSource {
	in := &countingReader{r: r}
	dec := j.NewDecoder(in)
	dec.UseNumber()
	return &source{dec: dec, in: in}
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	off := s.in.n
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: off}, nil
			}
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: off}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: off}, nil
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// Location reports the number of bytes pulled from the input so far. The
// decoder reads ahead, so this is an upper bound of the consumed offset.
func (s *source) Location() int64 { return s.in.n }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
