// Package fastjson provides a JSON token driver backed by valyala/fastjson.
// The whole input is read up front, then each document is parsed and
// flattened into tokens.
package fastjson

import (
	"io"

	"github.com/valyala/fastjson"

	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
)

// Driver is a JSON driver backed by valyala/fastjson.
type Driver struct{}

func (Driver) NewTokenSource(r io.Reader) eng.TokenSource { return NewReader(r) }
func (Driver) Name() string                               { return "fastjson" }

type source struct {
	r       io.Reader
	sc      fastjson.Scanner
	started bool
	size    int64
	pending []eng.Token
	err     error
}

// NewReader wraps an io.Reader into an engine.TokenSource.
func NewReader(r io.Reader) eng.TokenSource { return &source{r: r} }

func (s *source) NextToken() (eng.Token, error) {
	if len(s.pending) == 0 {
		if err := s.fill(); err != nil {
			return eng.Token{}, err
		}
	}
	tok := s.pending[0]
	s.pending = s.pending[1:]
	return tok, nil
}

func (s *source) fill() error {
	if s.err != nil {
		return s.err
	}
	if !s.started {
		s.started = true
		b, err := io.ReadAll(s.r)
		if err != nil {
			s.err = err
			return err
		}
		s.size = int64(len(b))
		s.sc.InitBytes(b)
	}
	if !s.sc.Next() {
		if err := s.sc.Error(); err != nil {
			s.err = err
		} else {
			s.err = io.EOF
		}
		return s.err
	}
	s.pending = flatten(s.pending[:0], s.sc.Value())
	return nil
}

// flatten appends the tokens of v in document order. Object members are
// visited in input order.
func flatten(dst []eng.Token, v *fastjson.Value) []eng.Token {
	switch v.Type() {
	case fastjson.TypeObject:
		dst = append(dst, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		o, _ := v.Object()
		o.Visit(func(key []byte, child *fastjson.Value) {
			dst = append(dst, eng.Token{Kind: eng.KindKey, String: string(key), Offset: -1})
			dst = flatten(dst, child)
		})
		return append(dst, eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case fastjson.TypeArray:
		dst = append(dst, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		vs, _ := v.Array()
		for _, child := range vs {
			dst = flatten(dst, child)
		}
		return append(dst, eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case fastjson.TypeString:
		return append(dst, eng.Token{Kind: eng.KindString, String: string(v.GetStringBytes()), Offset: -1})
	case fastjson.TypeNumber:
		// numbers keep their literal form
		return append(dst, eng.Token{Kind: eng.KindNumber, Number: v.String(), Offset: -1})
	case fastjson.TypeTrue:
		return append(dst, eng.Token{Kind: eng.KindBool, Bool: true, Offset: -1})
	case fastjson.TypeFalse:
		return append(dst, eng.Token{Kind: eng.KindBool, Bool: false, Offset: -1})
	}
	return append(dst, eng.Token{Kind: eng.KindNull, Offset: -1})
}

// Location reports the input size once it has been read.
func (s *source) Location() int64 {
	if !s.started {
		return -1
	}
	return s.size
}
