package engine

import (
	"io"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Decode reads the next complete value. Objects become *filepulse.TypedStruct
// with their members in input order, arrays become []any and numbers are
// typed with filepulse.Parse. It returns io.EOF when the source is exhausted.
func Decode(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return DecodeValue(src, tok)
}

// DecodeValue decodes the value starting with tok.
func DecodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return filepulse.Parse(tok.Number).Value(), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (*filepulse.TypedStruct, error) {
	s := filepulse.NewStruct()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndObject {
			return s, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		v, err := DecodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		// a repeated key keeps its first position and the last value
		if err := s.PutAny(tok.String, v); err != nil {
			return nil, err
		}
	}
}

func decodeArray(src TokenSource) ([]any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := DecodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// unexpected turns an end of input inside a container into a truncation error.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
