package filepulse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/i18n"
)

// Error codes (exported consts for IDE completion and pattern matching).
const (
	CodeSchemaInference = "schema_inference"
	CodeSchemaMerge     = "schema_merge"
	CodeFieldNotFound   = "field_not_found"
	CodeTypeMismatch    = "type_mismatch"
	CodeConversion      = "conversion"
	CodeStructMutation  = "struct_mutation"
)

// DataError is the single error type returned by the data model. Callers
// branch on Code, either directly or with errors.Is against the Err* sentinels.
type DataError struct {
	Code    string
	Path    string // Field name or dot-path when the error concerns a field.
	Message string
	Cause   error
	// Params carries the structured parameters used to render Message.
	Params map[string]string
}

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrSchemaInference = &DataError{Code: CodeSchemaInference}
	ErrSchemaMerge     = &DataError{Code: CodeSchemaMerge}
	ErrFieldNotFound   = &DataError{Code: CodeFieldNotFound}
	ErrTypeMismatch    = &DataError{Code: CodeTypeMismatch}
	ErrConversion      = &DataError{Code: CodeConversion}
	ErrStructMutation  = &DataError{Code: CodeStructMutation}
)

func (e *DataError) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, " (%v)", e.Cause)
	}
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Cause }

// Is reports whether target is a *DataError carrying the same code.
func (e *DataError) Is(target error) bool {
	t, ok := target.(*DataError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsDataError extracts a *DataError from an error chain.
func AsDataError(err error) (*DataError, bool) {
	if err == nil {
		return nil, false
	}
	var de *DataError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func newDataError(code, path string, params map[string]string, cause error) *DataError {
	return &DataError{
		Code:    code,
		Path:    path,
		Message: i18n.T(code, params),
		Cause:   cause,
		Params:  params,
	}
}

func errInference(what string) error {
	return newDataError(CodeSchemaInference, "", map[string]string{"what": what}, nil)
}

func errMerge(left, right Schema) error {
	return newDataError(CodeSchemaMerge, "", map[string]string{"left": left.String(), "right": right.String()}, nil)
}

func errFieldNotFound(path string) error {
	return newDataError(CodeFieldNotFound, path, map[string]string{"field": path}, nil)
}

func errTypeMismatch(path string, expected, actual Type) error {
	return newDataError(CodeTypeMismatch, path, map[string]string{
		"field":    path,
		"expected": expected.String(),
		"actual":   actual.String(),
	}, nil)
}

func errConversion(v any, t Type, cause error) error {
	return newDataError(CodeConversion, "", map[string]string{"value": fmt.Sprint(v), "type": t.String()}, cause)
}

func errMutation(field, reason string) error {
	return newDataError(CodeStructMutation, field, map[string]string{"field": field, "reason": reason}, nil)
}

// FieldNotFound returns the field_not_found error for a field name or
// dot-path, for collaborators that resolve paths themselves.
func FieldNotFound(path string) error { return errFieldNotFound(path) }
