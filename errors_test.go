package filepulse_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fp "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

func TestDataError_IsMatchesByCode(t *testing.T) {
	_, err := fp.NewStruct().Get("x")
	wrapped := fmt.Errorf("record 3: %w", err)

	assert.True(t, errors.Is(wrapped, fp.ErrFieldNotFound))
	assert.False(t, errors.Is(wrapped, fp.ErrTypeMismatch))

	de, ok := fp.AsDataError(wrapped)
	require.True(t, ok)
	assert.Equal(t, fp.CodeFieldNotFound, de.Code)
	assert.Equal(t, "x", de.Path)
	assert.Equal(t, "field 'x' does not exist", de.Message)
	assert.Equal(t, "x", de.Params["field"])
}

func TestDataError_UnwrapsCause(t *testing.T) {
	_, err := fp.TypeLong.Convert("12x")
	de, ok := fp.AsDataError(err)
	require.True(t, ok)
	require.NotNil(t, de.Cause)
	assert.Contains(t, err.Error(), "conversion: cannot convert value '12x' to type LONG")

	_, ok = fp.AsDataError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = fp.AsDataError(nil)
	assert.False(t, ok)
}
