package openapi_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fp "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/openapi"
)

func TestFrom_Scalars(t *testing.T) {
	cases := map[fp.Type][2]string{
		fp.TypeString:  {openapi3.TypeString, ""},
		fp.TypeBoolean: {openapi3.TypeBoolean, ""},
		fp.TypeShort:   {openapi3.TypeInteger, "int16"},
		fp.TypeInteger: {openapi3.TypeInteger, "int32"},
		fp.TypeLong:    {openapi3.TypeInteger, "int64"},
		fp.TypeFloat:   {openapi3.TypeNumber, "float"},
		fp.TypeDouble:  {openapi3.TypeNumber, "double"},
		fp.TypeBytes:   {openapi3.TypeString, "byte"},
	}
	for typ, want := range cases {
		s, err := openapi.From(fp.Simple(typ))
		require.NoError(t, err, typ.String())
		assert.Equal(t, want[0], s.Type, typ.String())
		assert.Equal(t, want[1], s.Format, typ.String())
	}

	s, err := openapi.From(fp.None())
	require.NoError(t, err)
	assert.True(t, s.Nullable)
	assert.Empty(t, s.Type)
}

func TestFrom_Struct(t *testing.T) {
	rec := fp.NewNamedStruct("Event").
		Put("id", fp.String("e1")).
		Put("scores", fp.Array([]any{int64(1), 2.5})).
		Put("labels", fp.Map(map[string]any{"env": "prod"}))

	s, err := openapi.From(rec.Schema())
	require.NoError(t, err)

	assert.Equal(t, openapi3.TypeObject, s.Type)
	assert.Equal(t, "Event", s.Title)
	assert.Equal(t, []string{"id", "scores", "labels"}, s.Required)

	scores := s.Properties["scores"].Value
	assert.Equal(t, openapi3.TypeArray, scores.Type)
	assert.Equal(t, "double", scores.Items.Value.Format)
	assert.Equal(t, 1, scores.Extensions[openapi.ExtFieldIndex])

	labels := s.Properties["labels"].Value
	require.NotNil(t, labels.AdditionalProperties.Schema)
	assert.Equal(t, openapi3.TypeString, labels.AdditionalProperties.Schema.Value.Type)
}

func TestFrom_EmptyCollections(t *testing.T) {
	s, err := openapi.From(fp.LazyArraySchema(nil))
	require.NoError(t, err)
	assert.Nil(t, s.Items)

	s, err = openapi.From(fp.LazyMapSchema(nil))
	require.NoError(t, err)
	assert.Nil(t, s.AdditionalProperties.Schema)
}
