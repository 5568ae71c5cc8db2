package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fp "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/config"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source"
)

const csvPipeline = `
reader:
  format: csv
  header: true
  autoDetect: true
workers: 2
log:
  level: debug
filters:
  - type: rename
    field: qty
    target: quantity
  - type: append
    field: origin
    value: "007"
  - type: append
    field: version
    value: 2
  - type: convert
    field: quantity
    to: int
    ignoreFailure: true
`

func TestParse(t *testing.T) {
	p, err := config.Parse([]byte(csvPipeline))
	require.NoError(t, err)

	assert.Equal(t, "csv", p.Reader.Format)
	assert.True(t, p.Reader.Header)
	assert.Equal(t, 2, p.Workers)
	assert.Equal(t, "debug", p.Log.Level)
	require.Len(t, p.Filters, 4)
	assert.Equal(t, "rename", p.Filters[0].Type)
	assert.True(t, p.Filters[3].IgnoreFailure)
}

func TestBuild_RunsEndToEnd(t *testing.T) {
	p, err := config.Parse([]byte(csvPipeline))
	require.NoError(t, err)

	r, pipe, err := p.Build(log.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	require.IsType(t, &source.CSVReader{}, r)
	require.Len(t, pipe.Filters(), 4)

	var recs []*fp.TypedStruct
	err = r.Read(context.Background(), strings.NewReader("sku,qty\nA1,3\n"), func(rec *fp.TypedStruct) error {
		recs = append(recs, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	out, err := pipe.Process(context.Background(), recs[0])
	require.NoError(t, err)
	require.Len(t, out, 1)
	rec := out[0]

	q, err := rec.GetInt32("quantity")
	require.NoError(t, err)
	assert.Equal(t, int32(3), q)

	origin, err := rec.GetString("origin")
	require.NoError(t, err)
	assert.Equal(t, "007", origin)

	v, err := rec.GetInt64("version")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := config.Parse([]byte("reader:\n  fromat: json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fromat")
}

func TestParse_InvalidFiltersNameIndexAndType(t *testing.T) {
	doc := `
filters:
  - type: rename
    field: a
  - type: convert
    field: b
    to: decimal
  - type: teleport
`
	_, err := config.Parse([]byte(doc))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "filters[0] (rename): target is required")
	assert.Contains(t, msg, `filters[1] (convert): unknown type "decimal"`)
	assert.Contains(t, msg, `filters[2] (teleport): unknown filter type "teleport"`)
}

func TestParse_AppendValueMustBeScalar(t *testing.T) {
	doc := `
filters:
  - type: append
    field: a
    value: [1, 2]
`
	_, err := config.Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value must be a scalar")
}

func TestParse_Empty(t *testing.T) {
	p, err := config.Parse(nil)
	require.NoError(t, err)

	r, pipe, err := p.Build(nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &source.JSONReader{}, r)
	assert.Empty(t, pipe.Filters())
}

func TestParse_NegativeWorkers(t *testing.T) {
	_, err := config.Parse([]byte("workers: -1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reader:\n  format: line\nfilters:\n  - type: generate-id\n"), 0o600))

	p, err := config.Load(path)
	require.NoError(t, err)
	r, pipe, err := p.Build(nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &source.LineReader{}, r)
	assert.Len(t, pipe.Filters(), 1)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuild_BadReader(t *testing.T) {
	p, err := config.Parse([]byte("reader:\n  format: parquet\n"))
	require.NoError(t, err)

	_, _, err = p.Build(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reader:")
}

func TestBuild_DateFilter(t *testing.T) {
	doc := `
filters:
  - type: date
    field: day
    formats: ["2006-01-02"]
`
	p, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	_, pipe, err := p.Build(nil, nil)
	require.NoError(t, err)

	out, err := pipe.Process(context.Background(), fp.NewStruct().Put("day", fp.String("1970-01-02")))
	require.NoError(t, err)
	require.Len(t, out, 1)
	n, err := out[0].GetInt64("day")
	require.NoError(t, err)
	assert.Equal(t, int64(86_400_000), n)
}
