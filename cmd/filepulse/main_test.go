package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "filepulse read")

	errOut.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"nope"}, nil, &out, &errOut))
}

func TestRun_Parse(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"parse", "42", "1.5", "TRUE", "007", "hello"}, nil, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"LONG\t42",
		"DOUBLE\t1.5",
		"BOOLEAN\ttrue",
		"STRING\t\"007\"",
		"STRING\t\"hello\"",
	}, lines)
}

func TestRun_ReadWithPipeline(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
reader:
  format: csv
  header: true
  autoDetect: true
log:
  level: error
filters:
  - type: split
    field: tags
    separator: "|"
  - type: explode
    field: tags
`), 0o600))
	data := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(data, []byte("name,tags\nx,a|b\n"), 0o600))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"read", "-config", cfg, data}, nil, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "{\"name\":\"x\",\"tags\":\"a\"}\n{\"name\":\"x\",\"tags\":\"b\"}\n", out.String())
}

func TestRun_ReadSchemaFromStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	in := strings.NewReader("{\"id\":1,\"name\":\"a\"}\n{\"id\":2,\"name\":\"b\"}\n")

	code := run(context.Background(), []string{"read", "-format", "json", "-schema", "-log-level", "error"}, in, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), `"propertyOrder": [`)
	assert.Contains(t, out.String(), `"format": "int64"`)
}

func TestRun_ReadMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"read", "-log-level", "error", filepath.Join(t.TempDir(), "nope.json")}, nil, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "filepulse:")
}
