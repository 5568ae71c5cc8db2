package source_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fp "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source/fastjson"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source/gojson"
)

func readAll(t *testing.T, r source.Reader, in string) []string {
	t.Helper()
	var out []string
	err := r.Read(context.Background(), strings.NewReader(in), func(rec *fp.TypedStruct) error {
		out = append(out, rec.String())
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestJSONReader_Drivers(t *testing.T) {
	in := `{"b":1,"a":{"y":"s","x":[1,2.5]}}
{"big":12345678901234567890,"t":true,"n":null}
[{"id":1},{"id":2}]
"scalar"`
	want := []string{
		`{"b":1,"a":{"y":"s","x":[1,2.5]}}`,
		`{"big":"12345678901234567890","t":true,"n":null}`,
		`{"id":1}`,
		`{"id":2}`,
		`{"value":"scalar"}`,
	}
	for _, d := range []source.JSONDriver{gojson.Driver{}, fastjson.Driver{}} {
		t.Run(d.Name(), func(t *testing.T) {
			got := readAll(t, &source.JSONReader{Driver: d}, in)
			assert.Equal(t, want, got)
		})
	}
}

func TestJSONReader_TypesNumbersWithParse(t *testing.T) {
	var recs []*fp.TypedStruct
	err := (&source.JSONReader{}).Read(context.Background(), strings.NewReader(`{"i":42,"d":4.5,"e":1e3}`), func(rec *fp.TypedStruct) error {
		recs = append(recs, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "STRUCT{i:LONG,d:DOUBLE,e:DOUBLE}", recs[0].Schema().String())
}

func TestJSONReader_DuplicateKeys(t *testing.T) {
	in := `{"a":1,"a":2}`

	err := (&source.JSONReader{DuplicateKeys: eng.DupError}).Read(context.Background(), strings.NewReader(in), func(*fp.TypedStruct) error { return nil })
	var ie eng.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, eng.CodeDuplicateKey, ie.Code)
	assert.Equal(t, "a", ie.Path)

	got := readAll(t, &source.JSONReader{DuplicateKeys: eng.DupIgnore}, in)
	assert.Equal(t, []string{`{"a":2}`}, got)
}

func TestJSONReader_MaxDepth(t *testing.T) {
	err := (&source.JSONReader{MaxDepth: 2}).Read(context.Background(), strings.NewReader(`{"a":{"b":{"c":1}}}`), func(*fp.TypedStruct) error { return nil })
	var ie eng.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, eng.CodeMaxDepth, ie.Code)
	assert.Equal(t, "a.b", ie.Path)
}

func TestJSONReader_Truncated(t *testing.T) {
	err := (&source.JSONReader{}).Read(context.Background(), strings.NewReader(`{"a":[1,2`), func(*fp.TypedStruct) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json record 0")
}

func TestJSONReader_EmitErrorStopsReading(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := (&source.JSONReader{}).Read(context.Background(), strings.NewReader(`{"a":1} {"a":2}`), func(*fp.TypedStruct) error {
		calls++
		return stop
	})
	assert.Same(t, stop, err)
	assert.Equal(t, 1, calls)
}

func TestJSONReader_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&source.JSONReader{}).Read(ctx, strings.NewReader(`{"a":1}`), func(*fp.TypedStruct) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONDriver_SPI(t *testing.T) {
	t.Cleanup(source.UseDefaultJSONDriver)
	assert.Equal(t, "go-json", source.CurrentJSONDriver().Name())
	source.SetJSONDriver(fastjson.Driver{})
	assert.Equal(t, "fastjson", source.CurrentJSONDriver().Name())
	source.SetJSONDriver(nil)
	assert.Equal(t, "fastjson", source.CurrentJSONDriver().Name())

	_, ok := source.JSONDriverByName("simdjson")
	assert.False(t, ok)
}

func TestYAMLReader(t *testing.T) {
	in := `base: &base {region: eu, zone: 1}
svc:
  name: svc
  <<: *base
  zone: 2
  ports: [80, 443]
  ratio: 0.5
  enabled: true
  nothing: ~
---
- id: 1
- id: 2
---
hello
`
	got := readAll(t, source.YAMLReader{}, in)
	assert.Equal(t, []string{
		`{"base":{"region":"eu","zone":1},"svc":{"name":"svc","zone":2,"ports":[80,443],"ratio":0.5,"enabled":true,"nothing":null,"region":"eu"}}`,
		`{"id":1}`,
		`{"id":2}`,
		`{"value":"hello"}`,
	}, got)
}

func TestYAMLReader_DuplicateKeys(t *testing.T) {
	in := "a: 1\nb: 2\na: 3\n"

	got := readAll(t, source.YAMLReader{}, in)
	assert.Equal(t, []string{`{"a":3,"b":2}`}, got)

	err := source.YAMLReader{StrictKeys: true}.Read(context.Background(), strings.NewReader(in), func(*fp.TypedStruct) error { return nil })
	require.Error(t, err)
	var dup *source.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Key)
	assert.Equal(t, 1, dup.FirstLine)
	assert.Equal(t, 3, dup.Line)

	r, err := source.New(source.Options{Format: "yaml"})
	require.NoError(t, err)
	assert.Equal(t, &source.YAMLReader{StrictKeys: true}, r)
}

func TestCSVReader_HeaderAndAutoDetect(t *testing.T) {
	in := "id;name;zip\n1;ada;007\n2;bob;12345\n"
	got := readAll(t, &source.CSVReader{Delimiter: ';', Header: true, AutoDetect: true}, in)
	assert.Equal(t, []string{
		`{"id":1,"name":"ada","zip":"007"}`,
		`{"id":2,"name":"bob","zip":12345}`,
	}, got)

	got = readAll(t, &source.CSVReader{}, "1,x\n")
	assert.Equal(t, []string{`{"column1":"1","column2":"x"}`}, got)
}

func TestCSVReader_RepeatedColumnsBecomeArrays(t *testing.T) {
	var rec *fp.TypedStruct
	err := (&source.CSVReader{Header: true}).Read(context.Background(), strings.NewReader("tag,id,tag,tag\na,1,b,c\n"), func(r *fp.TypedStruct) error {
		rec = r
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, `{"tag":["a","b","c"],"id":"1"}`, rec.String())
	first, err := rec.First("tag")
	require.NoError(t, err)
	assert.Equal(t, "a", first.Value())
}

func TestCSVReader_ExplicitColumnsAndRaggedRows(t *testing.T) {
	got := readAll(t, &source.CSVReader{Columns: []string{"a", "b"}}, "1,2,3\n4\n")
	assert.Equal(t, []string{
		`{"a":"1","b":"2","column3":"3"}`,
		`{"a":"4"}`,
	}, got)
}

func TestXMLReader(t *testing.T) {
	in := `<?xml version="1.0"?>
<catalog xmlns="urn:x">
  <book id="b1" lang="en">
    <title>Go</title>
    <author>A</author>
    <author>B</author>
    <price currency="EUR">12.5</price>
    <tags><tag>lang</tag></tags>
    <empty/>
  </book>
  <book id="b2">
    <title>Kafka</title>
    <author>C</author>
    <tags><tag>stream</tag></tags>
  </book>
</catalog>`
	r := &source.XMLReader{
		RecordElement:    "book",
		ForceArrayFields: fp.NewFieldPaths("author", "tags.tag"),
		AutoDetect:       true,
	}
	got := readAll(t, r, in)
	assert.Equal(t, []string{
		`{"id":"b1","lang":"en","title":"Go","author":["A","B"],"price":{"currency":"EUR","value":12.5},"tags":{"tag":["lang"]},"empty":null}`,
		`{"id":"b2","title":"Kafka","author":["C"],"tags":{"tag":["stream"]}}`,
	}, got)
}

func TestXMLReader_RootElementIsRecord(t *testing.T) {
	got := readAll(t, &source.XMLReader{}, `<r><a>1</a><a>2</a><b>x</b></r>`)
	assert.Equal(t, []string{`{"a":["1","2"],"b":"x"}`}, got)
}

func TestXMLReader_Unclosed(t *testing.T) {
	err := (&source.XMLReader{}).Read(context.Background(), strings.NewReader(`<r><a>1</a>`), func(*fp.TypedStruct) error { return nil })
	require.Error(t, err)
}

func TestLineReader(t *testing.T) {
	got := readAll(t, source.LineReader{}, "first\r\nsecond\n\nlast")
	assert.Equal(t, []string{
		`{"message":"first"}`,
		`{"message":"second"}`,
		`{"message":""}`,
		`{"message":"last"}`,
	}, got)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "yaml", "csv", "xml", "line"} {
		r, err := source.New(source.Options{Format: format})
		require.NoError(t, err, format)
		require.NotNil(t, r, format)
	}

	_, err := source.New(source.Options{Format: "parquet"})
	assert.Error(t, err)
	_, err = source.New(source.Options{Format: "csv", Delimiter: "||"})
	assert.Error(t, err)
	_, err = source.New(source.Options{Format: "json", DuplicateKeys: "sometimes"})
	assert.Error(t, err)
	_, err = source.New(source.Options{Format: "json", Driver: "simdjson"})
	assert.Error(t, err)

	r, err := source.New(source.Options{Format: "csv", Delimiter: "\t", Header: true})
	require.NoError(t, err)
	got := readAll(t, r, "a\tb\n1\t2\n")
	assert.Equal(t, []string{`{"a":"1","b":"2"}`}, got)
}

func TestJSONReader_EmptyInput(t *testing.T) {
	got := readAll(t, &source.JSONReader{}, "  \n")
	assert.Empty(t, got)

	err := (&source.JSONReader{}).Read(context.Background(), strings.NewReader("["), func(*fp.TypedStruct) error { return nil })
	assert.Error(t, err)
}
