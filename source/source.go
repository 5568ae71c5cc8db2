// Package source reads files into records. Every reader turns an input
// stream into a sequence of *filepulse.TypedStruct handed to an emit
// callback, in input order.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source/fastjson"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source/gojson"
)

// EmitFunc receives each record. Returning an error stops the reader, which
// returns that error unchanged.
type EmitFunc func(rec *filepulse.TypedStruct) error

// Reader turns an input stream into records.
type Reader interface {
	Read(ctx context.Context, r io.Reader, emit EmitFunc) error
}

// ValueField names the field that holds a value which is not a record by
// itself, such as a scalar at the root of a JSON document.
const ValueField = "value"

// JSONDriver converts JSON input into a token stream via a pluggable SPI. The
// default implementation is backed by goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewTokenSource(r io.Reader) eng.TokenSource
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = gojson.Driver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(gojson.Driver{}) }

// CurrentJSONDriver returns the global JSON driver.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// JSONDriverByName resolves "go-json" or "fastjson".
func JSONDriverByName(name string) (JSONDriver, bool) {
	switch strings.ToLower(name) {
	case "", "go-json", "gojson":
		return gojson.Driver{}, true
	case "fastjson":
		return fastjson.Driver{}, true
	}
	return nil, false
}

// Options configures New.
type Options struct {
	// Format is one of json, yaml, csv, xml or line.
	Format string

	// JSON
	Driver        string
	DuplicateKeys string // error, warn or ignore
	MaxDepth      int
	MaxBytes      int64

	// CSV
	Delimiter  string
	Header     bool
	Columns    []string
	AutoDetect bool

	// XML
	RecordElement    string
	ForceArrayFields []string

	Logger log.Log
}

// New builds the reader for opts.Format.
func New(opts Options) (Reader, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	switch strings.ToLower(opts.Format) {
	case "json", "ndjson", "":
		dup, err := parseDuplicateKeys(opts.DuplicateKeys)
		if err != nil {
			return nil, err
		}
		var driver JSONDriver
		if opts.Driver != "" {
			d, ok := JSONDriverByName(opts.Driver)
			if !ok {
				return nil, fmt.Errorf("unknown json driver %q", opts.Driver)
			}
			driver = d
		}
		return &JSONReader{Driver: driver, DuplicateKeys: dup, MaxDepth: opts.MaxDepth, MaxBytes: opts.MaxBytes, Logger: logger}, nil
	case "yaml", "yml":
		dup, err := parseDuplicateKeys(opts.DuplicateKeys)
		if err != nil {
			return nil, err
		}
		return &YAMLReader{StrictKeys: dup == eng.DupError}, nil
	case "csv":
		delim := ','
		if opts.Delimiter != "" {
			r := []rune(opts.Delimiter)
			if len(r) != 1 {
				return nil, fmt.Errorf("csv delimiter must be a single character, got %q", opts.Delimiter)
			}
			delim = r[0]
		}
		return &CSVReader{Delimiter: delim, Header: opts.Header, Columns: opts.Columns, AutoDetect: opts.AutoDetect}, nil
	case "xml":
		return &XMLReader{
			RecordElement:    opts.RecordElement,
			ForceArrayFields: filepulse.NewFieldPaths(opts.ForceArrayFields...),
			AutoDetect:       opts.AutoDetect,
		}, nil
	case "line", "text":
		return &LineReader{}, nil
	}
	return nil, fmt.Errorf("unknown format %q", opts.Format)
}

func parseDuplicateKeys(s string) (eng.DuplicateStrictness, error) {
	switch strings.ToLower(s) {
	case "", "error":
		return eng.DupError, nil
	case "warn":
		return eng.DupWarn, nil
	case "ignore":
		return eng.DupIgnore, nil
	}
	return eng.DupError, fmt.Errorf("unknown duplicate key policy %q", s)
}

// asRecord returns v when it is a struct, otherwise a record holding v in
// ValueField.
func asRecord(v any) (*filepulse.TypedStruct, error) {
	if s, ok := v.(*filepulse.TypedStruct); ok {
		return s, nil
	}
	rec := filepulse.NewStruct()
	if err := rec.PutAny(ValueField, v); err != nil {
		return nil, err
	}
	return rec, nil
}
