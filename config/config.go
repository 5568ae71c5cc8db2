// Package config loads pipeline definitions from YAML.
//
//	reader:
//	  format: csv
//	  header: true
//	  autoDetect: true
//	workers: 4
//	log:
//	  level: info
//	filters:
//	  - type: rename
//	    field: msg
//	    target: message
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/filter"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source"
)

// Pipeline is the root of a pipeline file.
type Pipeline struct {
	Reader  Reader   `yaml:"reader"`
	Workers int      `yaml:"workers"`
	Log     Log      `yaml:"log"`
	Filters []Filter `yaml:"filters"`
}

type Reader struct {
	Format           string   `yaml:"format"`
	Driver           string   `yaml:"driver"`
	DuplicateKeys    string   `yaml:"duplicateKeys"`
	MaxDepth         int      `yaml:"maxDepth"`
	MaxBytes         int64    `yaml:"maxBytes"`
	Delimiter        string   `yaml:"delimiter"`
	Header           bool     `yaml:"header"`
	Columns          []string `yaml:"columns"`
	AutoDetect       bool     `yaml:"autoDetect"`
	RecordElement    string   `yaml:"recordElement"`
	ForceArrayFields []string `yaml:"forceArrayFields"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Filter is one entry of the filters list. Which keys apply depends on Type.
type Filter struct {
	Type          string     `yaml:"type"`
	Field         string     `yaml:"field"`
	Fields        []string   `yaml:"fields"`
	Target        string     `yaml:"target"`
	Value         *yaml.Node `yaml:"value"`
	Overwrite     bool       `yaml:"overwrite"`
	To            string     `yaml:"to"`
	Separator     string     `yaml:"separator"`
	Formats       []string   `yaml:"formats"`
	Merge         bool       `yaml:"merge"`
	IgnoreMissing bool       `yaml:"ignoreMissing"`
	IgnoreFailure bool       `yaml:"ignoreFailure"`
}

// Load reads and validates the pipeline file at path.
func Load(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a pipeline document. Unknown keys are errors.
func Parse(b []byte) (*Pipeline, error) {
	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the document without building it.
func (p *Pipeline) Validate() error {
	if p.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", p.Workers)
	}
	var errs []error
	for i, f := range p.Filters {
		if _, err := f.build(); err != nil {
			errs = append(errs, fmt.Errorf("filters[%d] (%s): %w", i, f.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Build returns the record reader and the filter pipeline described by p.
// A nil registerer disables metrics.
func (p *Pipeline) Build(logger log.Log, reg prometheus.Registerer) (source.Reader, *filter.Pipeline, error) {
	if logger == nil {
		logger = log.Nop()
	}
	r, err := source.New(source.Options{
		Format:           p.Reader.Format,
		Driver:           p.Reader.Driver,
		DuplicateKeys:    p.Reader.DuplicateKeys,
		MaxDepth:         p.Reader.MaxDepth,
		MaxBytes:         p.Reader.MaxBytes,
		Delimiter:        p.Reader.Delimiter,
		Header:           p.Reader.Header,
		Columns:          p.Reader.Columns,
		AutoDetect:       p.Reader.AutoDetect,
		RecordElement:    p.Reader.RecordElement,
		ForceArrayFields: p.Reader.ForceArrayFields,
		Logger:           logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reader: %w", err)
	}
	filters := make([]filter.Filter, 0, len(p.Filters))
	for i, fc := range p.Filters {
		f, err := fc.build()
		if err != nil {
			return nil, nil, fmt.Errorf("filters[%d] (%s): %w", i, fc.Type, err)
		}
		filters = append(filters, f)
	}
	opts := []filter.Option{filter.WithLogger(logger)}
	if reg != nil {
		m, err := filter.NewMetrics(reg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, filter.WithMetrics(m))
	}
	return r, filter.NewPipeline(filters, opts...), nil
}

func (f Filter) build() (filter.Filter, error) {
	var out filter.Filter
	switch strings.ToLower(f.Type) {
	case "rename":
		if err := f.require(f.Field, "field", f.Target, "target"); err != nil {
			return nil, err
		}
		out = filter.Rename{Field: f.Field, Target: f.Target, IgnoreMissing: f.IgnoreMissing}
	case "move":
		if err := f.require(f.Field, "field", f.Target, "target"); err != nil {
			return nil, err
		}
		out = filter.Move{Field: f.Field, Target: f.Target, IgnoreMissing: f.IgnoreMissing}
	case "exclude":
		if len(f.Fields) == 0 {
			return nil, errors.New("fields is required")
		}
		out = filter.Exclude{Fields: f.Fields}
	case "append":
		if err := f.require(f.Field, "field"); err != nil {
			return nil, err
		}
		v, err := scalar(f.Value)
		if err != nil {
			return nil, err
		}
		out = filter.Append{Field: f.Field, Value: v, Overwrite: f.Overwrite}
	case "convert":
		if err := f.require(f.Field, "field", f.To, "to"); err != nil {
			return nil, err
		}
		t, ok := filepulse.ParseType(f.To)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", f.To)
		}
		out = filter.Convert{Field: f.Field, To: t, IgnoreMissing: f.IgnoreMissing}
	case "explode":
		if err := f.require(f.Field, "field"); err != nil {
			return nil, err
		}
		out = filter.Explode{Field: f.Field, IgnoreMissing: f.IgnoreMissing}
	case "split":
		if err := f.require(f.Field, "field"); err != nil {
			return nil, err
		}
		out = filter.Split{Field: f.Field, Target: f.Target, Separator: f.Separator, IgnoreMissing: f.IgnoreMissing}
	case "parse-json", "json":
		if err := f.require(f.Field, "field"); err != nil {
			return nil, err
		}
		out = filter.ParseJSON{Field: f.Field, Target: f.Target, Merge: f.Merge, IgnoreMissing: f.IgnoreMissing}
	case "date":
		if err := f.require(f.Field, "field"); err != nil {
			return nil, err
		}
		out = filter.Date{Field: f.Field, Target: f.Target, Layouts: f.Formats, IgnoreMissing: f.IgnoreMissing}
	case "generate-id", "uuid":
		out = filter.GenerateID{Field: f.Field}
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unknown filter type %q", f.Type)
	}
	if f.IgnoreFailure {
		out = filter.IgnoreFailure(out)
	}
	return out, nil
}

// require takes (value, key) pairs and reports the first empty value.
func (f Filter) require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" {
			return fmt.Errorf("%s is required", pairs[i+1])
		}
	}
	return nil
}

// scalar turns a YAML scalar into a typed value. Quoted scalars stay
// strings, plain ones are type-detected.
func scalar(n *yaml.Node) (filepulse.TypedValue, error) {
	if n == nil {
		return filepulse.TypedValue{}, errors.New("value is required")
	}
	if n.Kind != yaml.ScalarNode {
		return filepulse.TypedValue{}, fmt.Errorf("value must be a scalar (line %d)", n.Line)
	}
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 || n.Tag == "!!str" {
		return filepulse.String(n.Value), nil
	}
	return filepulse.Parse(n.Value), nil
}
