package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// CSVReader reads delimited rows. Column names come from Columns, else from
// the header row when Header is set, else they are column1..columnN. A name
// repeated in the header collects its values into an ARRAY.
type CSVReader struct {
	Delimiter  rune
	Header     bool
	Columns    []string
	AutoDetect bool
}

func (c *CSVReader) Read(ctx context.Context, r io.Reader, emit EmitFunc) error {
	cr := csv.NewReader(r)
	if c.Delimiter != 0 {
		cr.Comma = c.Delimiter
	}
	cr.FieldsPerRecord = -1

	names := slices.Clone(c.Columns)
	skipHeader := c.Header
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv record %d: %w", index, err)
		}
		if skipHeader {
			skipHeader = false
			if len(names) == 0 {
				names = slices.Clone(row)
			}
			continue
		}
		rec, err := c.record(names, row)
		if err != nil {
			return fmt.Errorf("csv record %d: %w", index, err)
		}
		index++
		if err := emit(rec); err != nil {
			return err
		}
	}
}

func (c *CSVReader) record(names, row []string) (*filepulse.TypedStruct, error) {
	rec := filepulse.NewStruct()
	for i, cell := range row {
		name := "column" + strconv.Itoa(i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		v := filepulse.String(cell)
		if c.AutoDetect {
			v = filepulse.Parse(cell)
		}
		if !rec.Has(name) {
			rec.Put(name, v)
			continue
		}
		prev, err := rec.Get(name)
		if err != nil {
			return nil, err
		}
		if prev.Type() == filepulse.TypeArray {
			vs, _ := prev.Array()
			rec.Put(name, filepulse.Array(append(vs, v.Value())))
			continue
		}
		rec.Put(name, filepulse.Array([]any{prev.Value(), v.Value()}))
	}
	return rec, nil
}
