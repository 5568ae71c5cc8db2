package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	eng "github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/engine"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
)

// JSONReader reads a stream of JSON documents. Each object document is a
// record; the elements of a root array are records of their own; any other
// root value is wrapped into a record under ValueField. Object members keep
// their input order.
type JSONReader struct {
	// Driver defaults to CurrentJSONDriver.
	Driver        JSONDriver
	DuplicateKeys eng.DuplicateStrictness
	MaxDepth      int
	MaxBytes      int64
	Logger        log.Log
}

func (j *JSONReader) Read(ctx context.Context, r io.Reader, emit EmitFunc) error {
	driver := j.Driver
	if driver == nil {
		driver = CurrentJSONDriver()
	}
	logger := j.Logger
	if logger == nil {
		logger = log.Nop()
	}
	src := eng.WrapWithEnforcement(driver.NewTokenSource(r), eng.EnforceOptions{
		OnDuplicate: j.DuplicateKeys,
		MaxDepth:    j.MaxDepth,
		MaxBytes:    j.MaxBytes,
		IssueSink: func(is eng.Issue) {
			logger.Warn("json input issue", log.String("code", is.Code), log.String("path", is.Path), log.String("message", is.Message))
		},
	})

	index := 0
	next := func(v any) error {
		rec, err := asRecord(v)
		if err != nil {
			return fmt.Errorf("json record %d: %w", index, err)
		}
		index++
		return emit(rec)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			logger.Debug("json input done", log.Int("records", index), log.String("driver", driver.Name()))
			return nil
		}
		if err != nil {
			return fmt.Errorf("json record %d: %w", index, err)
		}
		if tok.Kind != eng.KindBeginArray {
			v, err := eng.DecodeValue(src, tok)
			if err != nil {
				return fmt.Errorf("json record %d: %w", index, err)
			}
			if err := next(v); err != nil {
				return err
			}
			continue
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			tok, err := src.NextToken()
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("json record %d: %w", index, io.ErrUnexpectedEOF)
			}
			if err != nil {
				return fmt.Errorf("json record %d: %w", index, err)
			}
			if tok.Kind == eng.KindEndArray {
				break
			}
			v, err := eng.DecodeValue(src, tok)
			if err != nil {
				return fmt.Errorf("json record %d: %w", index, err)
			}
			if err := next(v); err != nil {
				return err
			}
		}
	}
}
