package source

import (
	"bufio"
	"context"
	"fmt"
	"io"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
)

// MessageField holds the raw text of a line.
const MessageField = "message"

// maxLineSize bounds the length of a single line.
const maxLineSize = 1 << 20

// LineReader emits one record per line: {"message": line}.
type LineReader struct{}

func (LineReader) Read(ctx context.Context, r io.Reader, emit EmitFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	index := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := filepulse.NewStruct().Put(MessageField, filepulse.String(sc.Text()))
		index++
		if err := emit(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", index+1, err)
	}
	return nil
}
