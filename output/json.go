package output

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/vegasq/pq/reader"
)

// JSONLFormatter outputs rows as JSON Lines: one compact object per row.
type JSONLFormatter struct {
	writer io.Writer
}

// NewJSONLFormatter creates a new JSON Lines formatter
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes each row as a JSON object on its own line.
func (j *JSONLFormatter) Format(ctx context.Context, src reader.BatchReader) error {
	var line []byte
	return eachBatch(ctx, src, func(batch *reader.Batch) error {
		for _, row := range batch.Rows {
			var err error
			line, err = appendObject(line[:0], batch.Schema, row)
			if err != nil {
				return err
			}
			line = append(line, '\n')
			if _, err := j.writer.Write(line); err != nil {
				return fmt.Errorf("failed to write JSON line: %w", err)
			}
		}
		return nil
	})
}

// JSONFormatter outputs rows as a single indented JSON array.
//
// Elements are written as they arrive; the opening bracket and separators
// are emitted lazily so an empty stream prints "[]".
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON array formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes every row as an element of one JSON array.
func (j *JSONFormatter) Format(ctx context.Context, src reader.BatchReader) error {
	var (
		obj   []byte
		out   bytes.Buffer
		count int
	)

	err := eachBatch(ctx, src, func(batch *reader.Batch) error {
		for _, row := range batch.Rows {
			var err error
			obj, err = appendObject(obj[:0], batch.Schema, row)
			if err != nil {
				return err
			}

			out.Reset()
			if count == 0 {
				out.WriteString("[\n  ")
			} else {
				out.WriteString(",\n  ")
			}
			if err := json.Indent(&out, obj, "  ", "  "); err != nil {
				return fmt.Errorf("failed to indent JSON: %w", err)
			}
			if _, err := j.writer.Write(out.Bytes()); err != nil {
				return fmt.Errorf("failed to write JSON: %w", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return err
	}

	closing := "\n]\n"
	if count == 0 {
		closing = "[]\n"
	}
	if _, err := io.WriteString(j.writer, closing); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
