package reader

import (
	"context"
	"io"
)

// MemoryReader serves rows already held in memory as a single batch.
type MemoryReader struct {
	schema Schema
	rows   []Row
	done   bool
}

var _ BatchReader = (*MemoryReader)(nil)

// NewMemoryReader returns a BatchReader yielding rows as one batch, or
// nothing when rows is empty.
func NewMemoryReader(schema Schema, rows []Row) *MemoryReader {
	return &MemoryReader{schema: schema, rows: rows}
}

func (m *MemoryReader) Schema() Schema { return m.schema }

func (m *MemoryReader) Next(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.done || len(m.rows) == 0 {
		return nil, io.EOF
	}
	m.done = true
	return &Batch{Schema: m.schema, Rows: m.rows}, nil
}

func (m *MemoryReader) Close() error {
	m.done = true
	return nil
}
