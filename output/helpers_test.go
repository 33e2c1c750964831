package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/reader"
)

var peopleSchema = reader.Schema{{Name: "id"}, {Name: "name"}, {Name: "age"}}

func peopleRows() []reader.Row {
	return []reader.Row{
		{reader.IntCell(1), reader.StringCell("Alice"), reader.IntCell(30)},
		{reader.IntCell(2), reader.StringCell("Bob"), reader.IntCell(25)},
		{reader.IntCell(3), reader.StringCell("Charlie"), reader.IntCell(35)},
	}
}

// batches serves rows split into several batches.
type batches struct {
	schema reader.Schema
	chunks [][]reader.Row
}

func (b *batches) Schema() reader.Schema { return b.schema }

func (b *batches) Next(ctx context.Context) (*reader.Batch, error) {
	if len(b.chunks) == 0 {
		return reader.NewMemoryReader(b.schema, nil).Next(ctx)
	}
	rows := b.chunks[0]
	b.chunks = b.chunks[1:]
	return &reader.Batch{Schema: b.schema, Rows: rows}, nil
}

func (b *batches) Close() error { return nil }

func render(t *testing.T, format Format, opts Options, src reader.BatchReader) string {
	t.Helper()
	var buf bytes.Buffer
	f, err := New(format, &buf, opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(context.Background(), src))
	return buf.String()
}
