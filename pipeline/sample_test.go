package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/reader"
)

// countingReader serves fixed batches and records how many were requested.
type countingReader struct {
	batches [][]reader.Row
	calls   int
}

func (c *countingReader) Schema() reader.Schema { return reader.Schema{{Name: "n"}} }

func (c *countingReader) Next(ctx context.Context) (*reader.Batch, error) {
	if c.calls >= len(c.batches) {
		return nil, io.EOF
	}
	b := &reader.Batch{Schema: c.Schema(), Rows: c.batches[c.calls]}
	c.calls++
	return b, nil
}

func (c *countingReader) Close() error { return nil }

func intRows(from, to int) []reader.Row {
	var rows []reader.Row
	for i := from; i < to; i++ {
		rows = append(rows, reader.Row{reader.IntCell(int64(i))})
	}
	return rows
}

func ints(rows []reader.Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r[0].Int()
	}
	return out
}

func TestWindow(t *testing.T) {
	head := NewWindow(HeadMode, 3)
	tail := NewWindow(TailMode, 3)
	for _, row := range intRows(0, 8) {
		head.Push(row)
		tail.Push(row)
	}

	assert.Equal(t, []int64{0, 1, 2}, ints(head.Rows()))
	assert.Equal(t, []int64{5, 6, 7}, ints(tail.Rows()))
	assert.Equal(t, int64(8), tail.Seen())
	assert.True(t, tail.Full())

	short := NewWindow(TailMode, 5)
	for _, row := range intRows(0, 2) {
		short.Push(row)
	}
	assert.Equal(t, []int64{0, 1}, ints(short.Rows()))
	assert.False(t, short.Full())
}

func TestTakeFirst_StopsRequestingBatches(t *testing.T) {
	src := &countingReader{batches: [][]reader.Row{intRows(0, 4), intRows(4, 8), intRows(8, 12)}}

	rows, err := TakeFirst(context.Background(), src, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, ints(rows))
	assert.Equal(t, 2, src.calls)
}

func TestTakeFirst_Zero(t *testing.T) {
	src := &countingReader{batches: [][]reader.Row{intRows(0, 4)}}

	rows, err := TakeFirst(context.Background(), src, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, src.calls)
}

func TestTakeLast(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int64
	}{
		{"zero exhausts and keeps nothing", 0, []int64{}},
		{"within last batch", 2, []int64{8, 9}},
		{"spans batches", 5, []int64{5, 6, 7, 8, 9}},
		{"more than total", 50, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingReader{batches: [][]reader.Row{intRows(0, 4), intRows(4, 7), intRows(7, 10)}}
			rows, observed, err := TakeLast(context.Background(), src, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ints(rows))
			assert.Equal(t, int64(10), observed)
			assert.Equal(t, 3, src.calls)
		})
	}
}
