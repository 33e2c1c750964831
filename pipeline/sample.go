package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/vegasq/pq/reader"
)

// Mode selects which end of a stream a Window keeps.
type Mode int

const (
	HeadMode Mode = iota
	TailMode
)

// Window retains at most n rows: the first n in HeadMode, the last n in
// TailMode. Storage grows with the rows seen, up to n.
type Window struct {
	mode  Mode
	n     int
	buf   []reader.Row
	start int // index of the oldest row once buf is full
	seen  int64
}

// NewWindow returns an empty window of capacity n.
func NewWindow(mode Mode, n int) *Window {
	if n < 0 {
		n = 0
	}
	return &Window{mode: mode, n: n}
}

// Push offers a row to the window. It reports false once a HeadMode window is
// full and further rows would be ignored.
func (w *Window) Push(row reader.Row) bool {
	w.seen++
	if w.n == 0 {
		return w.mode == TailMode
	}
	if len(w.buf) < w.n {
		w.buf = append(w.buf, row)
		return w.mode == TailMode || len(w.buf) < w.n
	}
	if w.mode == HeadMode {
		return false
	}
	w.buf[w.start] = row
	w.start = (w.start + 1) % w.n
	return true
}

// Full reports whether the window holds n rows.
func (w *Window) Full() bool { return len(w.buf) >= w.n }

// Seen returns the number of rows offered to the window.
func (w *Window) Seen() int64 { return w.seen }

// Rows returns the retained rows in stream order.
func (w *Window) Rows() []reader.Row {
	out := make([]reader.Row, 0, len(w.buf))
	out = append(out, w.buf[w.start:]...)
	return append(out, w.buf[:w.start]...)
}

// TakeFirst returns the first n rows of src. It stops requesting batches
// once n rows have been seen; the caller closes src.
func TakeFirst(ctx context.Context, src reader.BatchReader, n int) ([]reader.Row, error) {
	w := NewWindow(HeadMode, n)
	if n <= 0 {
		return w.Rows(), nil
	}
	for !w.Full() {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range batch.Rows {
			if !w.Push(row) {
				break
			}
		}
	}
	return w.Rows(), nil
}

// TakeLast exhausts src and returns its last n rows along with the number
// of rows observed.
func TakeLast(ctx context.Context, src reader.BatchReader, n int) ([]reader.Row, int64, error) {
	w := NewWindow(TailMode, n)
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return w.Rows(), w.Seen(), nil
		}
		if err != nil {
			return nil, w.Seen(), err
		}
		// Only the final n rows of a batch can survive.
		rows := batch.Rows
		if n > 0 && len(rows) > n {
			w.seen += int64(len(rows) - n)
			rows = rows[len(rows)-n:]
		}
		if n == 0 {
			w.seen += int64(len(rows))
			continue
		}
		for _, row := range rows {
			w.Push(row)
		}
	}
}
