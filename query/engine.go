package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/reader"
)

// Tables resolves the table named in FROM to a stream of its rows.
type Tables interface {
	Open(ctx context.Context, name string) (reader.BatchReader, error)
}

// Run parses sql, opens the table it reads and executes it. limit, when
// non-negative, further caps the number of rows returned.
func Run(ctx context.Context, sql string, tables Tables, limit int64) (reader.BatchReader, error) {
	q, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && (q.Limit < 0 || limit < q.Limit) {
		q.Limit = limit
	}

	src, err := tables.Open(ctx, q.TableName)
	if err != nil {
		return nil, err
	}
	res, err := Execute(ctx, q, src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return res, nil
}

// Execute binds q to src and returns its result stream. Rows are filtered
// and projected one batch at a time; once LIMIT rows have been produced no
// further batches are requested from src. Closing the result closes src.
func Execute(ctx context.Context, q *Query, src reader.BatchReader) (reader.BatchReader, error) {
	in := src.Schema()
	pred, err := Bind(q.Filter, in)
	if err != nil {
		return nil, err
	}

	r := &result{src: src, pred: pred, limit: q.Limit, count: q.Count != nil}
	switch {
	case q.Count != nil:
		r.schema = reader.Schema{{Name: q.Count.OutputName(), Type: "INT64", PhysicalType: "INT64"}}
	case len(q.SelectList) == 0:
		r.schema = in
	default:
		r.schema = make(reader.Schema, len(q.SelectList))
		r.project = make([]int, len(q.SelectList))
		for i, item := range q.SelectList {
			idx, err := columnIndex(in, item.Column)
			if err != nil {
				return nil, bindError(err)
			}
			col := in[idx]
			col.Name = item.OutputName()
			r.schema[i] = col
			r.project[i] = idx
		}
	}

	logctx.FromContext(ctx).Debug("executing query",
		slog.String("table", q.TableName),
		slog.Int("columns", len(r.schema)),
		slog.Int64("limit", q.Limit))
	return r, nil
}

type result struct {
	src     reader.BatchReader
	schema  reader.Schema
	pred    Predicate
	project []int // nil keeps every column
	limit   int64 // negative for no limit
	count   bool

	emitted int64
	done    bool
}

func (r *result) Schema() reader.Schema { return r.schema }

func (r *result) Next(ctx context.Context) (*reader.Batch, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.count {
		return r.countAll(ctx)
	}

	for {
		if r.limit >= 0 && r.emitted >= r.limit {
			r.done = true
			return nil, io.EOF
		}
		batch, err := r.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		rows := make([]reader.Row, 0, len(batch.Rows))
		for _, row := range batch.Rows {
			if r.limit >= 0 && r.emitted+int64(len(rows)) >= r.limit {
				break
			}
			ok, err := r.pred(row)
			if err != nil {
				return nil, err
			}
			if ok {
				rows = append(rows, r.projectRow(row))
			}
		}
		if len(rows) == 0 {
			continue
		}
		r.emitted += int64(len(rows))
		return &reader.Batch{Schema: r.schema, Rows: rows, RowGroup: batch.RowGroup}, nil
	}
}

func (r *result) projectRow(row reader.Row) reader.Row {
	if r.project == nil {
		return row
	}
	out := make(reader.Row, len(r.project))
	for i, idx := range r.project {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

func (r *result) countAll(ctx context.Context) (*reader.Batch, error) {
	r.done = true
	if r.limit == 0 {
		return nil, io.EOF
	}

	var n int64
	for {
		batch, err := r.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range batch.Rows {
			ok, err := r.pred(row)
			if err != nil {
				return nil, err
			}
			if ok {
				n++
			}
		}
	}
	return &reader.Batch{Schema: r.schema, Rows: []reader.Row{{reader.IntCell(n)}}}, nil
}

func (r *result) Close() error {
	r.done = true
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("failed to close query input: %w", err)
	}
	return nil
}
