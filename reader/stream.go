package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/internal/logctx"
)

// DefaultBatchSize is the number of rows decoded per batch when no size is
// configured.
const DefaultBatchSize = 1024

// Batch is a slice of rows from a single row group.
type Batch struct {
	Schema   Schema
	Rows     []Row
	RowGroup int
}

// BatchReader is a lazy, forward-only stream of batches.
//
// Next returns io.EOF once the stream is exhausted. Close releases the
// underlying resources and may be called at any point.
type BatchReader interface {
	Schema() Schema
	Next(ctx context.Context) (*Batch, error)
	Close() error
}

// StreamOptions configures OpenStream.
type StreamOptions struct {
	Range     Range
	BatchSize int
}

// Streamer reads the rows of a range of row groups in file order.
// It holds at most one batch of decoded rows at a time.
type Streamer struct {
	lf        *LogicalFile
	file      *RawFile
	groups    []parquet.RowGroup
	batchSize int

	next int
	last int
	cur  int
	rows parquet.Rows
	buf  []parquet.Row

	closed bool
}

var _ BatchReader = (*Streamer)(nil)

// OpenStream opens the file behind lf for streaming the row groups selected
// by opts.Range. The range must lie within the file's row groups.
func OpenStream(lf *LogicalFile, opts StreamOptions) (*Streamer, error) {
	if opts.Range.First < 0 || opts.Range.Last > len(lf.RowGroups) || opts.Range.First > opts.Range.Last {
		return nil, fmt.Errorf("row group range [%d, %d) out of bounds for %s (%d row groups)",
			opts.Range.First, opts.Range.Last, lf.Path, len(lf.RowGroups))
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	raw, err := OpenRaw(lf)
	if err != nil {
		return nil, err
	}

	return &Streamer{
		lf:        lf,
		file:      raw,
		groups:    raw.RowGroups(),
		batchSize: batchSize,
		next:      opts.Range.First,
		last:      opts.Range.Last,
		buf:       make([]parquet.Row, batchSize),
	}, nil
}

// Schema returns the file's schema.
func (s *Streamer) Schema() Schema { return s.lf.Schema }

// Path returns the path of the file being streamed.
func (s *Streamer) Path() string { return s.lf.Path }

// Next decodes the next batch. It returns io.EOF when the range is exhausted.
func (s *Streamer) Next(ctx context.Context) (*Batch, error) {
	if s.closed {
		return nil, errors.New("read from closed stream")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.rows == nil {
			if s.next >= s.last {
				return nil, io.EOF
			}
			s.cur = s.next
			s.next++
			s.rows = s.groups[s.cur].Rows()
			logctx.FromContext(ctx).Debug("streaming row group",
				slog.String("path", s.lf.Path),
				slog.Int("rowGroup", s.cur),
				slog.Int64("rows", s.lf.RowGroups[s.cur]))
		}

		n, err := s.rows.ReadRows(s.buf)
		if err != nil && !errors.Is(err, io.EOF) {
			_ = s.closeRows()
			return nil, fmt.Errorf("failed to read row group %d of %s: %w", s.cur, s.lf.Path, err)
		}
		exhausted := errors.Is(err, io.EOF) || n == 0

		var batch *Batch
		if n > 0 {
			batch = &Batch{Schema: s.lf.Schema, Rows: make([]Row, n), RowGroup: s.cur}
			for i := 0; i < n; i++ {
				batch.Rows[i] = s.lf.Schema.convertRow(s.buf[i])
			}
		}
		if exhausted {
			if err := s.closeRows(); err != nil {
				return nil, fmt.Errorf("failed to close row group %d of %s: %w", s.cur, s.lf.Path, err)
			}
		}
		if batch != nil {
			return batch, nil
		}
	}
}

func (s *Streamer) closeRows() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}

// Close releases the file handle. It is safe to call Close more than once.
func (s *Streamer) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	rowsErr := s.closeRows()
	fileErr := s.file.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return fileErr
}

// ReadAll drains a BatchReader into memory. It is intended for small,
// bounded streams such as samples and test fixtures.
func ReadAll(ctx context.Context, src BatchReader) ([]Row, error) {
	var rows []Row
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch.Rows...)
	}
}
