package reader

import (
	"context"
	"errors"
	"io"

	"github.com/parquet-go/parquet-go"
)

// FileColumn is the name of the column tagging each row with its source path.
const FileColumn = "_file"

// MultiOptions configures NewMultiStream.
type MultiOptions struct {
	BatchSize int
	// TagFile appends a FileColumn holding each row's source path.
	TagFile bool
}

// MultiStream concatenates the full streams of several files in order.
// Files are opened one at a time as the previous one is exhausted.
type MultiStream struct {
	files  []*LogicalFile
	opts   MultiOptions
	schema Schema

	idx int
	cur *Streamer
}

var _ BatchReader = (*MultiStream)(nil)

// NewMultiStream returns a stream over every row of files. The files must
// share the first file's schema; see CheckCompatible.
func NewMultiStream(files []*LogicalFile, opts MultiOptions) (*MultiStream, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}
	schema := append(Schema(nil), files[0].Schema...)
	if opts.TagFile {
		schema = append(schema, Column{
			Name:         FileColumn,
			Type:         "STRING",
			PhysicalType: "BYTE_ARRAY",
			LogicalType:  "STRING",
			kind:         parquet.ByteArray,
			text:         true,
		})
	}
	return &MultiStream{files: files, opts: opts, schema: schema}, nil
}

func (m *MultiStream) Schema() Schema { return m.schema }

func (m *MultiStream) Next(ctx context.Context) (*Batch, error) {
	for {
		if m.cur == nil {
			if m.idx >= len(m.files) {
				return nil, io.EOF
			}
			lf := m.files[m.idx]
			s, err := OpenStream(lf, StreamOptions{Range: lf.All(), BatchSize: m.opts.BatchSize})
			if err != nil {
				return nil, err
			}
			m.cur = s
		}

		batch, err := m.cur.Next(ctx)
		if errors.Is(err, io.EOF) {
			if err := m.cur.Close(); err != nil {
				return nil, err
			}
			m.cur = nil
			m.idx++
			continue
		}
		if err != nil {
			return nil, err
		}

		batch.Schema = m.schema
		if m.opts.TagFile {
			tag := StringCell(m.files[m.idx].Path)
			for i, row := range batch.Rows {
				batch.Rows[i] = append(row, tag)
			}
		}
		return batch, nil
	}
}

func (m *MultiStream) Close() error {
	m.idx = len(m.files)
	if m.cur == nil {
		return nil
	}
	err := m.cur.Close()
	m.cur = nil
	return err
}

// CheckCompatible verifies that every file shares the first file's schema.
// It returns a *SchemaMismatchError naming the first divergent file.
func CheckCompatible(files []*LogicalFile) error {
	if len(files) < 2 {
		return nil
	}
	ref := files[0]
	for _, lf := range files[1:] {
		if column, reason, ok := lf.Schema.Diff(ref.Schema); !ok {
			return &SchemaMismatchError{
				Path:      lf.Path,
				Reference: ref.Path,
				Column:    column,
				Reason:    reason,
			}
		}
	}
	return nil
}
