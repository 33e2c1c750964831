package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/pq/internal/logctx"
)

var magic = []byte("PAR1")

// minFileSize is the size of the two magic markers plus the footer length.
const minFileSize = 12

// LogicalFile is the footer-level view of one Parquet file. It is created by
// Probe and never modified afterwards.
type LogicalFile struct {
	Path        string
	Schema      Schema
	RowGroups   []int64 // row count of each row group
	NumRows     int64
	Compression string
	Size        int64
	CreatedBy   string
	Version     int32

	// Summaries holds the footer statistics of every column chunk, indexed
	// by row group then column.
	Summaries [][]Summary
}

// Summary is the footer statistics of one column chunk.
type Summary struct {
	Min, Max   Cell // null when the footer carries no bounds
	NullCount  uint64
	ValueCount uint64
}

// NumColumns returns the number of leaf columns.
func (lf *LogicalFile) NumColumns() int { return len(lf.Schema) }

// Probe reads the footer metadata of the file at path.
//
// The file handle is closed before Probe returns and no row group payload is
// read. Errors are *FileError values wrapping ErrNotFound, ErrNotParquet or
// ErrCorruptFooter.
func Probe(ctx context.Context, path string) (*LogicalFile, error) {
	f, size, err := openChecked(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	pf, err := parquet.OpenFile(f, size, parquet.SkipPageIndex(true), parquet.SkipBloomFilters(true))
	if err != nil {
		return nil, fileError(ErrCorruptFooter, path, err)
	}

	lf, err := newLogicalFile(path, size, pf)
	if err != nil {
		return nil, err
	}

	logctx.FromContext(ctx).Debug("probed parquet file",
		slog.String("path", path),
		slog.Int64("rows", lf.NumRows),
		slog.Int("rowGroups", len(lf.RowGroups)))
	return lf, nil
}

// openChecked opens path and verifies the PAR1 magic at both ends.
func openChecked(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fileError(ErrNotFound, path, nil)
		}
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, 0, fileError(ErrNotParquet, path, errors.New("is a directory"))
	}
	if stat.Size() < minFileSize {
		_ = f.Close()
		return nil, 0, fileError(ErrNotParquet, path, fmt.Errorf("file too small (%d bytes)", stat.Size()))
	}

	head := make([]byte, len(magic))
	tail := make([]byte, len(magic))
	if _, err := f.ReadAt(head, 0); err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := f.ReadAt(tail, stat.Size()-int64(len(magic))); err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to read file trailer: %w", err)
	}
	if !bytes.Equal(head, magic) || !bytes.Equal(tail, magic) {
		_ = f.Close()
		return nil, 0, fileError(ErrNotParquet, path, errors.New("missing PAR1 magic"))
	}

	return f, stat.Size(), nil
}

func newLogicalFile(path string, size int64, pf *parquet.File) (*LogicalFile, error) {
	md := pf.Metadata()
	if md == nil {
		return nil, fileError(ErrCorruptFooter, path, errors.New("missing file metadata"))
	}

	lf := &LogicalFile{
		Path:        path,
		Schema:      SchemaOf(pf.Schema()),
		RowGroups:   make([]int64, len(md.RowGroups)),
		NumRows:     md.NumRows,
		Compression: "UNCOMPRESSED",
		Size:        size,
		CreatedBy:   md.CreatedBy,
		Version:     md.Version,
		Summaries:   make([][]Summary, len(md.RowGroups)),
	}
	if md.NumRows < 0 {
		return nil, fileError(ErrCorruptFooter, path, fmt.Errorf("negative row count %d", md.NumRows))
	}

	for i, rg := range md.RowGroups {
		if rg.NumRows < 0 {
			return nil, fileError(ErrCorruptFooter, path, fmt.Errorf("row group %d has negative row count %d", i, rg.NumRows))
		}
		lf.RowGroups[i] = rg.NumRows
		lf.Summaries[i] = summarize(lf.Schema, rg)
	}
	if len(md.RowGroups) > 0 && len(md.RowGroups[0].Columns) > 0 {
		lf.Compression = md.RowGroups[0].Columns[0].MetaData.Codec.String()
	}
	return lf, nil
}

func summarize(schema Schema, rg format.RowGroup) []Summary {
	out := make([]Summary, len(schema))
	for j := range schema {
		col := &schema[j]
		if j >= len(rg.Columns) {
			continue
		}
		stats := rg.Columns[j].MetaData.Statistics
		if col.Repeated {
			// Repeated leaves surface as one list per row.
			out[j] = Summary{ValueCount: uint64(rg.NumRows)}
			continue
		}

		nulls := stats.NullCount
		if nulls < 0 || nulls > rg.NumRows {
			nulls = 0
		}
		out[j] = Summary{
			NullCount:  uint64(nulls),
			ValueCount: uint64(rg.NumRows - nulls),
		}

		minRaw, maxRaw := stats.MinValue, stats.MaxValue
		if minRaw == nil && maxRaw == nil && !col.unsigned && col.kind != parquet.ByteArray && col.kind != parquet.FixedLenByteArray {
			minRaw, maxRaw = stats.Min, stats.Max
		}
		if minRaw == nil || maxRaw == nil || out[j].ValueCount == 0 {
			continue
		}
		lo, okLo := col.decodePlain(minRaw)
		hi, okHi := col.decodePlain(maxRaw)
		if okLo && okHi {
			out[j].Min, out[j].Max = lo, hi
		}
	}
	return out
}
