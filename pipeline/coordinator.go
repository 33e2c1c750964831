package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/bits"

	"golang.org/x/sync/errgroup"

	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/reader"
)

// ErrCountOverflow is returned when a row total does not fit in a uint64.
var ErrCountOverflow = errors.New("row count overflows uint64")

// ForEach runs fn over items with at most rt.Workers calls in flight and
// returns the results in input order.
//
// The first failure cancels the context handed to the remaining calls.
// Every item still gets its call, so the error returned is the one from the
// lowest-index item that failed for a reason other than that cancellation.
func ForEach[T, R any](ctx context.Context, rt *Runtime, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]R, len(items))
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(rt.context(ctx))
	g.SetLimit(rt.workers())
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				errs[i] = err
				return err
			}
			results[i] = r
			return nil
		})
	}
	groupErr := g.Wait()

	if groupErr == nil {
		return results, nil
	}
	for _, err := range errs {
		if err == nil {
			continue
		}
		// Cancellations caused by a sibling's failure are not the cause.
		if ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			continue
		}
		return nil, err
	}
	return nil, groupErr
}

// ProbeAll probes every path and returns the files in input order.
func ProbeAll(ctx context.Context, rt *Runtime, paths []string) ([]*reader.LogicalFile, error) {
	return ForEach(ctx, rt, paths, func(ctx context.Context, path string) (*reader.LogicalFile, error) {
		return reader.Probe(ctx, path)
	})
}

// CommonSchema returns the schema shared by all files.
func CommonSchema(files []*reader.LogicalFile) (reader.Schema, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}
	if err := reader.CheckCompatible(files); err != nil {
		return nil, err
	}
	return files[0].Schema, nil
}

// FileCount is the row count of one file.
type FileCount struct {
	Path string
	Rows uint64
}

// CountResult holds per-file counts in input order and their exact total.
type CountResult struct {
	Files []FileCount
	Total uint64
}

func newCountResult(counts []FileCount) (CountResult, error) {
	res := CountResult{Files: counts}
	for _, c := range counts {
		sum, carry := bits.Add64(res.Total, c.Rows, 0)
		if carry != 0 {
			return CountResult{}, fmt.Errorf("failed to total counts at %s: %w", c.Path, ErrCountOverflow)
		}
		res.Total = sum
	}
	return res, nil
}

// Count totals the footer row counts of files without reading row data.
func Count(ctx context.Context, rt *Runtime, files []*reader.LogicalFile) (CountResult, error) {
	counts := make([]FileCount, len(files))
	for i, lf := range files {
		counts[i] = FileCount{Path: lf.Path, Rows: uint64(lf.NumRows)}
	}
	logctx.FromContext(rt.context(ctx)).Debug("counted rows from metadata", slog.Int("files", len(files)))
	return newCountResult(counts)
}

// RowPredicate reports whether a row matches.
type RowPredicate func(row reader.Row) (bool, error)

// Matcher compiles a predicate against one file's schema.
type Matcher func(schema reader.Schema) (RowPredicate, error)

// CountMatching scans every row of every file and counts those matching.
func CountMatching(ctx context.Context, rt *Runtime, files []*reader.LogicalFile, match Matcher) (CountResult, error) {
	counts, err := ForEach(ctx, rt, files, func(ctx context.Context, lf *reader.LogicalFile) (FileCount, error) {
		pred, err := match(lf.Schema)
		if err != nil {
			return FileCount{}, err
		}
		s, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All(), BatchSize: rt.batchSize()})
		if err != nil {
			return FileCount{}, err
		}
		defer func() { _ = s.Close() }()

		fc := FileCount{Path: lf.Path}
		err = forEachRow(ctx, s, func(row reader.Row) error {
			ok, err := pred(row)
			if err != nil {
				return err
			}
			if ok {
				fc.Rows++
			}
			return nil
		})
		if err != nil {
			return FileCount{}, fmt.Errorf("failed to scan %s: %w", lf.Path, err)
		}
		return fc, nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return newCountResult(counts)
}

func forEachRow(ctx context.Context, src reader.BatchReader, fn func(reader.Row) error) error {
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, row := range batch.Rows {
			if err := fn(row); err != nil {
				return err
			}
		}
	}
}

// Sample is the rows kept from one file.
type Sample struct {
	Path   string
	Schema reader.Schema
	Rows   []reader.Row
}

// Head returns the first n rows of each file.
func Head(ctx context.Context, rt *Runtime, files []*reader.LogicalFile, n int) ([]Sample, error) {
	return ForEach(ctx, rt, files, func(ctx context.Context, lf *reader.LogicalFile) (Sample, error) {
		s, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All(), BatchSize: min(rt.batchSize(), max(n, 1))})
		if err != nil {
			return Sample{}, err
		}
		defer func() { _ = s.Close() }()

		rows, err := TakeFirst(ctx, s, n)
		if err != nil {
			return Sample{}, fmt.Errorf("failed to read %s: %w", lf.Path, err)
		}
		return Sample{Path: lf.Path, Schema: lf.Schema, Rows: rows}, nil
	})
}

// Tail returns the last n rows of each file, streaming only the shortest
// suffix of row groups that holds them.
func Tail(ctx context.Context, rt *Runtime, files []*reader.LogicalFile, n int) ([]Sample, error) {
	return ForEach(ctx, rt, files, func(ctx context.Context, lf *reader.LogicalFile) (Sample, error) {
		log := logctx.FromContext(ctx)

		r, refs, reliable := reader.PlanTail(lf, int64(n))
		if !reliable {
			log.Warn("row group metadata is inconsistent, scanning the whole file",
				slog.String("path", lf.Path),
				slog.Int64("footerRows", lf.NumRows),
				slog.Int("rowGroups", len(lf.RowGroups)))
		}
		log.Debug("planned tail", slog.String("path", lf.Path), slog.Int("first", r.First), slog.Int("last", r.Last))

		s, err := reader.OpenStream(lf, reader.StreamOptions{Range: r, BatchSize: rt.batchSize()})
		if err != nil {
			return Sample{}, err
		}
		defer func() { _ = s.Close() }()

		rows, observed, err := TakeLast(ctx, s, n)
		if err != nil {
			return Sample{}, fmt.Errorf("failed to read %s: %w", lf.Path, err)
		}
		if planned := reader.SumRows(refs); reliable && observed != planned {
			return Sample{}, &reader.FileError{
				Path: lf.Path,
				Kind: reader.ErrCorruptFooter,
				Err:  fmt.Errorf("row groups %d..%d held %d rows, footer declares %d", r.First, r.Last-1, observed, planned),
			}
		}
		return Sample{Path: lf.Path, Schema: lf.Schema, Rows: rows}, nil
	})
}

// StatsOptions configures Stats.
type StatsOptions struct {
	// Metadata reads footer statistics instead of scanning rows.
	Metadata bool
	// PerFile skips the schema check and the cross-file combination.
	PerFile bool
}

// FileStats is the statistics of one file.
type FileStats struct {
	Path    string
	Schema  reader.Schema
	Rows    uint64
	Columns []ColumnStat
}

// StatsResult holds per-file statistics in input order and, unless PerFile
// was requested, their combination.
type StatsResult struct {
	Files    []FileStats
	Combined *FileStats
}

// Stats computes column statistics for every file.
func Stats(ctx context.Context, rt *Runtime, files []*reader.LogicalFile, opts StatsOptions) (StatsResult, error) {
	var schema reader.Schema
	if !opts.PerFile {
		var err error
		if schema, err = CommonSchema(files); err != nil {
			return StatsResult{}, err
		}
	}

	perFile, err := ForEach(ctx, rt, files, func(ctx context.Context, lf *reader.LogicalFile) (FileStats, error) {
		fs := FileStats{Path: lf.Path, Schema: lf.Schema, Rows: uint64(lf.NumRows)}
		if opts.Metadata {
			fs.Columns = MetadataStats(lf)
			return fs, nil
		}

		s, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All(), BatchSize: rt.batchSize()})
		if err != nil {
			return FileStats{}, err
		}
		defer func() { _ = s.Close() }()

		if fs.Columns, err = Aggregate(ctx, s); err != nil {
			return FileStats{}, fmt.Errorf("failed to aggregate %s: %w", lf.Path, err)
		}
		return fs, nil
	})
	if err != nil {
		return StatsResult{}, err
	}

	res := StatsResult{Files: perFile}
	if opts.PerFile {
		return res, nil
	}

	combined := &FileStats{Schema: schema}
	counts := make([]FileCount, len(perFile))
	for i, fs := range perFile {
		combined.Columns = CombineAll(combined.Columns, fs.Columns)
		counts[i] = FileCount{Path: fs.Path, Rows: fs.Rows}
	}
	total, err := newCountResult(counts)
	if err != nil {
		return StatsResult{}, err
	}
	combined.Rows = total.Total
	if combined.Columns == nil {
		combined.Columns = make([]ColumnStat, len(schema))
	}
	res.Combined = combined
	return res, nil
}
