// Package merge concatenates schema-compatible Parquet files into one.
//
// Row groups are copied in input order without decoding rows into cells.
// The output is written to a temporary file next to the target and renamed
// into place only after the written row count has been verified.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/reader"
)

// DefaultCodec is used when Options.Codec is empty.
const DefaultCodec = "snappy"

var codecs = map[string]compress.Codec{
	"snappy": &parquet.Snappy,
	"zstd":   &parquet.Zstd,
	"gzip":   &parquet.Gzip,
	"lz4":    &parquet.Lz4Raw,
	"brotli": &parquet.Brotli,
	"none":   &parquet.Uncompressed,
}

// ErrUnknownCodec is returned for codec names outside Codecs.
var ErrUnknownCodec = errors.New("unknown compression codec")

// Codecs returns the accepted codec names, sorted.
func Codecs() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupCodec resolves a codec name case-insensitively. An empty name
// selects DefaultCodec.
func LookupCodec(name string) (compress.Codec, error) {
	if name == "" {
		name = DefaultCodec
	}
	codec, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownCodec, name, strings.Join(Codecs(), ", "))
	}
	return codec, nil
}

// Options configures Execute.
type Options struct {
	Codec string
	// MaxRowsPerRowGroup caps output row groups; zero keeps the writer default.
	MaxRowsPerRowGroup int64
}

// Plan is a validated list of inputs. All files share the first file's schema.
type Plan struct {
	files []*reader.LogicalFile
	total int64
}

// NewPlan validates that files are non-empty and schema-compatible. A
// mismatch is reported as a *reader.SchemaMismatchError.
func NewPlan(files []*reader.LogicalFile) (*Plan, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files to merge")
	}
	if err := reader.CheckCompatible(files); err != nil {
		return nil, err
	}

	p := &Plan{files: files}
	for _, lf := range files {
		p.total += lf.NumRows
	}
	return p, nil
}

// Files returns the inputs in merge order.
func (p *Plan) Files() []*reader.LogicalFile { return p.files }

// TotalRows returns the number of rows the output will contain.
func (p *Plan) TotalRows() int64 { return p.total }

// Execute writes the merged output to target. On any failure the target is
// left untouched and the temporary file is removed.
func (p *Plan) Execute(ctx context.Context, target string, opts Options) (err error) {
	codec, err := LookupCodec(opts.Codec)
	if err != nil {
		return err
	}
	for _, lf := range p.files {
		if sameFile(lf.Path, target) {
			return fmt.Errorf("output %s is also an input", target)
		}
	}

	logger := logctx.FromContext(ctx)
	tmpPath := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+"."+uuid.NewString()+".tmp")
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	schema, err := p.schema(codec)
	if err != nil {
		return err
	}
	writerOpts := []parquet.WriterOption{schema, parquet.Compression(codec)}
	if opts.MaxRowsPerRowGroup > 0 {
		writerOpts = append(writerOpts, parquet.MaxRowsPerRowGroup(opts.MaxRowsPerRowGroup))
	}
	w := parquet.NewWriter(tmp, writerOpts...)

	var written int64
	for _, lf := range p.files {
		n, err := copyFile(ctx, w, lf)
		written += n
		if err != nil {
			return err
		}
		logger.Debug("merged file", slog.String("path", lf.Path), slog.Int64("rows", n))
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if written != p.total {
		return fmt.Errorf("%w: wrote %d rows, inputs hold %d", reader.ErrCorruptFooter, written, p.total)
	}

	out, err := reader.Probe(ctx, tmpPath)
	if err != nil {
		return fmt.Errorf("failed to verify output: %w", err)
	}
	if out.NumRows != p.total {
		return fmt.Errorf("output holds %d rows, expected %d", out.NumRows, p.total)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	logger.Debug("merge complete",
		slog.String("path", target),
		slog.Int("inputs", len(p.files)),
		slog.Int64("rows", written))
	return nil
}

// schema returns the parquet schema of the first input with every leaf
// switched to codec. Leaves of a file schema carry the codec they were
// written with, which takes precedence over the writer's Compression option.
func (p *Plan) schema(codec compress.Codec) (*parquet.Schema, error) {
	raw, err := reader.OpenRaw(p.files[0])
	if err != nil {
		return nil, err
	}
	defer func() { _ = raw.Close() }()
	in := raw.Schema()
	return parquet.NewSchema(in.Name(), withCodec(in, codec)), nil
}

func withCodec(node parquet.Node, codec compress.Codec) parquet.Node {
	if node.Leaf() {
		return parquet.Compressed(node, codec)
	}
	return codecGroup{Node: node, codec: codec}
}

// codecGroup keeps the field order of a group node while re-coding its
// leaves. parquet.Group cannot be used as it sorts fields by name.
type codecGroup struct {
	parquet.Node
	codec compress.Codec
}

func (g codecGroup) Fields() []parquet.Field {
	fields := g.Node.Fields()
	out := make([]parquet.Field, len(fields))
	for i, f := range fields {
		out[i] = codecField{Node: withCodec(f, g.codec), field: f}
	}
	return out
}

type codecField struct {
	parquet.Node
	field parquet.Field
}

func (f codecField) Name() string { return f.field.Name() }

func (f codecField) Value(base reflect.Value) reflect.Value { return f.field.Value(base) }

func copyFile(ctx context.Context, w *parquet.Writer, lf *reader.LogicalFile) (int64, error) {
	raw, err := reader.OpenRaw(lf)
	if err != nil {
		return 0, err
	}
	defer func() { _ = raw.Close() }()

	var total int64
	for i, rg := range raw.RowGroups() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		rows := rg.Rows()
		n, err := parquet.CopyRows(w, rows)
		closeErr := rows.Close()
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to copy row group %d of %s: %w", i, lf.Path, err)
		}
		if closeErr != nil {
			return total, fmt.Errorf("failed to close row group %d of %s: %w", i, lf.Path, closeErr)
		}
		if n != lf.RowGroups[i] {
			return total, fmt.Errorf("%w: row group %d of %s yielded %d rows, footer says %d",
				reader.ErrCorruptFooter, i, lf.Path, n, lf.RowGroups[i])
		}
	}
	return total, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
