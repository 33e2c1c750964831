package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vegasq/pq/reader"
)

// Format names an output encoding.
type Format string

const (
	Table   Format = "table"
	JSON    Format = "json"
	JSONL   Format = "jsonl"
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// Formats lists the encodings a Formatter can produce.
var Formats = []Format{Table, JSON, JSONL, CSV}

// ErrUnsupportedFormat is returned for unknown format names or extensions.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formatter defines the interface for output formatters.
//
// Format consumes src until io.EOF and writes every row in the formatter's
// encoding. It holds at most one batch of src at a time. The caller closes src.
type Formatter interface {
	Format(ctx context.Context, src reader.BatchReader) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Options configures a Formatter.
type Options struct {
	// Quiet omits header rows.
	Quiet bool
	// SanitizeCSV guards CSV fields against spreadsheet formula injection.
	SanitizeCSV bool
}

// New returns the Formatter for format writing to w.
func New(format Format, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case Table:
		return NewTableFormatter(w, opts), nil
	case JSON:
		return NewJSONFormatter(w), nil
	case JSONL:
		return NewJSONLFormatter(w), nil
	case CSV:
		return NewCSVFormatter(w, opts), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, format, formatList(Formats))
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, name, formatList(Formats))
}

// FormatFromPath infers the encoding of a conversion target from its
// extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".jsonl", ".ndjson":
		return JSONL, nil
	case ".parquet":
		return Parquet, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format from %q (supported extensions: .csv, .json, .jsonl, .ndjson, .parquet)",
			ErrUnsupportedFormat, path)
	}
}

func formatList(formats []Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// eachBatch calls fn for every batch of src until io.EOF.
func eachBatch(ctx context.Context, src reader.BatchReader, fn func(*reader.Batch) error) error {
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
}
