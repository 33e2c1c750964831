package output

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vegasq/pq/reader"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer   io.Writer
	quiet    bool
	sanitize bool
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer, opts Options) *CSVFormatter {
	return &CSVFormatter{writer: w, quiet: opts.Quiet, sanitize: opts.SanitizeCSV}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the header (unless quiet) and one record per row, flushing
// after every record.
func (c *CSVFormatter) Format(ctx context.Context, src reader.BatchReader) error {
	csvWriter := csv.NewWriter(c.writer)
	schema := src.Schema()

	if !c.quiet {
		if err := csvWriter.Write(schema.Names()); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		if err := flush(csvWriter); err != nil {
			return err
		}
	}

	record := make([]string, len(schema))
	return eachBatch(ctx, src, func(batch *reader.Batch) error {
		for _, row := range batch.Rows {
			for i, col := range schema {
				var cell reader.Cell
				if i < len(row) {
					cell = row[i]
				}
				v, err := c.formatValue(col.Name, cell)
				if err != nil {
					return err
				}
				record[i] = v
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
			if err := flush(csvWriter); err != nil {
				return err
			}
		}
		return nil
	})
}

func flush(w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue converts a cell to its CSV field.
func (c *CSVFormatter) formatValue(column string, cell reader.Cell) (string, error) {
	switch cell.Kind() {
	case reader.KindNull:
		return "", nil
	case reader.KindString:
		if c.sanitize {
			return sanitizeField(cell.Text()), nil
		}
		return cell.Text(), nil
	case reader.KindInt:
		return strconv.FormatInt(cell.Int(), 10), nil
	case reader.KindUint:
		return strconv.FormatUint(cell.Uint(), 10), nil
	case reader.KindFloat:
		return reader.FormatFloat(cell.Float()), nil
	case reader.KindBool:
		return strconv.FormatBool(cell.Bool()), nil
	case reader.KindBytes:
		return base64.StdEncoding.EncodeToString(cell.Bytes()), nil
	default:
		return "", &UnsupportedCellError{Format: CSV, Column: column, Kind: cell.Kind()}
	}
}

// sanitizeField prefixes characters that could trigger formula execution in
// spreadsheet applications.
func sanitizeField(val string) string {
	if len(val) == 0 {
		return val
	}
	switch val[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(val, "'", "''")
	}
	return val
}
