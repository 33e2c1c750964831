package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vegasq/pq/reader"
)

// NullText is how a null cell is shown in tables.
const NullText = "NULL"

var displayEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// TableFormatter outputs rows as a bordered ASCII grid.
//
// Column widths are fixed by the header and the first non-empty batch.
// Later cells wider than their column are printed in full.
type TableFormatter struct {
	writer io.Writer
	quiet  bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer, opts Options) *TableFormatter {
	return &TableFormatter{writer: w, quiet: opts.Quiet}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the grid. A stream without rows prints nothing.
func (t *TableFormatter) Format(ctx context.Context, src reader.BatchReader) error {
	schema := src.Schema()
	bw := bufio.NewWriter(t.writer)

	var (
		widths []int
		rows   int
		line   []string
	)
	err := eachBatch(ctx, src, func(batch *reader.Batch) error {
		if len(batch.Rows) == 0 {
			return nil
		}
		if widths == nil {
			widths = t.measure(schema, batch.Rows)
			bw.WriteString(border(widths, '-', '+', '+'))
			if !t.quiet {
				bw.WriteString(renderRow(widths, schema.Names()))
				bw.WriteString(border(widths, '=', '+', '+'))
			}
		}
		for _, row := range batch.Rows {
			if rows > 0 {
				bw.WriteString(border(widths, '-', '|', '+'))
			}
			line = displayRow(line[:0], len(schema), row)
			bw.WriteString(renderRow(widths, line))
			rows++
		}
		return bw.Flush()
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	bw.WriteString(border(widths, '-', '+', '+'))
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func (t *TableFormatter) measure(schema reader.Schema, rows []reader.Row) []int {
	widths := make([]int, len(schema))
	if !t.quiet {
		for i, col := range schema {
			widths[i] = runewidth.StringWidth(col.Name)
		}
	}
	var line []string
	for _, row := range rows {
		line = displayRow(line[:0], len(schema), row)
		for i, v := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(v))
		}
	}
	return widths
}

// displayRow renders the cells of row as table text.
func displayRow(dst []string, n int, row reader.Row) []string {
	for i := 0; i < n; i++ {
		var cell reader.Cell
		if i < len(row) {
			cell = row[i]
		}
		if cell.IsNull() {
			dst = append(dst, NullText)
			continue
		}
		dst = append(dst, displayEscaper.Replace(cell.String()))
	}
	return dst
}

// border draws a horizontal rule such as "+----+-----+".
func border(widths []int, fill, edge, junction byte) string {
	var b strings.Builder
	b.WriteByte(edge)
	for i, w := range widths {
		if i > 0 {
			b.WriteByte(junction)
		}
		b.WriteString(strings.Repeat(string(fill), w+2))
	}
	b.WriteByte(edge)
	b.WriteByte('\n')
	return b.String()
}

func renderRow(widths []int, values []string) string {
	var b strings.Builder
	b.WriteByte('|')
	for i, w := range widths {
		v := values[i]
		b.WriteByte(' ')
		b.WriteString(v)
		if pad := w - runewidth.StringWidth(v); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" |")
	}
	b.WriteByte('\n')
	return b.String()
}
