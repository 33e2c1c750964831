package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/pipeline"
	"github.com/vegasq/pq/reader"
)

var statsColumns = reader.Schema{
	stringColumn("column"),
	stringColumn("type"),
	{Name: "min", Type: "STRING", Nullable: true},
	{Name: "max", Type: "STRING", Nullable: true},
	intColumn("null_count"),
	intColumn("value_count"),
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		out      outputFlags
		column   string
		metadata bool
		perFile  bool
	)
	c := &cobra.Command{
		Use:   "stats FILES...",
		Short: "Show column statistics",
		Long: `Show min, max, null count and value count for every column. Rows are
scanned by default; --metadata reads the footer statistics instead. Several
files are combined into one result unless --per-file is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}

			res, err := pipeline.Stats(ctx, a.rt, files, pipeline.StatsOptions{Metadata: metadata, PerFile: perFile})
			if err != nil {
				return err
			}

			results := res.Files
			if !perFile {
				results = []pipeline.FileStats{*res.Combined}
			}
			rep, err := a.newReport(out, len(results))
			if err != nil {
				return err
			}
			for _, fs := range results {
				rows, err := statsRows(fs, column)
				if err != nil {
					return err
				}
				rep.section(fs.Path)
				if err := rep.rows(ctx, statsColumns, rows); err != nil {
					return err
				}
			}
			return rep.flush(a.stdout)
		},
	}
	out.register(c)
	c.Flags().StringVarP(&column, "column", "c", "", "show only this column")
	c.Flags().BoolVar(&metadata, "metadata", false, "use footer statistics instead of scanning rows")
	c.Flags().BoolVar(&perFile, "per-file", false, "show each file's statistics separately")
	return c
}

func statsRows(fs pipeline.FileStats, column string) ([]reader.Row, error) {
	if column != "" && fs.Schema.Index(column) < 0 {
		return nil, fmt.Errorf("column %q not found (available: %s)", column, strings.Join(fs.Schema.Names(), ", "))
	}

	var rows []reader.Row
	for i, col := range fs.Schema {
		if column != "" && col.Name != column {
			continue
		}
		var st pipeline.ColumnStat
		if i < len(fs.Columns) {
			st = fs.Columns[i]
		}
		rows = append(rows, reader.Row{
			reader.StringCell(col.Name),
			reader.StringCell(col.Type),
			displayBound(st.Min),
			displayBound(st.Max),
			reader.IntCell(int64(st.NullCount)),
			reader.IntCell(int64(st.ValueCount)),
		})
	}
	return rows, nil
}

// displayBound renders a min or max as text so that one result column can
// hold bounds of every type.
func displayBound(c reader.Cell) reader.Cell {
	if c.IsNull() {
		return reader.NullCell()
	}
	return reader.StringCell(c.String())
}
