package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/reader"
)

var infoColumns = reader.Schema{
	stringColumn("file"),
	intColumn("file_size_bytes"),
	intColumn("num_rows"),
	intColumn("num_columns"),
	intColumn("num_row_groups"),
	stringColumn("compression"),
	stringColumn("created_by"),
	intColumn("version"),
}

var keyValueColumns = reader.Schema{stringColumn("key"), stringColumn("value")}

func newInfoCmd(a *app) *cobra.Command {
	var out outputFlags
	c := &cobra.Command{
		Use:   "info FILES...",
		Short: "Show file metadata",
		Long:  `Show footer metadata: size, rows, columns, row groups, compression, writer and format version. No row data is read.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}
			rep, err := a.newReport(out, len(files))
			if err != nil {
				return err
			}

			if rep.format != output.Table {
				rows := make([]reader.Row, len(files))
				for i, lf := range files {
					rows[i] = infoRow(lf)
				}
				if err := rep.rows(ctx, infoColumns, rows); err != nil {
					return err
				}
				return rep.flush(a.stdout)
			}

			for _, lf := range files {
				rep.section(lf.Path)
				if err := rep.rows(ctx, keyValueColumns, infoKeyValues(lf)); err != nil {
					return err
				}
			}
			return rep.flush(a.stdout)
		},
	}
	out.register(c)
	return c
}

func createdBy(lf *reader.LogicalFile) string {
	if lf.CreatedBy == "" {
		return "unknown"
	}
	return lf.CreatedBy
}

func infoRow(lf *reader.LogicalFile) reader.Row {
	return reader.Row{
		reader.StringCell(lf.Path),
		reader.IntCell(lf.Size),
		reader.IntCell(lf.NumRows),
		reader.IntCell(int64(lf.NumColumns())),
		reader.IntCell(int64(len(lf.RowGroups))),
		reader.StringCell(lf.Compression),
		reader.StringCell(createdBy(lf)),
		reader.IntCell(int64(lf.Version)),
	}
}

func infoKeyValues(lf *reader.LogicalFile) []reader.Row {
	kv := func(k, v string) reader.Row { return reader.Row{reader.StringCell(k), reader.StringCell(v)} }
	return []reader.Row{
		kv("File", lf.Path),
		kv("File Size", humanize.IBytes(uint64(lf.Size))),
		kv("Rows", strconv.FormatInt(lf.NumRows, 10)),
		kv("Columns", strconv.Itoa(lf.NumColumns())),
		kv("Row Groups", strconv.Itoa(len(lf.RowGroups))),
		kv("Compression", lf.Compression),
		kv("Created By", createdBy(lf)),
		kv("Version", strconv.FormatInt(int64(lf.Version), 10)),
	}
}
