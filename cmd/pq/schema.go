package main

import (
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/pipeline"
	"github.com/vegasq/pq/reader"
)

var schemaColumns = reader.Schema{
	stringColumn("name"),
	stringColumn("type"),
	stringColumn("physical_type"),
	stringColumn("logical_type"),
	boolColumn("nullable"),
	boolColumn("repeated"),
}

func newSchemaCmd(a *app) *cobra.Command {
	var (
		out     outputFlags
		perFile bool
	)
	c := &cobra.Command{
		Use:   "schema FILES...",
		Short: "Show the column schema",
		Long: `Show the leaf columns of the input files. Multiple files must share one
schema unless --per-file is given, in which case each file's schema is shown
under a "==> path <==" header.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}

			sections := 1
			if perFile {
				sections = len(files)
			}
			rep, err := a.newReport(out, sections)
			if err != nil {
				return err
			}

			if !perFile {
				schema, err := pipeline.CommonSchema(files)
				if err != nil {
					return err
				}
				if err := rep.rows(ctx, schemaColumns, schemaRows(schema)); err != nil {
					return err
				}
				return rep.flush(a.stdout)
			}

			for _, lf := range files {
				rep.section(lf.Path)
				if err := rep.rows(ctx, schemaColumns, schemaRows(lf.Schema)); err != nil {
					return err
				}
			}
			return rep.flush(a.stdout)
		},
	}
	out.register(c)
	c.Flags().BoolVar(&perFile, "per-file", false, "show each file's schema separately")
	return c
}

func schemaRows(schema reader.Schema) []reader.Row {
	rows := make([]reader.Row, len(schema))
	for i, col := range schema {
		rows[i] = reader.Row{
			reader.StringCell(col.Name),
			reader.StringCell(col.Type),
			reader.StringCell(col.PhysicalType),
			reader.StringCell(col.LogicalType),
			reader.BoolCell(col.Nullable),
			reader.BoolCell(col.Repeated),
		}
	}
	return rows
}
