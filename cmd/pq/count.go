package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/pipeline"
	"github.com/vegasq/pq/query"
	"github.com/vegasq/pq/reader"
)

func newCountCmd(a *app) *cobra.Command {
	var (
		quiet bool
		where string
	)
	c := &cobra.Command{
		Use:   "count FILES...",
		Short: "Count rows",
		Long: `Count the rows of each file. Without --where the counts come from the
footer metadata and no row data is read. With several files each file's count
is printed followed by a "Total: N" line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			var match pipeline.Matcher
			if where != "" {
				expr, err := query.ParseExpression(where)
				if err != nil {
					return err
				}
				match = func(schema reader.Schema) (pipeline.RowPredicate, error) {
					pred, err := query.Bind(expr, schema)
					if err != nil {
						return nil, err
					}
					return pipeline.RowPredicate(pred), nil
				}
			}

			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}

			var res pipeline.CountResult
			if match == nil {
				res, err = pipeline.Count(ctx, a.rt, files)
			} else {
				res, err = pipeline.CountMatching(ctx, a.rt, files, match)
			}
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			writeCounts(&buf, res, quiet)
			_, err = buf.WriteTo(a.stdout)
			return err
		},
	}
	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "print bare counts only")
	c.Flags().StringVar(&where, "where", "", "count only rows matching a predicate, e.g. \"age > 30\"")
	return c
}

func writeCounts(buf *bytes.Buffer, res pipeline.CountResult, quiet bool) {
	multi := len(res.Files) > 1
	for _, fc := range res.Files {
		if multi && !quiet {
			fmt.Fprintf(buf, "%s: %d\n", fc.Path, fc.Rows)
			continue
		}
		fmt.Fprintf(buf, "%d\n", fc.Rows)
	}
	if multi && !quiet {
		fmt.Fprintf(buf, "Total: %d\n", res.Total)
	}
}
