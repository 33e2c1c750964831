package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/pipeline"
	"github.com/vegasq/pq/reader"
)

type sampleFunc func(ctx context.Context, rt *pipeline.Runtime, files []*reader.LogicalFile, n int) ([]pipeline.Sample, error)

func newHeadCmd(a *app) *cobra.Command {
	return newSampleCmd(a, "head", "Show the first N rows of each file", pipeline.Head)
}

func newTailCmd(a *app) *cobra.Command {
	return newSampleCmd(a, "tail", "Show the last N rows of each file", pipeline.Tail)
}

func newSampleCmd(a *app, name, short string, take sampleFunc) *cobra.Command {
	var (
		out outputFlags
		n   int
	)
	c := &cobra.Command{
		Use:   name + " FILES...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if n < 0 {
				return fmt.Errorf("-n must be non-negative, got %d", n)
			}
			ctx := c.Context()
			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}
			rep, err := a.newReport(out, len(files))
			if err != nil {
				return err
			}

			samples, err := take(ctx, a.rt, files, n)
			if err != nil {
				return err
			}
			for _, s := range samples {
				rep.section(s.Path)
				if err := rep.rows(ctx, s.Schema, s.Rows); err != nil {
					return err
				}
			}
			return rep.flush(a.stdout)
		},
	}
	out.register(c)
	c.Flags().IntVarP(&n, "rows", "n", 10, "number of rows")
	return c
}
