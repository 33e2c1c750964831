package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/merge"
)

func newMergeCmd(a *app) *cobra.Command {
	var (
		target string
		codec  string
	)
	c := &cobra.Command{
		Use:   "merge FILES... -o OUTPUT",
		Short: "Merge schema-compatible files into one",
		Long: `Concatenate the row groups of every input, in path order, into a single
Parquet file. All inputs must share one schema; on a mismatch nothing is
written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if target == "" {
				return errors.New("an output file is required (-o)")
			}
			ctx := c.Context()
			files, err := a.resolve(ctx, args)
			if err != nil {
				return err
			}
			plan, err := merge.NewPlan(files)
			if err != nil {
				return err
			}

			if !c.Flags().Changed("codec") {
				codec = a.cfg.Merge.Codec
			}
			return plan.Execute(ctx, target, merge.Options{
				Codec:              codec,
				MaxRowsPerRowGroup: a.cfg.Merge.MaxRowsPerRowGroup,
			})
		},
	}
	c.Flags().StringVarP(&target, "output", "o", "", "output file (required)")
	c.Flags().StringVar(&codec, "codec", merge.DefaultCodec, "compression codec: brotli, gzip, lz4, none, snappy, zstd")
	if err := c.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	return c
}
