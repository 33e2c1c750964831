package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/merge"
	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/reader"
)

func newConvertCmd(a *app) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert a Parquet file to CSV, JSON, JSONL or Parquet",
		Long: `Convert a Parquet file. The output format is inferred from the OUTPUT
extension (.csv, .json, .jsonl, .ndjson, .parquet) unless -f is given. A
.parquet target re-encodes the file with the configured merge codec.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			in, target := args[0], args[1]

			var (
				f   output.Format
				err error
			)
			switch {
			case strings.EqualFold(format, string(output.Parquet)):
				f = output.Parquet
			case format != "":
				f, err = output.ParseFormat(format)
			default:
				f, err = output.FormatFromPath(target)
			}
			if err != nil {
				return err
			}

			files, err := a.resolve(ctx, []string{in})
			if err != nil {
				return err
			}
			if len(files) != 1 {
				return fmt.Errorf("convert takes one input file, %q matched %d", in, len(files))
			}

			if f == output.Parquet {
				plan, err := merge.NewPlan(files)
				if err != nil {
					return err
				}
				return plan.Execute(ctx, target, merge.Options{
					Codec:              a.cfg.Merge.Codec,
					MaxRowsPerRowGroup: a.cfg.Merge.MaxRowsPerRowGroup,
				})
			}
			return a.convertRows(ctx, files[0], target, f)
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "", "output format: csv, json, jsonl, parquet (default: from extension)")
	return c
}

// convertRows streams lf into target through a temporary file that is
// renamed into place once every row has been written.
func (a *app) convertRows(ctx context.Context, lf *reader.LogicalFile, target string, format output.Format) (err error) {
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

	src, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All(), BatchSize: a.rt.BatchSize})
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	w := bufio.NewWriter(tmp)
	enc, err := output.New(format, w, output.Options{SanitizeCSV: a.cfg.CSV.Sanitize})
	if err != nil {
		return err
	}
	if err := enc.Format(ctx, src); err != nil {
		return fmt.Errorf("failed to convert %s: %w", lf.Path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	logctx.FromContext(ctx).Debug("converted file",
		slog.String("path", lf.Path),
		slog.String("target", target),
		slog.String("format", string(format)),
		slog.Int64("rows", lf.NumRows))
	return nil
}
