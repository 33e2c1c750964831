package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/query"
	"github.com/vegasq/pq/reader"
)

// allTable is the table name bound to every input file.
const allTable = "tbl"

func newQueryCmd(a *app) *cobra.Command {
	var (
		out   outputFlags
		limit int64
	)
	c := &cobra.Command{
		Use:   "query SQL FILES...",
		Short: "Run a SQL query",
		Long: `Run a SQL query over the input files.

The table "tbl" holds the rows of every input in path order; with more than
one file a "_file" column names each row's source. A single file can also be
queried by its path, base name or base name without extension.

  pq query "SELECT name, age FROM tbl WHERE age > 30 LIMIT 5" people.parquet
  pq query "SELECT COUNT(*) FROM tbl WHERE email IS NULL" 'logs/*.parquet'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			format, err := a.format(out)
			if err != nil {
				return err
			}
			files, err := a.resolve(ctx, args[1:])
			if err != nil {
				return err
			}

			tables := &fileTables{files: files, batchSize: a.rt.BatchSize}
			res, err := query.Run(ctx, args[0], tables, limit)
			if err != nil {
				return err
			}
			defer func() { _ = res.Close() }()

			// Results that fit in the buffer are written only on success. Larger
			// ones reach stdout as the buffer fills, so a failure past the first
			// 64 KiB leaves that partial output behind.
			w := bufio.NewWriterSize(a.stdout, 64*1024)
			f, err := output.New(format, w, a.outputOptions(out))
			if err != nil {
				return err
			}
			if err := f.Format(ctx, res); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	out.register(c)
	c.Flags().Int64Var(&limit, "limit", -1, "maximum number of rows (-1 = no limit)")
	return c
}

// fileTables binds query table names to the resolved input files.
type fileTables struct {
	files     []*reader.LogicalFile
	batchSize int
}

func (t *fileTables) Open(_ context.Context, name string) (reader.BatchReader, error) {
	if name == allTable {
		if len(t.files) == 1 {
			return t.open(t.files[0])
		}
		if err := reader.CheckCompatible(t.files); err != nil {
			return nil, err
		}
		return reader.NewMultiStream(t.files, reader.MultiOptions{BatchSize: t.batchSize, TagFile: true})
	}

	var match *reader.LogicalFile
	for _, lf := range t.files {
		if !bindsTo(lf.Path, name) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("table %q matches both %s and %s", name, match.Path, lf.Path)
		}
		match = lf
	}
	if match == nil {
		return nil, fmt.Errorf("table %q not found (available: %s)", name, strings.Join(t.names(), ", "))
	}
	return t.open(match)
}

func (t *fileTables) open(lf *reader.LogicalFile) (reader.BatchReader, error) {
	return reader.OpenStream(lf, reader.StreamOptions{Range: lf.All(), BatchSize: t.batchSize})
}

func (t *fileTables) names() []string {
	names := []string{allTable}
	for _, lf := range t.files {
		names = append(names, stem(lf.Path))
	}
	return names
}

func bindsTo(path, name string) bool {
	return name == path ||
		filepath.Clean(name) == filepath.Clean(path) ||
		name == filepath.Base(path) ||
		name == stem(path)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
