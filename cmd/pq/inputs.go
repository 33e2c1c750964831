package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/pipeline"
	"github.com/vegasq/pq/reader"
)

// outputFlags are the -o/-q flags shared by commands that render rows.
type outputFlags struct {
	format string
	quiet  bool
}

func (f *outputFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.format, "output", "o", "", "output format: table, json, jsonl, csv (default from config)")
	c.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "omit headers")
}

// resolve expands args into probed files in path order.
func (a *app) resolve(ctx context.Context, args []string) ([]*reader.LogicalFile, error) {
	paths, err := reader.ResolvePaths(args)
	if err != nil {
		return nil, err
	}
	return pipeline.ProbeAll(ctx, a.rt, paths)
}

func (a *app) format(f outputFlags) (output.Format, error) {
	name := f.format
	if name == "" {
		name = a.cfg.Output.Format
	}
	return output.ParseFormat(name)
}

func (a *app) outputOptions(f outputFlags) output.Options {
	return output.Options{Quiet: f.quiet, SanitizeCSV: a.cfg.CSV.Sanitize}
}

// report buffers the output of a bounded command so that nothing reaches
// stdout unless the whole command succeeds.
type report struct {
	buf    bytes.Buffer
	format output.Format
	opts   output.Options
	multi  bool
}

func (a *app) newReport(f outputFlags, sections int) (*report, error) {
	format, err := a.format(f)
	if err != nil {
		return nil, err
	}
	return &report{format: format, opts: a.outputOptions(f), multi: sections > 1}, nil
}

// section writes the "==> path <==" header that separates per-file output.
func (r *report) section(path string) {
	if !r.multi || r.opts.Quiet {
		return
	}
	if r.buf.Len() > 0 {
		r.buf.WriteByte('\n')
	}
	fmt.Fprintf(&r.buf, "==> %s <==\n", path)
}

// rows renders an in-memory result with the report's formatter.
func (r *report) rows(ctx context.Context, schema reader.Schema, rows []reader.Row) error {
	f, err := output.New(r.format, &r.buf, r.opts)
	if err != nil {
		return err
	}
	src := reader.NewMemoryReader(schema, rows)
	defer func() { _ = src.Close() }()
	return f.Format(ctx, src)
}

func (r *report) flush(w io.Writer) error {
	_, err := r.buf.WriteTo(w)
	return err
}

func stringColumn(name string) reader.Column {
	return reader.Column{Name: name, Type: "STRING", PhysicalType: "BYTE_ARRAY", LogicalType: "STRING"}
}

func intColumn(name string) reader.Column {
	return reader.Column{Name: name, Type: "INT64", PhysicalType: "INT64"}
}

func boolColumn(name string) reader.Column {
	return reader.Column{Name: name, Type: "BOOLEAN", PhysicalType: "BOOLEAN"}
}
