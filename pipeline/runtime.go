// Package pipeline turns probed Parquet files into bounded-memory results:
// row samples, column statistics and row counts, computed across files with
// bounded parallelism and reported in input order.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/reader"
)

// Runtime is the scheduling context of one command invocation.
type Runtime struct {
	// Workers bounds the number of files processed concurrently.
	Workers int
	// BatchSize is the number of rows decoded per batch.
	BatchSize int
	Logger    *slog.Logger
}

// NewRuntime returns a Runtime with non-positive values replaced by
// defaults: GOMAXPROCS workers and reader.DefaultBatchSize.
func NewRuntime(workers, batchSize int, logger *slog.Logger) *Runtime {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if batchSize <= 0 {
		batchSize = reader.DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{Workers: workers, BatchSize: batchSize, Logger: logger}
}

func (rt *Runtime) workers() int {
	if rt == nil || rt.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return rt.Workers
}

func (rt *Runtime) batchSize() int {
	if rt == nil || rt.BatchSize <= 0 {
		return reader.DefaultBatchSize
	}
	return rt.BatchSize
}

// context attaches the runtime's logger to ctx.
func (rt *Runtime) context(ctx context.Context) context.Context {
	if rt == nil || rt.Logger == nil {
		return ctx
	}
	return logctx.WithLogger(ctx, rt.Logger)
}
