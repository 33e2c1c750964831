package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/config"
	"github.com/vegasq/pq/internal/logctx"
	"github.com/vegasq/pq/pipeline"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	workers    int
	batchSize  int

	cfg     *config.Config
	rt      *pipeline.Runtime
	logFile *os.File
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pq",
		Short:         "Inspect and transform Parquet files",
		Long:          `pq streams Parquet files to inspect schemas, sample rows, count, compute column statistics, run SQL queries, convert and merge, without loading whole files into memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return a.setup(c)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ./pq.yaml or ~/.config/pq/pq.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.IntVar(&a.workers, "workers", 0, "files processed in parallel (0 = GOMAXPROCS)")
	flags.IntVar(&a.batchSize, "batch-size", 0, "rows decoded per batch (default from config, 1024)")

	root.AddCommand(
		newSchemaCmd(a),
		newHeadCmd(a),
		newTailCmd(a),
		newCountCmd(a),
		newStatsCmd(a),
		newQueryCmd(a),
		newConvertCmd(a),
		newMergeCmd(a),
		newInfoCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs the logger.
func (a *app) setup(c *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := c.Flags()
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = a.workers
	}
	if flags.Changed("batch-size") {
		cfg.Pipeline.BatchSize = a.batchSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := a.newLogger()
	if err != nil {
		return err
	}
	a.rt = pipeline.NewRuntime(cfg.Pipeline.Workers, cfg.Pipeline.BatchSize, logger)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.SetContext(logctx.WithLogger(ctx, logger))
	logger.Debug("configuration loaded",
		slog.Int("workers", a.rt.Workers),
		slog.Int("batchSize", a.rt.BatchSize))
	return nil
}

func (a *app) newLogger() (*slog.Logger, error) {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(a.cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", a.cfg.Log.Level, err)
	}
	if a.verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}),
	}
	if path := strings.TrimSpace(a.cfg.Log.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slogmulti.Fanout(handlers...)), nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
