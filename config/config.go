// Package config loads pq settings from an optional config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates configuration for the application.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Merge    MergeConfig    `mapstructure:"merge"`
	Output   OutputConfig   `mapstructure:"output"`
	CSV      CSVConfig      `mapstructure:"csv"`
	Log      LogConfig      `mapstructure:"log"`
}

type PipelineConfig struct {
	// Workers bounds per-file parallelism. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// BatchSize is the number of rows decoded per batch.
	BatchSize int `mapstructure:"batch_size"`
}

type MergeConfig struct {
	Codec string `mapstructure:"codec"`
	// MaxRowsPerRowGroup caps output row groups. Zero keeps the writer default.
	MaxRowsPerRowGroup int64 `mapstructure:"max_rows_per_row_group"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type CSVConfig struct {
	// Sanitize prefixes formula-like fields to guard spreadsheet imports.
	Sanitize bool `mapstructure:"sanitize"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File, when set, receives JSON logs in addition to stderr.
	File string `mapstructure:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{BatchSize: 1024},
		Merge:    MergeConfig{Codec: "snappy"},
		Output:   OutputConfig{Format: "table"},
		Log:      LogConfig{Level: "warn"},
	}
}

// Load reads configuration from files and environment variables.
//
// Without an explicit path, a file named pq.yaml (or any extension viper
// supports) is looked up in the working directory and in $HOME/.config/pq;
// a missing file is not an error. An explicit path must exist.
//
// Environment variables use the prefix "PQ" and the dot character in keys is
// replaced by an underscore. For example, "pipeline.workers" becomes
// "PQ_PIPELINE_WORKERS".
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pq")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pq"))
		}
	}
	v.SetEnvPrefix("PQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must not be negative, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be positive, got %d", c.Pipeline.BatchSize)
	}
	if c.Merge.MaxRowsPerRowGroup < 0 {
		return fmt.Errorf("merge.max_rows_per_row_group must not be negative, got %d", c.Merge.MaxRowsPerRowGroup)
	}
	return nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
