// Package config holds the runtime settings of the sales analytics service.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables read by the command line flags.
const (
	EnvDBPath         = "SALES_DB_PATH"
	EnvMaxBatchRows   = "SALES_MAX_BATCH_ROWS"
	EnvMaxUploadBytes = "SALES_MAX_UPLOAD_BYTES"
	EnvHTTPAddr       = "SALES_HTTP_ADDR"
	EnvLogLevel       = "SALES_LOG_LEVEL"
)

var (
	DefaultDBPath       = filepath.Join("db", "database.db")
	DefaultMaxBatchRows = 10000
	DefaultHTTPAddr     = ":8081"
	DefaultLogLevel     = "info"

	// DefaultMaxUploadBytes caps one upload body at 10 MiB.
	DefaultMaxUploadBytes int64 = 10 << 20
)

// Config is the resolved configuration.
type Config struct {
	DBPath         string
	MaxBatchRows   int
	MaxUploadBytes int64
	HTTPAddr       string
	LogLevel       string
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		DBPath:         DefaultDBPath,
		MaxBatchRows:   DefaultMaxBatchRows,
		MaxUploadBytes: DefaultMaxUploadBytes,
		HTTPAddr:       DefaultHTTPAddr,
		LogLevel:       DefaultLogLevel,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	if c.MaxBatchRows <= 0 {
		return fmt.Errorf("max batch rows must be positive, got %d", c.MaxBatchRows)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// NewLogger builds a production logger at the configured level, or a
// development logger when the level is debug.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if level == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
