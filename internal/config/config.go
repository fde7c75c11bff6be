// Package config resolves runtime settings for the gosearch CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvDataDir  = "GOSEARCH_DATA_DIR"
	EnvLogLevel = "GOSEARCH_LOG_LEVEL"
	EnvTopK     = "GOSEARCH_TOP_K"
)

// DatabaseFile is the name of the store file inside DataDir.
const DatabaseFile = "index.db"

// Config configures the gosearch CLI.
type Config struct {
	// DataDir holds the segment store.
	DataDir string `json:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`

	// TopK is the number of hits printed by search.
	TopK int `json:"top_k"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:  "data",
		LogLevel: "info",
		TopK:     10,
	}
}

// FromEnv starts from DefaultConfig and applies the GOSEARCH_* variables.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = getEnv(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	if v := getEnv(EnvTopK, ""); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTopK, err)
		}
		cfg.TopK = k
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top k must be positive, got %d", c.TopK)
	}
	return nil
}

// DatabasePath is the path of the bbolt file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
