// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cubemap/internal/mapper"
)

// Config holds the server and mapping configuration.
type Config struct {
	ModelDir   string // directory of cube model YAML files
	DBPath     string // DuckDB database path, "" for in-memory
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")

	// Mapping conventions
	Schema             string // default database schema
	DimensionPrefix    string // prefix for convention-derived dimension tables
	Locale             string // default locale for localized attributes
	SimplifyDimensions bool   // collapse flat dimensions to their name (default true)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MapperConfig converts the mapping settings to a mapper.Config.
func (c *Config) MapperConfig() mapper.Config {
	return mapper.Config{
		Locale:                    c.Locale,
		Schema:                    c.Schema,
		DimensionPrefix:           c.DimensionPrefix,
		DisableFlatSimplification: !c.SimplifyDimensions,
	}
}

// LoadFromEnv loads configuration from environment variables. Only
// CUBEMAP_MODEL_DIR is required.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ModelDir:           os.Getenv("CUBEMAP_MODEL_DIR"),
		DBPath:             os.Getenv("CUBEMAP_DB_PATH"),
		ListenAddr:         os.Getenv("LISTEN_ADDR"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		Schema:             os.Getenv("DEFAULT_SCHEMA"),
		DimensionPrefix:    os.Getenv("DIMENSION_PREFIX"),
		Locale:             os.Getenv("LOCALE"),
		SimplifyDimensions: parseBoolEnvDefault("SIMPLIFY_DIMENSIONS", true),
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}

	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("CUBEMAP_MODEL_DIR must be set")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "":
		return defaultVal
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	default:
		return defaultVal
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be KEY=VALUE; comments (#) and blanks are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
