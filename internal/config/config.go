// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"sql-eval/internal/domain"
)

// Config holds the configuration for the CLI and the HTTP API.
type Config struct {
	LogLevel    string             // log level: debug, info, warn, error (default "info")
	Env         string             // environment: "development" (default) or "production"
	OutputDir   string             // directory for eval.json and metrics.json (default "output")
	Workers     int                // concurrent pair evaluations (default 1)
	ParsePolicy domain.ParsePolicy // how unparseable generated queries are scored (default strict)
	LedgerPath  string             // path to the SQLite run ledger; empty disables it
	DuckDBPath  string             // path to the DuckDB tree index; empty disables it
	ListenAddr  string             // HTTP listen address (default ":8080")
	MaxBatch    int                // largest batch accepted by POST /v1/evaluate (default 1000)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
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

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LedgerEnabled returns true when runs should be recorded.
func (c *Config) LedgerEnabled() bool {
	return c.LedgerPath != ""
}

// LoadFromEnv loads configuration from environment variables. Malformed
// numeric values fall back to their defaults with a warning; an unknown
// parse policy is an error.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:   os.Getenv("LOG_LEVEL"),
		Env:        os.Getenv("ENV"),
		OutputDir:  os.Getenv("SQLEVAL_OUTPUT_DIR"),
		LedgerPath: os.Getenv("SQLEVAL_LEDGER_PATH"),
		DuckDBPath: os.Getenv("SQLEVAL_DUCKDB_PATH"),
		ListenAddr: os.Getenv("LISTEN_ADDR"),
	}

	policy, err := domain.ParseParsePolicy(strings.TrimSpace(os.Getenv("SQLEVAL_PARSE_POLICY")))
	if err != nil {
		return nil, fmt.Errorf("SQLEVAL_PARSE_POLICY: %w", err)
	}
	cfg.ParsePolicy = policy

	cfg.Workers = cfg.intEnv("SQLEVAL_WORKERS", 1)
	cfg.MaxBatch = cfg.intEnv("SQLEVAL_MAX_BATCH", 1000)
	cfg.RateLimitBurst = cfg.intEnv("RATE_LIMIT_BURST", 200)

	// Rate limiting
	cfg.RateLimitRPS = 100
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RateLimitRPS = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid RATE_LIMIT_RPS %q, using %g", v, cfg.RateLimitRPS))
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Workers > 1 && cfg.ParsePolicy == domain.ParsePolicyStrict {
		cfg.Warnings = append(cfg.Warnings,
			"SQLEVAL_WORKERS > 1 with strict parse policy: the reported error is the first to occur, not the lowest index")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// intEnv reads a positive integer, falling back to def and recording a
// warning when the value is malformed.
func (c *Config) intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s %q, using %d", key, v, def))
		return def
	}
	return n
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
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
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Variables already in the environment win.
		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
