// Package config loads DataForge settings from environment variables.
// Every setting has a default except where noted, and Load validates the
// result so misconfiguration fails at startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Parser   ParserConfig
	Generate GenerateConfig
	Store    StoreConfig
	AI       AIConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Dataset  DatasetConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request, exports included (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// ParserConfig holds template upload settings.
type ParserConfig struct {
	// MaxFileSize is the largest accepted template in bytes (default: 10MiB)
	MaxFileSize int64 `env:"PARSER_MAX_FILE_SIZE" default:"10485760"`

	// SampleSize is how many non-empty values per column feed inference
	SampleSize int `env:"PARSER_SAMPLE_SIZE" default:"5"`
}

// GenerateConfig holds table generation settings.
type GenerateConfig struct {
	// MaxRows caps a single table (default: 100000, the hard maximum)
	MaxRows int `env:"GENERATE_MAX_ROWS" default:"100000"`

	// ParallelThreshold is the row count at which generation fans out
	ParallelThreshold int `env:"GENERATE_PARALLEL_THRESHOLD" default:"5000"`

	// Workers is the number of goroutines used for large tables
	Workers int `env:"GENERATE_WORKERS" default:"4"`

	// MaxConcurrent limits large generations running at once (default: 4)
	MaxConcurrent int `env:"GENERATE_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a large generation waits for a slot (default: 30s)
	MaxWait time.Duration `env:"GENERATE_MAX_WAIT" default:"30s"`
}

// StoreConfig selects and configures the template store.
type StoreConfig struct {
	// Driver is memory, sqlite or postgres (default: memory)
	Driver string `env:"TEMPLATE_STORE" default:"memory"`

	SQLitePath string `env:"SQLITE_PATH" default:"data/dataforge.db"`

	// PostgresURL is required when Driver is postgres
	PostgresURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"10"`
}

// AIConfig holds the schema generation provider settings. Schema generation
// is disabled when APIKey is empty.
type AIConfig struct {
	APIKey  string        `env:"AI_API_KEY" envAlt:"OPENAI_API_KEY"`
	Model   string        `env:"AI_MODEL" default:"gpt-4o-mini"`
	BaseURL string        `env:"AI_BASE_URL"`
	Timeout time.Duration `env:"AI_TIMEOUT" default:"30s"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// HeavyLimit applies to upload, schema generation and export (default: 10)
	HeavyLimit int `env:"RATE_LIMIT_HEAVY" envAlt:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// DatasetConfig points at an optional word-list override.
type DatasetConfig struct {
	// Path is a JSON word-list file; empty uses the built-in lists
	Path string `env:"DATASET_PATH"`

	// Watch reloads Path when it changes
	Watch bool `env:"DATASET_WATCH" default:"false"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AIEnabled reports whether a provider key is configured.
func (c *AIConfig) AIEnabled() bool {
	return c.APIKey != ""
}
