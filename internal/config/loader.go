package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// Load builds a Config from the environment: every `env` tag is read, its
// `envAlt` fallback is tried next and `default` fills the rest. The result
// is validated as a whole so one run reports every bad variable.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadSection(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadSection fills the tagged fields of one section (Server, Generate,
// Store...) and descends into nested sections.
func loadSection(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dst := v.Field(i)
		if !dst.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadSection(dst); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, set := lookupEnv(name, field.Tag.Get("envAlt"))
		if !set {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := assign(dst, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}

	return nil
}

// lookupEnv returns the first non-empty value among name and alt.
func lookupEnv(name, alt string) (string, bool) {
	if v := os.Getenv(name); v != "" {
		return v, true
	}
	if alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, true
		}
	}
	return "", false
}

// assign parses raw into dst. Durations use time.ParseDuration
// ("30s", "2m"); string slices are comma separated (API_KEYS,
// TRUSTED_PROXIES).
func assign(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type().Elem().Kind())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}
	return nil
}

// splitList splits a comma separated value, dropping blank entries.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once, one line per variable.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Parser validation
	if c.Parser.MaxFileSize <= 0 {
		errs = append(errs, "PARSER_MAX_FILE_SIZE must be positive")
	}
	if c.Parser.SampleSize <= 0 {
		errs = append(errs, "PARSER_SAMPLE_SIZE must be positive")
	}

	// Generation validation
	if c.Generate.MaxRows <= 0 || c.Generate.MaxRows > core.MaxRowCount {
		errs = append(errs, fmt.Sprintf("GENERATE_MAX_ROWS (%d) must be 1-%d", c.Generate.MaxRows, core.MaxRowCount))
	}
	if c.Generate.ParallelThreshold <= 0 {
		errs = append(errs, "GENERATE_PARALLEL_THRESHOLD must be positive")
	}
	if c.Generate.Workers <= 0 {
		errs = append(errs, "GENERATE_WORKERS must be positive")
	}
	if c.Generate.MaxConcurrent <= 0 {
		errs = append(errs, "GENERATE_MAX_CONCURRENT must be positive")
	}
	if c.Generate.MaxWait <= 0 {
		errs = append(errs, "GENERATE_MAX_WAIT must be positive")
	}

	// Store validation
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required when TEMPLATE_STORE is sqlite")
		}
	case "postgres":
		if c.Store.PostgresURL == "" {
			errs = append(errs, "DATABASE_URL is required when TEMPLATE_STORE is postgres")
		}
		if c.Store.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("TEMPLATE_STORE (%q) must be one of: memory, sqlite, postgres", c.Store.Driver))
	}

	// AI validation
	if c.AI.AIEnabled() && c.AI.Timeout <= 0 {
		errs = append(errs, "AI_TIMEOUT must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.HeavyLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_HEAVY must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if c.Dataset.Watch && c.Dataset.Path == "" {
		errs = append(errs, "DATASET_WATCH requires DATASET_PATH")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String renders the config for debug logs with DATABASE_URL and the AI key
// masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Parser: {MaxFileSize: %d}, ", c.Parser.MaxFileSize)
	fmt.Fprintf(&b, "Generate: {MaxRows: %d, ParallelThreshold: %d, Workers: %d, MaxConcurrent: %d}, ",
		c.Generate.MaxRows, c.Generate.ParallelThreshold, c.Generate.Workers, c.Generate.MaxConcurrent)
	fmt.Fprintf(&b, "Store: {Driver: %q, SQLitePath: %q, PostgresURL: %s}, ",
		c.Store.Driver, c.Store.SQLitePath, mask(c.Store.PostgresURL))
	fmt.Fprintf(&b, "AI: {APIKey: %s, Model: %q}, ", mask(c.AI.APIKey), c.AI.Model)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format)
	fmt.Fprintf(&b, "Dataset: {Path: %q, Watch: %v}", c.Dataset.Path, c.Dataset.Watch)
	b.WriteString("}")
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
