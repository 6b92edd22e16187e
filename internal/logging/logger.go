// Package logging configures log/slog for DataForge.
//
// Request-scoped loggers pick up the request id set by chi's RequestID
// middleware so every line written while serving a request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Option customizes Setup.
type Option func(*options)

type options struct {
	w io.Writer
}

// WithWriter sends log output to w instead of stdout. The MCP server uses
// this to keep stdout free for the protocol.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.w = w
	}
}

// New builds a logger for the given level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup configures the global slog logger based on level and format.
// Use "json" in production for machine parsing and "text" in development.
func Setup(level, format string, opts ...Option) {
	o := options{w: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	slog.SetDefault(New(o.w, level, format))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// FromContext returns the default logger, enriched with the request id when
// ctx carries one.
//
// Usage:
//
//	func handleUpload(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("template parsed", "fields", len(fields))
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a request logger with additional structured fields,
// for operations that log several steps.
//
// Usage:
//
//	genLogger := logging.WithFields(ctx, "rows", rowCount, "fields", len(fields))
//	genLogger.Info("generation started")
//	// ... later ...
//	genLogger.Info("generation finished", "duration_ms", elapsed.Milliseconds())
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
