package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/DataForge/internal/application"
	"github.com/JonMunkholm/DataForge/internal/config"
	"github.com/JonMunkholm/DataForge/internal/logging"
	mcpserver "github.com/JonMunkholm/DataForge/internal/mcp"
	"github.com/joho/godotenv"
)

// The MCP protocol owns stdout, so every log line goes to stderr.
func main() {
	logging.Setup("info", "text", logging.WithWriter(os.Stderr))

	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, logging.WithWriter(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := application.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	if err := app.WatchDataset(ctx); err != nil {
		slog.Warn("dataset hot reload disabled", "error", err)
	}

	if err := mcpserver.New(app.Service).ServeStdio(); err != nil {
		slog.Error("mcp server stopped", "error", err)
	}
}
