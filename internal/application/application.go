// Package application builds a ready-to-use DataForge service from
// configuration. The HTTP server, the MCP server and the datagen CLI all
// start through New.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/DataForge/internal/ai"
	"github.com/JonMunkholm/DataForge/internal/config"
	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/JonMunkholm/DataForge/internal/dataset"
	"github.com/JonMunkholm/DataForge/internal/store"
)

// App owns the service and the resources behind it.
type App struct {
	Config    *config.Config
	Service   *core.Service
	Generator *core.Generator
	Store     store.Store
}

// Option customizes New.
type Option func(*options)

type options struct {
	seed   uint64
	seeded bool
	noAI   bool
}

// WithSeed makes generated tables reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithoutAI skips the AI provider even when a key is configured.
func WithoutAI() Option {
	return func(o *options) { o.noAI = true }
}

// New opens the template store, loads the dataset, builds the AI provider
// when a key is configured and wires them into a Service. Close releases
// the store.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ds := dataset.Default()
	if cfg.Dataset.Path != "" {
		loaded, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		ds = loaded
		slog.Info("dataset loaded", "path", cfg.Dataset.Path)
	}

	genOpts := []core.GeneratorOption{
		core.WithDataset(ds),
		core.WithMaxRows(cfg.Generate.MaxRows),
		core.WithParallelThreshold(cfg.Generate.ParallelThreshold),
		core.WithWorkers(cfg.Generate.Workers),
	}
	if o.seeded {
		genOpts = append(genOpts, core.WithSeed(o.seed))
	}
	gen := core.NewGenerator(genOpts...)

	st, err := store.Open(ctx, store.Config{
		Driver:      cfg.Store.Driver,
		SQLitePath:  cfg.Store.SQLitePath,
		PostgresURL: cfg.Store.PostgresURL,
		MaxConns:    cfg.Store.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open template store: %w", err)
	}
	slog.Info("template store ready", "driver", cfg.Store.Driver)

	svcOpts := []core.ServiceOption{
		core.WithGenerator(gen),
		core.WithParser(&core.Parser{MaxFileSize: cfg.Parser.MaxFileSize, SampleSize: cfg.Parser.SampleSize}),
		core.WithLimiter(core.NewGenerationLimiter(cfg.Generate.MaxConcurrent, cfg.Generate.MaxWait)),
	}

	if cfg.AI.AIEnabled() && !o.noAI {
		provider, err := ai.NewOpenAIProvider(ai.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("create ai provider: %w", err)
		}
		svcOpts = append(svcOpts, core.WithProvider(provider))
		slog.Info("ai schema generation enabled", "model", cfg.AI.Model)
	}

	return &App{
		Config:    cfg,
		Service:   core.NewService(st, svcOpts...),
		Generator: gen,
		Store:     st,
	}, nil
}

// WatchDataset starts reloading the dataset file into the generator until
// ctx is done. It does nothing when watching is disabled.
func (a *App) WatchDataset(ctx context.Context) error {
	if !a.Config.Dataset.Watch || a.Config.Dataset.Path == "" {
		return nil
	}
	return dataset.Watch(ctx, a.Config.Dataset.Path, a.Generator.SetDataset)
}

// Close drains running generations and closes the template store.
func (a *App) Close(ctx context.Context) error {
	drainErr := a.Service.Drain(ctx)
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close template store: %w", err)
	}
	return drainErr
}
