// Package store implements core.TemplateStore backends: an in-memory map,
// an embedded SQLite file and PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// Store is a template store that holds resources until closed.
type Store interface {
	core.TemplateStore
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver      string // memory, sqlite or postgres
	SQLitePath  string
	PostgresURL string
	MaxConns    int
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresURL, cfg.MaxConns)
	default:
		return nil, fmt.Errorf("unknown template store %q", cfg.Driver)
	}
}

func encodeFields(fields []core.Field) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) ([]core.Field, error) {
	var fields []core.Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}
