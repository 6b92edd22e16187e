package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists templates in PostgreSQL. Fields are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url, verifies the connection and migrates.
func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	if url == "" {
		return nil, errors.New("postgres url is required")
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			fields JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_created ON templates(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, t core.Template) error {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}
	fields, err := encodeFields(t.Fields)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO templates (id, name, description, fields, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, t.Name, t.Description, fields, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]core.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, fields, created_at FROM templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := []core.Template{}
	for rows.Next() {
		t, err := scanPostgresTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (core.Template, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return core.Template{}, core.ErrTemplateNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, fields, created_at FROM templates WHERE id = $1`, uid)
	t, err := scanPostgresTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Template{}, core.ErrTemplateNotFound
	}
	return t, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return core.ErrTemplateNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrTemplateNotFound
	}
	return nil
}

func scanPostgresTemplate(row pgx.Row) (core.Template, error) {
	var (
		t      core.Template
		id     uuid.UUID
		fields []byte
	)
	if err := row.Scan(&id, &t.Name, &t.Description, &fields, &t.CreatedAt); err != nil {
		return core.Template{}, err
	}
	t.ID = id.String()

	var err error
	if t.Fields, err = decodeFields(fields); err != nil {
		return core.Template{}, fmt.Errorf("template %s: %w", t.ID, err)
	}
	return t, nil
}
