package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/DataForge/internal/core"
	_ "modernc.org/sqlite"
)

// sqliteTime sorts lexically in UTC.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists templates in a local SQLite file.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			fields_json TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_created ON templates(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, t core.Template) error {
	fields, err := encodeFields(t.Fields)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, fields_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, string(fields), t.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]core.Template, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, description, fields_json, created_at FROM templates ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := []core.Template{}
	for rows.Next() {
		t, err := scanSQLiteTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (core.Template, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, description, fields_json, created_at FROM templates WHERE id = ?`, id)
	t, err := scanSQLiteTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Template{}, core.ErrTemplateNotFound
	}
	return t, err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n == 0 {
		return core.ErrTemplateNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTemplate(sc scanner) (core.Template, error) {
	var (
		t         core.Template
		fields    string
		createdAt string
	)
	if err := sc.Scan(&t.ID, &t.Name, &t.Description, &fields, &createdAt); err != nil {
		return core.Template{}, err
	}

	var err error
	if t.Fields, err = decodeFields([]byte(fields)); err != nil {
		return core.Template{}, fmt.Errorf("template %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = time.Parse(sqliteTime, createdAt); err != nil {
		return core.Template{}, fmt.Errorf("template %s: parse created_at: %w", t.ID, err)
	}
	return t, nil
}
