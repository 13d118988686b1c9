package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/workbench/internal/apperr"
)

const blobSchemaSQL = `
CREATE TABLE IF NOT EXISTS blobs (
	namespace  TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite implements Provider on a single-table SQLite database.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database file and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(blobSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Load returns the stored blob.
func (s *SQLite) Load(ctx context.Context, namespace string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRowContext(ctx, `SELECT data FROM blobs WHERE namespace = ?`, namespace).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("storage: load %s: %w", namespace, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: load %s: %w", namespace, err)
	}
	return data, nil
}

// Save upserts the blob.
func (s *SQLite) Save(ctx context.Context, namespace string, data []byte) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO blobs (namespace, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at
	`, namespace, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", namespace, err)
	}
	return nil
}

// Delete removes the blob.
func (s *SQLite) Delete(ctx context.Context, namespace string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM blobs WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("storage: delete %s: %w", namespace, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
