package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Conn is the part of *sql.DB and *sql.Tx the store uses.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps values in the metadata table created by the embedded
// migrations.
type SQLiteStore struct {
	db Conn
}

// NewSQLiteStore wraps db, which may be a *sql.DB or a *sql.Tx.
func NewSQLiteStore(db Conn) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteStore) SetString(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
