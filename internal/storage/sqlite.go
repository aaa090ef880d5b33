package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default file-backed dedup store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file at path and ensures
// the ads table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ads (
			id  INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT    NOT NULL UNIQUE
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ads table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Exists reports whether url has a seen record.
func (s *SQLiteStore) Exists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM ads WHERE url = ?`, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen record: %w", err)
	}
	return true, nil
}

// Insert records url as seen. Inserting an already-seen URL is a no-op.
func (s *SQLiteStore) Insert(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO ads (url) VALUES (?)`, url); err != nil {
		return fmt.Errorf("insert seen record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
