package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the dedup store with a PostgreSQL table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ads (
			url TEXT PRIMARY KEY
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ads table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Exists reports whether url has a seen record.
func (s *PostgresStore) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ads WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query seen record: %w", err)
	}
	return exists, nil
}

// Insert records url as seen. Inserting an already-seen URL is a no-op.
func (s *PostgresStore) Insert(ctx context.Context, url string) error {
	if _, err := s.db.Exec(ctx,
		`INSERT INTO ads (url) VALUES ($1) ON CONFLICT (url) DO NOTHING`, url,
	); err != nil {
		return fmt.Errorf("insert seen record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
