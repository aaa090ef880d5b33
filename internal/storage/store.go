package storage

import (
	"context"
	"fmt"
)

// DedupStore records listing URLs that have already been processed. Both
// operations are keyed on exact canonical URL string equality. Records are
// created once and never updated or deleted by the pipeline.
type DedupStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, url string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a dedup store backend.
type Options struct {
	Backend     string // "sqlite", "postgres" or "redis"
	SQLitePath  string
	PostgresURL string
	RedisAddr   string
}

// Open constructs the configured backend and verifies connectivity.
func Open(ctx context.Context, opts Options) (DedupStore, error) {
	switch opts.Backend {
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "postgres":
		return NewPostgresStore(ctx, opts.PostgresURL)
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
