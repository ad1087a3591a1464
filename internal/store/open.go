package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/fintrack/internal/model"
)

// Open returns the KV backend selected by cfg.
func Open(ctx context.Context, cfg model.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case "", "sqlite":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.Path)
	case "redis":
		return NewRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.Namespace,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
