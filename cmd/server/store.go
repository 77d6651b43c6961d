package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/config"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/fs"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/gcs"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/postgres"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/sqlite"
)

// taskStore is what the server needs from a backend beyond the repository:
// a readiness probe and a close hook.
type taskStore interface {
	scheduling.Repository
	Ping(ctx context.Context) error
	Close() error
}

// fsStore adds a no-op Close to the directory store.
type fsStore struct{ *fs.Store }

func (fsStore) Close() error { return nil }

func openStore(ctx context.Context, cfg config.StorageConfig) (taskStore, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		store, err := postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dsn", maskPassword(cfg.DSN))
		return store, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "path", cfg.SQLitePath)
		return store, nil

	case config.StorageGCS:
		store, err := gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "bucket", cfg.GCSBucket)
		return store, nil

	case config.StorageFS:
		store, err := fs.NewStore(cfg.FSDir)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dir", cfg.FSDir)
		return fsStore{store}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageType, cfg.Type)
	}
}

// maskPassword hides the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
