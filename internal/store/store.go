package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned by [KV.Get] when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Driver names accepted by [Open].
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// KV is a single-namespace key-value store holding opaque documents.
//
// Implementations must be safe for concurrent access. Set always replaces the
// whole value; there are no partial updates.
type KV interface {
	// Get returns a copy of the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// Config selects and parameterizes a backend for [Open].
type Config struct {
	// Driver is one of the Driver* constants.
	Driver string

	// Path is the directory (file) or database file (sqlite).
	Path string

	// URL is the redis:// connection URL.
	URL string

	// DSN is the postgres connection string.
	DSN string

	// Namespace prefixes redis keys.
	Namespace string
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (KV, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("opening storage backend", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Path, logger)
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Path, logger)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.URL, cfg.Namespace, logger)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
