package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 2 * time.Second

// RedisStore keeps values as plain Redis strings.
//
// Keys are stored as "<namespace>:<key>" when a namespace is set.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	logger    *zap.Logger
}

// NewRedisStore connects to the redis:// URL and verifies it with a ping.
func NewRedisStore(ctx context.Context, redisURL, namespace string, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if redisURL == "" {
		return nil, errors.New("redis store: url is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis store: failed to parse url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis store: ping failed: %w", err)
	}

	logger.Info("redis store connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
		zap.String("namespace", namespace),
	)
	return &RedisStore{rdb: rdb, namespace: namespace, logger: logger}, nil
}

func (r *RedisStore) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// Get reads the string stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to read value", zap.String("key", r.key(key)), zap.Error(err))
		return nil, fmt.Errorf("redis store: failed to read %q: %w", key, err)
	}
	return value, nil
}

// Set writes the string under key with no expiry.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("failed to write value", zap.String("key", r.key(key)), zap.Error(err))
		return fmt.Errorf("redis store: failed to write %q: %w", key, err)
	}

	r.logger.Debug("value written", zap.String("key", r.key(key)), zap.Int("bytes", len(value)))
	return nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
