package habit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpalmerr/habitboard/internal/store"
	"go.uber.org/zap"
)

// StorageKey is the fixed key the whole collection is stored under.
const StorageKey = "HABITS"

// Repository loads and saves the whole collection as one document.
type Repository interface {
	// Load returns the stored collection. found is false when nothing has
	// been stored yet.
	Load(ctx context.Context) (c Collection, found bool, err error)

	// Save overwrites the stored collection.
	Save(ctx context.Context, c Collection) error
}

// KVRepository stores the collection under [StorageKey] in a [store.KV].
type KVRepository struct {
	kv     store.KV
	logger *zap.Logger
}

// NewKVRepository wraps kv. A nil logger discards output.
func NewKVRepository(kv store.KV, logger *zap.Logger) *KVRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVRepository{kv: kv, logger: logger}
}

// NewMemoryRepository returns a repository backed by an empty in-memory store.
func NewMemoryRepository() *KVRepository {
	return NewKVRepository(store.NewMemoryStore(), nil)
}

// Load reads and decodes the stored document.
func (r *KVRepository) Load(ctx context.Context) (Collection, bool, error) {
	r.logger.Debug("loading habits", zap.String("key", StorageKey))

	data, err := r.kv.Get(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Debug("no stored habits", zap.String("key", StorageKey))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read habits: %w", err)
	}

	c, err := Unmarshal(data)
	if err != nil {
		r.logger.Error("stored habits are malformed", zap.String("key", StorageKey), zap.Error(err))
		return nil, false, err
	}

	r.logger.Debug("loaded habits", zap.Int("count", len(c)))
	return c, true, nil
}

// Save encodes c and overwrites the stored document.
func (r *KVRepository) Save(ctx context.Context, c Collection) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode habits: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to write habits: %w", err)
	}

	r.logger.Debug("saved habits", zap.Int("count", len(c)), zap.Int("bytes", len(data)))
	return nil
}

// Close closes the underlying store.
func (r *KVRepository) Close() error {
	return r.kv.Close()
}
