package config

import (
	"context"
	"fmt"

	"github.com/jpalmerr/habitboard"
	"github.com/jpalmerr/habitboard/internal/habit"
	"github.com/jpalmerr/habitboard/internal/store"
	"go.uber.org/zap"
)

// OpenRepository opens the configured storage backend and wraps it in a
// habit repository. The caller must Close the returned repository.
func OpenRepository(ctx context.Context, cfg *Config, logger *zap.Logger) (habitboard.ClosableRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kv, err := store.Open(ctx, cfg.Storage.StoreConfig(), logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	return habit.NewKVRepository(kv, logger.Named("repository")), nil
}

// BuildOptions converts parsed configuration into SDK options and opens the
// repository they persist to.
//
// The returned repository must be closed after the board stops.
func BuildOptions(ctx context.Context, cfg *Config, logger *zap.Logger) ([]habitboard.Option, habitboard.ClosableRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("timezone: %w", err)
	}

	repo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []habitboard.Option{
		habitboard.WithRepository(repo),
		habitboard.WithPort(cfg.Port),
		habitboard.WithLocation(loc),
		habitboard.WithRolloverInterval(cfg.RolloverInterval.Duration()),
		habitboard.WithLogger(logger),
	}
	if cfg.Title != "" {
		opts = append(opts, habitboard.WithTitle(cfg.Title))
	}

	return opts, repo, nil
}
