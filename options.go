package habitboard

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// hbConfig holds mutable state during HabitBoard construction.
type hbConfig struct {
	title            string
	port             int
	repo             Repository
	location         *time.Location
	now              func() time.Time
	rolloverInterval time.Duration
	logger           *zap.Logger
	changeCallbacks  []func(Collection)
}

// Option is a function that configures a [HabitBoard] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*hbConfig) error

// WithRepository sets where habits are persisted.
//
// Defaults to an in-memory repository, which loses everything on exit.
//
// Example:
//
//	repo, closer, _ := config.OpenRepository(ctx, cfg, logger)
//	defer closer.Close()
//	hb, err := habitboard.New(habitboard.WithRepository(repo))
func WithRepository(repo Repository) Option {
	return func(cfg *hbConfig) error {
		if repo == nil {
			return errors.New("repository cannot be nil")
		}
		cfg.repo = repo
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *hbConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Habit Tracker".
func WithTitle(title string) Option {
	return func(cfg *hbConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [zap.Logger].
//
// If not specified, logging is discarded.
//
// Returns an error if the logger is nil.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *hbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithLocation sets the time zone that decides what "today" is.
//
// Defaults to [time.Local].
func WithLocation(loc *time.Location) Option {
	return func(cfg *hbConfig) error {
		if loc == nil {
			return errors.New("location cannot be nil")
		}
		cfg.location = loc
		return nil
	}
}

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *hbConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithRolloverInterval sets how often Start checks whether the day changed.
//
// Defaults to 30 seconds. Returns an error if the duration is not positive.
func WithRolloverInterval(d time.Duration) Option {
	return func(cfg *hbConfig) error {
		if d <= 0 {
			return errors.New("rollover interval must be positive")
		}
		cfg.rolloverInterval = d
		return nil
	}
}

// WithChangeCallback registers a function called with a snapshot after every
// saved change while [HabitBoard.Start] is running.
//
// Callbacks run in registration order on a single goroutine and must not
// block. Panics are recovered and logged. The snapshot is shared and must be
// treated as read-only.
//
// Nil callbacks are silently ignored.
func WithChangeCallback(cb func(Collection)) Option {
	return func(cfg *hbConfig) error {
		if cb == nil {
			return nil
		}
		cfg.changeCallbacks = append(cfg.changeCallbacks, cb)
		return nil
	}
}
