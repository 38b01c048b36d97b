package habitboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpalmerr/habitboard/dashboard"
	"github.com/jpalmerr/habitboard/internal/habit"
	"github.com/jpalmerr/habitboard/internal/rollover"
	"github.com/jpalmerr/habitboard/internal/server"
	"go.uber.org/zap"
)

const (
	defaultPort             = 8080
	defaultRolloverInterval = 30 * time.Second
)

// HabitBoard is the main orchestrator for the habit store and its dashboard.
//
// HabitBoard owns a [HabitStore] backed by the configured [Repository],
// watches for the calendar day to change, and serves the dashboard and API
// via HTTP. It is created using [New] with functional options and started
// with [HabitBoard.Start].
//
// The typical lifecycle is:
//
//	hb, err := habitboard.New(habitboard.WithRepository(repo))
//	if err != nil {
//	    logger.Fatal("failed to create habitboard", zap.Error(err))
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	hb.Start(ctx) // blocks until context cancelled
type HabitBoard struct {
	title            string
	port             int
	location         *time.Location
	now              func() time.Time
	rolloverInterval time.Duration
	logger           *zap.Logger
	store            *habit.Store
	changeCallbacks  []func(Collection)
}

// New creates a new [HabitBoard] instance with the given options.
//
// Every option has a default:
//   - Repository: in memory
//   - Port: 8080
//   - Location: time.Local
//   - Rollover interval: 30 seconds
//
// Returns an error if any option is invalid.
//
// Example:
//
//	hb, err := habitboard.New(
//	    habitboard.WithRepository(repo),
//	    habitboard.WithPort(9090),
//	    habitboard.WithLogger(logger),
//	)
func New(opts ...Option) (*HabitBoard, error) {
	cfg := &hbConfig{
		port:             defaultPort,
		location:         time.Local,
		now:              time.Now,
		rolloverInterval: defaultRolloverInterval,
		logger:           zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.repo == nil {
		cfg.repo = habit.NewMemoryRepository()
	}

	st := habit.NewStore(cfg.repo,
		habit.WithLogger(cfg.logger.Named("store")),
		habit.WithClock(cfg.now),
	)

	return &HabitBoard{
		title:            cfg.title,
		port:             cfg.port,
		location:         cfg.location,
		now:              cfg.now,
		rolloverInterval: cfg.rolloverInterval,
		logger:           cfg.logger,
		store:            st,
		changeCallbacks:  cfg.changeCallbacks,
	}, nil
}

// Start loads the saved habits and serves the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The stored collection is loaded once; a failed or malformed load is returned as an error
//   - The calendar day is checked at the rollover interval and pushed to dashboards when it changes
//   - The HTTP server starts on the configured port
//   - Change callbacks fire after every saved change
//
// Returns nil on graceful shutdown. Returns an error if loading fails or the
// HTTP server fails to start.
func (hb *HabitBoard) Start(ctx context.Context) error {
	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	if err := hb.store.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	hb.logger.Info("habitboard starting", zap.Int("habit_count", len(hb.store.Habits())))
	hb.logger.Info("dashboard available", zap.String("url", fmt.Sprintf("http://localhost:%d", hb.port)))

	watcher := rollover.NewWatcher(hb.rolloverInterval, hb.now, hb.location, hb.logger.Named("rollover"))
	watcher.Start(ctx)

	httpServer := server.NewServer(hb.store, hb.port, dashboard.Assets, hb.title, hb.Today, hb.logger.Named("http"))

	changes := hb.store.Subscribe()

	// track the fan-out goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		days := watcher.Days()
		for {
			select {
			case snapshot, ok := <-changes:
				if !ok {
					return
				}
				for _, cb := range hb.changeCallbacks {
					invokeCallbackSafe(cb, snapshot, hb.logger)
				}
			case day, ok := <-days:
				if !ok {
					days = nil
					continue
				}
				httpServer.DayChanged(day)
			}
		}
	}()

	// cleanup stops the watcher and drains the fan-out goroutine
	cleanup := func() {
		watcher.Stop()
		hb.store.Unsubscribe(changes) // closes changes
		wg.Wait()
	}

	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	hb.logger.Info("habitboard stopped")
	return nil
}

// Store returns the habit store.
//
// The store is usable before [HabitBoard.Start]; call
// [HabitStore.Hydrate] first to see previously saved habits.
func (hb *HabitBoard) Store() *HabitStore {
	return hb.store
}

// Today returns the current calendar day in the configured location.
func (hb *HabitBoard) Today() string {
	return habit.Day(hb.now().In(hb.location))
}

// Port returns the configured HTTP port for the dashboard server.
func (hb *HabitBoard) Port() int {
	return hb.port
}

// Title returns the configured dashboard title.
func (hb *HabitBoard) Title() string {
	return hb.title
}

// invokeCallbackSafe calls a change callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Collection), snapshot Collection, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change callback panicked",
				zap.Any("panic", r),
				zap.Int("habit_count", len(snapshot)),
			)
		}
	}()
	cb(snapshot)
}
