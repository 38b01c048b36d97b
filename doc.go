// Package habitboard provides a small, embeddable habit tracker with a
// real-time web dashboard.
//
// A habit is a titled item that can be marked done for any calendar day.
// HabitBoard keeps the whole list in memory, mirrors it to durable storage
// after every change, and serves a single-screen dashboard that lists each
// habit with its done state for today.
//
// # Quick Start
//
// Create a board and start the dashboard with graceful shutdown:
//
//	hb, _ := habitboard.New(habitboard.WithPort(8080))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	hb.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// HabitBoard uses the functional options pattern for configuration:
//
//	hb, err := habitboard.New(
//	    habitboard.WithRepository(repo),
//	    habitboard.WithPort(9090),
//	    habitboard.WithTitle("Morning routine"),
//	    habitboard.WithLocation(loc),
//	    habitboard.WithChangeCallback(func(c habitboard.Collection) {
//	        log.Printf("%d habits saved", len(c))
//	    }),
//	)
//
// The config package builds the same options from a YAML file and opens the
// storage backend it names.
//
// # Persistence
//
// The collection is stored as a single JSON array under [StorageKey]. Each
// change is saved before it becomes visible; a failed save discards the
// change and returns the error, so what is shown always matches what is
// stored.
//
// # Architecture
//
// HabitBoard consists of several internal packages (under internal/):
//
//   - internal/habit: Habit model, codec, and the mutex-guarded store
//   - internal/store: Key-value backends (memory, file, SQLite, Redis, PostgreSQL)
//   - internal/rollover: Detects the calendar day changing
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/tui: Terminal interface
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package habitboard
