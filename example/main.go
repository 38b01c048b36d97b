package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jpalmerr/habitboard"
	"github.com/jpalmerr/habitboard/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "habitboard:", err)
		os.Exit(1)
	}
}

func run() (err error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// store habits in a SQLite file in the temp dir
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(os.TempDir(), "habitboard-demo.db")

	repo, err := config.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close storage: %w", cerr)
		}
	}()

	// callbacks only fire while Start runs, after hb is assigned
	var hb *habitboard.HabitBoard
	hb, err = habitboard.New(
		habitboard.WithRepository(repo),
		habitboard.WithPort(8080),
		habitboard.WithTitle("Demo habits"),
		habitboard.WithLogger(logger),
		habitboard.WithChangeCallback(func(c habitboard.Collection) {
			done := 0
			today := hb.Today()
			for _, h := range c {
				if h.DoneOn(today) {
					done++
				}
			}
			fmt.Printf("  %d of %d habits done today\n", done, len(c))
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create habitboard: %w", err)
	}

	// seed a few habits on first run
	if err := hb.Store().Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	if len(hb.Store().Habits()) == 0 {
		for _, title := range []string{"Drink water", "Read 20 pages", "Stretch"} {
			if _, err := hb.Store().AddHabit(ctx, title); err != nil {
				return fmt.Errorf("failed to seed habit: %w", err)
			}
		}
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   habitboard Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	return hb.Start(ctx)
}
