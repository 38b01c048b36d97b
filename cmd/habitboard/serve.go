package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the habitboard dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the habitboard dashboard server.

The server will:
  - Load configuration from the specified YAML file, if any
  - Load the saved habits from the configured storage
  - Serve the dashboard UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  habitboard serve
  habitboard serve -c /etc/habitboard/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addConfigFlag(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBoard(ctx, cmd, false, zapcore.DebugLevel)
	if err != nil {
		return err
	}
	defer b.close()

	b.logger.Info("starting server", zap.Int("port", b.Port()))

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- b.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		b.logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			b.logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			b.logger.Warn("shutdown timed out",
				zap.Duration("timeout", shutdownTimeout),
				zap.String("action", "forcing exit"),
			)
			return nil
		}
	}
}
