package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jpalmerr/habitboard"
	"github.com/jpalmerr/habitboard/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// addConfigFlag registers the optional --config flag on cmd.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (defaults to file storage in ./habitboard-data)")
}

// loadConfig reads the --config file, or returns defaults when none is given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger creates a stderr logger at the configured level and format,
// but never below floor.
func newLogger(lc config.LogConfig, floor zapcore.Level) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if level < floor {
		level = floor
	}

	var encoder zapcore.Encoder
	if lc.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// board is an opened habit board plus what must be released after use.
type board struct {
	*habitboard.HabitBoard
	logger *zap.Logger
	close  func()
}

// openBoard loads configuration, opens storage, and builds a board.
//
// When hydrate is true the saved habits are loaded before returning; a
// failed or malformed load is reported and nothing is overwritten. Log
// output below floor is dropped so one-shot commands stay quiet.
func openBoard(ctx context.Context, cmd *cobra.Command, hydrate bool, floor zapcore.Level) (*board, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log, floor)
	if err != nil {
		return nil, err
	}

	opts, repo, err := config.BuildOptions(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	closeAll := func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
		_ = logger.Sync()
	}

	hb, err := habitboard.New(opts...)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to create habitboard: %w", err)
	}

	if hydrate {
		if err := hb.Store().Hydrate(ctx); err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to load habits: %w", err)
		}
	}

	return &board{HabitBoard: hb, logger: logger, close: closeAll}, nil
}
