package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ytparty/internal/shared"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("YTPARTY_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	if config.Log.File != "" {
		if fileLogger, err := shared.NewFileLogger(config.Log.File); err == nil {
			logger = fileLogger
		} else {
			logger.Warn("failed to open log file", "path", config.Log.File, "error", err)
		}
	}
	if err := shared.ApplyLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	if err := runner.App().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented", "reason", err)
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
