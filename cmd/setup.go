package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a configuration file and prepare storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
				Sources: cli.EnvVars("YTPARTY_CONFIG"),
			},
		},
		Action: r.Setup,
	}
}

// Setup writes a configuration file when none exists, then opens the configured store.
//
// Opening a SQLite store runs its migrations; opening a Redis store checks the connection.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
	}

	r.logger.Info("initializing storage", "driver", config.Storage.Driver, "path", config.Storage.Path)

	s, err := store.Open(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer s.Close()

	if _, err := s.Get(store.SessionKey); err != nil && !errors.Is(err, shared.ErrKeyNotFound) {
		return fmt.Errorf("storage check failed: %w", err)
	}

	r.logger.Infof("setup complete for %s storage", config.Storage.Driver)
	r.writePlain("%s\n", r.palette.OK("✓ Setup complete"))
	return r.writePlain("Config: %s\nStorage: %s\n", configPath, config.Storage.Driver)
}
