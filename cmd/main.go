package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/continuum/internal/gateway"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	api := gateway.NewAPIService(config.Gateway.BaseURL, gateway.NewHTTPClient(ctx, config.Gateway.APIToken))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		API:        api,
		Gateway:    gateway.NewClient(api, logger),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "continuum",
		Usage:    "Build tempo- and key-aware DJ mixes from Spotify playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrAuthCancelled) {
			logger.Warn("authorization cancelled")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
