package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	client := services.NewAppwriteClient(config.Appwrite.Endpoint, config.Appwrite.ProjectID, &http.Client{Timeout: 30 * time.Second})
	catalog := services.NewTMDBService(config.TMDB.AccessToken, config.TMDB.RateLimit, nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Catalog:    catalog,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "reelist",
		Usage:    "Browse movies and keep a synced watchlist from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
