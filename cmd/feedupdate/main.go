package main

import (
	"context"
	"flag"
	"os"

	"github.com/ahfong-coder/fetch-orangenews/internal/app"
	"github.com/ahfong-coder/fetch-orangenews/internal/config"
	"github.com/ahfong-coder/fetch-orangenews/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (default: FEED_UPDATER_CONFIG env var)")
	output := flag.String("output", "", "path of the RSS feed file to update (overrides feed.output)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load(*configPath)
	if *output != "" {
		cfg.Feed.Output = *output
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		_ = application.Close()
		logger.Error("feed update failed", "error", err)
		os.Exit(1)
	}

	if err := application.Close(); err != nil {
		logger.Warn("shutdown cleanup failed", "error", err)
	}
}
