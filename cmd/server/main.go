// Package main is the entry point for the tweetfeed API server.
//
// main stays minimal:
// 1. Read configuration (YAML file + environment variables)
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in internal/ packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/sakif/tweetfeed/internal/config"
	"github.com/sakif/tweetfeed/internal/server"
)

func main() {
	// CONFIG_PATH selects the YAML file; a missing file means defaults + env.
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration",
			slog.String("path", configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Sanity.Token == "" && cfg.Store.Backend == config.BackendSanity {
		logger.Info("SANITY_TOKEN not set, querying public dataset only")
	}

	srv, err := server.New(context.Background(), *cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger from config.
// Log levels (from least to most severe): Debug → Info → Warn → Error
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
