// Package main is the entry point for the books API server.
// It wires together configuration, the store, and the HTTP router.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aoideee/books-api/internal/data"
)

// appVersion is the current version of the API, shown in logs and the healthcheck.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig
	logger *slog.Logger
	models data.Models
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := loadDotEnv(); err != nil {
		logger.Error("reading .env", "error", err)
		os.Exit(1)
	}

	settings, displayVersion, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", appVersion)
		os.Exit(0)
	}

	models, err := openStore(settings, logger)
	if err != nil {
		logger.Error(err.Error(), "driver", settings.db.Driver)
		os.Exit(1)
	}
	defer models.Close()

	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: models,
	}

	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		models.Close()
		os.Exit(1)
	}
}

// openStore connects to the configured store within 5 seconds and seeds
// it when asked to.
func openStore(settings serverConfig, logger *slog.Logger) (data.Models, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	models, err := data.Open(ctx, settings.db)
	if err != nil {
		return data.Models{}, err
	}
	logger.Info("store connection established", "driver", settings.db.Driver)

	if settings.seed {
		n, err := data.Seed(ctx, models.Books)
		if err != nil {
			models.Close()
			return data.Models{}, err
		}
		logger.Info("store seeded", "books", n)
	}

	return models, nil
}
