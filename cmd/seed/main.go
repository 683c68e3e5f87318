package main

import (
	"context"
	"os"

	"camisfut-storefront/internal/config"
	"camisfut-storefront/internal/db"
	"camisfut-storefront/internal/logging"
	overlayrepo "camisfut-storefront/internal/repository/overlay"
	"camisfut-storefront/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("cmd", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, overlayrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Error("seed apply", "error", err)
		os.Exit(1)
	}
	logger.Info("seed applied", "jerseys", n)
}
