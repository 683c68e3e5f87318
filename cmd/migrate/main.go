package main

import (
	"context"
	"flag"
	"os"

	"camisfut-storefront/internal/config"
	"camisfut-storefront/internal/db"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/migrate"
)

func main() {
	var (
		down    bool
		steps   int
		version bool
	)
	flag.BoolVar(&down, "down", false, "roll back every applied migration")
	flag.IntVar(&steps, "steps", 0, "apply n migrations, negative to roll back")
	flag.BoolVar(&version, "version", false, "print the applied schema version and exit")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("cmd", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	switch {
	case version:
		v, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Error("read version", "error", err)
			os.Exit(1)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
	case down:
		if err := migrate.Down(ctx, pool); err != nil {
			logger.Error("roll back migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations rolled back")
	case steps != 0:
		if err := migrate.Steps(ctx, pool, steps); err != nil {
			logger.Error("step migrations", "steps", steps, "error", err)
			os.Exit(1)
		}
		logger.Info("migrations stepped", "steps", steps)
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Error("apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}
}
