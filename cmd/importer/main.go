package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"camisfut-storefront/internal/config"
	"camisfut-storefront/internal/db"
	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/importer"
	"camisfut-storefront/internal/logging"
	overlayrepo "camisfut-storefront/internal/repository/overlay"
	adminsvc "camisfut-storefront/internal/service/admin"
)

func main() {
	var (
		filePath string
		format   string
		export   bool
	)
	flag.StringVar(&filePath, "file", "", "CSV or JSON file to import, or the export target")
	flag.StringVar(&format, "format", "csv", "file format: csv or json")
	flag.BoolVar(&export, "export", false, "write the current overlay instead of importing")
	flag.Parse()

	if filePath == "" || (format != "csv" && format != "json") {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("cmd", "importer")
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := overlayrepo.NewPostgres(pool, logger)
	start := time.Now()

	var count int
	if export {
		count, err = exportOverlay(ctx, repo, filePath, format)
	} else {
		count, err = importOverlay(ctx, repo, filePath, format)
	}
	if err != nil {
		logger.Error("overlay transfer failed", "file", filePath, "error", err)
		os.Exit(1)
	}
	logger.Info("overlay transfer done", "file", filePath, "export", export, "count", count,
		"duration", time.Since(start).Truncate(time.Millisecond).String())
}

func importOverlay(ctx context.Context, repo overlayrepo.Repository, path, format string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if format == "csv" {
		return importer.NewCSVImporter(f, repo).Run(ctx)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}
	return adminsvc.New(repo, nil, nil, "").Import(ctx, data)
}

func exportOverlay(ctx context.Context, repo overlayrepo.Repository, path, format string) (int, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if format == "json" {
		data, err := adminsvc.New(repo, nil, nil, "").Export(ctx)
		if err != nil {
			return 0, err
		}
		_, err = f.Write(data)
		return len(entries), err
	}

	products := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		p, err := e.Product()
		if err != nil {
			return 0, err
		}
		products = append(products, p)
	}
	return len(products), importer.ExportCSV(f, products)
}
