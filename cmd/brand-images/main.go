package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/maltedev/brand-image-scraper/internal/blobstore"
	"github.com/maltedev/brand-image-scraper/internal/brands"
	"github.com/maltedev/brand-image-scraper/internal/catalog"
	"github.com/maltedev/brand-image-scraper/internal/config"
	"github.com/maltedev/brand-image-scraper/internal/fetch"
	"github.com/maltedev/brand-image-scraper/internal/parser"
	"github.com/maltedev/brand-image-scraper/internal/ratelimit"
	"github.com/maltedev/brand-image-scraper/internal/report"
	"github.com/maltedev/brand-image-scraper/internal/scraper"
	"github.com/maltedev/brand-image-scraper/internal/search"
	"github.com/maltedev/brand-image-scraper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	runID := uuid.NewString()
	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format).With("run_id", runID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := run(ctx, cfg, runID, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) error {
	started := time.Now()

	registry := brands.Default()
	if err := registry.ApplyDomainOverrides(cfg.Brands.Domains); err != nil {
		return fmt.Errorf("invalid BRAND_DOMAINS: %w", err)
	}
	limiter := ratelimit.NewFixedDelay(cfg.Scraper.RequestDelay)

	logger.Info("starting brand image scraper",
		"store", cfg.Store.Type,
		"input", cfg.Input.Dir+"/"+cfg.Input.Filename,
		"brands", registry.Len(),
		"delay", limiter.Delay())

	store, err := newStore(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	pageParser := parser.NewPageParser(cfg.Scoring.MinImageArea, cfg.Scoring.ImagePathBonus)

	orchestrator := scraper.NewOrchestrator(
		registry,
		fetch.NewClient(cfg.Scraper.RequestTimeout, cfg.Scraper.UserAgent, logger),
		pageParser,
		store,
		limiter,
		scraper.Options{
			ImageBaseDir: cfg.Output.ImageBaseDir,
			Weights: search.Weights{
				HandleContainsSKU: cfg.Scoring.HandleContainsSKU,
				SKUContainsHandle: cfg.Scoring.SKUContainsHandle,
				TitleContainsSKU:  cfg.Scoring.TitleContainsSKU,
				TokenInTitle:      cfg.Scoring.TokenInTitle,
				TokenInHandle:     cfg.Scoring.TokenInHandle,
			},
		},
		logger,
	)

	ledger := report.NewLedger(runID, afero.NewOsFs())

	driver := catalog.NewDriver(
		store,
		orchestrator,
		limiter,
		ledger,
		catalog.Source{Dir: cfg.Input.Dir, Filename: cfg.Input.Filename},
		logger,
	)

	runErr := driver.Run(ctx)

	ledger.Render(os.Stdout)
	if cfg.Report.Path != "" {
		if err := ledger.Save(cfg.Report.Path); err != nil {
			logger.Warn("failed to save report", "path", cfg.Report.Path, "error", err)
		} else {
			logger.Info("report saved", "path", cfg.Report.Path)
		}
	}

	stats := ledger.Stats()
	logger.Info("run finished",
		"rows", stats["total"],
		"images", stats["images"],
		"delays", limiter.Waits(),
		"duration", time.Since(started).Round(time.Second))

	return runErr
}

func newStore(cfg config.StoreConfig, logger *slog.Logger) (blobstore.Store, error) {
	switch cfg.Type {
	case "ftp":
		return blobstore.NewFTPStore(blobstore.FTPOptions{
			Addr:        cfg.FTPAddr(),
			User:        cfg.User,
			Password:    cfg.Password,
			DialTimeout: cfg.DialTimeout,
		}, logger), nil
	case "local":
		return blobstore.NewLocalStore(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
