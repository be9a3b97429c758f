package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/maltedev/brand-image-scraper/internal/blobstore"
	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/maltedev/brand-image-scraper/internal/ratelimit"
	"github.com/maltedev/brand-image-scraper/internal/scraper"
)

// Recorder receives every row outcome in input order.
type Recorder interface {
	Add(outcome models.Outcome)
}

type Source struct {
	Dir      string
	Filename string
}

// Driver walks the catalog one row at a time.
type Driver struct {
	store     blobstore.Store
	processor scraper.Processor
	limiter   ratelimit.RateLimiter
	recorder  Recorder
	source    Source
	logger    *slog.Logger
}

func NewDriver(
	store blobstore.Store,
	processor scraper.Processor,
	limiter ratelimit.RateLimiter,
	recorder Recorder,
	source Source,
	logger *slog.Logger,
) *Driver {
	return &Driver{
		store:     store,
		processor: processor,
		limiter:   limiter,
		recorder:  recorder,
		source:    source,
		logger:    logger,
	}
}

// Load fetches and decodes the catalog from the store. Any error here is
// fatal for the run.
func (d *Driver) Load(ctx context.Context) ([]models.CatalogRow, error) {
	if err := d.store.ChangeDir(ctx, d.source.Dir); err != nil {
		return nil, fmt.Errorf("failed to open input dir %s: %w", d.source.Dir, err)
	}

	data, err := d.store.ReadFile(ctx, d.source.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", path.Join(d.source.Dir, d.source.Filename), err)
	}

	rows, err := ParseRows(data)
	if err != nil {
		return nil, err
	}

	d.logger.Info("catalog loaded",
		"file", path.Join(d.source.Dir, d.source.Filename),
		"rows", len(rows),
		"bytes", len(data))

	return rows, nil
}

// Run loads the catalog and processes every row. Per-row failures end up in
// the recorder; only load errors and cancellation are returned.
func (d *Driver) Run(ctx context.Context) error {
	rows, err := d.Load(ctx)
	if err != nil {
		return err
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("run cancelled", "processed", i, "total", len(rows))
			return err
		}

		outcome := d.processor.Process(ctx, row)
		if !outcome.State.IsTerminal() {
			d.logger.Error("row left in non-terminal state", "sku", outcome.SKU, "state", outcome.State)
		}
		d.recorder.Add(outcome)

		d.logger.Info("row finished",
			"row", i+1,
			"total", len(rows),
			"sku", outcome.SKU,
			"state", outcome.State)

		if i < len(rows)-1 {
			if err := d.limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}
