package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/brand-image-scraper/internal/blobstore"
	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/maltedev/brand-image-scraper/internal/ratelimit"
)

type fakeProcessor struct {
	seen   []models.CatalogRow
	cancel context.CancelFunc
}

func (p *fakeProcessor) Process(ctx context.Context, row models.CatalogRow) models.Outcome {
	p.seen = append(p.seen, row)
	if p.cancel != nil {
		p.cancel()
	}
	return models.Outcome{SKU: row.SKU, Brand: row.Brand, State: models.StateSkippedUnresolved}
}

type sliceRecorder struct {
	outcomes []models.Outcome
}

func (r *sliceRecorder) Add(outcome models.Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestDriver(t *testing.T, csv string, p *fakeProcessor, limiter ratelimit.RateLimiter) (*Driver, *sliceRecorder) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if csv != "" {
		require.NoError(t, afero.WriteFile(fs, "/input/prodotti.csv", []byte(csv), 0o644))
	}

	rec := &sliceRecorder{}
	d := NewDriver(
		blobstore.NewLocalStoreFs(fs),
		p,
		limiter,
		rec,
		Source{Dir: "/input", Filename: "prodotti.csv"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return d, rec
}

func TestDriver_ProcessesRowsInOrder(t *testing.T) {
	p := &fakeProcessor{}
	limiter := ratelimit.NewFixedDelay(0)
	d, rec := newTestDriver(t, "sku,brand\nA1,VANS\n,VANS\nB2,ADIDAS\nC3,X\n", p, limiter)

	require.NoError(t, d.Run(context.Background()))

	require.Len(t, rec.outcomes, 3)
	assert.Equal(t, "A1", rec.outcomes[0].SKU)
	assert.Equal(t, "B2", rec.outcomes[1].SKU)
	assert.Equal(t, "C3", rec.outcomes[2].SKU)
	assert.Equal(t, 2, limiter.Waits(), "delay between rows only")
}

func TestDriver_MissingColumnsAbortsBeforeRows(t *testing.T) {
	p := &fakeProcessor{}
	d, rec := newTestDriver(t, "code,name\nA1,VANS\n", p, ratelimit.NewFixedDelay(0))

	err := d.Run(context.Background())

	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Empty(t, p.seen)
	assert.Empty(t, rec.outcomes)
}

func TestDriver_MissingInputFile(t *testing.T) {
	p := &fakeProcessor{}
	d, _ := newTestDriver(t, "", p, ratelimit.NewFixedDelay(0))

	assert.Error(t, d.Run(context.Background()))
	assert.Empty(t, p.seen)
}

func TestDriver_CancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakeProcessor{cancel: cancel}
	d, rec := newTestDriver(t, "sku,brand\nA1,VANS\nB2,VANS\n", p, ratelimit.NewFixedDelay(0))

	err := d.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, rec.outcomes, 1)
}
