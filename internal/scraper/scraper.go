package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/maltedev/brand-image-scraper/internal/search"
)

var (
	ErrUnresolved = errors.New("product page not found")
	ErrNoImages   = errors.New("no product images found")
)

// Processor resolves one catalog row to uploaded images. Per-row failures
// are reported in the Outcome, never returned.
type Processor interface {
	Process(ctx context.Context, row models.CatalogRow) models.Outcome
}

type Options struct {
	ImageBaseDir string
	Weights      search.Weights
}
