package search

import (
	"context"
	"errors"

	"github.com/maltedev/brand-image-scraper/internal/models"
)

var ErrNoMatch = errors.New("no matching product")

// Strategy finds product page candidates for a SKU and picks the best one.
// Search builds its own query from the SKU.
type Strategy interface {
	Name() string
	Search(ctx context.Context, sku string) ([]models.SearchCandidate, error)
	PickBest(candidates []models.SearchCandidate, sku string) (string, bool)
}

// Resolve runs one strategy end to end. Transport, decode and empty results
// all surface as an error the caller treats as "no match".
func Resolve(ctx context.Context, s Strategy, sku string) (string, error) {
	candidates, err := s.Search(ctx, sku)
	if err != nil {
		return "", err
	}

	url, ok := s.PickBest(candidates, sku)
	if !ok {
		return "", ErrNoMatch
	}
	return url, nil
}
