package search

import (
	"context"

	"github.com/maltedev/brand-image-scraper/internal/fetch"
	"github.com/maltedev/brand-image-scraper/internal/models"
)

// LinkPicker picks a product page link out of a search result page.
type LinkPicker interface {
	PickProductLink(html string, pageURL string) (string, error)
}

// HTMLStrategy fetches a storefront search page and takes the first product
// looking anchor. Generic and brand-specific URL templates only differ in
// searchURL.
type HTMLStrategy struct {
	name      string
	fetcher   fetch.Fetcher
	picker    LinkPicker
	searchURL func(sku string) (string, error)
}

func NewHTMLStrategy(name string, f fetch.Fetcher, picker LinkPicker, searchURL func(sku string) (string, error)) *HTMLStrategy {
	return &HTMLStrategy{
		name:      name,
		fetcher:   f,
		picker:    picker,
		searchURL: searchURL,
	}
}

func (s *HTMLStrategy) Name() string {
	return s.name
}

// SearchURL exposes the page the strategy will fetch, for logging.
func (s *HTMLStrategy) SearchURL(sku string) (string, error) {
	return s.searchURL(sku)
}

func (s *HTMLStrategy) Search(ctx context.Context, sku string) ([]models.SearchCandidate, error) {
	pageURL, err := s.searchURL(sku)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	link, err := s.picker.PickProductLink(string(body), pageURL)
	if err != nil {
		return nil, err
	}

	return []models.SearchCandidate{{URL: link, Score: 1}}, nil
}

func (s *HTMLStrategy) PickBest(candidates []models.SearchCandidate, sku string) (string, bool) {
	for _, c := range candidates {
		if c.URL != "" {
			return c.URL, true
		}
	}
	return "", false
}
