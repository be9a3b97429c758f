package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/fetch"
	"github.com/maltedev/brand-image-scraper/internal/models"
)

// Weights are the suggest match scores. The defaults are empirical.
type Weights struct {
	HandleContainsSKU int
	SKUContainsHandle int
	TitleContainsSKU  int
	TokenInTitle      int
	TokenInHandle     int
}

func DefaultWeights() Weights {
	return Weights{
		HandleContainsSKU: 100,
		SKUContainsHandle: 80,
		TitleContainsSKU:  40,
		TokenInTitle:      2,
		TokenInHandle:     1,
	}
}

// MatchFunc scores one suggest candidate against the SKU and the query that
// produced it.
type MatchFunc func(w Weights, c models.SearchCandidate, sku, query string) int

// ScoreCandidate is the default MatchFunc. SKU containment tiers are
// exclusive; query tokens add on top.
func ScoreCandidate(w Weights, c models.SearchCandidate, sku, query string) int {
	nsku := normalize(sku)
	handle := normalize(c.Handle)
	title := normalize(c.Title)

	score := 0
	switch {
	case nsku == "":
	case handle != "" && strings.Contains(handle, nsku):
		score += w.HandleContainsSKU
	case handle != "" && strings.Contains(nsku, handle):
		score += w.SKUContainsHandle
	case strings.Contains(title, nsku):
		score += w.TitleContainsSKU
	}

	lowerTitle := strings.ToLower(c.Title)
	lowerHandle := strings.ToLower(c.Handle)
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lowerTitle, token) {
			score += w.TokenInTitle
		}
		if strings.Contains(lowerHandle, token) {
			score += w.TokenInHandle
		}
	}

	return score
}

// normalize keeps lowercase ASCII letters and digits only.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SuggestStrategy queries a storefront typeahead endpoint answering with
// resources.results.products[].
type SuggestStrategy struct {
	fetcher  fetch.Fetcher
	baseURL  string
	endpoint func(query string) (string, error)
	query    func(sku string) string
	match    MatchFunc
	weights  Weights
}

type SuggestOptions struct {
	BaseURL  string
	Endpoint func(query string) (string, error)
	Query    func(sku string) string
	Match    MatchFunc
	Weights  Weights
}

func NewSuggestStrategy(f fetch.Fetcher, opts SuggestOptions) *SuggestStrategy {
	match := opts.Match
	if match == nil {
		match = ScoreCandidate
	}
	return &SuggestStrategy{
		fetcher:  f,
		baseURL:  opts.BaseURL,
		endpoint: opts.Endpoint,
		query:    opts.Query,
		match:    match,
		weights:  opts.Weights,
	}
}

func (s *SuggestStrategy) Name() string {
	return "json_suggest_search"
}

func (s *SuggestStrategy) Search(ctx context.Context, sku string) ([]models.SearchCandidate, error) {
	endpoint, err := s.endpoint(s.query(sku))
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	candidates, err := ParseSuggestResponse(body, s.baseURL)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// PickBest returns the first candidate with the highest score. Candidates
// without a URL are never picked.
func (s *SuggestStrategy) PickBest(candidates []models.SearchCandidate, sku string) (string, bool) {
	q := s.query(sku)

	best, bestScore := -1, -1
	for i := range candidates {
		if candidates[i].URL == "" {
			continue
		}
		candidates[i].Score = s.match(s.weights, candidates[i], sku, q)
		if candidates[i].Score > bestScore {
			best = i
			bestScore = candidates[i].Score
		}
	}

	if best < 0 {
		return "", false
	}
	return candidates[best].URL, true
}

// ParseSuggestResponse decodes a typeahead payload without trusting its
// shape: every level is optional and a mismatch yields no candidates.
// Product URLs are made absolute against baseURL; a product without url
// but with handle maps to /products/{handle}.
func ParseSuggestResponse(body []byte, baseURL string) ([]models.SearchCandidate, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode suggest response: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	products, _ := dig(payload, "resources", "results", "products").([]any)

	candidates := make([]models.SearchCandidate, 0, len(products))
	for _, item := range products {
		product, ok := item.(map[string]any)
		if !ok {
			continue
		}

		c := models.SearchCandidate{
			Title:  stringField(product, "title"),
			Handle: stringField(product, "handle"),
		}

		ref := stringField(product, "url")
		if ref == "" && c.Handle != "" {
			ref = "/products/" + c.Handle
		}
		if ref != "" {
			if u, err := url.Parse(ref); err == nil {
				c.URL = base.ResolveReference(u).String()
			}
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
