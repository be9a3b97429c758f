package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/blobstore"
	"github.com/maltedev/brand-image-scraper/internal/brands"
	"github.com/maltedev/brand-image-scraper/internal/fetch"
	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/maltedev/brand-image-scraper/internal/parser"
	"github.com/maltedev/brand-image-scraper/internal/ratelimit"
	"github.com/maltedev/brand-image-scraper/internal/search"
)

// Orchestrator drives one product through
// START → JSON_LOOKUP → HTML_FALLBACK → PAGE_FETCHED → IMAGES_EXTRACTED → UPLOADED,
// stopping early in one of the SKIPPED_* states.
type Orchestrator struct {
	brands  *brands.Registry
	fetcher fetch.Fetcher
	parser  parser.Parser
	store   blobstore.Store
	limiter ratelimit.RateLimiter
	opts    Options
	logger  *slog.Logger
}

func NewOrchestrator(
	registry *brands.Registry,
	f fetch.Fetcher,
	p parser.Parser,
	store blobstore.Store,
	limiter ratelimit.RateLimiter,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		brands:  registry,
		fetcher: f,
		parser:  p,
		store:   store,
		limiter: limiter,
		opts:    opts,
		logger:  logger,
	}
}

func (o *Orchestrator) Process(ctx context.Context, row models.CatalogRow) models.Outcome {
	sku := strings.TrimSpace(row.SKU)
	brand := strings.TrimSpace(row.Brand)
	out := models.Outcome{SKU: sku, Brand: brand, State: models.StateStart}
	log := o.logger.With("sku", sku, "brand", brand)

	log.Info("processing product")

	profile := o.brands.Lookup(brand)
	if profile.Strategy() == brands.StrategyNone {
		log.Warn("brand not mapped, extend the brand table")
		return skip(out, models.StateSkippedUnresolved, brands.ErrUnmappedBrand)
	}

	productURL, strategy, err := o.resolve(ctx, profile, sku, &out, log)
	if err != nil {
		log.Warn("no product page found", "error", err)
		return skip(out, models.StateSkippedUnresolved, err)
	}
	out.ProductURL = productURL
	out.Strategy = strategy
	log.Info("product resolved", "url", productURL, "strategy", strategy)

	if err := o.limiter.Wait(ctx); err != nil {
		return skip(out, models.StateSkippedFetchFailed, err)
	}

	page, err := o.fetcher.Get(ctx, productURL)
	if err != nil {
		log.Warn("product page fetch failed", "url", productURL, "error", err)
		return skip(out, models.StateSkippedFetchFailed, err)
	}
	out.State = models.StatePageFetched

	images, err := o.parser.ExtractImages(string(page), productURL)
	if err != nil {
		log.Warn("product page unreadable", "url", productURL, "error", err)
		return skip(out, models.StateSkippedNoImages, err)
	}
	if len(images) == 0 {
		log.Warn("no images on product page", "url", productURL)
		return skip(out, models.StateSkippedNoImages, ErrNoImages)
	}
	out.State = models.StateImagesExtracted
	log.Info("images extracted", "count", len(images))

	uploaded, err := o.upload(ctx, sku, brand, images, log)
	out.Uploaded = uploaded
	if err != nil {
		log.Error("upload failed", "error", err)
		return skip(out, models.StateUploadFailed, err)
	}

	out.State = models.StateUploaded
	log.Info("product done", "uploaded", len(uploaded))
	return out
}

// resolve tries the brand's suggest endpoint first, then its HTML search.
func (o *Orchestrator) resolve(ctx context.Context, profile brands.Profile, sku string, out *models.Outcome, log *slog.Logger) (string, string, error) {
	if profile.Strategy() == brands.StrategyJSONSuggest {
		out.State = models.StateJSONLookup

		suggest := search.NewSuggestStrategy(o.fetcher, search.SuggestOptions{
			BaseURL:  profile.BaseURL(),
			Endpoint: profile.SuggestURL,
			Query:    profile.SuggestQuery,
			Match:    profile.Suggest.Match,
			Weights:  o.opts.Weights,
		})

		log.Debug("suggest lookup", "query", profile.SuggestQuery(sku))
		url, err := search.Resolve(ctx, suggest, sku)
		if err == nil {
			return url, suggest.Name(), nil
		}
		log.Info("suggest lookup missed, falling back to HTML search", "error", err)
	}

	out.State = models.StateHTMLFallback

	if profile.HTMLStrategy() == brands.StrategyNone {
		return "", "", fmt.Errorf("%w: %s", brands.ErrUnmappedBrand, profile.Name)
	}

	html := search.NewHTMLStrategy(string(profile.HTMLStrategy()), o.fetcher, o.parser, profile.HTMLSearchURL)
	if searchURL, err := html.SearchURL(sku); err == nil {
		log.Info("searching product", "url", searchURL)
	}

	url, err := search.Resolve(ctx, html, sku)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	return url, html.Name(), nil
}

// upload stores images in rank order. Only stored images consume an
// ordinal, so filenames stay gap-free; a failed download skips the image,
// a failed store write abandons the row.
func (o *Orchestrator) upload(ctx context.Context, sku, brand string, images []models.ImageCandidate, log *slog.Logger) ([]string, error) {
	var uploaded []string
	dirReady := false

	for _, img := range images {
		if parser.IsBadImage(img.URL) || strings.EqualFold(models.ExtensionFromURL(img.URL), ".svg") {
			continue
		}

		log.Debug("downloading image", "url", img.URL)
		data, err := o.fetcher.Get(ctx, img.URL)
		if err != nil {
			log.Warn("image download failed", "url", img.URL, "error", err)
			continue
		}

		target := models.NewUploadTarget(o.opts.ImageBaseDir, brand, sku, len(uploaded)+1, img.URL)

		if !dirReady {
			if err := o.store.MakeDirAll(ctx, target.RemoteDir); err != nil {
				return uploaded, err
			}
			dirReady = true
		}

		if err := o.store.WriteFile(ctx, target.Path(), data); err != nil {
			return uploaded, err
		}

		uploaded = append(uploaded, target.Path())
		log.Info("image uploaded", "path", target.Path(), "source", img.Source)
	}

	return uploaded, nil
}

func skip(out models.Outcome, state models.State, err error) models.Outcome {
	out.State = state
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
