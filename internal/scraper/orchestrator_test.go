package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/brand-image-scraper/internal/blobstore"
	"github.com/maltedev/brand-image-scraper/internal/brands"
	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/maltedev/brand-image-scraper/internal/parser"
	"github.com/maltedev/brand-image-scraper/internal/ratelimit"
	"github.com/maltedev/brand-image-scraper/internal/search"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return []byte(args.String(0)), args.Error(1)
}

type failingStore struct {
	blobstore.Store
}

func (failingStore) WriteFile(ctx context.Context, name string, data []byte) error {
	return errors.New("552 quota exceeded")
}

const productPage = `<html><head></head><body>
<div class="product-gallery">
  <img src="/files/good.jpg" width="800" height="800">
  <img src="/files/logo.svg" width="800" height="800">
  <img src="/files/good2.png" width="600" height="600">
</div>
</body></html>`

const searchPage = `<html><body>
<a href="/it/products/sp-01"><img src="/thumb.jpg"></a>
</body></html>`

func testRegistry() *brands.Registry {
	return brands.NewRegistry(
		brands.Profile{Name: "GENERIC", Domain: "shop.example.com"},
		brands.Profile{
			Name:    "SUGGEST",
			Domain:  "suggest.example.com",
			Suggest: &brands.Suggest{Path: "/search/suggest.json"},
		},
	)
}

func newTestOrchestrator(f *mockFetcher, store blobstore.Store) *Orchestrator {
	return NewOrchestrator(
		testRegistry(),
		f,
		parser.NewPageParser(40000, 100000),
		store,
		ratelimit.NewFixedDelay(0),
		Options{ImageBaseDir: "/images", Weights: search.DefaultWeights()},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func expectGenericSearch(f *mockFetcher, sku string) {
	f.On("Get", "https://shop.example.com/search?q="+sku).Return(searchPage, nil)
	f.On("Get", "https://shop.example.com/it/products/sp-01").Return(productPage, nil)
}

func TestProcess_UnmappedBrandMakesNoRequests(t *testing.T) {
	f := new(mockFetcher)
	fs := afero.NewMemMapFs()
	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(fs))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "X1", Brand: "UNKNOWN BRAND"})

	assert.Equal(t, models.StateSkippedUnresolved, out.State)
	assert.NotEmpty(t, out.Error)
	f.AssertNotCalled(t, "Get", mock.Anything)
}

func TestProcess_UploadsInRankOrderWithoutGaps(t *testing.T) {
	f := new(mockFetcher)
	expectGenericSearch(f, "SKU")
	f.On("Get", "https://shop.example.com/files/good.jpg").Return("jpeg", nil)
	f.On("Get", "https://shop.example.com/files/good2.png").Return("png", nil)

	fs := afero.NewMemMapFs()
	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(fs))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	require.Equal(t, models.StateUploaded, out.State, out.Error)
	assert.Equal(t, "https://shop.example.com/it/products/sp-01", out.ProductURL)
	assert.Equal(t, string(brands.StrategyGenericHTML), out.Strategy)
	assert.Equal(t, []string{"/images/generic/SKU.jpg", "/images/generic/SKU_2.png"}, out.Uploaded)

	data, err := afero.ReadFile(fs, "/images/generic/SKU.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	f.AssertNotCalled(t, "Get", "https://shop.example.com/files/logo.svg")
}

func TestProcess_RerunOverwritesSameNames(t *testing.T) {
	f := new(mockFetcher)
	expectGenericSearch(f, "SKU")
	f.On("Get", "https://shop.example.com/files/good.jpg").Return("jpeg", nil)
	f.On("Get", "https://shop.example.com/files/good2.png").Return("png", nil)

	fs := afero.NewMemMapFs()
	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(fs))
	row := models.CatalogRow{SKU: "SKU", Brand: "GENERIC"}

	first := o.Process(context.Background(), row)
	second := o.Process(context.Background(), row)

	assert.Equal(t, first.Uploaded, second.Uploaded)

	files, err := afero.ReadDir(fs, "/images/generic")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestProcess_FailedImageDownloadDoesNotConsumeOrdinal(t *testing.T) {
	f := new(mockFetcher)
	expectGenericSearch(f, "SKU")
	f.On("Get", "https://shop.example.com/files/good.jpg").Return(nil, errors.New("timeout"))
	f.On("Get", "https://shop.example.com/files/good2.png").Return("png", nil)

	fs := afero.NewMemMapFs()
	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(fs))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	require.Equal(t, models.StateUploaded, out.State)
	assert.Equal(t, []string{"/images/generic/SKU.png"}, out.Uploaded)
}

func TestProcess_LogoOnlyPage(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", "https://shop.example.com/search?q=SKU").Return(searchPage, nil)
	f.On("Get", "https://shop.example.com/it/products/sp-01").Return(
		`<html><body><img src="/files/logo.png" width="900" height="900"></body></html>`, nil)

	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(afero.NewMemMapFs()))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	assert.Equal(t, models.StateSkippedNoImages, out.State)
	assert.Empty(t, out.Uploaded)
}

func TestProcess_ProductPageFetchFailure(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", "https://shop.example.com/search?q=SKU").Return(searchPage, nil)
	f.On("Get", "https://shop.example.com/it/products/sp-01").Return(nil, errors.New("503"))

	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(afero.NewMemMapFs()))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	assert.Equal(t, models.StateSkippedFetchFailed, out.State)
	assert.Equal(t, "https://shop.example.com/it/products/sp-01", out.ProductURL)
}

func TestProcess_NoSearchResult(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", "https://shop.example.com/search?q=SKU").Return(`<html><body>nothing</body></html>`, nil)

	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(afero.NewMemMapFs()))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	assert.Equal(t, models.StateSkippedUnresolved, out.State)
	assert.Contains(t, out.Error, ErrUnresolved.Error())
}

func TestProcess_SuggestHit(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", "https://suggest.example.com/search/suggest.json?q=D4562").Return(
		`{"resources":{"results":{"products":[{"title":"Jacket D4562","handle":"d4562-jacket"}]}}}`, nil)
	f.On("Get", "https://suggest.example.com/products/d4562-jacket").Return(productPage, nil)
	f.On("Get", "https://suggest.example.com/files/good.jpg").Return("jpeg", nil)
	f.On("Get", "https://suggest.example.com/files/good2.png").Return("png", nil)

	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(afero.NewMemMapFs()))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "D4562", Brand: "suggest"})

	require.Equal(t, models.StateUploaded, out.State, out.Error)
	assert.Equal(t, string(brands.StrategyJSONSuggest), out.Strategy)
	f.AssertNotCalled(t, "Get", "https://suggest.example.com/search?q=D4562")
}

func TestProcess_SuggestMissFallsBackToHTML(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", "https://suggest.example.com/search/suggest.json?q=D4562").Return(
		`{"resources":{"results":{"products":[]}}}`, nil)
	f.On("Get", "https://suggest.example.com/search?q=D4562").Return(searchPage, nil)
	f.On("Get", "https://suggest.example.com/it/products/sp-01").Return(productPage, nil)
	f.On("Get", "https://suggest.example.com/files/good.jpg").Return("jpeg", nil)
	f.On("Get", "https://suggest.example.com/files/good2.png").Return("png", nil)

	o := newTestOrchestrator(f, blobstore.NewLocalStoreFs(afero.NewMemMapFs()))

	out := o.Process(context.Background(), models.CatalogRow{SKU: "D4562", Brand: "SUGGEST"})

	require.Equal(t, models.StateUploaded, out.State, out.Error)
	assert.Equal(t, string(brands.StrategyGenericHTML), out.Strategy)
}

func TestProcess_StoreWriteFailure(t *testing.T) {
	f := new(mockFetcher)
	expectGenericSearch(f, "SKU")
	f.On("Get", "https://shop.example.com/files/good.jpg").Return("jpeg", nil)

	store := failingStore{Store: blobstore.NewLocalStoreFs(afero.NewMemMapFs())}
	o := newTestOrchestrator(f, store)

	out := o.Process(context.Background(), models.CatalogRow{SKU: "SKU", Brand: "GENERIC"})

	assert.Equal(t, models.StateUploadFailed, out.State)
	assert.Contains(t, out.Error, "552")
	assert.Empty(t, out.Uploaded)
}
