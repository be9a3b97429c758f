package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrandFolder(t *testing.T) {
	tests := []struct {
		brand    string
		expected string
	}{
		{"ADIDAS", "adidas"},
		{"TOMMY HILFIGER", "tommy_hilfiger"},
		{" GUESS by MARCIANO ", "guess_by_marciano"},
		{"DOLCE & GABBANA", "dolce_e_gabbana"},
		{"N°21", "n21"},
		{"A.P.C.", "apc"},
	}

	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			assert.Equal(t, tt.expected, BrandFolder(tt.brand))
		})
	}
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"jpg", "https://x.com/a/b.jpg", ".jpg"},
		{"png with query", "https://x.com/files/b.png?v=123&width=800", ".png"},
		{"webp", "https://cdn.x.com/p/IMG_01.webp#zoom", ".webp"},
		{"no extension", "https://x.com/image/12345", ".jpg"},
		{"trailing dot", "https://x.com/image.", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtensionFromURL(tt.url))
		})
	}
}

func TestNewUploadTarget(t *testing.T) {
	first := NewUploadTarget("/images", "THE NORTH FACE", "NF0A3", 1, "https://x.com/a.jpg")
	assert.Equal(t, "/images/the_north_face", first.RemoteDir)
	assert.Equal(t, "NF0A3.jpg", first.Filename)
	assert.Equal(t, "/images/the_north_face/NF0A3.jpg", first.Path())

	second := NewUploadTarget("/images", "THE NORTH FACE", "NF0A3", 2, "https://x.com/b.png?w=1")
	assert.Equal(t, "NF0A3_2.png", second.Filename)

	slashed := NewUploadTarget("/images", "VANS", " VN/0A3 ", 1, "https://x.com/a.jpg")
	assert.Equal(t, "VN-0A3.jpg", slashed.Filename)

	again := NewUploadTarget("/images", "THE NORTH FACE", "NF0A3", 2, "https://x.com/b.png?w=1")
	assert.Equal(t, second, again)
}

func TestCatalogRowIsValid(t *testing.T) {
	assert.True(t, CatalogRow{SKU: "X1", Brand: "VANS"}.IsValid())
	assert.False(t, CatalogRow{SKU: " ", Brand: "VANS"}.IsValid())
	assert.False(t, CatalogRow{SKU: "X1"}.IsValid())
}

func TestStateIsTerminal(t *testing.T) {
	assert.True(t, StateUploaded.IsTerminal())
	assert.True(t, StateSkippedUnresolved.IsTerminal())
	assert.True(t, StateSkippedNoImages.IsTerminal())
	assert.True(t, StateSkippedFetchFailed.IsTerminal())
	assert.True(t, StateUploadFailed.IsTerminal())
	assert.False(t, StateJSONLookup.IsTerminal())
	assert.False(t, StatePageFetched.IsTerminal())
}
