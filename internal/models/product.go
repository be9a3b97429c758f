package models

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// CatalogRow is one record of the input catalog.
type CatalogRow struct {
	SKU   string `json:"sku"`
	Brand string `json:"brand"`
}

func (r CatalogRow) IsValid() bool {
	return strings.TrimSpace(r.SKU) != "" && strings.TrimSpace(r.Brand) != ""
}

type SearchCandidate struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
	URL    string `json:"url"`
	Score  int    `json:"score"`
}

type ImageSource string

const (
	SourceOGMeta       ImageSource = "og_meta"
	SourceJSONLD       ImageSource = "json_ld"
	SourceDOMHeuristic ImageSource = "dom_heuristic"
)

type ImageCandidate struct {
	URL           string      `json:"url"`
	EstimatedArea int         `json:"estimated_area"`
	Source        ImageSource `json:"source"`
}

const DefaultImageExt = ".jpg"

// UploadTarget is the deterministic destination of one uploaded image.
type UploadTarget struct {
	RemoteDir string `json:"remote_dir"`
	Filename  string `json:"filename"`
}

func (t UploadTarget) Path() string {
	return path.Join(t.RemoteDir, t.Filename)
}

// NewUploadTarget derives the destination of the n-th uploaded image
// (1-based) for a SKU. Ordinal 1 is {sku}{ext}, later ones {sku}_{n}{ext}.
func NewUploadTarget(baseDir, brand, sku string, ordinal int, imageURL string) UploadTarget {
	ext := ExtensionFromURL(imageURL)
	base := skuFilenameReplacer.Replace(strings.TrimSpace(sku))
	name := base + ext
	if ordinal > 1 {
		name = fmt.Sprintf("%s_%d%s", base, ordinal, ext)
	}

	return UploadTarget{
		RemoteDir: path.Join(baseDir, BrandFolder(brand)),
		Filename:  name,
	}
}

var skuFilenameReplacer = strings.NewReplacer("/", "-", "\\", "-")

var brandFolderReplacer = strings.NewReplacer(
	" ", "_",
	"&", "e",
	"°", "",
	".", "",
)

func BrandFolder(brand string) string {
	return brandFolderReplacer.Replace(strings.ToLower(strings.TrimSpace(brand)))
}

// ExtensionFromURL returns the path suffix of an image URL, ".jpg" when absent.
func ExtensionFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}

	ext := path.Ext(p)
	if ext == "" || ext == "." {
		return DefaultImageExt
	}
	return ext
}
