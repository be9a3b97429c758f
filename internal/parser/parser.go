package parser

import (
	"errors"
	"net/url"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/models"
)

var (
	ErrNoProductLink = errors.New("no product link found")
	ErrInvalidPage   = errors.New("invalid page URL")
)

type Parser interface {
	ExtractImages(html string, pageURL string) ([]models.ImageCandidate, error)
	PickProductLink(html string, pageURL string) (string, error)
}

// resolveURL makes ref absolute against base. Empty, fragment-only and
// non-HTTP references resolve to "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
