package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var productPathFragments = []string{"/product", "/prod", "/p/", "/item", "/art"}

// PickProductLink picks the most likely product page out of a search result
// page: the first anchor wrapping an image, else the first anchor whose path
// looks like a product detail page.
func (p *PageParser) PickProductLink(html string, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	anchors := doc.Find("a[href]")

	var found string
	anchors.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.Find("img").Length() == 0 {
			return true
		}
		href, _ := s.Attr("href")
		found = resolveURL(base, href)
		return found == ""
	})
	if found != "" {
		return found, nil
	}

	anchors.EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		full := resolveURL(base, href)
		if full == "" {
			return true
		}
		u, err := url.Parse(full)
		if err != nil {
			return true
		}
		if containsAny(strings.ToLower(u.Path), productPathFragments) {
			found = full
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	return "", ErrNoProductLink
}
