package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/brand-image-scraper/internal/models"
	"github.com/titanous/json5"
)

var (
	badImageKeywords = []string{
		".svg",
		"logo",
		"placeholder",
		"default",
		"no-image", "no_image", "noimage",
		"spinner",
		"loader",
		"banner",
		"hero",
		"header",
		"footer",
		"icon",
		"sprite",
		"background", "bg_",
		"dummy",
	}

	containerHints  = []string{"product", "gallery", "media"}
	productPathHint = []string{"product", "catalog", "item", "file"}
	bonusPaths      = []string{"/products/", "/files/"}
)

const maxDimension = 100000

type PageParser struct {
	minArea   int
	pathBonus int
}

func NewPageParser(minArea, pathBonus int) *PageParser {
	return &PageParser{
		minArea:   minArea,
		pathBonus: pathBonus,
	}
}

// IsBadImage reports whether an image URL looks like layout chrome rather
// than a product photo. Case-insensitive substring match on the whole URL.
func IsBadImage(imageURL string) bool {
	return containsAny(strings.ToLower(imageURL), badImageKeywords)
}

// ExtractImages returns the product photos of a page, best first: og:image,
// then JSON-LD images, then a size-scored sweep of <img> elements.
// Duplicates keep the position of their first discovery.
func (p *PageParser) ExtractImages(html string, pageURL string) ([]models.ImageCandidate, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &collector{base: base, seen: make(map[string]bool)}

	if content, ok := doc.Find(`meta[property="og:image"], meta[name="og:image"]`).First().Attr("content"); ok {
		c.add(content, models.SourceOGMeta, 0)
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		for _, img := range jsonLDImages(s.Text()) {
			c.add(img, models.SourceJSONLD, 0)
		}
	})

	for _, img := range p.scoreImages(doc, base) {
		c.add(img.URL, models.SourceDOMHeuristic, img.EstimatedArea)
	}

	return c.images, nil
}

type collector struct {
	base   *url.URL
	seen   map[string]bool
	images []models.ImageCandidate
}

func (c *collector) add(ref string, source models.ImageSource, area int) {
	abs := resolveURL(c.base, ref)
	if abs == "" || c.seen[abs] || IsBadImage(abs) {
		return
	}
	c.seen[abs] = true
	c.images = append(c.images, models.ImageCandidate{
		URL:           abs,
		EstimatedArea: area,
		Source:        source,
	})
}

type scoredImage struct {
	models.ImageCandidate
	score int
}

// scoreImages ranks <img> elements. Elements whose class hints at a product
// gallery narrow the sweep to their descendants; an <img> is never its own
// container.
func (p *PageParser) scoreImages(doc *goquery.Document, base *url.URL) []models.ImageCandidate {
	containers := doc.Find("[class]").Not("img").FilterFunction(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return containsAny(strings.ToLower(class), containerHints)
	})

	imgs := doc.Find("img")
	if containers.Length() > 0 {
		imgs = containers.Find("img")
	}

	var scored []scoredImage
	imgs.Each(func(i int, s *goquery.Selection) {
		src := imageSource(s)
		abs := resolveURL(base, src)
		if abs == "" {
			return
		}

		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		path := strings.ToLower(u.Path)
		hinted := containsAny(path, productPathHint)

		area := attrInt(s, "width") * attrInt(s, "height")
		if area == 0 && hinted {
			area = p.minArea
		}
		if area < p.minArea && !hinted {
			return
		}

		score := area
		if containsAny(path, bonusPaths) {
			score += p.pathBonus
		}

		scored = append(scored, scoredImage{
			ImageCandidate: models.ImageCandidate{URL: abs, EstimatedArea: area},
			score:          score,
		})
	})

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]models.ImageCandidate, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.ImageCandidate)
	}
	return out
}

// imageSource prefers src, then lazy-loading attributes; srcset style values
// contribute their first URL.
func imageSource(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-srcset", "srcset"} {
		v, ok := s.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" || strings.HasPrefix(v, "data:") {
			continue
		}
		if strings.HasSuffix(attr, "srcset") {
			v = firstSrcsetURL(v)
		}
		if v != "" {
			return v
		}
	}
	return ""
}

func firstSrcsetURL(srcset string) string {
	for _, candidate := range strings.Split(srcset, ",") {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// attrInt reads a declared pixel dimension. Values outside
// [0, maxDimension] count as unspecified.
func attrInt(s *goquery.Selection, name string) int {
	v, _ := s.Attr(name)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > maxDimension {
		return 0
	}
	return n
}

// jsonLDImages decodes one structured-data block and returns every value
// stored under an "image" key of its top-level objects (or @graph items).
// Malformed blocks yield nothing.
func jsonLDImages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		if err := json5.Unmarshal([]byte(raw), &data); err != nil {
			return nil
		}
	}

	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch node := v.(type) {
		case []any:
			for _, item := range node {
				walk(item)
			}
		case map[string]any:
			if img, ok := node["image"]; ok {
				out = append(out, imageValues(img)...)
			}
			if graph, ok := node["@graph"].([]any); ok {
				walk(graph)
			}
		}
	}
	walk(data)

	return out
}

func imageValues(v any) []string {
	switch img := v.(type) {
	case string:
		return []string{img}
	case []any:
		var out []string
		for _, item := range img {
			out = append(out, imageValues(item)...)
		}
		return out
	case map[string]any:
		for _, k := range []string{"url", "contentUrl"} {
			if s, ok := img[k].(string); ok {
				return []string{s}
			}
		}
	}
	return nil
}
