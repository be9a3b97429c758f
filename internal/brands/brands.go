package brands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/query"
	"github.com/maltedev/brand-image-scraper/internal/search"
)

var ErrUnmappedBrand = errors.New("brand has no domain mapping and no custom search")

type Strategy string

const (
	StrategyGenericHTML Strategy = "generic_html_search"
	StrategyJSONSuggest Strategy = "json_suggest_search"
	StrategyCustomHTML  Strategy = "custom_html_search"
	StrategyNone        Strategy = "unresolvable"
)

// Suggest describes a storefront typeahead endpoint.
type Suggest struct {
	Path   string
	Params map[string]string
	Query  query.Transform
	Match  search.MatchFunc
}

// Profile bundles everything needed to resolve one brand's products.
type Profile struct {
	Name   string
	Domain string
	Query  query.Transform

	// Suggest is tried first when set.
	Suggest *Suggest

	// SearchURL replaces the generic {domain}/search?q= template. It
	// receives BaseURL so domain overrides apply.
	SearchURL func(baseURL, sku string) string
}

// Strategy reports the first strategy the orchestrator will try.
func (p Profile) Strategy() Strategy {
	switch {
	case p.Suggest != nil && p.Domain != "":
		return StrategyJSONSuggest
	case p.SearchURL != nil && p.Domain != "":
		return StrategyCustomHTML
	case p.Domain != "":
		return StrategyGenericHTML
	default:
		return StrategyNone
	}
}

// HTMLStrategy is the strategy used once the suggest lookup missed.
func (p Profile) HTMLStrategy() Strategy {
	switch {
	case p.SearchURL != nil && p.Domain != "":
		return StrategyCustomHTML
	case p.Domain != "":
		return StrategyGenericHTML
	default:
		return StrategyNone
	}
}

func (p Profile) BuildQuery(sku string) string {
	if p.Query == nil {
		return query.Default(sku)
	}
	return p.Query(sku)
}

func (p Profile) SuggestQuery(sku string) string {
	if p.Suggest != nil && p.Suggest.Query != nil {
		return p.Suggest.Query(sku)
	}
	return p.BuildQuery(sku)
}

func (p Profile) BaseURL() string {
	return "https://" + p.Domain
}

// SuggestURL is the typeahead endpoint URL for a built query.
func (p Profile) SuggestURL(q string) (string, error) {
	if p.Suggest == nil || p.Domain == "" {
		return "", ErrUnmappedBrand
	}

	values := url.Values{}
	values.Set("q", q)
	for k, v := range p.Suggest.Params {
		values.Set(k, v)
	}
	return p.BaseURL() + p.Suggest.Path + "?" + values.Encode(), nil
}

// HTMLSearchURL builds the custom or generic search page URL.
func (p Profile) HTMLSearchURL(sku string) (string, error) {
	switch p.HTMLStrategy() {
	case StrategyCustomHTML:
		return p.SearchURL(p.BaseURL(), sku), nil
	case StrategyGenericHTML:
		values := url.Values{}
		values.Set("q", p.BuildQuery(sku))
		return p.BaseURL() + "/search?" + values.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnmappedBrand, p.Name)
	}
}

// Registry is the brand strategy table keyed by upper-cased brand name.
type Registry struct {
	profiles map[string]Profile
}

func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Default returns the built-in table.
func Default() *Registry {
	return NewRegistry(builtinProfiles()...)
}

func (r *Registry) Register(p Profile) {
	r.profiles[key(p.Name)] = p
}

// Lookup never fails: an unknown brand yields a profile whose Strategy is
// StrategyNone.
func (r *Registry) Lookup(brand string) Profile {
	if p, ok := r.profiles[key(brand)]; ok {
		return p
	}
	return Profile{Name: strings.TrimSpace(brand)}
}

func (r *Registry) Len() int {
	return len(r.profiles)
}

// ApplyDomainOverrides parses "BRAND=domain,OTHER BRAND=domain" and maps or
// remaps those brands. Existing strategies of a remapped brand are kept.
func (r *Registry) ApplyDomainOverrides(pairs string) error {
	for _, pair := range strings.Split(pairs, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, domain, ok := strings.Cut(pair, "=")
		name, domain = strings.TrimSpace(name), strings.TrimSpace(domain)
		if !ok || name == "" || domain == "" {
			return fmt.Errorf("invalid brand domain override %q", pair)
		}

		p := r.Lookup(name)
		p.Name = name
		p.Domain = strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
		r.Register(p)
	}
	return nil
}

func key(brand string) string {
	return strings.ToUpper(strings.TrimSpace(brand))
}
