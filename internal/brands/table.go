package brands

import (
	"net/url"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/query"
)

// Official storefronts searched with the generic {domain}/search?q= page.
var genericDomains = map[string]string{
	"ADIDAS":             "www.adidas.it",
	"TOMMY HILFIGER":     "it.tommy.com",
	"TOMMY JEANS":        "it.tommy.com",
	"GUESS":              "www.guess.eu",
	"GUESS JEANS":        "www.guess.eu",
	"GUESS BY MARCIANO":  "www.guess.eu",
	"VANS":               "www.vans.com",
	"THE NORTH FACE":     "www.thenorthface.it",
	"CALVIN KLEIN":       "www.calvinklein.it",
	"CALVIN KLEIN JEANS": "www.calvinklein.it",
	"LIU JO":             "www.liujo.com",
	"NAPAPIJRI":          "www.napapijri.com",
	"RALPH LAUREN":       "www.ralphlauren.it",
	"GEOX":               "www.geox.com",
	"NEW BALANCE":        "www.newbalance.it",
	"TIMBERLAND":         "www.timberland.it",
	"SKECHERS":           "www.skechers.it",
	"PEUTEREY":           "www.peuterey.com",
}

const (
	ciessePrefix = "I1CIES"
	blauerPrefix = "I1BLAU"
)

// shopifySuggest is the predictive search endpoint shared by Shopify
// storefronts; it answers with resources.results.products[].
func shopifySuggest(transform query.Transform) *Suggest {
	return &Suggest{
		Path: "/search/suggest.json",
		Params: map[string]string{
			"resources[type]":  "product",
			"resources[limit]": "10",
		},
		Query: transform,
	}
}

func builtinProfiles() []Profile {
	profiles := make([]Profile, 0, len(genericDomains)+4)
	for name, domain := range genericDomains {
		profiles = append(profiles, Profile{Name: name, Domain: domain})
	}

	vicoloQuery := query.AlphaPrefixTrim(1)
	ciesseQuery := query.PrefixSuffixAlpha(ciessePrefix)
	blauerQuery := query.TwoCode(blauerPrefix)

	profiles = append(profiles,
		Profile{
			Name:    "VICOLO",
			Domain:  "www.vicolofashion.com",
			Query:   vicoloQuery,
			Suggest: shopifySuggest(vicoloQuery),
		},
		Profile{
			Name:    "SAVE THE DUCK",
			Domain:  "www.savetheduck.com",
			Query:   query.TokenSplit,
			Suggest: shopifySuggest(query.TokenSplit),
		},
		Profile{
			Name:    "CIESSE PIUMINI",
			Domain:  "www.ciessepiumini.com",
			Query:   ciesseQuery,
			Suggest: shopifySuggest(ciesseQuery),
		},
		Profile{
			Name:      "BLAUER",
			Domain:    "www.blauer.it",
			Query:     blauerQuery,
			SearchURL: blauerSearchURL,
		},
	)

	return profiles
}

// blauerSearchURL searches by product code and colour code together; the
// storefront only finds a single variant when both are given.
func blauerSearchURL(baseURL, sku string) string {
	product, color := query.SplitTwoCode(sku, blauerPrefix)
	values := url.Values{}
	values.Set("q", strings.TrimSpace(product+" "+color))
	return baseURL + "/it/search?" + values.Encode()
}
