// Package query turns raw catalog SKUs into the search terms each brand's
// storefront understands. Every transform is pure and never fails; the caller
// escapes the result when it is placed into a URL.
package query

import (
	"regexp"
	"strings"
	"unicode"
)

// Transform maps a raw SKU to a search term.
type Transform func(sku string) string

var (
	letterDigit = regexp.MustCompile(`([a-z])([0-9])`)
	digitLetter = regexp.MustCompile(`([0-9])([a-z])`)
	twoCode     = regexp.MustCompile(`^(.*?)(\d{6})$`)
)

const colorSuffixLen = 3

// Default uses the trimmed SKU verbatim.
func Default(sku string) string {
	return strings.TrimSpace(sku)
}

// AlphaPrefix keeps the lowercase part of the SKU before its first decimal
// digit, or the whole lowercased SKU when it has no digit.
func AlphaPrefix(sku string) string {
	prefix, _ := splitAtDigit(sku)
	return prefix
}

// AlphaPrefixTrim is AlphaPrefix for catalogs that append a one-or-more
// letter variant code right before the numeric part (CLEMENTINAM9001 is
// model "clementina", variant "m"). The letters are only dropped when a
// digit was found and something is left afterwards.
func AlphaPrefixTrim(variantLetters int) Transform {
	return func(sku string) string {
		prefix, split := splitAtDigit(sku)
		if !split || variantLetters <= 0 || len(prefix) <= variantLetters {
			return prefix
		}
		return prefix[:len(prefix)-variantLetters]
	}
}

// TokenSplit humanizes a SKU into space separated tokens at every
// letter/digit boundary: "D4562M_GIGA18" becomes "d 4562 m giga 18".
func TokenSplit(sku string) string {
	s := strings.ToLower(strings.TrimSpace(sku))
	s = strings.ReplaceAll(s, "_", " ")
	s = letterDigit.ReplaceAllString(s, "$1 $2")
	s = digitLetter.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}

// PrefixSuffixAlpha strips a literal catalog prefix and the trailing
// three-character colour code, then applies AlphaPrefix.
func PrefixSuffixAlpha(prefix string) Transform {
	return func(sku string) string {
		return AlphaPrefix(stripCodes(sku, prefix))
	}
}

// TwoCode returns the "product color" query for catalogs whose SKU embeds a
// product code followed by a six digit colour code.
func TwoCode(prefix string) Transform {
	return func(sku string) string {
		product, color := SplitTwoCode(sku, prefix)
		return strings.TrimSpace(product + " " + color)
	}
}

// SplitTwoCode strips prefix and the three trailing characters, then splits
// the rest into product code and six digit colour code. Without a six digit
// suffix the whole remainder is the product code.
func SplitTwoCode(sku, prefix string) (product, color string) {
	rest := stripCodes(sku, prefix)
	if m := twoCode.FindStringSubmatch(rest); m != nil {
		return m[1], m[2]
	}
	return rest, ""
}

func stripCodes(sku, prefix string) string {
	s := strings.TrimSpace(sku)
	if prefix != "" && len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		s = s[len(prefix):]
	}
	if len(s) <= colorSuffixLen {
		return ""
	}
	return s[:len(s)-colorSuffixLen]
}

func splitAtDigit(sku string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(sku))
	idx := strings.IndexFunc(s, func(r rune) bool {
		return r < unicode.MaxASCII && unicode.IsDigit(r)
	})
	if idx < 0 {
		return s, false
	}
	return s[:idx], true
}
