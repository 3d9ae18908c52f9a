// Package parser turns supplier chat replies into stock signals.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seamonger/procurement/internal/domain"
)

// productAlias maps a keyword to its canonical product name.
type productAlias struct {
	keyword   string
	canonical string
	pattern   *regexp.Regexp
}

// alias compiles a whole-word matcher. Word characters are Unicode letters and
// digits plus underscore, so accented neighbours still block a match.
func alias(keyword, canonical string) productAlias {
	return productAlias{
		keyword:   keyword,
		canonical: canonical,
		pattern:   regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(keyword) + `(?:$|[^\p{L}\p{N}_])`),
	}
}

// productAliases is matched in order; the first hit wins.
var productAliases = []productAlias{
	alias("bawal", "bawal"),
	alias("kembung", "kembung"),
	alias("selar", "selar"),
	alias("siakap", "siakap"),
	alias("snapper", "snapper"),
	alias("ikan", "ikan"),
}

// availabilityKeywords cover Malay affirmatives and stock terms. Matched as substrings.
var availabilityKeywords = []string{"ada", "have", "got", "ready", "stock"}

// Quantities are read from ASCII digits only.
var quantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(kg|kilogram|kilo)?`)

const (
	baseConfidence         = 0.1
	availabilityConfidence = 0.5
	quantityConfidence     = 0.2
	productConfidence      = 0.2
)

// ParseStockSignal extracts product, quantity and confidence from free text.
// It never fails; unrecognised text yields a signal with confidence 0.1.
func ParseStockSignal(text string) domain.StockSignal {
	normalized := strings.ToLower(strings.TrimSpace(text))

	signal := domain.StockSignal{
		QuantityKg: parseQuantity(normalized),
		Product:    parseProduct(normalized),
		RawText:    text,
	}

	confidence := baseConfidence
	if hasAvailability(normalized) {
		confidence += availabilityConfidence
	}
	if signal.QuantityKg != nil {
		confidence += quantityConfidence
	}
	if signal.Product != nil {
		confidence += productConfidence
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	signal.Confidence = confidence

	return signal
}

// Products returns the canonical product names in match order.
func Products() []string {
	out := make([]string, 0, len(productAliases))
	for _, a := range productAliases {
		out = append(out, a.canonical)
	}
	return out
}

func parseQuantity(normalized string) *float64 {
	m := quantityPattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &qty
}

func parseProduct(normalized string) *string {
	for _, a := range productAliases {
		if a.pattern.MatchString(normalized) {
			product := a.canonical
			return &product
		}
	}
	return nil
}

func hasAvailability(normalized string) bool {
	for _, kw := range availabilityKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
