// Package catalog holds the ordered text patterns used to read receipts.
//
// Patterns are grouped by semantic field. Inside a group, order is priority:
// callers evaluate patterns in sequence and stop at the first match, so a
// weaker shape (a bare currency-marked number, for instance) only wins when
// nothing declared before it matched.
package catalog

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Amount captures a yen amount, with or without thousands separators.
const Amount = `(\d{1,3}(?:,\d{3})+|\d+)`

// trailing flags printed after a price (reduced tax rate, tax-exempt, etc.)
const priceFlag = `[※*軽内外]?`

// Pattern is one tagged matcher in a PatternGroup.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// PatternGroup is an ordered set of patterns for one field.
type PatternGroup []Pattern

// MatchAny reports whether any pattern in the group matches s.
func (g PatternGroup) MatchAny(s string) bool {
	for _, p := range g {
		if p.Re.MatchString(s) {
			return true
		}
	}
	return false
}

// LineShape is a pattern for an item line with the capture groups holding
// the product name and the amount.
type LineShape struct {
	Name        string
	Re          *regexp.Regexp
	NameGroup   int
	AmountGroup int
}

// Catalog is the compiled, read-only pattern set. It is safe for concurrent use.
type Catalog struct {
	TotalAmount    PatternGroup
	DiscountAmount PatternGroup
	ProductName    PatternGroup
	StoreName      PatternGroup
	Date           PatternGroup

	LineShapes   []LineShape
	LegacyShapes []LineShape

	TaxMarkers PatternGroup
	Exclusions PatternGroup
	// NoiseSubstrings are lower-cased subtotal/total/tax words rejected anywhere in a name.
	NoiseSubstrings []string
	// Sentinel matches lines that end the item section of a receipt.
	Sentinel *regexp.Regexp

	// DiscountMarker captures an optional percentage in group 1.
	DiscountMarker     *regexp.Regexp
	DiscountDelta      *regexp.Regexp
	DiscountNameShapes PatternGroup
	DiscountExclusions PatternGroup
	OriginalPrice      *regexp.Regexp
	ProductCode        *regexp.Regexp
	TrailingPrice      *regexp.Regexp
}

var defaultCatalog = Compile(DefaultVocabulary())

// Default returns the catalog compiled from DefaultVocabulary.
func Default() *Catalog {
	return defaultCatalog
}

// Compile builds a Catalog from a vocabulary.
func Compile(v Vocabulary) *Catalog {
	totalWords := alternation(v.TotalWords)
	taxWords := alternation(v.TaxWords)
	changeWords := alternation(v.ChangeWords)
	payments := alternation(v.PaymentMethods)
	points := alternation(v.PointWords)

	taxMarkers := PatternGroup{
		{Name: "tax-word", Re: regexp.MustCompile(`(?i)` + taxWords)},
		{Name: "tax-rate-target", Re: regexp.MustCompile(`\d+\s*%\s*対象`)},
		{Name: "tax-rate-flag", Re: regexp.MustCompile(`^[外内軽]?\s*\d+\s*%$`)},
	}

	exclusions := PatternGroup{
		{Name: "total", Re: regexp.MustCompile(`(?i)^` + totalWords)},
	}
	exclusions = append(exclusions, taxMarkers...)
	exclusions = append(exclusions,
		Pattern{Name: "change", Re: regexp.MustCompile(`(?i)` + changeWords)},
		Pattern{Name: "payment", Re: regexp.MustCompile(`(?i)` + payments)},
		Pattern{Name: "points", Re: regexp.MustCompile(`(?i)` + points)},
		Pattern{Name: "amount-only", Re: regexp.MustCompile(`^[-▲*]?\s*[¥￥]?\s*[\d,]+\s*円?$`)},
		Pattern{Name: "count", Re: regexp.MustCompile(`(?i)^\d+\s*(?:点|個|pts?|p)$`)},
	)

	sentinelWords := make([]string, 0)
	for _, list := range [][]string{v.TotalWords, v.TaxWords, v.ChangeWords, v.PaymentMethods, v.PointWords, v.SentinelWords} {
		sentinelWords = append(sentinelWords, list...)
	}

	noise := make([]string, 0, len(v.TotalWords)+len(v.TaxWords))
	for _, w := range append(append([]string{}, v.TotalWords...), v.TaxWords...) {
		noise = append(noise, strings.ToLower(w))
	}

	storeName := PatternGroup{}
	if len(v.RetailChains) > 0 {
		storeName = append(storeName, Pattern{
			Name: "retail-chain",
			Re:   regexp.MustCompile(`(?m)^(` + alternation(v.RetailChains) + `[^\n]{0,30}?)[ \t]*$`),
		})
	}
	storeName = append(storeName,
		Pattern{Name: "store-suffix", Re: regexp.MustCompile(`(?m)^([^0-9\n]{2,30})` + alternation(v.StoreSuffixes) + `$`)},
		Pattern{Name: "latin-line", Re: regexp.MustCompile(`(?m)^([A-Za-z ]{3,20})$`)},
	)

	return &Catalog{
		TotalAmount: PatternGroup{
			{Name: "total-label", Re: regexp.MustCompile(`(?i)` + alternation(v.TotalLabels) + `[：:\s]*[¥￥]?\s*` + Amount + `\s*円?`)},
			{Name: "subtotal-label", Re: regexp.MustCompile(`(?i)` + alternation(v.SubtotalLabels) + `[：:\s]*[¥￥]?\s*` + Amount + `\s*円?`)},
			{Name: "yen-sign", Re: regexp.MustCompile(`[¥￥]\s*` + Amount)},
		},
		DiscountAmount: PatternGroup{
			{Name: "discount-label", Re: regexp.MustCompile(`(?i)` + alternation(v.DiscountLabels) + `[：:\s]*[¥￥]?\s*` + Amount + `\s*円?`)},
			{Name: "sale-label", Re: regexp.MustCompile(`(?i)` + alternation(v.SaleLabels) + `[：:\s]*[¥￥]?\s*` + Amount + `\s*円?`)},
		},
		ProductName: PatternGroup{
			{Name: "name-with-price", Re: regexp.MustCompile(`(?m)^([^\d\s]{2,20})(?:[ \t]+\d+円|[ \t]+[¥￥]\d+)`)},
			{Name: "text-line", Re: regexp.MustCompile(`(?m)^([^\d\n]{3,25})$`)},
		},
		StoreName: storeName,
		Date: PatternGroup{
			{Name: "ymd", Re: regexp.MustCompile(`(\d{4}[/\-年]\d{1,2}[/\-月]\d{1,2}[日号]?)`)},
			{Name: "yy-md", Re: regexp.MustCompile(`(\d{2}[/\-]\d{1,2}[/\-]\d{1,2})`)},
		},
		LineShapes: []LineShape{
			{Name: "name-yen", Re: regexp.MustCompile(`^(.+?)\s*[¥￥]\s*` + Amount + `\s*` + priceFlag + `$`), NameGroup: 1, AmountGroup: 2},
			{Name: "name-en", Re: regexp.MustCompile(`^(.+?)\s+` + Amount + `\s*円\s*` + priceFlag + `$`), NameGroup: 1, AmountGroup: 2},
			{Name: "name-gap", Re: regexp.MustCompile(`^(.+?)\s{2,}` + Amount + `\s*` + priceFlag + `$`), NameGroup: 1, AmountGroup: 2},
			{Name: "name-qty-unit", Re: regexp.MustCompile(`^(.+?)\s+(\d+)\s*(?:[x×@]|個|点)?\s+` + Amount + `\s+` + Amount + `$`), NameGroup: 1, AmountGroup: 4},
		},
		LegacyShapes: []LineShape{
			{Name: "legacy-qty", Re: regexp.MustCompile(`(?m)^(.+?)[ \t]+(\d+)[ \t]+` + Amount + `[ \t]+` + Amount + `[ \t]*$`), NameGroup: 1, AmountGroup: 4},
			{Name: "legacy-amount", Re: regexp.MustCompile(`(?m)^(.+?)[ \t]+[¥￥]?` + Amount + `円?[ \t]*$`), NameGroup: 1, AmountGroup: 2},
		},
		TaxMarkers:      taxMarkers,
		Exclusions:      exclusions,
		NoiseSubstrings: noise,
		Sentinel:        regexp.MustCompile(`(?i)` + alternation(sentinelWords)),

		DiscountMarker: regexp.MustCompile(`(?:▲\s*)?` + alternation(v.DiscountMarkers) + `\s*(?:(\d{1,3})\s*%)?`),
		DiscountDelta:  regexp.MustCompile(`(?:^|\s)[-▲]\s*` + Amount + `\s*円?$`),
		DiscountNameShapes: PatternGroup{
			{Name: "code-name", Re: regexp.MustCompile(`^\d{3}\s*([^\d\s].*)$`)},
			{Name: "plain-name", Re: regexp.MustCompile(`^([^\d*▲△\-¥￥#%].*)$`)},
		},
		DiscountExclusions: PatternGroup{
			{Name: "amount-only", Re: regexp.MustCompile(`^[¥￥]?\s*[\d,]+\s*円?$`)},
			{Name: "subtotal", Re: regexp.MustCompile(alternation(v.DiscountNoise))},
			{Name: "payment", Re: regexp.MustCompile(`(?i)` + payments)},
			{Name: "change", Re: regexp.MustCompile(`(?i)` + changeWords)},
			{Name: "count", Re: regexp.MustCompile(`^\d+\s*点`)},
		},
		OriginalPrice: regexp.MustCompile(`^\*\s*` + Amount + `\s*円?(?:\s|$)`),
		ProductCode:   regexp.MustCompile(`^\d{3}\s*`),
		TrailingPrice: regexp.MustCompile(`\s+(?:[¥￥]\s*[\d,]+|[\d,]+\s*円)\s*` + priceFlag + `$`),
	}
}

// alternation builds a non-capturing group of quoted words, longest first so
// that "値引き" is tried before "値引".
func alternation(words []string) string {
	if len(words) == 0 {
		// matches nothing
		return `(?:[^\s\S])`
	}
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}
