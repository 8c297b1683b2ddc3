package parser

import "strings"

// IsNoise reports whether s is receipt administration (totals, tax, payment
// method, points, change, bare amounts) rather than a product name.
func (p *Parser) IsNoise(s string) bool {
	s = strings.TrimSpace(s)
	if runeLen(s) <= 2 {
		return true
	}
	if isNumeric(s) {
		return true
	}
	if p.catalog.Exclusions.MatchAny(s) {
		return true
	}
	lower := strings.ToLower(s)
	for _, w := range p.catalog.NoiseSubstrings {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (p *Parser) isProductName(s string) bool {
	return !p.IsNoise(s)
}

// isDiscountName applies the stricter checks used for names found next to
// a discount marker.
func (p *Parser) isDiscountName(s string) bool {
	if p.IsNoise(s) {
		return false
	}
	if p.catalog.DiscountExclusions.MatchAny(s) {
		return false
	}
	return !p.catalog.DiscountMarker.MatchString(s)
}
