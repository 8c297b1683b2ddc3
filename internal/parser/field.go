package parser

import (
	"strings"

	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// FirstMatch returns the first capture group of the first pattern in group
// that matches anywhere in text. Later patterns are only consulted when every
// earlier one fails, even if a later one would match better.
func FirstMatch(text string, group catalog.PatternGroup) (string, bool) {
	v, _, ok := firstMatch(text, group, nil)
	return v, ok
}

// FirstAmount is FirstMatch for amount fields. A capture that does not parse
// to a positive integer counts as no match and the cascade continues.
func FirstAmount(text string, group catalog.PatternGroup) (int, bool) {
	for _, p := range group {
		m := p.Re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if n, ok := parseAmount(m[1]); ok {
			return n, true
		}
	}
	return 0, false
}

// firstMatch walks the cascade. accept, when set, can veto a capture; the
// next occurrence of the same pattern is tried before moving on.
func firstMatch(text string, group catalog.PatternGroup, accept func(string) bool) (string, string, bool) {
	for _, p := range group {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			v := strings.TrimSpace(m[1])
			if v == "" {
				continue
			}
			if accept != nil && !accept(v) {
				continue
			}
			return v, p.Name, true
		}
	}
	return "", "", false
}

// extractMetadata runs the field extractor for each whole-text field.
func (p *Parser) extractMetadata(text string, tr *tracer) models.ExtractionMetadata {
	var meta models.ExtractionMetadata
	c := p.catalog

	if n, ok := FirstAmount(text, c.TotalAmount); ok {
		meta.TotalAmount = n
	}
	if n, ok := FirstAmount(text, c.DiscountAmount); ok {
		meta.DiscountAmount = n
	}
	if v, name, ok := firstMatch(text, c.ProductName, p.isProductName); ok {
		meta.ProductName = v
		tr.add("field", 0, v, "matched", "productName/"+name)
	}
	if v, name, ok := firstMatch(text, c.StoreName, nil); ok {
		meta.StoreName = v
		tr.add("field", 0, v, "matched", "storeName/"+name)
	}
	if v, ok := FirstMatch(text, c.Date); ok {
		meta.Date = v
	}
	return meta
}

// singleFieldConfidence scores the presence of whole-text fields.
func singleFieldConfidence(m models.ExtractionMetadata) float64 {
	var c float64
	if m.TotalAmount > 0 {
		c += 0.4
	}
	if m.DiscountAmount > 0 {
		c += 0.2
	}
	if m.ProductName != "" {
		c += 0.2
	}
	if m.StoreName != "" {
		c += 0.1
	}
	if m.Date != "" {
		c += 0.1
	}
	return round2(c)
}
