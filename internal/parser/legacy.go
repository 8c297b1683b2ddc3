package parser

import (
	"strings"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

const legacyConfidence = 0.5

// extractLegacy runs the two broad whole-text shapes over the full text. It
// does not stop at totals lines, so the noise filter does all the work.
func (p *Parser) extractLegacy(text string, tr *tracer) []models.LineItem {
	var items []models.LineItem
	seen := make(map[itemKey]bool)

	for _, shape := range p.catalog.LegacyShapes {
		for _, m := range shape.Re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[shape.NameGroup])
			amount, ok := parseAmount(m[shape.AmountGroup])
			if !ok || p.IsNoise(name) {
				tr.add("legacy", 0, strings.TrimSpace(m[0]), "rejected", shape.Name)
				continue
			}
			key := itemKey{name, amount}
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, models.LineItem{
				ProductName: name,
				Amount:      amount,
				Confidence:  legacyConfidence,
				Kind:        models.ItemNormal,
			})
			tr.add("legacy", 0, strings.TrimSpace(m[0]), "item", shape.Name)
		}
	}
	return items
}
