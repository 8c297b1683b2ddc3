package parser

import (
	"strings"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

type scanState int

const (
	scanning scanState = iota
	stopped
)

// extractLineItems scans lines top-down until the first totals/payment line.
// Each line yields at most one item, from the first shape whose name survives
// the noise filter.
func (p *Parser) extractLineItems(lines []string, tr *tracer) []models.LineItem {
	var items []models.LineItem
	seen := make(map[itemKey]bool)
	state := scanning

	for i, line := range lines {
		if state == stopped {
			break
		}
		lineNum := i + 1

		if p.catalog.Sentinel.MatchString(line) {
			state = stopped
			tr.add("line", lineNum, line, "stopped", "totals section")
			continue
		}
		if p.IsNoise(line) {
			tr.add("line", lineNum, line, "skipped", "noise")
			continue
		}

		item, ok := p.matchLineShape(line)
		if !ok {
			tr.add("line", lineNum, line, "skipped", "no shape")
			continue
		}
		key := itemKey{item.ProductName, item.Amount}
		if seen[key] {
			tr.add("line", lineNum, line, "skipped", "duplicate")
			continue
		}
		seen[key] = true
		item.LineNum = lineNum
		items = append(items, item)
		tr.add("line", lineNum, line, "item", item.ProductName)
	}
	return items
}

func (p *Parser) matchLineShape(line string) (models.LineItem, bool) {
	for _, shape := range p.catalog.LineShapes {
		m := shape.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[shape.NameGroup])
		amount, ok := parseAmount(m[shape.AmountGroup])
		if name == "" || !ok {
			continue
		}
		if p.IsNoise(name) {
			continue
		}
		return models.LineItem{
			ProductName: name,
			Amount:      amount,
			Confidence:  lineConfidence(line, name),
			Kind:        models.ItemNormal,
		}, true
	}
	return models.LineItem{}, false
}

func lineConfidence(line, name string) float64 {
	c := 0.6
	if strings.ContainsAny(line, "¥￥") {
		c += 0.2
	} else if strings.Contains(line, "円") {
		c += 0.1
	}
	if runeLen(name) >= 4 {
		c += 0.1
	}
	return round2(clamp01(c))
}
