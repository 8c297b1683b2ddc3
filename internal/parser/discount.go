package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// Search window sizes around a discount marker line.
const (
	amountWindow = 2
	nameWindow   = 3
)

// Plausibility limits for a detected discount.
const (
	maxDiscountAmount     = 1_000_000
	maxDiscountPriceRatio = 3
)

type direction int

const (
	backward direction = -1
	forward  direction = 1
)

// search walks up to maxSteps lines away from center in dir and returns the
// index of the first line pred accepts, or -1. The center line is not visited.
func search(lines []string, center int, dir direction, maxSteps int, pred func(string) bool) int {
	for step := 1; step <= maxSteps; step++ {
		i := center + step*int(dir)
		if i < 0 || i >= len(lines) {
			break
		}
		if pred(lines[i]) {
			return i
		}
	}
	return -1
}

// discountCandidate is everything gathered for one marker occurrence.
type discountCandidate struct {
	name          string
	amount        int
	originalPrice int // 0 when unknown
	percent       int // 0 when the marker carries none
}

// detectDiscounts looks around every discount marker for the markdown amount,
// the product it applies to and the product's original price.
func (p *Parser) detectDiscounts(lines []string, tr *tracer) []models.LineItem {
	var items []models.LineItem
	seen := make(map[itemKey]bool)

	for i, line := range lines {
		m := p.catalog.DiscountMarker.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum := i + 1
		cand := discountCandidate{}
		if m[1] != "" {
			cand.percent, _ = strconv.Atoi(m[1])
		}

		amount, ok := p.discountDelta(line)
		if !ok {
			if j := search(lines, i, forward, amountWindow, p.hasDiscountDelta); j >= 0 {
				amount, ok = p.discountDelta(lines[j])
			}
		}
		if !ok {
			tr.add("discount", lineNum, line, "rejected", "no amount")
			continue
		}
		cand.amount = amount

		nameIdx := search(lines, i, backward, nameWindow, func(l string) bool {
			name, ok := p.discountName(l)
			if ok {
				cand.name = name
			}
			return ok
		})
		if nameIdx < 0 {
			tr.add("discount", lineNum, line, "rejected", "no product name")
			continue
		}
		if nameIdx+1 < len(lines) {
			if pm := p.catalog.OriginalPrice.FindStringSubmatch(lines[nameIdx+1]); pm != nil {
				// a misread price this large is treated as unknown
				if price, ok := parseAmount(pm[1]); ok && price < maxDiscountAmount {
					cand.originalPrice = price
				}
			}
		}

		if reason := validateDiscount(cand); reason != "" {
			tr.add("discount", lineNum, line, "rejected", reason)
			continue
		}
		key := itemKey{cand.name, cand.amount}
		if seen[key] {
			tr.add("discount", lineNum, line, "skipped", "duplicate")
			continue
		}
		seen[key] = true

		items = append(items, models.LineItem{
			ProductName:     cand.name,
			Amount:          cand.amount,
			Confidence:      discountConfidence(cand),
			Kind:            models.ItemDiscount,
			OriginalPrice:   cand.originalPrice,
			DiscountPercent: cand.percent,
			LineNum:         lineNum,
		})
		tr.add("discount", lineNum, line, "item", cand.name)
	}
	return items
}

func (p *Parser) hasDiscountDelta(line string) bool {
	_, ok := p.discountDelta(line)
	return ok
}

// discountDelta reads a "-80" style amount as a positive value. Amounts that
// do not parse are reported as absent.
func (p *Parser) discountDelta(line string) (int, bool) {
	m := p.catalog.DiscountDelta.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1])
}

// discountName tries the name shapes, most specific first, and returns the
// cleaned name when it passes the discount exclusions.
func (p *Parser) discountName(line string) (string, bool) {
	for _, shape := range p.catalog.DiscountNameShapes {
		m := shape.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := p.catalog.ProductCode.ReplaceAllString(m[1], "")
		name = p.catalog.TrailingPrice.ReplaceAllString(name, "")
		name = strings.TrimSpace(name)
		if runeLen(name) > 2 && p.isDiscountName(name) {
			return name, true
		}
	}
	return "", false
}

// validateDiscount returns why a candidate is implausible, or "".
func validateDiscount(c discountCandidate) string {
	switch {
	case c.amount <= 0:
		return "non-positive amount"
	case c.originalPrice > 0 && c.amount > c.originalPrice*maxDiscountPriceRatio:
		return "exceeds original price"
	case c.amount >= maxDiscountAmount:
		return "implausible amount"
	}
	return ""
}

// confidenceStep is one adjustment in the discount confidence chain.
type confidenceStep func(float64) float64

// decay lowers c by drop, bounded below by floor. A floor above c-drop
// wins, so a later rung can lift a value an earlier rung pushed lower.
func decay(c, drop, floor float64) float64 {
	return math.Max(c-drop, floor)
}

type ladderRung struct {
	threshold   float64
	drop, floor float64
}

// ladder applies the first rung whose threshold v reaches.
func ladder(v float64, rungs []ladderRung) confidenceStep {
	return func(c float64) float64 {
		for _, r := range rungs {
			if v >= r.threshold {
				return decay(c, r.drop, r.floor)
			}
		}
		return c
	}
}

var magnitudeRungs = []ladderRung{
	{50000, 0.4, 0.2},
	{10000, 0.3, 0.3},
	{5000, 0.2, 0.4},
	{1000, 0.1, 0.5},
}

var rateRungs = []ladderRung{
	{0.9, 0.4, 0.2},
	{0.8, 0.3, 0.3},
	{0.7, 0.2, 0.4},
	{0.5, 0.1, 0.5},
}

const baseDiscountConfidence = 0.7

// magnitudeStep penalizes large amounts, which are usually misread digits.
func magnitudeStep(amount int) confidenceStep {
	return ladder(float64(amount), magnitudeRungs)
}

// reconcileStep checks the amount against originalPrice * percent.
func reconcileStep(amount, originalPrice, percent int) confidenceStep {
	return func(float64) float64 {
		expected := int(math.Round(float64(originalPrice*percent) / 100))
		switch diff := absInt(expected - amount); {
		case diff <= 2:
			return 0.9
		case diff <= 5:
			return 0.8
		default:
			return 0.6
		}
	}
}

// divergenceStep decays when the reconciliation gap is a large share of the price.
func divergenceStep(amount, originalPrice, percent int) confidenceStep {
	return func(c float64) float64 {
		expected := int(math.Round(float64(originalPrice*percent) / 100))
		diff := float64(absInt(expected - amount))
		price := float64(originalPrice)
		switch {
		case diff > price*0.8:
			return decay(c, 0.3, 0.2)
		case diff > price*0.5:
			return decay(c, 0.2, 0.3)
		}
		return c
	}
}

// rateStep penalizes a discount that takes most of the price away.
func rateStep(amount, originalPrice int) confidenceStep {
	return ladder(float64(amount)/float64(originalPrice), rateRungs)
}

// confidencePipeline returns the ordered adjustment chain for c.
func confidencePipeline(c discountCandidate) []confidenceStep {
	steps := []confidenceStep{magnitudeStep(c.amount)}
	switch {
	case c.originalPrice > 0 && c.percent > 0:
		steps = append(steps,
			reconcileStep(c.amount, c.originalPrice, c.percent),
			divergenceStep(c.amount, c.originalPrice, c.percent),
		)
	case c.originalPrice > 0:
		steps = append(steps, rateStep(c.amount, c.originalPrice))
	}
	return steps
}

func runPipeline(start float64, steps []confidenceStep) float64 {
	c := start
	for _, step := range steps {
		c = step(c)
	}
	return c
}

func discountConfidence(c discountCandidate) float64 {
	return round2(clamp01(runPipeline(baseDiscountConfidence, confidencePipeline(c))))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
