// Package parser turns recognized receipt text into candidate line items.
//
// Strategies run in a fixed priority order and the first one that yields
// anything wins: discount detection (only when requested), line items,
// legacy whole-text shapes, then a single item synthesized from the
// whole-text fields. Parsing is pure; a Parser may be shared between goroutines.
package parser

import (
	"log/slog"

	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// FallbackProductName is used for a synthesized item when neither a product
// nor a store name was found.
const FallbackProductName = "商品名を確認してください"

// Options controls one Parser.
type Options struct {
	// PrioritizeDiscounts runs discount detection first and, for the
	// synthesized fallback item, prefers the discount amount over the total.
	PrioritizeDiscounts bool
	// Trace records every stage decision in ParseResult.Trace.
	Trace  bool
	Logger *slog.Logger
}

// Parser extracts items using a compiled catalog.
type Parser struct {
	catalog *catalog.Catalog
	opts    Options
	logger  *slog.Logger
}

// New returns a Parser over the default catalog.
func New(opts Options) *Parser {
	return NewWithCatalog(catalog.Default(), opts)
}

// NewWithCatalog returns a Parser over c.
func NewWithCatalog(c *catalog.Catalog, opts Options) *Parser {
	if c == nil {
		c = catalog.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{catalog: c, opts: opts, logger: logger}
}

// Parse extracts items and metadata from text. It never fails: text with
// nothing recognizable yields no items and zero confidence.
func (p *Parser) Parse(text string) *models.ParseResult {
	tr := &tracer{enabled: p.opts.Trace}
	if p.opts.Trace {
		tr.logger = p.logger
	}

	text = normalizeText(text)
	lines := splitLines(text)

	meta := p.extractMetadata(text, tr)
	fieldConf := singleFieldConfidence(meta)

	items, method := p.runStrategies(text, lines, meta, fieldConf, tr)
	for i := range items {
		items[i].ID = i + 1
	}

	result := &models.ParseResult{
		Items:             items,
		Metadata:          meta,
		FieldConfidence:   fieldConf,
		OverallConfidence: overallConfidence(items, fieldConf),
		Method:            method,
		Trace:             tr.events,
	}
	if result.Items == nil {
		result.Items = []models.LineItem{}
	}

	p.logger.Debug("parse.done",
		"method", string(method),
		"items", len(result.Items),
		"confidence", result.OverallConfidence,
	)
	return result
}

func (p *Parser) runStrategies(text string, lines []string, meta models.ExtractionMetadata, fieldConf float64, tr *tracer) ([]models.LineItem, models.Strategy) {
	if p.opts.PrioritizeDiscounts {
		if items := p.detectDiscounts(lines, tr); len(items) > 0 {
			return items, models.StrategyDiscount
		}
	}
	if items := p.extractLineItems(lines, tr); len(items) > 0 {
		return items, models.StrategyLine
	}
	if items := p.extractLegacy(text, tr); len(items) > 0 {
		return items, models.StrategyLegacy
	}
	if item, ok := p.fallbackItem(meta, fieldConf); ok {
		tr.add("fallback", 0, item.ProductName, "item", "")
		return []models.LineItem{item}, models.StrategyFallback
	}
	return nil, models.StrategyNone
}

// fallbackItem synthesizes one item from the whole-text fields.
func (p *Parser) fallbackItem(meta models.ExtractionMetadata, fieldConf float64) (models.LineItem, bool) {
	if meta.ProductName == "" && meta.TotalAmount == 0 && meta.DiscountAmount == 0 {
		return models.LineItem{}, false
	}

	amounts := []int{meta.TotalAmount, meta.DiscountAmount}
	kinds := []models.ItemKind{models.ItemNormal, models.ItemDiscount}
	if p.opts.PrioritizeDiscounts {
		amounts[0], amounts[1] = amounts[1], amounts[0]
		kinds[0], kinds[1] = kinds[1], kinds[0]
	}
	amount, kind := 0, models.ItemNormal
	for i, a := range amounts {
		if a > 0 {
			amount, kind = a, kinds[i]
			break
		}
	}
	if amount <= 0 {
		return models.LineItem{}, false
	}

	name := meta.ProductName
	if name == "" {
		name = meta.StoreName
	}
	if name == "" {
		name = FallbackProductName
	}
	return models.LineItem{
		ProductName: name,
		Amount:      amount,
		Confidence:  fieldConf,
		Kind:        kind,
	}, true
}

// overallConfidence is the mean item confidence, or fieldConf when there are no items.
func overallConfidence(items []models.LineItem, fieldConf float64) float64 {
	if len(items) == 0 {
		return clamp01(fieldConf)
	}
	var sum float64
	for _, it := range items {
		sum += it.Confidence
	}
	return clamp01(sum / float64(len(items)))
}
