package models

// ItemKind distinguishes ordinary purchase lines from markdown lines.
type ItemKind string

const (
	ItemNormal   ItemKind = "normal"
	ItemDiscount ItemKind = "discount"
)

// LineItem is one candidate purchase or discount extracted from a receipt.
// Items are proposals: callers are expected to let the user confirm or edit them.
type LineItem struct {
	ID              int      `json:"id"`
	ProductName     string   `json:"productName"`
	Amount          int      `json:"amount"` // whole yen, always > 0
	Confidence      float64  `json:"confidence"`
	Kind            ItemKind `json:"type"`
	OriginalPrice   int      `json:"originalPrice,omitempty"`
	DiscountPercent int      `json:"discountPercent,omitempty"`
	LineNum         int      `json:"lineNum,omitempty"` // 1-based source line, 0 when not line-scoped
}

// ExtractionMetadata holds the singular whole-text fields.
// Zero values mean the field was not found.
type ExtractionMetadata struct {
	TotalAmount    int    `json:"totalAmount,omitempty"`
	DiscountAmount int    `json:"discountAmount,omitempty"`
	ProductName    string `json:"productName,omitempty"`
	StoreName      string `json:"storeName,omitempty"`
	Date           string `json:"date,omitempty"`
}

// Strategy names which stage produced the final item list.
type Strategy string

const (
	StrategyDiscount Strategy = "discount"
	StrategyLine     Strategy = "line"
	StrategyLegacy   Strategy = "legacy"
	StrategyFallback Strategy = "fallback"
	StrategyNone     Strategy = "none"
)

// TraceEvent captures what the parser did with one line or candidate.
type TraceEvent struct {
	Stage   string `json:"stage"`
	LineNum int    `json:"lineNum,omitempty"`
	Text    string `json:"text,omitempty"`
	Result  string `json:"result"` // "item", "skipped", "rejected", "stopped", "matched"
	Detail  string `json:"detail,omitempty"`
}

// ParseResult is the full output of one extraction call.
type ParseResult struct {
	Items             []LineItem         `json:"items"`
	Metadata          ExtractionMetadata `json:"metadata"`
	FieldConfidence   float64            `json:"fieldConfidence"`
	OverallConfidence float64            `json:"overallConfidence"`
	Method            Strategy           `json:"method"`
	Trace             []TraceEvent       `json:"trace,omitempty"`
}
