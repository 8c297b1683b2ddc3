package parser

import (
	"testing"

	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

func TestFirstAmount(t *testing.T) {
	c := catalog.Default()
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{"total label", "小計 ¥1,100\n合計 ¥1,200", 1100, true},
		{"total with colon", "合計：2,680円", 2680, true},
		{"english total", "TOTAL 980", 980, true},
		{"yen sign fallback", "牛乳 ¥198", 198, true},
		{"zero falls through", "合計 0\n¥350", 350, true},
		{"none", "ありがとうございました", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstAmount(tt.text, c.TotalAmount)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFirstMatch_Order(t *testing.T) {
	c := catalog.Default()
	// the y-m-d shape is declared first and wins even though the short
	// shape appears earlier in the text
	got, ok := FirstMatch("24/10/14 レジ01\n2024年10月14日", c.Date)
	if !ok || got != "2024年10月14日" {
		t.Errorf("got %q, want %q", got, "2024年10月14日")
	}

	if _, ok := FirstMatch("no date here", c.Date); ok {
		t.Error("expected no date")
	}
}

func TestExtractMetadata(t *testing.T) {
	p := New(Options{})
	text := "イオン 東雲店\n2024/10/14\n割引 ¥100\n合計 ¥720"
	got := p.extractMetadata(text, nil)
	want := models.ExtractionMetadata{
		TotalAmount:    720,
		DiscountAmount: 100,
		ProductName:    "イオン 東雲店",
		StoreName:      "イオン 東雲店",
		Date:           "2024/10/14",
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if conf := singleFieldConfidence(got); conf != 1.0 {
		t.Errorf("confidence: got %v, want 1.0", conf)
	}
}

func TestSingleFieldConfidence(t *testing.T) {
	tests := []struct {
		name string
		meta models.ExtractionMetadata
		want float64
	}{
		{"empty", models.ExtractionMetadata{}, 0},
		{"store and total", models.ExtractionMetadata{StoreName: "西友", TotalAmount: 500}, 0.5},
		{"discount and date", models.ExtractionMetadata{DiscountAmount: 50, Date: "2024/1/1"}, 0.3},
		{"product only", models.ExtractionMetadata{ProductName: "食パン"}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := singleFieldConfidence(tt.meta); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
