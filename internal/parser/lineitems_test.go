package parser

import (
	"regexp"
	"testing"

	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
)

func TestExtractLineItems_SentinelStop(t *testing.T) {
	p := New(Options{})
	items := p.extractLineItems([]string{"商品A ¥100", "小計 ¥100", "商品B ¥200"}, nil)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].ProductName != "商品A" {
		t.Errorf("productName: got %q, want %q", items[0].ProductName, "商品A")
	}
	if items[0].Amount != 100 {
		t.Errorf("amount: got %d, want 100", items[0].Amount)
	}
	if items[0].LineNum != 1 {
		t.Errorf("lineNum: got %d, want 1", items[0].LineNum)
	}
}

func TestExtractLineItems_Shapes(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantName   string
		wantAmount int
		wantConf   float64
	}{
		{"yen sign", "明治おいしい牛乳 ¥238", "明治おいしい牛乳", 238, 0.9},
		{"yen sign short name", "食パン ¥158", "食パン", 158, 0.8},
		{"en suffix", "食パン 158円", "食パン", 158, 0.7},
		{"tax flag", "キャベツ ¥198※", "キャベツ", 198, 0.9},
		{"wide gap", "バナナ  98", "バナナ", 98, 0.6},
		{"qty unit amount", "卵 Lサイズ 2 128 256", "卵 Lサイズ", 256, 0.7},
		{"thousands", "特選和牛切落し ¥1,980", "特選和牛切落し", 1980, 0.9},
	}

	p := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := p.extractLineItems([]string{tt.line}, nil)
			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			it := items[0]
			if it.ProductName != tt.wantName {
				t.Errorf("productName: got %q, want %q", it.ProductName, tt.wantName)
			}
			if it.Amount != tt.wantAmount {
				t.Errorf("amount: got %d, want %d", it.Amount, tt.wantAmount)
			}
			if it.Confidence != tt.wantConf {
				t.Errorf("confidence: got %v, want %v", it.Confidence, tt.wantConf)
			}
		})
	}
}

func TestExtractLineItems_SkipsNoiseAndDuplicates(t *testing.T) {
	p := New(Options{})
	lines := []string{
		"イオン 東雲店",
		"¥2,680",
		"明治おいしい牛乳 ¥238",
		"明治おいしい牛乳 ¥238",
		"明治おいしい牛乳 ¥198",
		"合計 ¥674",
	}
	items := p.extractLineItems(lines, nil)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Amount != 238 || items[1].Amount != 198 {
		t.Errorf("unexpected amounts: %d, %d", items[0].Amount, items[1].Amount)
	}
}

func TestExtractLineItems_StopsOnPaymentWords(t *testing.T) {
	p := New(Options{})
	for _, stop := range []string{"CASH ¥1,000", "クレジット ¥500", "お預り ¥1,000", "ポイント ¥10"} {
		t.Run(stop, func(t *testing.T) {
			items := p.extractLineItems([]string{stop, "明治おいしい牛乳 ¥238"}, nil)
			if len(items) != 0 {
				t.Errorf("expected scan to stop, got %+v", items)
			}
		})
	}
}

// The default shapes all capture the name with ^(.+?), so a line they share
// yields the same name from each. Custom shapes show that a noisy name moves
// on to the next shape on the same line.
func TestMatchLineShape_NoisyNameFallsThrough(t *testing.T) {
	firstWord := catalog.LineShape{
		Name:        "first-word",
		Re:          regexp.MustCompile(`^(\S+)[ \t]+\S+[ \t]+(\d+)$`),
		NameGroup:   1,
		AmountGroup: 2,
	}
	prefix := catalog.LineShape{
		Name:        "prefix",
		Re:          regexp.MustCompile(`^(.+?)[ \t]+(\d+)$`),
		NameGroup:   1,
		AmountGroup: 2,
	}

	tests := []struct {
		name     string
		shapes   []catalog.LineShape
		wantName string
		wantOK   bool
	}{
		{"later shape wins", []catalog.LineShape{firstWord, prefix}, "卵 Lサイズ", true},
		{"only the noisy shape", []catalog.LineShape{firstWord}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *catalog.Default()
			c.LineShapes = tt.shapes
			p := NewWithCatalog(&c, Options{})

			// "卵" alone is too short to be a product name
			item, ok := p.matchLineShape("卵 Lサイズ 128")
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && (item.ProductName != tt.wantName || item.Amount != 128) {
				t.Errorf("got %+v, want %q 128", item, tt.wantName)
			}
		})
	}
}
