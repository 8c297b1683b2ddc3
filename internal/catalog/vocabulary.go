package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the plain-word side of the catalog. Every list is data:
// adding a retail chain or a payment brand means adding a word here (or in a
// YAML file merged on top), never touching the matching code.
type Vocabulary struct {
	TotalLabels     []string `yaml:"total_labels"`
	SubtotalLabels  []string `yaml:"subtotal_labels"`
	DiscountLabels  []string `yaml:"discount_labels"`
	SaleLabels      []string `yaml:"sale_labels"`
	StoreSuffixes   []string `yaml:"store_suffixes"`
	RetailChains    []string `yaml:"retail_chains"`
	TotalWords      []string `yaml:"total_words"`
	TaxWords        []string `yaml:"tax_words"`
	ChangeWords     []string `yaml:"change_words"`
	PaymentMethods  []string `yaml:"payment_methods"`
	PointWords      []string `yaml:"point_words"`
	SentinelWords   []string `yaml:"sentinel_words"`
	DiscountMarkers []string `yaml:"discount_markers"`
	DiscountNoise   []string `yaml:"discount_noise"`
}

// DefaultVocabulary returns the built-in Japanese/English receipt vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		TotalLabels:    []string{"合計", "計", "総額", "total"},
		SubtotalLabels: []string{"小計", "subtotal"},
		DiscountLabels: []string{"割引", "値引き", "discount", "off"},
		SaleLabels:     []string{"sale", "セール"},
		StoreSuffixes:  []string{"店", "支店", "本店"},
		RetailChains: []string{
			"イオン", "イトーヨーカドー", "西友", "ライフ", "マルエツ", "サミット",
			"ローソン", "ファミリーマート", "セブン-イレブン", "セブンイレブン",
			"まいばすけっと", "業務スーパー", "オーケー", "ドン・キホーテ",
		},
		TotalWords: []string{
			"小計", "合計", "総合計", "総計", "総額", "お買上計", "お買上げ計",
			"お会計", "subtotal", "total",
		},
		TaxWords:    []string{"消費税", "内税", "外税", "税込", "税抜", "税", "tax"},
		ChangeWords: []string{"お釣り", "お釣", "おつり", "釣銭", "お預り", "お預かり", "預り", "change"},
		PaymentMethods: []string{
			"PayPay", "楽天ペイ", "d払い", "au PAY", "メルペイ", "Suica", "PASMO",
			"nanaco", "WAON", "Edy", "QUICPay", "VISA", "Mastercard", "JCB",
			"クレジット", "現金",
		},
		PointWords:      []string{"ポイント", "point", "points"},
		SentinelWords:   []string{"cash", "card", "credit", "カード"},
		DiscountMarkers: []string{"値引き", "値引", "割引"},
		DiscountNoise:   []string{"お買上計", "お買上げ計", "小計", "合計"},
	}
}

// Merge appends words from other that v does not already carry.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	return Vocabulary{
		TotalLabels:     mergeWords(v.TotalLabels, other.TotalLabels),
		SubtotalLabels:  mergeWords(v.SubtotalLabels, other.SubtotalLabels),
		DiscountLabels:  mergeWords(v.DiscountLabels, other.DiscountLabels),
		SaleLabels:      mergeWords(v.SaleLabels, other.SaleLabels),
		StoreSuffixes:   mergeWords(v.StoreSuffixes, other.StoreSuffixes),
		RetailChains:    mergeWords(v.RetailChains, other.RetailChains),
		TotalWords:      mergeWords(v.TotalWords, other.TotalWords),
		TaxWords:        mergeWords(v.TaxWords, other.TaxWords),
		ChangeWords:     mergeWords(v.ChangeWords, other.ChangeWords),
		PaymentMethods:  mergeWords(v.PaymentMethods, other.PaymentMethods),
		PointWords:      mergeWords(v.PointWords, other.PointWords),
		SentinelWords:   mergeWords(v.SentinelWords, other.SentinelWords),
		DiscountMarkers: mergeWords(v.DiscountMarkers, other.DiscountMarkers),
		DiscountNoise:   mergeWords(v.DiscountNoise, other.DiscountNoise),
	}
}

// LoadVocabulary reads a YAML vocabulary file and merges it over the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %q: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes YAML vocabulary data and merges it over the defaults.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var extra Vocabulary
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary: %w", err)
	}
	return DefaultVocabulary().Merge(extra), nil
}

func mergeWords(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, w := range list {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
