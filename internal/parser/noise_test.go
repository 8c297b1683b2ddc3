package parser

import "testing"

func TestIsNoise(t *testing.T) {
	p := New(Options{})
	tests := []struct {
		input string
		want  bool
	}{
		{"合計", true},
		{"¥2,680", true},
		{"3点", true},
		{"PayPay", true},
		{"小計 ¥1,200", true},
		{"消費税等 ¥98", true},
		{"お釣り", true},
		{"ポイント残高", true},
		{"12345", true},
		{"ab", true},
		{"  ", true},
		{"外税8%対象", true},
		{"外8%", true},
		{"軽 8%", true},
		{"内10%", true},
		{"SUBTOTAL", true},
		{"明治おいしい牛乳", false},
		{"国産若鶏もも肉", false},
		{"食パン", false},
		{"Coca Cola", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := p.IsNoise(tt.input); got != tt.want {
				t.Errorf("IsNoise(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsDiscountName(t *testing.T) {
	p := New(Options{})
	tests := []struct {
		input string
		want  bool
	}{
		{"国産若鶏もも肉", true},
		{"お買上計", false},
		{"1,980円", false},
		{"3点 お買上", false},
		{"値引き対象", false},
		{"楽天ペイ支払", false},
		{"外8%", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := p.isDiscountName(tt.input); got != tt.want {
				t.Errorf("isDiscountName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
