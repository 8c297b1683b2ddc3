package parser

import (
	"reflect"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"198", 198, true},
		{"2,680", 2680, true},
		{"¥1,234", 1234, true},
		{"500円", 500, true},
		{" 80 ", 80, true},
		{"0", 0, false},
		{"", 0, false},
		{"-80", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full-width digits and yen", "牛乳　￥１９８", "牛乳 ¥198"},
		{"half-width katakana", "ﾊﾞﾅﾅ", "バナナ"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"minus sign", "−80", "-80"},
		{"full-width percent", "値引１０％", "値引10%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  商品A ¥100 \n\n\t\n小計 ¥100\n")
	want := []string{"商品A ¥100", "小計 ¥100"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := splitLines(""); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(0.1 + 0.2); got != 0.3 {
		t.Errorf("round2(0.1+0.2) = %v, want 0.3", got)
	}
	if got := round2(0.7 - 0.4); got != 0.3 {
		t.Errorf("round2(0.7-0.4) = %v, want 0.3", got)
	}
}
