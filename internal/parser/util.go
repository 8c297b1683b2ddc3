package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// OCR output mixes full-width and half-width forms freely. Folding first lets
// every pattern assume ASCII digits, "%" and "¥".
var textReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2212", "-", // minus sign
	"\u2010", "-", // hyphen
	"\u00a0", " ", // no-break space
)

// normalizeText folds width variants and line endings. NFC recombines the
// voiced marks that half-width katakana carry as separate runes.
func normalizeText(text string) string {
	return textReplacer.Replace(norm.NFC.String(width.Fold.String(text)))
}

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// parseAmount converts "1,234" or "¥1,234円" to a whole-yen amount.
// Only positive values are reported as ok.
func parseAmount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "¥", "")
	s = strings.ReplaceAll(s, "円", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// itemKey is the dedup identity of a line item.
type itemKey struct {
	name   string
	amount int
}
