package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// ParseAmount extracts a signed numeric amount from free-form cell text.
// Handles currency symbols/codes, thousands separators, accounting-style
// parentheses for negatives, and trailing CR/DR markers.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "CR"):
		negative = true
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "DR"):
		s = s[:len(s)-2]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-':
			negative = true
		case r == ',':
			// thousands separator
		default:
			// currency symbols, codes, whitespace
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// amountFromCell resolves a usable amount from a mapped cell.
func amountFromCell(c sheet.Cell) (float64, bool) {
	switch c.Kind {
	case sheet.KindNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0, false
		}
		return c.Number, true
	case sheet.KindText:
		return ParseAmount(c.Text)
	default:
		return 0, false
	}
}

// sniffCurrency looks for a currency symbol or ISO-ish code embedded in the
// amount cell's text. Returns "" when nothing recognizable is present.
func sniffCurrency(s string) string {
	for sign, code := range currencySigns {
		if strings.Contains(s, sign) {
			return code
		}
	}
	lower := strings.ToLower(s)
	for token, code := range currencyCodes {
		if containsWord(lower, token) {
			return code
		}
	}
	return ""
}

// containsWord matches token only on alphanumeric boundaries so that e.g.
// "audit" does not read as AUD.
func containsWord(s, token string) bool {
	for idx := strings.Index(s, token); idx != -1; {
		before := idx == 0 || !isAlnum(s[idx-1])
		afterIdx := idx + len(token)
		after := afterIdx >= len(s) || !isAlnum(s[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], token)
		if next == -1 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
