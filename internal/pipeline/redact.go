package pipeline

import (
	"regexp"
	"strings"
)

const mask = "[REDACTED]"

// Patterns applied in every mode. Amount-bearing and date-bearing tokens are
// the signal the extraction step needs, so blanket digit rules deliberately
// exclude anything with a decimal point or in ISO date shape.
var (
	// Long digit run right after an account/card keyword.
	reAccountRef = regexp.MustCompile(`(?i)\b(account|acct|a/c|card|iban|sort\s*code|routing)\b[\s#:.-]*[\dXx*\s-]{4,}`)

	// PAN-like run: 13-19 digits, optionally space/dash grouped, no decimal.
	rePAN = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)

	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	rePhone = regexp.MustCompile(`(?:\+\d{1,3}[ -]?)?(?:\(\d{2,4}\)[ -]?)?\d{3}[ -]\d{3,4}[ -]?\d{0,4}\b`)

	// Line starting with an address/name label.
	reLabelLine = regexp.MustCompile(`(?i)^\s*(?:\d+:\s*)?(address|name|customer|account holder|holder)\b\s*[:|-]`)

	// Strict mode: long all-digit runs that do not look monetary.
	reLongDigits = regexp.MustCompile(`\b\d{9,}\b`)

	// Strict mode: date-like digit clusters outside ISO format.
	reLooseDate = regexp.MustCompile(`\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b`)

	reDecimal = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d+$|^\d+\.\d+$`)
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	governmentIDKeywords = []string{"ssn", "social security", "passport", "tax id", "tax-id", "taxid", "national insurance", "nino", "driver's license", "drivers license"}
)

// Redactor masks personally identifiable fragments before any text leaves
// the process. Masking is irreversible; it runs on prepared lines only, never
// on the grid the deterministic parser reads.
type Redactor struct {
	strict      bool
	customWords []string
}

// NewRedactor builds a redactor. strict enables the high-privacy rules;
// customWords are operator-supplied literals masked unconditionally.
func NewRedactor(strict bool, customWords []string) *Redactor {
	words := make([]string, 0, len(customWords))
	for _, w := range customWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return &Redactor{strict: strict, customWords: words}
}

// Apply redacts a single prepared line.
func (r *Redactor) Apply(line string) string {
	for _, w := range r.customWords {
		line = replaceFold(line, w)
	}

	// Apply runs before the "N: " prefix is added, so masking the whole
	// line never disturbs provenance numbering.
	if reLabelLine.MatchString(line) {
		return mask
	}

	line = reAccountRef.ReplaceAllString(line, mask)
	line = reEmail.ReplaceAllString(line, mask)
	line = maskTokens(line, rePAN, false)
	line = maskTokens(line, rePhone, false)

	if r.strict {
		for _, kw := range governmentIDKeywords {
			if strings.Contains(strings.ToLower(line), kw) {
				return mask
			}
		}
		line = maskTokens(line, reLongDigits, false)
		line = maskTokens(line, reLooseDate, true)
	}

	return line
}

// maskTokens replaces regex matches unless the match is a decimal amount or
// an ISO date. allowDateShape permits masking date-shaped clusters (used only
// by the strict loose-date rule, which exists to catch exactly those).
func maskTokens(line string, re *regexp.Regexp, allowDateShape bool) string {
	return re.ReplaceAllStringFunc(line, func(m string) string {
		trimmed := strings.TrimSpace(m)
		if reDecimal.MatchString(trimmed) || reISODate.MatchString(trimmed) {
			return m
		}
		if !allowDateShape && reLooseDate.MatchString(trimmed) {
			return m
		}
		return mask
	})
}

func replaceFold(line, word string) string {
	lower := strings.ToLower(line)
	target := strings.ToLower(word)
	var b strings.Builder
	for {
		idx := strings.Index(lower, target)
		if idx == -1 {
			b.WriteString(line)
			return b.String()
		}
		b.WriteString(line[:idx])
		b.WriteString(mask)
		line = line[idx+len(word):]
		lower = lower[idx+len(target):]
	}
}
