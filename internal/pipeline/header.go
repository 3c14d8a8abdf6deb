package pipeline

import (
	"strings"
	"unicode"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// LocateHeader finds the header row within the first rows of the grid and
// builds the field-to-column map from it. When no row scores a single alias
// hit, row 0 is used; that is a graceful degradation, not an error.
func LocateHeader(grid sheet.RawGrid) (int, HeaderMap) {
	if len(grid) == 0 {
		return 0, HeaderMap{}
	}

	headerRow := 0
	bestScore := 0

	limit := len(grid)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		score := scoreRow(grid[i])
		if score > bestScore {
			bestScore = score
			headerRow = i
		}
	}

	return headerRow, mapColumns(grid[headerRow])
}

// scoreRow counts alias hits across every cell of a candidate row. A cell
// can hit multiple fields (e.g. "transaction date" hits date once) and each
// hit counts.
func scoreRow(row []sheet.Cell) int {
	score := 0
	for _, cell := range row {
		if cell.Kind != sheet.KindText {
			continue
		}
		norm := normalizeHeader(cell.Text)
		if norm == "" {
			continue
		}
		for _, aliases := range fieldAliases {
			for _, alias := range aliases {
				if strings.Contains(norm, alias) {
					score++
					break
				}
			}
		}
	}
	return score
}

// mapColumns assigns columns to fields. Fields claim columns in fixed
// priority order, first matching column wins per field, and a column can
// satisfy at most one field.
func mapColumns(headerRow []sheet.Cell) HeaderMap {
	normalized := make([]string, len(headerRow))
	for i, cell := range headerRow {
		if cell.Kind == sheet.KindText {
			normalized[i] = normalizeHeader(cell.Text)
		}
	}

	hm := make(HeaderMap)
	claimed := make(map[int]bool)

	for _, field := range fieldPriority {
		for col, norm := range normalized {
			if norm == "" || claimed[col] {
				continue
			}
			if matchesField(norm, field) {
				hm[field] = col
				claimed[col] = true
				break
			}
		}
	}

	return hm
}

func matchesField(norm string, field Field) bool {
	for _, alias := range fieldAliases[field] {
		if strings.Contains(norm, alias) {
			return true
		}
	}
	return false
}

// normalizeHeader lowers the text, splits camelCase boundaries and collapses
// every non-alphanumeric run into a single space.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	prevLower := false
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			if unicode.IsUpper(r) && prevLower {
				b.WriteByte(' ')
			}
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSpace = true
			prevLower = false
		}
	}

	return b.String()
}
