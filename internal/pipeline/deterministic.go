package pipeline

import (
	"strings"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// ParseDeterministic is the AI-free baseline: it maps the grid directly into
// transactions using the header map and explicit parsing rules. It is pure,
// makes no external calls, and never fails; rows that cannot be parsed are
// skipped.
func ParseDeterministic(grid sheet.RawGrid, headerRow int, hm HeaderMap, defaultCurrency string) []Transaction {
	var out []Transaction

	for i := headerRow + 1; i < len(grid); i++ {
		row := grid[i]
		lineIndex := i - headerRow

		tx, ok := parseRow(row, hm, defaultCurrency)
		if !ok {
			continue
		}
		tx.LineIndex = lineIndex

		// Receipts of paying off a card are not economic transactions.
		if tx.Amount < 0 && matchesCardPayment(tx.Merchant+" "+tx.Note) {
			continue
		}

		out = append(out, tx)
	}

	return out
}

func parseRow(row []sheet.Cell, hm HeaderMap, defaultCurrency string) (Transaction, bool) {
	var tx Transaction

	dateCol, ok := hm[FieldDate]
	if !ok {
		return tx, false
	}
	date, ok := ParseDateCell(cellAt(row, dateCol))
	if !ok {
		return tx, false
	}
	tx.Date = date

	amount, amountText, ok := resolveAmount(row, hm)
	if !ok {
		return tx, false
	}
	tx.Amount = amount

	tx.Currency = resolveCurrency(row, hm, amountText, defaultCurrency)
	tx.Merchant = textAt(row, hm, FieldDescription)
	tx.Category = textAt(row, hm, FieldCategory)
	tx.PaymentMethod = textAt(row, hm, FieldPaymentMethod)

	return tx, true
}

// resolveAmount prefers a direct amount column. Failing that, debit/credit
// columns apply: they are mutually exclusive per row, a debit magnitude is
// the positive (expense) amount, a credit magnitude negative; when both are
// populated the amount is debit minus credit. Returns the raw cell text too
// so currency can be sniffed from it.
func resolveAmount(row []sheet.Cell, hm HeaderMap) (float64, string, bool) {
	if col, ok := hm[FieldAmount]; ok {
		cell := cellAt(row, col)
		if v, ok := amountFromCell(cell); ok {
			return v, cell.String(), true
		}
	}

	debitCol, hasDebit := hm[FieldDebit]
	creditCol, hasCredit := hm[FieldCredit]
	if !hasDebit && !hasCredit {
		return 0, "", false
	}

	var debit, credit float64
	var debitOK, creditOK bool
	var text string

	if hasDebit {
		cell := cellAt(row, debitCol)
		if v, ok := amountFromCell(cell); ok {
			debit, debitOK = v, true
			text = cell.String()
		}
	}
	if hasCredit {
		cell := cellAt(row, creditCol)
		if v, ok := amountFromCell(cell); ok {
			credit, creditOK = v, true
			if text == "" {
				text = cell.String()
			}
		}
	}

	switch {
	case debitOK && creditOK:
		return debit - credit, text, true
	case debitOK:
		return debit, text, true
	case creditOK:
		return -credit, text, true
	default:
		return 0, "", false
	}
}

func resolveCurrency(row []sheet.Cell, hm HeaderMap, amountText, defaultCurrency string) string {
	if col, ok := hm[FieldCurrency]; ok {
		cell := cellAt(row, col)
		if cell.Kind == sheet.KindText && strings.TrimSpace(cell.Text) != "" {
			return strings.ToUpper(strings.TrimSpace(cell.Text))
		}
	}
	if code := sniffCurrency(amountText); code != "" {
		return code
	}
	return strings.ToUpper(defaultCurrency)
}

func cellAt(row []sheet.Cell, col int) sheet.Cell {
	if col < 0 || col >= len(row) {
		return sheet.EmptyCell()
	}
	return row[col]
}

func textAt(row []sheet.Cell, hm HeaderMap, field Field) string {
	col, ok := hm[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(row, col).String())
}

func matchesCardPayment(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range cardPaymentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
