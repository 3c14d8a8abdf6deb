package pipeline

import (
	"math"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// PostProcess normalizes raw extraction output into final transactions:
// sign resolution, date recovery against the original grid, balance-like
// amount flagging, card-payment noise filtering and a final validity filter.
// Invalid records are dropped, never coerced.
func PostProcess(raw []rawTransaction, grid sheet.RawGrid, headerRow int, hm HeaderMap, defaultCurrency string, log zerolog.Logger) []Transaction {
	out := make([]Transaction, 0, len(raw))

	for _, rt := range raw {
		amount := normalizeSign(rt)
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			log.Warn().Str("merchant", rt.Merchant).Msg("dropping transaction with non-finite amount")
			continue
		}

		date, ok := resolveDate(rt, grid, headerRow, hm)
		if !ok {
			log.Warn().Str("raw_date", rt.Date).Int("line_index", rt.LineIndex).
				Msg("dropping transaction with unrecoverable date")
			continue
		}

		tx := Transaction{
			Amount:        amount,
			Currency:      resolveRawCurrency(rt.Currency, defaultCurrency),
			Date:          date,
			Merchant:      strings.TrimSpace(rt.Merchant),
			PaymentMethod: strings.TrimSpace(rt.PaymentMethod),
			Note:          strings.TrimSpace(rt.Note),
			Category:      strings.TrimSpace(rt.Category),
			LineIndex:     rt.LineIndex,
		}

		if tx.Amount < 0 && matchesCardPayment(tx.Merchant+" "+tx.Note) {
			log.Debug().Str("merchant", tx.Merchant).Float64("amount", tx.Amount).
				Msg("filtering card-bill-payment receipt")
			continue
		}

		out = append(out, tx)
	}

	flagBalanceLikeAmounts(out, log)
	return out
}

// normalizeSign applies the output convention: positive = money out. An
// explicit direction wins; otherwise refund-like wording flips a positive
// amount negative.
func normalizeSign(rt rawTransaction) float64 {
	amount := rt.Amount

	switch strings.ToLower(strings.TrimSpace(rt.Direction)) {
	case "credit":
		return -math.Abs(amount)
	case "debit":
		return math.Abs(amount)
	}

	if amount > 0 && matchesRefund(rt.Merchant+" "+rt.Note) {
		return -amount
	}
	return amount
}

func matchesRefund(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range refundKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// resolveDate validates the model-supplied date and, when it fails, walks
// back to the original grid row via line_index. Without a mapped date column
// every cell of the row is scanned. Only after recovery fails is the
// transaction given up on.
//
// Only a strict ISO YYYY-MM-DD string is trusted as-is. A non-ISO date goes
// back to the original cell, which is authoritative; running it through the
// lenient parser instead would re-guess day/month order.
func resolveDate(rt rawTransaction, grid sheet.RawGrid, headerRow int, hm HeaderMap) (civil.Date, bool) {
	if d, err := civil.ParseDate(strings.TrimSpace(rt.Date)); err == nil && d.IsValid() {
		return d, true
	}

	if rt.LineIndex <= 0 {
		return civil.Date{}, false
	}
	rowIdx := headerRow + rt.LineIndex
	if rowIdx >= len(grid) {
		return civil.Date{}, false
	}
	row := grid[rowIdx]

	if col, ok := hm[FieldDate]; ok {
		if d, ok := ParseDateCell(cellAt(row, col)); ok {
			return d, true
		}
		return civil.Date{}, false
	}

	for _, cell := range row {
		if d, ok := ParseDateCell(cell); ok {
			return d, true
		}
	}
	return civil.Date{}, false
}

func resolveRawCurrency(currency, defaultCurrency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || strings.EqualFold(currency, "null") {
		return strings.ToUpper(defaultCurrency)
	}
	return currency
}

// flagBalanceLikeAmounts logs any amount whose magnitude exceeds 10x the
// median positive amount. Deliberately a diagnostic, never a filter: the
// heuristic misfires on legitimately large one-off transactions.
func flagBalanceLikeAmounts(txs []Transaction, log zerolog.Logger) {
	var positives []float64
	for _, tx := range txs {
		if tx.Amount > 0 {
			positives = append(positives, tx.Amount)
		}
	}
	if len(positives) == 0 {
		return
	}

	sort.Float64s(positives)
	median := positives[len(positives)/2]
	if len(positives)%2 == 0 {
		median = (positives[len(positives)/2-1] + positives[len(positives)/2]) / 2
	}
	if median <= 0 {
		return
	}

	for _, tx := range txs {
		if math.Abs(tx.Amount) > balanceFlagFactor*median {
			log.Warn().Float64("amount", tx.Amount).Float64("median", median).
				Str("merchant", tx.Merchant).Int("line_index", tx.LineIndex).
				Msg("amount looks like a running balance, not a transaction")
		}
	}
}
