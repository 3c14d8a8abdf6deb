package pipeline

import (
	"testing"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

func TestParseDeterministicDebitCredit(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Debit", "Credit", "Description"),
		textRow("01/15/2024", "50.00", "", "Coffee Shop"),
		textRow("01/16/2024", "", "20.00", "Refund"),
		textRow("13/02/2024", "10.00", "", "Lunch"),
	}
	headerRow, hm := LocateHeader(grid)
	txs := ParseDeterministic(grid, headerRow, hm, "USD")

	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}

	want := []struct {
		amount   float64
		date     string
		merchant string
		line     int
	}{
		{50, "2024-01-15", "Coffee Shop", 1},
		{-20, "2024-01-16", "Refund", 2},
		{10, "2024-02-13", "Lunch", 3}, // day-first: first part 13 > 12
	}
	for i, w := range want {
		tx := txs[i]
		if tx.Amount != w.amount {
			t.Errorf("tx[%d].Amount = %v, want %v", i, tx.Amount, w.amount)
		}
		if tx.Date.String() != w.date {
			t.Errorf("tx[%d].Date = %s, want %s", i, tx.Date, w.date)
		}
		if tx.Merchant != w.merchant {
			t.Errorf("tx[%d].Merchant = %q, want %q", i, tx.Merchant, w.merchant)
		}
		if tx.LineIndex != w.line {
			t.Errorf("tx[%d].LineIndex = %d, want %d", i, tx.LineIndex, w.line)
		}
		if tx.Currency != "USD" {
			t.Errorf("tx[%d].Currency = %q, want USD", i, tx.Currency)
		}
	}
}

func TestParseDeterministicBothDebitAndCredit(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Debit", "Credit"),
		textRow("2024-01-15", "80.00", "30.00"),
	}
	headerRow, hm := LocateHeader(grid)
	txs := ParseDeterministic(grid, headerRow, hm, "USD")

	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Amount != 50 {
		t.Errorf("Amount = %v, want debit - credit = 50", txs[0].Amount)
	}
}

func TestParseDeterministicSkipsUnparseableRows(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Amount", "Description"),
		textRow("not a date", "50.00", "bad date"),
		textRow("2024-01-15", "", "no amount"),
		textRow("2024-01-16", "12.00", "good"),
	}
	headerRow, hm := LocateHeader(grid)
	txs := ParseDeterministic(grid, headerRow, hm, "USD")

	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Merchant != "good" || txs[0].LineIndex != 3 {
		t.Errorf("unexpected surviving transaction: %+v", txs[0])
	}
}

func TestParseDeterministicCurrency(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Amount", "Currency", "Description"),
		textRow("2024-01-15", "12.00", "gbp", "explicit column"),
		textRow("2024-01-16", "€9.99", "", "sniffed from amount"),
		textRow("2024-01-17", "5.00", "", "fallback default"),
	}
	headerRow, hm := LocateHeader(grid)
	txs := ParseDeterministic(grid, headerRow, hm, "usd")

	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	for i, want := range []string{"GBP", "EUR", "USD"} {
		if txs[i].Currency != want {
			t.Errorf("tx[%d].Currency = %q, want %q", i, txs[i].Currency, want)
		}
	}
}

func TestParseDeterministicFiltersCardPayments(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Debit", "Credit", "Description"),
		textRow("2024-01-15", "", "200.00", "CREDIT CARD PAYMENT THANK YOU"),
		textRow("2024-01-16", "45.00", "", "Groceries"),
		textRow("2024-01-17", "", "75.00", "CARD PAYMENT"),
	}
	headerRow, hm := LocateHeader(grid)
	txs := ParseDeterministic(grid, headerRow, hm, "USD")

	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1 (card payments filtered)", len(txs))
	}
	if txs[0].Merchant != "Groceries" {
		t.Errorf("surviving merchant = %q, want Groceries", txs[0].Merchant)
	}
}
