package pipeline

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

func postGrid() (sheet.RawGrid, int, HeaderMap) {
	grid := sheet.RawGrid{
		textRow("Date", "Amount", "Description"),
		textRow("13/02/2024", "10.00", "Lunch"),
		textRow("2024-01-16", "20.00", "Groceries"),
	}
	headerRow, hm := LocateHeader(grid)
	return grid, headerRow, hm
}

func TestPostProcessSignNormalization(t *testing.T) {
	grid, headerRow, hm := postGrid()

	raw := []rawTransaction{
		{Amount: 50, Direction: "debit", Date: "2024-01-15", Merchant: "Shop"},
		{Amount: 20, Direction: "credit", Date: "2024-01-15", Merchant: "Employer"},
		{Amount: -30, Direction: "debit", Date: "2024-01-15", Merchant: "Negative debit"},
		{Amount: 15, Date: "2024-01-15", Merchant: "Store refund"},
		{Amount: 12, Date: "2024-01-15", Merchant: "Plain expense"},
	}

	out := PostProcess(raw, grid, headerRow, hm, "USD", zerolog.Nop())
	if len(out) != 5 {
		t.Fatalf("got %d transactions, want 5", len(out))
	}

	want := []float64{50, -20, 30, -15, 12}
	for i, w := range want {
		if out[i].Amount != w {
			t.Errorf("tx[%d].Amount = %v, want %v (merchant %q)", i, out[i].Amount, w, out[i].Merchant)
		}
	}
}

func TestPostProcessDateRecovery(t *testing.T) {
	grid, headerRow, hm := postGrid()

	raw := []rawTransaction{
		// Malformed model date, recoverable from grid row 1 (13/02/2024).
		{Amount: 10, Date: "2024-13-45", LineIndex: 1, Merchant: "Lunch"},
		// Malformed and unrecoverable: line_index missing.
		{Amount: 10, Date: "garbage", Merchant: "Lost"},
	}

	out := PostProcess(raw, grid, headerRow, hm, "USD", zerolog.Nop())
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}
	if out[0].Date.String() != "2024-02-13" {
		t.Errorf("recovered date = %s, want 2024-02-13", out[0].Date)
	}
}

// A parseable but non-ISO model date must not be trusted: the original cell
// decides, not the day/month heuristic.
func TestPostProcessNonISODateDefersToGrid(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("Date", "Amount", "Description"),
		{
			sheet.DateCell(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			sheet.NumberCell(42),
			sheet.TextCell("Hardware"),
		},
	}
	headerRow, hm := LocateHeader(grid)

	raw := []rawTransaction{
		// Heuristic parsing would read this month-first as 2024-05-03.
		{Amount: 42, Date: "05/03/2024", LineIndex: 1, Merchant: "Hardware"},
		// Non-ISO and no provenance: dropped, never heuristically guessed.
		{Amount: 7, Date: "05/03/2024", Merchant: "No provenance"},
	}

	out := PostProcess(raw, grid, headerRow, hm, "USD", zerolog.Nop())
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}
	if out[0].Date.String() != "2024-03-05" {
		t.Errorf("date = %s, want 2024-03-05 from the original cell", out[0].Date)
	}
}

func TestPostProcessDateRecoveryScansRowWithoutDateColumn(t *testing.T) {
	grid := sheet.RawGrid{
		textRow("ColA", "ColB"),
		textRow("something", "15/01/2024"),
	}
	// No date field mapped.
	hm := HeaderMap{}

	raw := []rawTransaction{{Amount: 5, Date: "bad", LineIndex: 1}}
	out := PostProcess(raw, grid, 0, hm, "USD", zerolog.Nop())
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}
	if out[0].Date.String() != "2024-01-15" {
		t.Errorf("scanned date = %s, want 2024-01-15", out[0].Date)
	}
}

func TestPostProcessDropsNonFinite(t *testing.T) {
	grid, headerRow, hm := postGrid()
	raw := []rawTransaction{
		{Amount: math.NaN(), Date: "2024-01-15"},
		{Amount: math.Inf(1), Date: "2024-01-15"},
		{Amount: 10, Date: "2024-01-15"},
	}
	out := PostProcess(raw, grid, headerRow, hm, "USD", zerolog.Nop())
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}
}

func TestPostProcessNoiseFilter(t *testing.T) {
	grid, headerRow, hm := postGrid()
	raw := []rawTransaction{
		{Amount: 200, Direction: "credit", Date: "2024-01-15", Merchant: "CREDIT CARD PAYMENT THANK YOU"},
		{Amount: 45, Date: "2024-01-15", Merchant: "Groceries"},
	}
	out := PostProcess(raw, grid, headerRow, hm, "USD", zerolog.Nop())
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1 (card payment filtered)", len(out))
	}
	if out[0].Merchant != "Groceries" {
		t.Errorf("surviving merchant = %q", out[0].Merchant)
	}
}

func TestPostProcessBalanceFlagLogsButKeeps(t *testing.T) {
	grid, headerRow, hm := postGrid()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	raw := []rawTransaction{
		{Amount: 10, Date: "2024-01-15", Merchant: "a"},
		{Amount: 12, Date: "2024-01-15", Merchant: "b"},
		{Amount: 11, Date: "2024-01-15", Merchant: "c"},
		{Amount: 5000, Date: "2024-01-15", Merchant: "probably a balance"},
	}
	out := PostProcess(raw, grid, headerRow, hm, "USD", log)

	// Flagged, never dropped.
	if len(out) != 4 {
		t.Fatalf("got %d transactions, want 4", len(out))
	}
	if !strings.Contains(buf.String(), "running balance") {
		t.Errorf("expected balance warning in log, got: %s", buf.String())
	}
}

func TestPostProcessCurrencyDefault(t *testing.T) {
	grid, headerRow, hm := postGrid()
	raw := []rawTransaction{
		{Amount: 10, Date: "2024-01-15", Currency: "gbp"},
		{Amount: 10, Date: "2024-01-15"},
		{Amount: 10, Date: "2024-01-15", Currency: "null"},
	}
	out := PostProcess(raw, grid, headerRow, hm, "eur", zerolog.Nop())
	if len(out) != 3 {
		t.Fatalf("got %d transactions, want 3", len(out))
	}
	for i, want := range []string{"GBP", "EUR", "EUR"} {
		if out[i].Currency != want {
			t.Errorf("tx[%d].Currency = %q, want %q", i, out[i].Currency, want)
		}
	}
}
