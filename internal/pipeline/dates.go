package pipeline

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// ParseDateCell resolves a grid cell to a calendar date. Attempt order:
// native date cell, spreadsheet serial number, then the string routine.
// Any failure yields ok=false, never a partially-correct date.
func ParseDateCell(c sheet.Cell) (civil.Date, bool) {
	switch c.Kind {
	case sheet.KindDate:
		return civil.DateOf(c.Date), true
	case sheet.KindNumber:
		return parseSerialDate(c.Number)
	case sheet.KindText:
		return ParseDateString(c.Text)
	default:
		return civil.Date{}, false
	}
}

// Serial day counts land here when the source sheet lost its date styling.
// Anything outside 1900-2100 is presumed to be a plain number, not a date.
func parseSerialDate(serial float64) (civil.Date, bool) {
	if serial < 60 || serial > 73415 {
		return civil.Date{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}

// ParseDateString resolves a textual date. Attempt order: ISO YYYY-MM-DD,
// separator-delimited P1/P2/P3 with a day/month heuristic, then a short list
// of generic calendar layouts.
//
// Known limitation: when both of the first two parts are <= 12 the string is
// genuinely ambiguous and month-first is assumed. There is no per-statement
// locale signal to do better.
func ParseDateString(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, false
	}

	if d, err := civil.ParseDate(s); err == nil {
		return d, d.IsValid()
	}

	if d, ok := parseDelimitedDate(s); ok {
		return d, true
	}

	for _, layout := range []string{
		"2 Jan 2006",
		"02 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 January 2006",
		"02 Jan 06",
		"2006/01/02",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}

	return civil.Date{}, false
}

// parseDelimitedDate handles P1/P2/P3 with "/", "-" or "." separators.
// Disambiguation: first part > 12 means day-first, second part > 12 means
// month-first, otherwise month-first by default.
func parseDelimitedDate(s string) (civil.Date, bool) {
	var parts []string
	for _, sep := range []string{"/", "-", "."} {
		if strings.Count(s, sep) == 2 {
			parts = strings.Split(s, sep)
			break
		}
	}
	if len(parts) != 3 {
		return civil.Date{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return civil.Date{}, false
		}
		nums[i] = n
	}

	// Year-first form (2024/01/15) needs no heuristic.
	if nums[0] > 31 {
		return validDate(nums[0], nums[1], nums[2])
	}

	year := nums[2]
	if year < 100 {
		year += 2000
	}

	var month, day int
	switch {
	case nums[0] > 12:
		day, month = nums[0], nums[1]
	case nums[1] > 12:
		month, day = nums[0], nums[1]
	default:
		month, day = nums[0], nums[1]
	}

	return validDate(year, month, day)
}

func validDate(year, month, day int) (civil.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return civil.Date{}, false
	}
	d := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}
