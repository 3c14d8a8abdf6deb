package sheet

import (
	"strconv"
	"time"
)

// CellKind discriminates the value held by a Cell. A cell carries exactly one
// payload; the reader performs format-specific coercion once, and downstream
// code switches on Kind instead of re-guessing types.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is one untyped spreadsheet cell after coercion.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// RawGrid is the ordered row/column view of the uploaded file. It is never
// mutated after Read returns it.
type RawGrid [][]Cell

// EmptyCell returns the canonical empty cell.
func EmptyCell() Cell { return Cell{Kind: KindEmpty} }

// TextCell wraps a string value.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// NumberCell wraps a numeric value.
func NumberCell(f float64) Cell { return Cell{Kind: KindNumber, Number: f} }

// DateCell wraps a resolved calendar date.
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Date: t} }

// String renders the cell the way it should appear in prepared text lines.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// IsEmpty reports whether the cell holds no usable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || (c.Kind == KindText && c.Text == "")
}
