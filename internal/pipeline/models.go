package pipeline

import (
	"cloud.google.com/go/civil"
)

// Field names the semantic columns a statement can carry. A HeaderMap binds
// each present field to exactly one column index.
type Field string

const (
	FieldDate          Field = "date"
	FieldAmount        Field = "amount"
	FieldDebit         Field = "debit"
	FieldCredit        Field = "credit"
	FieldCurrency      Field = "currency"
	FieldDescription   Field = "description"
	FieldCategory      Field = "category"
	FieldPaymentMethod Field = "payment_method"
)

// HeaderMap maps semantic fields to column indexes in the RawGrid. Absence of
// a field is legal; the parsers adapt.
type HeaderMap map[Field]int

// Transaction is the pipeline's output unit. Sign convention: positive
// amount = money out (expense), negative = money in (refund/income/credit).
type Transaction struct {
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Date          civil.Date `json:"date"`
	Merchant      string     `json:"merchant,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Note          string     `json:"note,omitempty"`
	Category      string     `json:"category,omitempty"`

	// LineIndex is a 1-based provenance pointer back to the prepared data
	// line (and thus the source row). Zero means unknown.
	LineIndex int `json:"line_index,omitempty"`
}

// rawTransaction is what an extraction provider returns before
// post-processing. Date is kept as the raw string the model produced so that
// recovery from malformed dates can consult the original grid; direction is
// advisory and consumed during sign normalization.
type rawTransaction struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"`
	Merchant      string  `json:"merchant"`
	PaymentMethod string  `json:"payment_method"`
	Note          string  `json:"note"`
	Category      string  `json:"category"`
	Direction     string  `json:"direction"`
	LineIndex     int     `json:"line_index"`
}

// PreparedLine is one redacted, whitespace-normalized text line derived from
// one grid row. LineIndex is 1-based over data rows; the source grid row is
// headerRow + LineIndex.
type PreparedLine struct {
	LineIndex int
	Text      string
}
