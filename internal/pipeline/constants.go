package pipeline

// Alias dictionary for header scoring and column mapping. Normalized header
// text (lower-case, single spaces) is matched by substring against these.
// The order of fieldPriority matters: each column can satisfy at most one
// field, and earlier fields claim columns first.
var fieldAliases = map[Field][]string{
	FieldDate:          {"date", "transaction date", "posting date", "posted", "value date", "fecha", "datum"},
	FieldAmount:        {"amount", "transaction amount", "amt", "value", "sum", "importe", "betrag", "montant"},
	FieldDebit:         {"debit", "withdrawal", "money out", "paid out", "charge", "cargo"},
	FieldCredit:        {"credit", "deposit", "money in", "paid in", "abono"},
	FieldCurrency:      {"currency", "ccy", "curr", "moneda"},
	FieldDescription:   {"description", "merchant", "narrative", "details", "payee", "memo", "particulars", "concepto"},
	FieldCategory:      {"category", "type", "categoria"},
	FieldPaymentMethod: {"payment method", "method", "card", "channel", "mode"},
}

var fieldPriority = []Field{
	FieldDate,
	FieldAmount,
	FieldDebit,
	FieldCredit,
	FieldCurrency,
	FieldDescription,
	FieldCategory,
	FieldPaymentMethod,
}

// Phrases identifying card-bill-payment receipts. A negative transaction
// whose merchant/description matches one of these is a payment toward the
// card, not an economic transaction, and is filtered out.
var cardPaymentPhrases = []string{
	"card payment",
	"payment received",
	"payment - thank you",
	"payment thank you",
	"card payment received",
	"autopay",
	"auto pay",
	"automatic payment",
	"online payment received",
	"credit card payment",
	"bill payment received",
	"direct debit payment received",
}

// Keywords that mark a positive amount as a refund/credit when the model
// supplied no direction.
var refundKeywords = []string{
	"refund",
	"reversal",
	"reversed",
	"cashback",
	"cash back",
	"chargeback",
	"rebate",
	"return",
	"credit adjustment",
}

// Currency symbols and codes sniffed out of amount cell text when no
// currency column exists. Symbols match anywhere (they abut digits); codes
// match only on word boundaries so "audit" never reads as AUD.
var currencySigns = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
	"¥": "JPY",
	"₹": "INR",
}

var currencyCodes = map[string]string{
	"usd": "USD",
	"gbp": "GBP",
	"eur": "EUR",
	"jpy": "JPY",
	"inr": "INR",
	"cad": "CAD",
	"aud": "AUD",
	"chf": "CHF",
}

const (
	// headerScanLimit bounds the header search to the top of the grid.
	headerScanLimit = 10

	// balanceFlagFactor: amounts larger than this multiple of the median
	// positive amount are flagged as probable running balances. Warning only.
	balanceFlagFactor = 10.0
)
