package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Amounts are the monetary parts of a priced line or document.
type Amounts struct {
	Untaxed decimal.Decimal `json:"untaxed_amount"`
	Tax     decimal.Decimal `json:"tax_amount"`
	Total   decimal.Decimal `json:"total_amount"`
}

// IsCents reports whether d has no precision below 0.01. Amounts are stored
// with two fractional digits, so finer values would be rounded by the column
// after the line was priced.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// PriceLine computes untaxed = qty × price, tax = round(untaxed × pct / 100, 2)
// rounding half away from zero, and total = untaxed + tax.
func PriceLine(quantity int, unitPrice, percent decimal.Decimal) Amounts {
	untaxed := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	tax := untaxed.Mul(percent).Div(hundred).Round(2)
	return Amounts{Untaxed: untaxed, Tax: tax, Total: untaxed.Add(tax)}
}
