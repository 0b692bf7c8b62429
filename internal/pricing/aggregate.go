package pricing

import "github.com/shopspring/decimal"

// Totals are the header sums persisted on orders, bills and invoices.
type Totals struct {
	Untaxed decimal.Decimal `json:"total_untaxed"`
	Tax     decimal.Decimal `json:"total_tax"`
	Amount  decimal.Decimal `json:"total_amount"`
}

// Aggregate sums line amounts; Amount is always Untaxed + Tax.
func Aggregate(lines []Amounts) Totals {
	untaxed, tax := decimal.Zero, decimal.Zero
	for _, l := range lines {
		untaxed = untaxed.Add(l.Untaxed)
		tax = tax.Add(l.Tax)
	}
	return Totals{Untaxed: untaxed, Tax: tax, Amount: untaxed.Add(tax)}
}

// AggregateLines sums already priced lines.
func AggregateLines(lines []Line) Totals {
	amounts := make([]Amounts, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amounts
	}
	return Aggregate(amounts)
}
