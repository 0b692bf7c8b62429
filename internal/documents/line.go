package documents

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// Line is a persisted document line.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	HSNCode     *string         `json:"hsn_code,omitempty"`
	AccountName *string         `json:"account_name,omitempty"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	pricing.Amounts
}

// FromPriced converts a priced line into its persisted form.
func FromPriced(l pricing.Line) Line {
	id := l.ProductID
	return Line{
		ID:          uuid.New(),
		Position:    l.Position,
		ProductID:   &id,
		ProductName: l.ProductName,
		HSNCode:     l.HSNCode,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		TaxPercent:  l.TaxPercent,
		Amounts:     l.Amounts,
	}
}

// LineRequest is the payload for one line of an order, bill or invoice.
type LineRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required_without=ProductID,max=200"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	AccountName *string         `json:"account_name,omitempty"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
}

// PricingInput converts the request into a pricing input.
func (r LineRequest) PricingInput() pricing.LineInput {
	return pricing.LineInput{
		ProductID:   r.ProductID,
		ProductName: strings.TrimSpace(r.ProductName),
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
}

// PricingInputs converts a batch of requests.
func PricingInputs(reqs []LineRequest) []pricing.LineInput {
	out := make([]pricing.LineInput, len(reqs))
	for i, r := range reqs {
		out[i] = r.PricingInput()
	}
	return out
}

// Reprice turns persisted lines back into pricing inputs, keeping the
// quantity and unit price but re-resolving the product.
func Reprice(lines []Line) []pricing.LineInput {
	out := make([]pricing.LineInput, len(lines))
	for i, l := range lines {
		out[i] = pricing.LineInput{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}

// Totals sums persisted lines.
func Totals(lines []Line) pricing.Totals {
	amounts := make([]pricing.Amounts, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amounts
	}
	return pricing.Aggregate(amounts)
}
