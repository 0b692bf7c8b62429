package taxes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

const (
	MethodPercentage = pricing.MethodPercentage
	MethodFixed      = "fixed"
)

// Tax represents a tax configuration.
type Tax struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	ComputationMethod    string          `json:"computation_method"`
	Value                decimal.Decimal `json:"value"`
	ApplicableOnSales    bool            `json:"is_applicable_on_sales"`
	ApplicableOnPurchase bool            `json:"is_applicable_on_purchase"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Name                 string          `json:"name" validate:"required,max=100"`
	ComputationMethod    string          `json:"computation_method" validate:"required,oneof=percentage fixed"`
	Value                decimal.Decimal `json:"value"`
	ApplicableOnSales    *bool           `json:"is_applicable_on_sales"`
	ApplicableOnPurchase *bool           `json:"is_applicable_on_purchase"`
}

// Rule converts the row into the pricing view of a tax.
func (t Tax) Rule() pricing.TaxRule {
	return pricing.TaxRule{
		Name:                 t.Name,
		ComputationMethod:    t.ComputationMethod,
		Value:                t.Value,
		ApplicableOnSales:    t.ApplicableOnSales,
		ApplicableOnPurchase: t.ApplicableOnPurchase,
	}
}
