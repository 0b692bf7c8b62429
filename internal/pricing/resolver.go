// Package pricing turns order and billing lines into taxed amounts.
package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Direction selects which applicability flag of a tax is honoured.
type Direction string

const (
	DirectionSales    Direction = "sales"
	DirectionPurchase Direction = "purchase"
)

// MethodPercentage is the only computation method that yields a line percentage.
const MethodPercentage = "percentage"

// TaxRule is the subset of a tax row the resolver needs.
type TaxRule struct {
	Name                 string
	ComputationMethod    string
	Value                decimal.Decimal
	ApplicableOnSales    bool
	ApplicableOnPurchase bool
}

// TaxLookup returns the first tax named name (created_at, id order) or shared.ErrNotFound.
type TaxLookup interface {
	FirstTaxByName(ctx context.Context, name string) (TaxRule, error)
}

// Resolver maps a product's tax reference to a percentage.
type Resolver struct {
	taxes TaxLookup
}

// NewResolver constructs a Resolver.
func NewResolver(taxes TaxLookup) *Resolver {
	return &Resolver{taxes: taxes}
}

// Percent returns the applicable percentage for name in direction dir.
// A missing reference, an unknown name, a non-applicable direction or a
// non-percentage method all resolve to zero. Only storage failures are errors.
func (r *Resolver) Percent(ctx context.Context, name *string, dir Direction) (decimal.Decimal, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return decimal.Zero, nil
	}
	rule, err := r.taxes.FirstTaxByName(ctx, strings.TrimSpace(*name))
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return rule.PercentFor(dir), nil
}

// PercentFor applies the direction and method rules to a single tax row.
func (t TaxRule) PercentFor(dir Direction) decimal.Decimal {
	if t.ComputationMethod != MethodPercentage {
		return decimal.Zero
	}
	switch dir {
	case DirectionSales:
		if !t.ApplicableOnSales {
			return decimal.Zero
		}
	case DirectionPurchase:
		if !t.ApplicableOnPurchase {
			return decimal.Zero
		}
	default:
		return decimal.Zero
	}
	return t.Value
}
