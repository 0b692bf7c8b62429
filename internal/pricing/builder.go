package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Product is the catalogue snapshot needed to price a line.
type Product struct {
	ID      uuid.UUID
	Name    string
	HSNCode *string
	TaxName *string
}

// ProductLookup finds products by id or by exact name, returning shared.ErrNotFound.
type ProductLookup interface {
	ProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ProductByName(ctx context.Context, name string) (Product, error)
}

// LineInput is an unpriced line as submitted by a caller.
type LineInput struct {
	ProductID   *uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Line is a priced line ready to persist.
type Line struct {
	Position    int
	ProductID   uuid.UUID
	ProductName string
	HSNCode     *string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	Amounts
}

// Builder resolves products and taxes for a batch of lines.
type Builder struct {
	products ProductLookup
	resolver *Resolver
}

// NewBuilder constructs a Builder.
func NewBuilder(products ProductLookup, resolver *Resolver) *Builder {
	return &Builder{products: products, resolver: resolver}
}

// Build prices every input in order. The product is looked up by id first and
// by name second; if neither matches the whole batch fails with ErrNotFound.
func (b *Builder) Build(ctx context.Context, inputs []LineInput, dir Direction) ([]Line, Totals, error) {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity <= 0 {
			return nil, Totals{}, fmt.Errorf("%w: line %d quantity must be positive", shared.ErrInvariantViolation, i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, Totals{}, fmt.Errorf("%w: line %d unit price must not be negative", shared.ErrInvariantViolation, i+1)
		}
		if !IsCents(in.UnitPrice) {
			return nil, Totals{}, fmt.Errorf("%w: line %d unit price must have at most 2 decimal places", shared.ErrInvariantViolation, i+1)
		}
		product, err := b.resolveProduct(ctx, in)
		if err != nil {
			return nil, Totals{}, err
		}
		pct, err := b.resolver.Percent(ctx, product.TaxName, dir)
		if err != nil {
			return nil, Totals{}, fmt.Errorf("resolve tax for %s: %w", product.Name, err)
		}
		lines = append(lines, Line{
			Position:    i + 1,
			ProductID:   product.ID,
			ProductName: product.Name,
			HSNCode:     product.HSNCode,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxPercent:  pct,
			Amounts:     PriceLine(in.Quantity, in.UnitPrice, pct),
		})
	}
	return lines, AggregateLines(lines), nil
}

func (b *Builder) resolveProduct(ctx context.Context, in LineInput) (Product, error) {
	if in.ProductID != nil && *in.ProductID != uuid.Nil {
		p, err := b.products.ProductByID(ctx, *in.ProductID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return Product{}, err
		}
	}
	name := strings.TrimSpace(in.ProductName)
	if name != "" {
		p, err := b.products.ProductByName(ctx, name)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return Product{}, err
		}
	}
	label := name
	if label == "" && in.ProductID != nil {
		label = in.ProductID.String()
	}
	return Product{}, fmt.Errorf("%w: product %q", shared.ErrNotFound, label)
}
