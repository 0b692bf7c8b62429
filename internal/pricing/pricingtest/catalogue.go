// Package pricingtest provides an in-memory product and tax catalogue for
// tests of the document services.
package pricingtest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Catalogue implements pricing.ProductLookup and pricing.TaxLookup.
type Catalogue struct {
	mu       sync.Mutex
	products map[uuid.UUID]pricing.Product
	taxes    map[string]pricing.TaxRule
}

func NewCatalogue() *Catalogue {
	return &Catalogue{products: map[uuid.UUID]pricing.Product{}, taxes: map[string]pricing.TaxRule{}}
}

// WithGST18 registers the "GST18" rule applicable in both directions.
func (c *Catalogue) WithGST18() *Catalogue {
	c.AddTax(pricing.TaxRule{
		Name:                 "GST18",
		ComputationMethod:    pricing.MethodPercentage,
		Value:                decimal.NewFromInt(18),
		ApplicableOnSales:    true,
		ApplicableOnPurchase: true,
	})
	return c
}

func (c *Catalogue) AddTax(rule pricing.TaxRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxes[rule.Name] = rule
}

// AddProduct registers a product and returns its id.
func (c *Catalogue) AddProduct(name string, taxName *string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New()
	c.products[id] = pricing.Product{ID: id, Name: name, TaxName: taxName}
	return id
}

// RemoveProduct deletes a product, simulating a catalogue change after a
// document was created.
func (c *Catalogue) RemoveProduct(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

func (c *Catalogue) ProductByID(_ context.Context, id uuid.UUID) (pricing.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return pricing.Product{}, shared.ErrNotFound
}

func (c *Catalogue) ProductByName(_ context.Context, name string) (pricing.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.Name == name {
			return p, nil
		}
	}
	return pricing.Product{}, shared.ErrNotFound
}

func (c *Catalogue) FirstTaxByName(_ context.Context, name string) (pricing.TaxRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.taxes[name]; ok {
		return r, nil
	}
	return pricing.TaxRule{}, shared.ErrNotFound
}

// Builder returns a pricing.Builder backed by the catalogue.
func (c *Catalogue) Builder() *pricing.Builder {
	return pricing.NewBuilder(c, pricing.NewResolver(c))
}

// Ptr returns a pointer to s.
func Ptr(s string) *string { return &s }
