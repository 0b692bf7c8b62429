package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

const (
	TypeGoods   = "goods"
	TypeService = "service"
)

// Product represents a catalogue item.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	HSNCode       *string         `json:"hsn_code"`
	TaxName       *string         `json:"tax_name"`
	CurrentStock  int             `json:"current_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Snapshot converts the product into the pricing view.
func (p Product) Snapshot() pricing.Product {
	return pricing.Product{ID: p.ID, Name: p.Name, HSNCode: p.HSNCode, TaxName: p.TaxName}
}

// HSNResult is one match from the HSN/SAC directory.
type HSNResult struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
