package products

import "github.com/shopspring/decimal"

// ProductForm is the create/update payload.
type ProductForm struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Type          string          `json:"type" validate:"omitempty,oneof=goods service"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	HSNCode       *string         `json:"hsn_code" validate:"omitempty,max=16"`
	TaxName       *string         `json:"tax_name"`
	CurrentStock  int             `json:"current_stock" validate:"gte=0"`
}

// ImportRowError reports a spreadsheet row that could not be imported.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a catalogue import.
type ImportResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped []ImportRowError `json:"skipped"`
}
