package ar

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// NumberPrefix prefixes customer invoice numbers.
const NumberPrefix = "INV"

// CustomerInvoice model.
type CustomerInvoice struct {
	ID           uuid.UUID               `json:"id"`
	Number       string                  `json:"invoice_number"`
	CustomerID   *uuid.UUID              `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	InvoiceDate  *time.Time              `json:"invoice_date"`
	DueDate      *time.Time              `json:"due_date"`
	SalesOrderID *uuid.UUID              `json:"sales_order_id"`
	Status       documents.InvoiceStatus `json:"status"`
	pricing.Totals
	AmountPaid decimal.Decimal  `json:"amount_paid"`
	CreatedBy  *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Lines      []documents.Line `json:"lines,omitempty"`
}

// Outstanding is the unpaid part of the invoice total.
func (inv CustomerInvoice) Outstanding() decimal.Decimal {
	return inv.Amount.Sub(inv.AmountPaid)
}

// ARAgingBucket summarises outstanding amounts by days past due.
type ARAgingBucket struct {
	Current   decimal.Decimal `json:"current"`
	Bucket30  decimal.Decimal `json:"days_1_30"`
	Bucket60  decimal.Decimal `json:"days_31_60"`
	Bucket90  decimal.Decimal `json:"days_61_90"`
	Bucket120 decimal.Decimal `json:"days_over_90"`
	Total     decimal.Decimal `json:"total"`
}

// CreateInvoiceInput for creating invoices directly.
type CreateInvoiceInput struct {
	CustomerID   *uuid.UUID              `json:"customer_id,omitempty"`
	CustomerName string                  `json:"customer_name" validate:"max=200"`
	InvoiceDate  *string                 `json:"invoice_date,omitempty"`
	DueDate      *string                 `json:"due_date,omitempty"`
	Lines        []documents.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateInvoiceInput edits a draft invoice; nil fields are left unchanged.
type UpdateInvoiceInput struct {
	CustomerID   *uuid.UUID               `json:"customer_id,omitempty"`
	CustomerName *string                  `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	InvoiceDate  *string                  `json:"invoice_date,omitempty"`
	DueDate      *string                  `json:"due_date,omitempty"`
	Lines        *[]documents.LineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// CreateFromSOInput carries the optional header of a converted invoice.
type CreateFromSOInput struct {
	InvoiceDate *string    `json:"invoice_date,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
}

// StatusInput requests post or cancel.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListInvoicesRequest for filtering invoices.
type ListInvoicesRequest struct {
	Status       *documents.InvoiceStatus
	CustomerID   *uuid.UUID
	SalesOrderID *uuid.UUID
	Limit        int
	Offset       int
}
