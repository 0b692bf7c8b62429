package ap

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// NumberPrefix prefixes vendor bill numbers.
const NumberPrefix = "BILL"

// VendorBill model.
type VendorBill struct {
	ID              uuid.UUID            `json:"id"`
	Number          string               `json:"bill_number"`
	VendorID        *uuid.UUID           `json:"vendor_id"`
	VendorName      string               `json:"vendor_name"`
	BillReference   *string              `json:"bill_reference"`
	BillDate        *time.Time           `json:"bill_date"`
	DueDate         *time.Time           `json:"due_date"`
	PurchaseOrderID *uuid.UUID           `json:"purchase_order_id"`
	Status          documents.BillStatus `json:"status"`
	pricing.Totals
	PaidCash  decimal.Decimal  `json:"paid_cash"`
	PaidBank  decimal.Decimal  `json:"paid_bank"`
	CreatedBy *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Lines     []documents.Line `json:"lines,omitempty"`
}

// Paid sums cash and bank settlements.
func (b VendorBill) Paid() decimal.Decimal {
	return b.PaidCash.Add(b.PaidBank)
}

// Outstanding is the unpaid part of the bill total.
func (b VendorBill) Outstanding() decimal.Decimal {
	return b.Amount.Sub(b.Paid())
}

// APAgingBucket summarises outstanding amounts by days past due.
type APAgingBucket struct {
	Current   decimal.Decimal `json:"current"`
	Bucket30  decimal.Decimal `json:"days_1_30"`
	Bucket60  decimal.Decimal `json:"days_31_60"`
	Bucket90  decimal.Decimal `json:"days_61_90"`
	Bucket120 decimal.Decimal `json:"days_over_90"`
	Total     decimal.Decimal `json:"total"`
}

// --- Input DTOs ---

// CreateVendorBillInput for creating bills directly.
type CreateVendorBillInput struct {
	VendorID      *uuid.UUID              `json:"vendor_id,omitempty"`
	VendorName    string                  `json:"vendor_name" validate:"max=200"`
	BillReference *string                 `json:"bill_reference,omitempty" validate:"omitempty,max=100"`
	BillDate      *string                 `json:"bill_date,omitempty"`
	DueDate       *string                 `json:"due_date,omitempty"`
	Lines         []documents.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateVendorBillInput edits a draft bill; nil fields are left unchanged.
type UpdateVendorBillInput struct {
	VendorID      *uuid.UUID               `json:"vendor_id,omitempty"`
	VendorName    *string                  `json:"vendor_name,omitempty" validate:"omitempty,max=200"`
	BillReference *string                  `json:"bill_reference,omitempty" validate:"omitempty,max=100"`
	BillDate      *string                  `json:"bill_date,omitempty"`
	DueDate       *string                  `json:"due_date,omitempty"`
	Lines         *[]documents.LineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// CreateFromPOInput carries the optional header of a converted bill.
type CreateFromPOInput struct {
	BillReference *string `json:"bill_reference,omitempty" validate:"omitempty,max=100"`
	BillDate      *string `json:"bill_date,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	AccountName   *string `json:"account_name,omitempty" validate:"omitempty,max=200"`
}

// StatusInput requests post or cancel.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListVendorBillsRequest for filtering bills.
type ListVendorBillsRequest struct {
	Status          *documents.BillStatus
	VendorID        *uuid.UUID
	PurchaseOrderID *uuid.UUID
	Limit           int
	Offset          int
}
