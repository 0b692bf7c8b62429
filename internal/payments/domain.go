// Package payments settles vendor bills and customer invoices. A payment is
// created as a draft against exactly one document and only moves money on
// the document when it is posted.
package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// NumberPrefix prefixes payment numbers, e.g. PAY-202509-0001.
const NumberPrefix = "PAY"

// Status is the payment lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// Transitions: draft → posted | cancelled, posted → cancelled.
var Transitions = shared.Transitions[Status]{
	StatusDraft:  {StatusPosted, StatusCancelled},
	StatusPosted: {StatusCancelled},
}

// ParseStatus validates raw against the closed set.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusDraft, StatusPosted, StatusCancelled:
		return s, true
	}
	return "", false
}

// PartnerType tells who is on the other side of the payment.
type PartnerType string

const (
	PartnerCustomer PartnerType = "customer"
	PartnerVendor   PartnerType = "vendor"
)

// Direction is send for vendors and receive for customers.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// Method selects which paid column of a vendor bill is moved.
type Method string

const (
	MethodCash Method = "cash"
	MethodBank Method = "bank"
)

// Payment is a settlement of one vendor bill or one customer invoice.
type Payment struct {
	ID                uuid.UUID       `json:"id"`
	Number            string          `json:"payment_number"`
	Status            Status          `json:"status"`
	PartnerType       PartnerType     `json:"partner_type"`
	PartnerName       string          `json:"partner_name"`
	Direction         Direction       `json:"direction"`
	Method            Method          `json:"payment_method"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date"`
	Memo              *string         `json:"memo,omitempty"`
	VendorBillID      *uuid.UUID      `json:"vendor_bill_id,omitempty"`
	CustomerInvoiceID *uuid.UUID      `json:"customer_invoice_id,omitempty"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
}

// DocumentRef identifies the settled document.
func (p Payment) DocumentRef() DocumentRef {
	if p.VendorBillID != nil {
		return DocumentRef{Kind: KindVendorBill, ID: *p.VendorBillID}
	}
	if p.CustomerInvoiceID != nil {
		return DocumentRef{Kind: KindCustomerInvoice, ID: *p.CustomerInvoiceID}
	}
	return DocumentRef{}
}

// CreatePaymentInput is the payload of POST /api/payments.
type CreatePaymentInput struct {
	VendorBillID      *uuid.UUID      `json:"vendor_bill_id,omitempty"`
	CustomerInvoiceID *uuid.UUID      `json:"customer_invoice_id,omitempty"`
	PartnerType       string          `json:"partner_type,omitempty" validate:"omitempty,oneof=customer vendor"`
	PartnerName       string          `json:"partner_name,omitempty" validate:"max=200"`
	Method            string          `json:"payment_method" validate:"required,oneof=cash bank"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       *string         `json:"payment_date,omitempty"`
	Memo              *string         `json:"memo,omitempty" validate:"omitempty,max=500"`
}

// StatusInput requests a status change.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListPaymentsRequest filters the payment list.
type ListPaymentsRequest struct {
	Status            *Status
	VendorBillID      *uuid.UUID
	CustomerInvoiceID *uuid.UUID
	Limit             int
	Offset            int
}
