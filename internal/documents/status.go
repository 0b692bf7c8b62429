// Package documents holds the pieces shared by orders, vendor bills and
// customer invoices: lifecycle states, line persistence and line payloads.
package documents

import "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"

// OrderStatus is the lifecycle state of sales and purchase orders.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderTransitions: draft → confirmed | cancelled, confirmed → cancelled.
var OrderTransitions = shared.Transitions[OrderStatus]{
	OrderDraft:     {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderCancelled},
}

// ParseOrderStatus validates raw against the closed set.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderDraft, OrderConfirmed, OrderCancelled:
		return s, true
	}
	return "", false
}

// BillStatus is the lifecycle state of vendor bills.
type BillStatus string

const (
	BillDraft     BillStatus = "draft"
	BillPosted    BillStatus = "posted"
	BillCancelled BillStatus = "cancelled"
)

// BillTransitions: draft → posted | cancelled, posted → cancelled.
var BillTransitions = shared.Transitions[BillStatus]{
	BillDraft:  {BillPosted, BillCancelled},
	BillPosted: {BillCancelled},
}

// ParseBillStatus validates raw against the closed set.
func ParseBillStatus(raw string) (BillStatus, bool) {
	switch s := BillStatus(raw); s {
	case BillDraft, BillPosted, BillCancelled:
		return s, true
	}
	return "", false
}

// InvoiceStatus is the lifecycle state of customer invoices.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePosted    InvoiceStatus = "posted"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceTransitions lists user-driven moves. posted ↔ paid is owned by
// payment settlement and is not reachable through a status update.
var InvoiceTransitions = shared.Transitions[InvoiceStatus]{
	InvoiceDraft:  {InvoicePosted, InvoiceCancelled},
	InvoicePosted: {InvoiceCancelled},
}

// ParseInvoiceStatus validates raw against the closed set.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	switch s := InvoiceStatus(raw); s {
	case InvoiceDraft, InvoicePosted, InvoicePaid, InvoiceCancelled:
		return s, true
	}
	return "", false
}
