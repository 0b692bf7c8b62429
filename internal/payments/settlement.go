package payments

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// DocumentKind names the table a payment settles.
type DocumentKind string

const (
	KindVendorBill      DocumentKind = "vendor_bill"
	KindCustomerInvoice DocumentKind = "customer_invoice"
)

func (k DocumentKind) label() string {
	if k == KindVendorBill {
		return "vendor bill"
	}
	return "customer invoice"
}

// DocumentRef points at one vendor bill or customer invoice.
type DocumentRef struct {
	Kind DocumentKind
	ID   uuid.UUID
}

// Document is the settlement view of a vendor bill or customer invoice.
// Bills track PaidCash and PaidBank; invoices track AmountPaid.
type Document struct {
	Kind        DocumentKind
	ID          uuid.UUID
	Number      string
	Status      string
	PartnerName string
	Total       decimal.Decimal
	PaidCash    decimal.Decimal
	PaidBank    decimal.Decimal
	AmountPaid  decimal.Decimal
}

// tolerance absorbs representation noise when comparing against outstanding.
var tolerance = decimal.New(1, -6)

// Applied is the amount already settled on the document.
func (d Document) Applied() decimal.Decimal {
	if d.Kind == KindVendorBill {
		return d.PaidCash.Add(d.PaidBank)
	}
	return d.AmountPaid
}

// Outstanding is total minus applied.
func (d Document) Outstanding() decimal.Decimal {
	return d.Total.Sub(d.Applied())
}

func (d Document) partner() (PartnerType, Direction) {
	if d.Kind == KindVendorBill {
		return PartnerVendor, DirectionSend
	}
	return PartnerCustomer, DirectionReceive
}

// CheckPayable verifies that amount may be applied to doc right now.
func CheckPayable(doc Document, amount decimal.Decimal) error {
	switch doc.Status {
	case "", string(documents.BillDraft), string(documents.BillCancelled):
		status := doc.Status
		if status == "" {
			status = "draft"
		}
		return fmt.Errorf("%w: cannot pay a %s %s", shared.ErrInvalidState, status, doc.Kind.label())
	}
	outstanding := doc.Outstanding()
	if !outstanding.IsPositive() {
		return fmt.Errorf("%w: %s %s is already fully paid", shared.ErrInvalidState, doc.Kind.label(), doc.Number)
	}
	if doc.Status != string(documents.BillPosted) {
		return fmt.Errorf("%w: %s %s is %s", shared.ErrInvalidState, doc.Kind.label(), doc.Number, doc.Status)
	}
	if amount.GreaterThan(outstanding.Add(tolerance)) {
		return fmt.Errorf("%w: payment of %s exceeds outstanding %s on %s %s",
			shared.ErrInvariantViolation, amount.StringFixed(2), outstanding.StringFixed(2), doc.Kind.label(), doc.Number)
	}
	return nil
}

// Apply returns doc with amount added to the paid column selected by method.
// An invoice becomes paid once fully covered.
func Apply(doc Document, method Method, amount decimal.Decimal) Document {
	switch doc.Kind {
	case KindVendorBill:
		if method == MethodCash {
			doc.PaidCash = doc.PaidCash.Add(amount)
		} else {
			doc.PaidBank = doc.PaidBank.Add(amount)
		}
	case KindCustomerInvoice:
		doc.AmountPaid = doc.AmountPaid.Add(amount)
		if doc.AmountPaid.GreaterThanOrEqual(doc.Total) {
			doc.Status = string(documents.InvoicePaid)
		}
	}
	return doc
}

// Reverse undoes Apply. Paid columns never drop below zero and a paid
// invoice that is no longer covered returns to posted.
func Reverse(doc Document, method Method, amount decimal.Decimal) Document {
	switch doc.Kind {
	case KindVendorBill:
		if method == MethodCash {
			doc.PaidCash = floorZero(doc.PaidCash.Sub(amount))
		} else {
			doc.PaidBank = floorZero(doc.PaidBank.Sub(amount))
		}
	case KindCustomerInvoice:
		doc.AmountPaid = floorZero(doc.AmountPaid.Sub(amount))
		if doc.Status == string(documents.InvoicePaid) && doc.AmountPaid.LessThan(doc.Total) {
			doc.Status = string(documents.InvoicePosted)
		}
	}
	return doc
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
