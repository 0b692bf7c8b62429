package ap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/accounting/accounts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/procurement"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// PurchaseOrders reads the source of bill conversion.
type PurchaseOrders interface {
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (procurement.PurchaseOrder, error)
}

// ExpenseAccounts supplies the default account name of bill lines.
type ExpenseAccounts interface {
	DefaultExpenseAccountName(ctx context.Context) (string, error)
}

// VendorNames resolves vendor display names.
type VendorNames interface {
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo     Repository
	builder  *pricing.Builder
	orders   PurchaseOrders
	accounts ExpenseAccounts
	vendors  VendorNames
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, builder *pricing.Builder, orders PurchaseOrders, accounts ExpenseAccounts, vendors VendorNames, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, builder: builder, orders: orders, accounts: accounts, vendors: vendors, logger: logger, now: time.Now}
}

type billDates struct {
	bill, due *time.Time
}

func parseBillDates(billDate, dueDate *string) (billDates, error) {
	var d billDates
	var err error
	if d.bill, err = documents.ParseDate("bill_date", billDate); err != nil {
		return d, err
	}
	if d.due, err = documents.ParseDate("due_date", dueDate); err != nil {
		return d, err
	}
	if d.bill != nil && d.due != nil && d.due.Before(*d.bill) {
		return d, shared.NewValidationError("due_date", "must not be before bill_date")
	}
	return d, nil
}

// CreateVendorBill creates a draft bill priced with purchase taxes.
func (s *Service) CreateVendorBill(ctx context.Context, actor shared.Principal, input CreateVendorBillInput) (VendorBill, error) {
	dates, err := parseBillDates(input.BillDate, input.DueDate)
	if err != nil {
		return VendorBill{}, err
	}
	vendorName, err := s.vendorName(ctx, input.VendorID, input.VendorName)
	if err != nil {
		return VendorBill{}, err
	}
	lines, totals, err := s.price(ctx, documents.PricingInputs(input.Lines), accountNames(input.Lines), nil)
	if err != nil {
		return VendorBill{}, err
	}
	bill := VendorBill{
		ID:            uuid.New(),
		VendorID:      input.VendorID,
		VendorName:    vendorName,
		BillReference: trimmed(input.BillReference),
		BillDate:      dates.bill,
		DueDate:       dates.due,
		Status:        documents.BillDraft,
		Totals:        totals,
		CreatedBy:     actorID(actor),
	}
	if err := s.insert(ctx, actor, bill, lines, "vendor_bill.created", nil); err != nil {
		return VendorBill{}, err
	}
	return s.repo.GetVendorBill(ctx, bill.ID)
}

// CreateVendorBillFromPO converts a confirmed purchase order into a draft
// bill. Taxes are resolved again from the current catalogue, so a product
// removed since the order was placed fails the conversion. Calling it twice
// yields two bills.
func (s *Service) CreateVendorBillFromPO(ctx context.Context, actor shared.Principal, poID uuid.UUID, input CreateFromPOInput) (VendorBill, error) {
	if err := shared.Authorize(actor, "convert purchase orders", shared.FinanceRoles...); err != nil {
		return VendorBill{}, err
	}
	dates, err := parseBillDates(input.BillDate, input.DueDate)
	if err != nil {
		return VendorBill{}, err
	}
	po, err := s.orders.GetPurchaseOrder(ctx, poID)
	if err != nil {
		return VendorBill{}, err
	}
	if po.Status != documents.OrderConfirmed {
		return VendorBill{}, fmt.Errorf("%w: purchase order must be confirmed before creating a bill", shared.ErrInvalidState)
	}

	lines, totals, err := s.price(ctx, documents.Reprice(po.Lines), nil, trimmed(input.AccountName))
	if err != nil {
		return VendorBill{}, fmt.Errorf("reprice purchase order %s: %w", po.Number, err)
	}
	billDate := dates.bill
	if billDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		billDate = &today
	}
	poRef := po.ID
	bill := VendorBill{
		ID:              uuid.New(),
		VendorID:        po.VendorID,
		VendorName:      po.VendorName,
		BillReference:   trimmed(input.BillReference),
		BillDate:        billDate,
		DueDate:         dates.due,
		PurchaseOrderID: &poRef,
		Status:          documents.BillDraft,
		Totals:          totals,
		CreatedBy:       actorID(actor),
	}
	meta := map[string]any{"purchase_order_id": po.ID.String(), "purchase_order_number": po.Number}
	if err := s.insert(ctx, actor, bill, lines, "vendor_bill.created_from_po", meta); err != nil {
		return VendorBill{}, err
	}
	s.logger.Info("vendor bill created from purchase order", slog.String("po", po.Number), slog.String("bill_id", bill.ID.String()))
	return s.repo.GetVendorBill(ctx, bill.ID)
}

func (s *Service) insert(ctx context.Context, actor shared.Principal, bill VendorBill, lines []documents.Line, action string, meta map[string]any) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		at := s.now()
		if bill.BillDate != nil {
			at = *bill.BillDate
		}
		number, err := tx.GenerateBillNumber(ctx, at)
		if err != nil {
			return err
		}
		bill.Number = number
		if err := tx.CreateVendorBill(ctx, bill); err != nil {
			return err
		}
		if err := tx.ReplaceVendorBillLines(ctx, bill.ID, lines, bill.Totals); err != nil {
			return err
		}
		if meta == nil {
			meta = map[string]any{}
		}
		meta["number"] = number
		meta["total"] = bill.Amount.StringFixed(2)
		return tx.Audit(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "vendor_bill", EntityID: bill.ID.String(), Meta: meta})
	})
}

// UpdateVendorBill edits a draft bill and optionally replaces its lines.
func (s *Service) UpdateVendorBill(ctx context.Context, id uuid.UUID, input UpdateVendorBillInput) (VendorBill, error) {
	dates, err := parseBillDates(input.BillDate, input.DueDate)
	if err != nil {
		return VendorBill{}, err
	}
	var lines []documents.Line
	var totals pricing.Totals
	if input.Lines != nil {
		lines, totals, err = s.price(ctx, documents.PricingInputs(*input.Lines), accountNames(*input.Lines), nil)
		if err != nil {
			return VendorBill{}, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.LockVendorBill(ctx, id)
		if err != nil {
			return err
		}
		if bill.Status != documents.BillDraft {
			return fmt.Errorf("%w: only draft vendor bills can be edited", shared.ErrInvalidState)
		}
		if input.VendorID != nil {
			bill.VendorID = input.VendorID
		}
		if input.VendorName != nil || input.VendorID != nil {
			name := ""
			if input.VendorName != nil {
				name = *input.VendorName
			}
			if bill.VendorName, err = s.vendorName(ctx, bill.VendorID, name); err != nil {
				return err
			}
		}
		if input.BillReference != nil {
			bill.BillReference = trimmed(input.BillReference)
		}
		if dates.bill != nil {
			bill.BillDate = dates.bill
		}
		if dates.due != nil {
			bill.DueDate = dates.due
		}
		if bill.BillDate != nil && bill.DueDate != nil && bill.DueDate.Before(*bill.BillDate) {
			return shared.NewValidationError("due_date", "must not be before bill_date")
		}
		if err := tx.UpdateVendorBillHeader(ctx, bill); err != nil {
			return err
		}
		if input.Lines != nil {
			return tx.ReplaceVendorBillLines(ctx, id, lines, totals)
		}
		return nil
	})
	if err != nil {
		return VendorBill{}, err
	}
	return s.repo.GetVendorBill(ctx, id)
}

// UpdateStatus dispatches a status request to posting or cancellation.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Principal, id uuid.UUID, raw string) (VendorBill, error) {
	target, ok := documents.ParseBillStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return VendorBill{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	switch target {
	case documents.BillPosted:
		return s.PostVendorBill(ctx, actor, id)
	case documents.BillCancelled:
		return s.CancelVendorBill(ctx, actor, id)
	}
	return VendorBill{}, fmt.Errorf("%w: vendor bills cannot be moved back to draft", shared.ErrInvalidState)
}

// PostVendorBill flips a draft bill to posted.
func (s *Service) PostVendorBill(ctx context.Context, actor shared.Principal, id uuid.UUID) (VendorBill, error) {
	if err := shared.Authorize(actor, "post vendor bills", shared.FinanceRoles...); err != nil {
		return VendorBill{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.LockVendorBill(ctx, id)
		if err != nil {
			return err
		}
		if bill.Status != documents.BillDraft && bill.Status != "" {
			return fmt.Errorf("%w: only draft vendor bills can be posted", shared.ErrInvalidState)
		}
		if err := tx.UpdateVendorBillStatus(ctx, id, documents.BillPosted); err != nil {
			return err
		}
		return tx.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "vendor_bill.posted",
			Entity:   "vendor_bill",
			EntityID: id.String(),
			Meta:     map[string]any{"number": bill.Number, "total": bill.Amount.StringFixed(2)},
		})
	})
	if err != nil {
		return VendorBill{}, err
	}
	return s.repo.GetVendorBill(ctx, id)
}

// CancelVendorBill cancels a draft or posted bill without settlements.
func (s *Service) CancelVendorBill(ctx context.Context, actor shared.Principal, id uuid.UUID) (VendorBill, error) {
	if err := shared.Authorize(actor, "cancel vendor bills", shared.FinanceRoles...); err != nil {
		return VendorBill{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.LockVendorBill(ctx, id)
		if err != nil {
			return err
		}
		if err := documents.BillTransitions.Check("vendor bill", bill.Status, documents.BillCancelled); err != nil {
			return err
		}
		if bill.Paid().IsPositive() {
			return fmt.Errorf("%w: vendor bill has posted payments; cancel them first", shared.ErrInvalidState)
		}
		if err := tx.UpdateVendorBillStatus(ctx, id, documents.BillCancelled); err != nil {
			return err
		}
		return tx.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "vendor_bill.cancelled",
			Entity:   "vendor_bill",
			EntityID: id.String(),
			Meta:     map[string]any{"number": bill.Number, "from": bill.Status},
		})
	})
	if err != nil {
		return VendorBill{}, err
	}
	return s.repo.GetVendorBill(ctx, id)
}

func (s *Service) GetVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error) {
	return s.repo.GetVendorBill(ctx, id)
}

func (s *Service) ListVendorBills(ctx context.Context, req ListVendorBillsRequest) ([]VendorBill, int, error) {
	return s.repo.ListVendorBills(ctx, req)
}

// CalculateAPAging returns outstanding posted bills grouped by days past due.
// Bills without a due date age from their bill date.
func (s *Service) CalculateAPAging(ctx context.Context, asOf time.Time) (APAgingBucket, error) {
	bills, err := s.repo.ListOutstandingBills(ctx)
	if err != nil {
		return APAgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	bucket := APAgingBucket{}
	for _, bill := range bills {
		balance := bill.Outstanding()
		if !balance.IsPositive() {
			continue
		}
		due := bill.DueDate
		if due == nil {
			due = bill.BillDate
		}
		daysOverdue := 0
		if due != nil {
			daysOverdue = int(asOf.Sub(*due).Hours() / 24)
		}

		switch {
		case daysOverdue <= 0:
			bucket.Current = bucket.Current.Add(balance)
		case daysOverdue <= 30:
			bucket.Bucket30 = bucket.Bucket30.Add(balance)
		case daysOverdue <= 60:
			bucket.Bucket60 = bucket.Bucket60.Add(balance)
		case daysOverdue <= 90:
			bucket.Bucket90 = bucket.Bucket90.Add(balance)
		default:
			bucket.Bucket120 = bucket.Bucket120.Add(balance)
		}
		bucket.Total = bucket.Total.Add(balance)
	}
	return bucket, nil
}

// price builds bill lines. names holds per-line account names from the
// request; fallback applies to every line without one, and the default
// expense account covers the rest.
func (s *Service) price(ctx context.Context, inputs []pricing.LineInput, names []*string, fallback *string) ([]documents.Line, pricing.Totals, error) {
	priced, totals, err := s.builder.Build(ctx, inputs, pricing.DirectionPurchase)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	var defaultName string
	lines := make([]documents.Line, len(priced))
	for i, l := range priced {
		line := documents.FromPriced(l)
		switch {
		case i < len(names) && names[i] != nil:
			line.AccountName = names[i]
		case fallback != nil:
			line.AccountName = fallback
		default:
			if defaultName == "" {
				if defaultName, err = s.defaultAccount(ctx); err != nil {
					return nil, pricing.Totals{}, err
				}
			}
			name := defaultName
			line.AccountName = &name
		}
		lines[i] = line
	}
	return lines, totals, nil
}

func (s *Service) defaultAccount(ctx context.Context) (string, error) {
	if s.accounts == nil {
		return accounts.FallbackExpenseAccount, nil
	}
	return s.accounts.DefaultExpenseAccountName(ctx)
}

func (s *Service) vendorName(ctx context.Context, id *uuid.UUID, supplied string) (string, error) {
	name := strings.TrimSpace(supplied)
	if name != "" || id == nil || s.vendors == nil {
		return name, nil
	}
	name, err := s.vendors.ContactName(ctx, *id)
	if errors.Is(err, shared.ErrNotFound) {
		return "", fmt.Errorf("%w: vendor %s", shared.ErrNotFound, id)
	}
	return name, err
}

func accountNames(reqs []documents.LineRequest) []*string {
	out := make([]*string, len(reqs))
	for i, r := range reqs {
		out[i] = trimmed(r.AccountName)
	}
	return out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func actorID(p shared.Principal) *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}

