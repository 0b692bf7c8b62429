package ar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/sales/orders"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// RepositoryPort defines data access methods for AR.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error
	GetInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error)
	LockInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]CustomerInvoice, int, error)
	ListOutstanding(ctx context.Context) ([]CustomerInvoice, error)
	CreateInvoice(ctx context.Context, inv CustomerInvoice) error
	UpdateHeader(ctx context.Context, inv CustomerInvoice) error
	ReplaceLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status documents.InvoiceStatus) error
	Audit(ctx context.Context, log shared.AuditLog) error
	GenerateInvoiceNumber(ctx context.Context, at time.Time) (string, error)
}

// SalesOrders reads the source of invoice conversion.
type SalesOrders interface {
	Get(ctx context.Context, id uuid.UUID) (*orders.SalesOrder, error)
}

// CustomerNames resolves customer display names.
type CustomerNames interface {
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
}

// Service handles AR business logic.
type Service struct {
	repo      RepositoryPort
	builder   *pricing.Builder
	orders    SalesOrders
	customers CustomerNames
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, builder *pricing.Builder, orders SalesOrders, customers CustomerNames, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, builder: builder, orders: orders, customers: customers, logger: logger, now: time.Now}
}

func parseInvoiceDates(invoiceDate, dueDate *string) (*time.Time, *time.Time, error) {
	inv, err := documents.ParseDate("invoice_date", invoiceDate)
	if err != nil {
		return nil, nil, err
	}
	due, err := documents.ParseDate("due_date", dueDate)
	if err != nil {
		return nil, nil, err
	}
	if err := checkDueDate(inv, due); err != nil {
		return nil, nil, err
	}
	return inv, due, nil
}

func checkDueDate(invoiceDate, dueDate *time.Time) error {
	if invoiceDate != nil && dueDate != nil && dueDate.Before(*invoiceDate) {
		return shared.NewValidationError("due_date", "must not be before invoice_date")
	}
	return nil
}

// CreateInvoice creates a draft invoice priced with sales taxes.
func (s *Service) CreateInvoice(ctx context.Context, actor shared.Principal, input CreateInvoiceInput) (CustomerInvoice, error) {
	invoiceDate, dueDate, err := parseInvoiceDates(input.InvoiceDate, input.DueDate)
	if err != nil {
		return CustomerInvoice{}, err
	}
	name, err := s.customerName(ctx, input.CustomerID, input.CustomerName)
	if err != nil {
		return CustomerInvoice{}, err
	}
	lines, totals, err := s.price(ctx, documents.PricingInputs(input.Lines), accountIDs(input.Lines), nil)
	if err != nil {
		return CustomerInvoice{}, err
	}
	inv := CustomerInvoice{
		ID:           uuid.New(),
		CustomerID:   input.CustomerID,
		CustomerName: name,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		Status:       documents.InvoiceDraft,
		Totals:       totals,
		CreatedBy:    actorID(actor),
	}
	if err := s.insert(ctx, actor, inv, lines, "customer_invoice.created", nil); err != nil {
		return CustomerInvoice{}, err
	}
	return s.repo.GetInvoice(ctx, inv.ID)
}

// CreateInvoiceFromSO converts a confirmed sales order into a draft invoice
// with taxes resolved again from the current catalogue.
func (s *Service) CreateInvoiceFromSO(ctx context.Context, actor shared.Principal, soID uuid.UUID, input CreateFromSOInput) (CustomerInvoice, error) {
	if err := shared.Authorize(actor, "convert sales orders", shared.FinanceRoles...); err != nil {
		return CustomerInvoice{}, err
	}
	invoiceDate, dueDate, err := parseInvoiceDates(input.InvoiceDate, input.DueDate)
	if err != nil {
		return CustomerInvoice{}, err
	}
	so, err := s.orders.Get(ctx, soID)
	if err != nil {
		return CustomerInvoice{}, err
	}
	if so.Status != documents.OrderConfirmed {
		return CustomerInvoice{}, fmt.Errorf("%w: sales order must be confirmed before creating an invoice", shared.ErrInvalidState)
	}

	lines, totals, err := s.price(ctx, documents.Reprice(so.Lines), nil, input.AccountID)
	if err != nil {
		return CustomerInvoice{}, fmt.Errorf("reprice sales order %s: %w", so.Number, err)
	}
	if invoiceDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		invoiceDate = &today
		if err := checkDueDate(invoiceDate, dueDate); err != nil {
			return CustomerInvoice{}, err
		}
	}
	soRef := so.ID
	inv := CustomerInvoice{
		ID:           uuid.New(),
		CustomerID:   so.CustomerID,
		CustomerName: so.CustomerName,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		SalesOrderID: &soRef,
		Status:       documents.InvoiceDraft,
		Totals:       totals,
		CreatedBy:    actorID(actor),
	}
	meta := map[string]any{"sales_order_id": so.ID.String(), "sales_order_number": so.Number}
	if err := s.insert(ctx, actor, inv, lines, "customer_invoice.created_from_so", meta); err != nil {
		return CustomerInvoice{}, err
	}
	s.logger.Info("customer invoice created from sales order", slog.String("so", so.Number), slog.String("invoice_id", inv.ID.String()))
	return s.repo.GetInvoice(ctx, inv.ID)
}

func (s *Service) insert(ctx context.Context, actor shared.Principal, inv CustomerInvoice, lines []documents.Line, action string, meta map[string]any) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		at := s.now()
		if inv.InvoiceDate != nil {
			at = *inv.InvoiceDate
		}
		number, err := repo.GenerateInvoiceNumber(ctx, at)
		if err != nil {
			return err
		}
		inv.Number = number
		if err := repo.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		if err := repo.ReplaceLines(ctx, inv.ID, lines, inv.Totals); err != nil {
			return err
		}
		if meta == nil {
			meta = map[string]any{}
		}
		meta["number"] = number
		meta["total"] = inv.Amount.StringFixed(2)
		return repo.Audit(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "customer_invoice", EntityID: inv.ID.String(), Meta: meta})
	})
}

// UpdateInvoice edits a draft invoice and optionally replaces its lines.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (CustomerInvoice, error) {
	invoiceDate, dueDate, err := parseInvoiceDates(input.InvoiceDate, input.DueDate)
	if err != nil {
		return CustomerInvoice{}, err
	}
	var lines []documents.Line
	var totals pricing.Totals
	if input.Lines != nil {
		if lines, totals, err = s.price(ctx, documents.PricingInputs(*input.Lines), accountIDs(*input.Lines), nil); err != nil {
			return CustomerInvoice{}, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		inv, err := repo.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != documents.InvoiceDraft {
			return fmt.Errorf("%w: only draft customer invoices can be edited", shared.ErrInvalidState)
		}
		if input.CustomerID != nil {
			inv.CustomerID = input.CustomerID
		}
		if input.CustomerName != nil || input.CustomerID != nil {
			name := ""
			if input.CustomerName != nil {
				name = *input.CustomerName
			}
			if inv.CustomerName, err = s.customerName(ctx, inv.CustomerID, name); err != nil {
				return err
			}
		}
		if invoiceDate != nil {
			inv.InvoiceDate = invoiceDate
		}
		if dueDate != nil {
			inv.DueDate = dueDate
		}
		if err := checkDueDate(inv.InvoiceDate, inv.DueDate); err != nil {
			return err
		}
		if err := repo.UpdateHeader(ctx, inv); err != nil {
			return err
		}
		if input.Lines != nil {
			return repo.ReplaceLines(ctx, id, lines, totals)
		}
		return nil
	})
	if err != nil {
		return CustomerInvoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// UpdateStatus dispatches a status request. Paid is reachable only through
// payment settlement.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Principal, id uuid.UUID, raw string) (CustomerInvoice, error) {
	target, ok := documents.ParseInvoiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return CustomerInvoice{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	switch target {
	case documents.InvoicePosted:
		return s.PostInvoice(ctx, actor, id)
	case documents.InvoiceCancelled:
		return s.CancelInvoice(ctx, actor, id)
	case documents.InvoicePaid:
		return CustomerInvoice{}, fmt.Errorf("%w: invoices become paid through payments", shared.ErrInvalidState)
	}
	return CustomerInvoice{}, fmt.Errorf("%w: customer invoices cannot be moved back to draft", shared.ErrInvalidState)
}

// PostInvoice flips a draft invoice to posted.
func (s *Service) PostInvoice(ctx context.Context, actor shared.Principal, id uuid.UUID) (CustomerInvoice, error) {
	if err := shared.Authorize(actor, "post customer invoices", shared.FinanceRoles...); err != nil {
		return CustomerInvoice{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		inv, err := repo.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != documents.InvoiceDraft && inv.Status != "" {
			return fmt.Errorf("%w: only draft customer invoices can be posted", shared.ErrInvalidState)
		}
		if err := repo.UpdateStatus(ctx, id, documents.InvoicePosted); err != nil {
			return err
		}
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "customer_invoice.posted",
			Entity:   "customer_invoice",
			EntityID: id.String(),
			Meta:     map[string]any{"number": inv.Number, "total": inv.Amount.StringFixed(2)},
		})
	})
	if err != nil {
		return CustomerInvoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// CancelInvoice cancels a draft or posted invoice without settlements.
func (s *Service) CancelInvoice(ctx context.Context, actor shared.Principal, id uuid.UUID) (CustomerInvoice, error) {
	if err := shared.Authorize(actor, "cancel customer invoices", shared.FinanceRoles...); err != nil {
		return CustomerInvoice{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		inv, err := repo.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := documents.InvoiceTransitions.Check("customer invoice", inv.Status, documents.InvoiceCancelled); err != nil {
			return err
		}
		if inv.AmountPaid.IsPositive() {
			return fmt.Errorf("%w: customer invoice has posted payments; cancel them first", shared.ErrInvalidState)
		}
		if err := repo.UpdateStatus(ctx, id, documents.InvoiceCancelled); err != nil {
			return err
		}
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "customer_invoice.cancelled",
			Entity:   "customer_invoice",
			EntityID: id.String(),
			Meta:     map[string]any{"number": inv.Number, "from": inv.Status},
		})
	})
	if err != nil {
		return CustomerInvoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// GetInvoice returns one invoice with lines.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// ListInvoices returns a page of invoices.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]CustomerInvoice, int, error) {
	return s.repo.ListInvoices(ctx, req)
}

// CalculateARAging groups outstanding posted invoices by due date buckets.
func (s *Service) CalculateARAging(ctx context.Context, asOf time.Time) (ARAgingBucket, error) {
	invoices, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return ARAgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	var bucket ARAgingBucket
	for _, inv := range invoices {
		if inv.Status != documents.InvoicePosted {
			continue
		}
		balance := inv.Outstanding()
		if !balance.IsPositive() {
			continue
		}
		due := inv.DueDate
		if due == nil {
			due = inv.InvoiceDate
		}
		days := 0
		if due != nil {
			days = int(asOf.Sub(*due).Hours() / 24)
		}
		switch {
		case days <= 0:
			bucket.Current = bucket.Current.Add(balance)
		case days <= 30:
			bucket.Bucket30 = bucket.Bucket30.Add(balance)
		case days <= 60:
			bucket.Bucket60 = bucket.Bucket60.Add(balance)
		case days <= 90:
			bucket.Bucket90 = bucket.Bucket90.Add(balance)
		default:
			bucket.Bucket120 = bucket.Bucket120.Add(balance)
		}
		bucket.Total = bucket.Total.Add(balance)
	}
	return bucket, nil
}

func (s *Service) price(ctx context.Context, inputs []pricing.LineInput, accounts []*uuid.UUID, fallback *uuid.UUID) ([]documents.Line, pricing.Totals, error) {
	priced, totals, err := s.builder.Build(ctx, inputs, pricing.DirectionSales)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	lines := make([]documents.Line, len(priced))
	for i, l := range priced {
		line := documents.FromPriced(l)
		line.AccountID = fallback
		if i < len(accounts) && accounts[i] != nil {
			line.AccountID = accounts[i]
		}
		lines[i] = line
	}
	return lines, totals, nil
}

func (s *Service) customerName(ctx context.Context, id *uuid.UUID, supplied string) (string, error) {
	name := strings.TrimSpace(supplied)
	if name != "" || id == nil || s.customers == nil {
		return name, nil
	}
	name, err := s.customers.ContactName(ctx, *id)
	if errors.Is(err, shared.ErrNotFound) {
		return "", fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
	}
	return name, err
}

func accountIDs(reqs []documents.LineRequest) []*uuid.UUID {
	out := make([]*uuid.UUID, len(reqs))
	for i, r := range reqs {
		out[i] = r.AccountID
	}
	return out
}

func actorID(p shared.Principal) *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
