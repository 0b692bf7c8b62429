package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

const idempotencyModule = "payments"

// idempotencyScope keeps keys per user so one caller can never replay
// another caller's payment.
func idempotencyScope(actor shared.Principal) string {
	return idempotencyModule + ":" + actor.UserID.String()
}

// IdempotencyKeys deduplicates create requests; *shared.IdempotencyStore
// satisfies it.
type IdempotencyKeys interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Complete(ctx context.Context, key, module, resourceID string) error
	Lookup(ctx context.Context, key, module string) (string, error)
	Delete(ctx context.Context, key, module string) error
}

// RefreshScheduler asks the worker to rebuild the dashboard snapshot.
type RefreshScheduler interface {
	EnqueueDashboardRefresh(ctx context.Context) error
}

// Recorder counts settlements per document kind.
type Recorder interface {
	PaymentApplied(kind string)
	PaymentReversed(kind string)
}

// Service implements payment creation and settlement.
type Service struct {
	repo     Repository
	keys     IdempotencyKeys
	refresh  RefreshScheduler
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises Service.
type Option func(*Service)

// WithIdempotencyKeys enables Idempotency-Key handling on create.
func WithIdempotencyKeys(keys IdempotencyKeys) Option {
	return func(s *Service) { s.keys = keys }
}

// WithRefreshScheduler enqueues a dashboard refresh after money moves.
func WithRefreshScheduler(r RefreshScheduler) Option {
	return func(s *Service) { s.refresh = r }
}

// WithRecorder attaches settlement metrics.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService builds the payment service.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePayment records a draft payment against one document. The document
// is validated but not changed. When key is set, a repeated request returns
// the payment created by the first one and replayed is true.
func (s *Service) CreatePayment(ctx context.Context, actor shared.Principal, input CreatePaymentInput, key string) (payment Payment, replayed bool, err error) {
	if err := shared.Authorize(actor, "record payments", shared.FinanceRoles...); err != nil {
		return Payment{}, false, err
	}
	ref, err := documentRef(input)
	if err != nil {
		return Payment{}, false, err
	}
	amount := input.Amount
	if !amount.IsPositive() {
		return Payment{}, false, fmt.Errorf("%w: payment amount must be greater than zero", shared.ErrInvariantViolation)
	}
	if !pricing.IsCents(amount) {
		return Payment{}, false, fmt.Errorf("%w: payment amount must have at most 2 decimal places", shared.ErrInvariantViolation)
	}
	method := Method(strings.ToLower(strings.TrimSpace(input.Method)))
	if method != MethodCash && method != MethodBank {
		return Payment{}, false, shared.NewValidationError("payment_method", "must be cash or bank")
	}
	date, err := documents.ParseDate("payment_date", input.PaymentDate)
	if err != nil {
		return Payment{}, false, err
	}
	if date == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		date = &today
	}

	key = strings.TrimSpace(key)
	scope := idempotencyScope(actor)
	if key != "" && s.keys != nil {
		prior, err := s.claimKey(ctx, key, scope)
		if err != nil {
			return Payment{}, false, err
		}
		if prior != nil {
			return *prior, true, nil
		}
	}

	payment, err = s.insert(ctx, actor, ref, input, amount, method, *date)
	if key != "" && s.keys != nil {
		if err != nil {
			if derr := s.keys.Delete(ctx, key, scope); derr != nil {
				s.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", derr))
			}
			return Payment{}, false, err
		}
		if cerr := s.keys.Complete(ctx, key, scope, payment.ID.String()); cerr != nil {
			s.logger.Warn("complete idempotency key", slog.String("key", key), slog.Any("error", cerr))
		}
	}
	if err != nil {
		return Payment{}, false, err
	}
	return payment, false, nil
}

func (s *Service) claimKey(ctx context.Context, key, scope string) (*Payment, error) {
	err := s.keys.CheckAndInsert(ctx, key, scope)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, shared.ErrIdempotencyConflict) {
		return nil, err
	}
	resourceID, err := s.keys.Lookup(ctx, key, scope)
	if err != nil {
		return nil, err
	}
	if resourceID == "" {
		return nil, fmt.Errorf("%w: a request with this idempotency key is still in progress", shared.ErrDuplicate)
	}
	id, err := uuid.Parse(resourceID)
	if err != nil {
		return nil, fmt.Errorf("idempotency key %s: %w", key, err)
	}
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) insert(ctx context.Context, actor shared.Principal, ref DocumentRef, input CreatePaymentInput, amount decimal.Decimal, method Method, date time.Time) (Payment, error) {
	var id uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		doc, err := repo.GetDocument(ctx, ref)
		if err != nil {
			return err
		}
		if err := CheckPayable(doc, amount); err != nil {
			return err
		}
		partnerType, direction := doc.partner()
		if raw := strings.ToLower(strings.TrimSpace(input.PartnerType)); raw != "" && PartnerType(raw) != partnerType {
			return fmt.Errorf("%w: partner_type %s does not match a %s", shared.ErrInvariantViolation, raw, ref.Kind.label())
		}
		name := strings.TrimSpace(input.PartnerName)
		if name == "" {
			name = doc.PartnerName
		}
		number, err := repo.GeneratePaymentNumber(ctx, date)
		if err != nil {
			return err
		}
		p := Payment{
			ID:          uuid.New(),
			Number:      number,
			Status:      StatusDraft,
			PartnerType: partnerType,
			PartnerName: name,
			Direction:   direction,
			Method:      method,
			Amount:      amount,
			PaymentDate: date,
			Memo:        input.Memo,
			CreatedBy:   actorID(actor),
		}
		if ref.Kind == KindVendorBill {
			p.VendorBillID = &ref.ID
		} else {
			p.CustomerInvoiceID = &ref.ID
		}
		if err := repo.InsertPayment(ctx, p); err != nil {
			return err
		}
		id = p.ID
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "payment.created",
			Entity:   "payment",
			EntityID: p.ID.String(),
			Meta: map[string]any{
				"number":      number,
				"amount":      amount.StringFixed(2),
				"method":      string(method),
				"document":    string(ref.Kind),
				"document_id": ref.ID.String(),
			},
		})
	})
	if err != nil {
		return Payment{}, err
	}
	return s.repo.GetPayment(ctx, id)
}

// UpdateStatus moves a payment through its lifecycle. Posting applies the
// amount to the document and cancelling a posted payment reverses it; both
// happen under row locks on the payment and then the document.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Principal, id uuid.UUID, raw string) (Payment, error) {
	if err := shared.Authorize(actor, "settle payments", shared.FinanceRoles...); err != nil {
		return Payment{}, err
	}
	target, ok := ParseStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return Payment{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}

	var (
		moved    bool
		kind     DocumentKind
		previous Status
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		moved = false
		p, err := repo.LockPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := Transitions.Check("payment", p.Status, target); err != nil {
			return err
		}
		previous = p.Status
		ref := p.DocumentRef()
		kind = ref.Kind
		meta := map[string]any{
			"number": p.Number,
			"amount": p.Amount.StringFixed(2),
			"from":   string(p.Status),
			"to":     string(target),
		}

		if p.Status == StatusPosted || target == StatusPosted {
			doc, err := repo.LockDocument(ctx, ref)
			if err != nil {
				return err
			}
			if target == StatusPosted {
				if err := CheckPayable(doc, p.Amount); err != nil {
					return err
				}
				doc = Apply(doc, p.Method, p.Amount)
			} else {
				doc = Reverse(doc, p.Method, p.Amount)
			}
			if err := repo.SaveDocument(ctx, doc); err != nil {
				return err
			}
			meta["document_id"] = doc.ID.String()
			meta["document_status"] = doc.Status
			meta["outstanding"] = doc.Outstanding().StringFixed(2)
			moved = true
		}

		if err := repo.UpdatePaymentStatus(ctx, id, target, s.now().UTC()); err != nil {
			return err
		}
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "payment." + string(target),
			Entity:   "payment",
			EntityID: id.String(),
			Meta:     meta,
		})
	})
	if err != nil {
		return Payment{}, err
	}

	if moved {
		s.settled(ctx, kind, target == StatusPosted)
		s.logger.Info("payment settled",
			slog.String("payment_id", id.String()),
			slog.String("from", string(previous)),
			slog.String("to", string(target)))
	}
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) settled(ctx context.Context, kind DocumentKind, applied bool) {
	if s.recorder != nil {
		if applied {
			s.recorder.PaymentApplied(string(kind))
		} else {
			s.recorder.PaymentReversed(string(kind))
		}
	}
	if s.refresh == nil {
		return
	}
	if err := s.refresh.EnqueueDashboardRefresh(ctx); err != nil {
		s.logger.Warn("enqueue dashboard refresh", slog.Any("error", err))
	}
}

// GetPayment returns one payment.
func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// ListPayments returns a filtered page of payments.
func (s *Service) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	return s.repo.ListPayments(ctx, req)
}

func documentRef(input CreatePaymentInput) (DocumentRef, error) {
	switch {
	case input.VendorBillID != nil && input.CustomerInvoiceID != nil:
		return DocumentRef{}, fmt.Errorf("%w: provide either vendor_bill_id or customer_invoice_id, not both", shared.ErrInvariantViolation)
	case input.VendorBillID != nil:
		return DocumentRef{Kind: KindVendorBill, ID: *input.VendorBillID}, nil
	case input.CustomerInvoiceID != nil:
		return DocumentRef{Kind: KindCustomerInvoice, ID: *input.CustomerInvoiceID}, nil
	}
	return DocumentRef{}, fmt.Errorf("%w: payment must reference a vendor bill or a customer invoice", shared.ErrInvariantViolation)
}

func actorID(p shared.Principal) *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
