package procurement

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
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, error)
	ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]PurchaseOrder, int, error)
}

// VendorPort resolves vendor display names.
type VendorPort interface {
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
}

// Service orchestrates purchase order flows.
type Service struct {
	repo    RepositoryPort
	builder *pricing.Builder
	vendors VendorPort
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, builder *pricing.Builder, vendors VendorPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, builder: builder, vendors: vendors, logger: logger, now: time.Now}
}

// CreatePurchaseOrder prices the lines with purchase taxes and stores a draft.
func (s *Service) CreatePurchaseOrder(ctx context.Context, actor shared.Principal, input CreatePOInput) (PurchaseOrder, error) {
	vendorName, err := s.vendorName(ctx, input.VendorID, input.VendorName)
	if err != nil {
		return PurchaseOrder{}, err
	}
	orderDate, err := documents.ParseDate("order_date", input.OrderDate)
	if err != nil {
		return PurchaseOrder{}, err
	}
	lines, totals, err := s.price(ctx, input.Lines)
	if err != nil {
		return PurchaseOrder{}, err
	}

	po := PurchaseOrder{
		ID:         uuid.New(),
		VendorID:   input.VendorID,
		VendorName: vendorName,
		OrderDate:  defaultTime(orderDate, s.now()),
		Status:     documents.OrderDraft,
		Totals:     totals,
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		po.CreatedBy = &id
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextNumber(ctx, po.OrderDate)
		if err != nil {
			return err
		}
		po.Number = number
		if err := tx.CreatePO(ctx, po); err != nil {
			return err
		}
		return tx.ReplacePOLines(ctx, po.ID, lines, totals)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.logger.Info("purchase order created", slog.String("number", po.Number), slog.String("total", po.Amount.StringFixed(2)))
	return s.repo.GetPO(ctx, po.ID)
}

// GetPurchaseOrder returns one purchase order with lines.
func (s *Service) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	return s.repo.GetPO(ctx, id)
}

// ListPurchaseOrders returns a page of purchase orders.
func (s *Service) ListPurchaseOrders(ctx context.Context, page shared.PageRequest, filters ListFilters) ([]PurchaseOrder, int, error) {
	return s.repo.ListPOs(ctx, page.Limit(), page.Offset(), filters)
}

// UpdatePurchaseOrder edits header fields and optionally replaces all lines.
func (s *Service) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, input UpdatePOInput) (PurchaseOrder, error) {
	orderDate, err := documents.ParseDate("order_date", input.OrderDate)
	if err != nil {
		return PurchaseOrder{}, err
	}
	var lines []documents.Line
	var totals pricing.Totals
	if input.Lines != nil {
		if lines, totals, err = s.price(ctx, *input.Lines); err != nil {
			return PurchaseOrder{}, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, id)
		if err != nil {
			return err
		}
		if po.Status != documents.OrderDraft {
			return fmt.Errorf("%w: only draft purchase orders can be edited", shared.ErrInvalidState)
		}
		if input.VendorID != nil || input.VendorName != nil || orderDate != nil {
			if input.VendorID != nil {
				po.VendorID = input.VendorID
			}
			if input.VendorName != nil || input.VendorID != nil {
				name := ""
				if input.VendorName != nil {
					name = *input.VendorName
				}
				if po.VendorName, err = s.vendorName(ctx, po.VendorID, name); err != nil {
					return err
				}
			}
			if orderDate != nil {
				po.OrderDate = *orderDate
			}
			if err := tx.UpdatePOHeader(ctx, po); err != nil {
				return err
			}
		}
		if input.Lines != nil {
			return tx.ReplacePOLines(ctx, id, lines, totals)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.GetPO(ctx, id)
}

// UpdatePurchaseOrderStatus confirms or cancels a purchase order.
func (s *Service) UpdatePurchaseOrderStatus(ctx context.Context, actor shared.Principal, id uuid.UUID, raw string) (PurchaseOrder, error) {
	target, ok := documents.ParseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return PurchaseOrder{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, id)
		if err != nil {
			return err
		}
		if err := documents.OrderTransitions.Check("purchase order", po.Status, target); err != nil {
			return err
		}
		if err := tx.UpdatePOStatus(ctx, id, target); err != nil {
			return err
		}
		return tx.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "purchase_order." + string(target),
			Entity:   "purchase_order",
			EntityID: id.String(),
			Meta:     map[string]any{"number": po.Number, "from": po.Status},
		})
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.GetPO(ctx, id)
}

// DeletePurchaseOrder removes a draft or cancelled order with no bills.
func (s *Service) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, id)
		if err != nil {
			return err
		}
		if po.Status == documents.OrderConfirmed {
			return fmt.Errorf("%w: confirmed purchase orders cannot be deleted", shared.ErrInvalidState)
		}
		billed, err := tx.POHasBills(ctx, id)
		if err != nil {
			return err
		}
		if billed {
			return fmt.Errorf("%w: purchase order is referenced by a vendor bill", shared.ErrInvalidState)
		}
		return tx.DeletePO(ctx, id)
	})
}

func (s *Service) price(ctx context.Context, reqs []documents.LineRequest) ([]documents.Line, pricing.Totals, error) {
	priced, totals, err := s.builder.Build(ctx, documents.PricingInputs(reqs), pricing.DirectionPurchase)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	lines := make([]documents.Line, len(priced))
	for i, l := range priced {
		lines[i] = documents.FromPriced(l)
	}
	return lines, totals, nil
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

func defaultTime(value *time.Time, now time.Time) time.Time {
	if value == nil {
		return now.UTC().Truncate(24 * time.Hour)
	}
	return *value
}
