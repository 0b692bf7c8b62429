package orders

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

// ContactNamer resolves the display name of a customer contact.
type ContactNamer interface {
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo     Repository
	builder  *pricing.Builder
	contacts ContactNamer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, builder *pricing.Builder, contacts ContactNamer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, builder: builder, contacts: contacts, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateSalesOrderRequest) (*SalesOrder, error) {
	name, err := s.customerName(ctx, req.CustomerID, req.CustomerName)
	if err != nil {
		return nil, err
	}
	orderDate, err := documents.ParseDate("order_date", req.OrderDate)
	if err != nil {
		return nil, err
	}
	if orderDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		orderDate = &today
	}

	priced, totals, err := s.builder.Build(ctx, documents.PricingInputs(req.Lines), pricing.DirectionSales)
	if err != nil {
		return nil, err
	}
	lines := make([]documents.Line, len(priced))
	for i, l := range priced {
		lines[i] = documents.FromPriced(l)
	}

	order := SalesOrder{
		ID:           uuid.New(),
		CustomerID:   req.CustomerID,
		CustomerName: name,
		OrderDate:    *orderDate,
		Status:       documents.OrderDraft,
		Totals:       totals,
		Lines:        lines,
	}
	if p.UserID != uuid.Nil {
		createdBy := p.UserID
		order.CreatedBy = &createdBy
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, order.OrderDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		order.Number = number
		if err := repo.Create(ctx, order); err != nil {
			return err
		}
		return repo.ReplaceLines(ctx, order.ID, lines, totals)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order created", slog.String("number", order.Number), slog.String("total", order.Amount.StringFixed(2)))
	return s.repo.Get(ctx, order.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*SalesOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrder, int, error) {
	return s.repo.List(ctx, req)
}

// Update edits a draft order. When lines are supplied they replace every
// existing line and the totals are recomputed in the same transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSalesOrderRequest) (*SalesOrder, error) {
	orderDate, err := documents.ParseDate("order_date", req.OrderDate)
	if err != nil {
		return nil, err
	}

	var priced []documents.Line
	var totals pricing.Totals
	if req.Lines != nil {
		built, t, err := s.builder.Build(ctx, documents.PricingInputs(*req.Lines), pricing.DirectionSales)
		if err != nil {
			return nil, err
		}
		priced = make([]documents.Line, len(built))
		for i, l := range built {
			priced[i] = documents.FromPriced(l)
		}
		totals = t
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != documents.OrderDraft {
			return fmt.Errorf("%w: only draft sales orders can be edited", shared.ErrInvalidState)
		}

		headerChanged := false
		if req.CustomerID != nil {
			order.CustomerID = req.CustomerID
			headerChanged = true
		}
		if req.CustomerName != nil || req.CustomerID != nil {
			supplied := ""
			if req.CustomerName != nil {
				supplied = *req.CustomerName
			}
			name, err := s.customerName(ctx, order.CustomerID, supplied)
			if err != nil {
				return err
			}
			order.CustomerName = name
			headerChanged = true
		}
		if orderDate != nil {
			order.OrderDate = *orderDate
			headerChanged = true
		}
		if headerChanged {
			if err := repo.UpdateHeader(ctx, *order); err != nil {
				return err
			}
		}
		if req.Lines != nil {
			return repo.ReplaceLines(ctx, id, priced, totals)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves the order along the order lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*SalesOrder, error) {
	target, ok := documents.ParseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return nil, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := documents.OrderTransitions.Check("sales order", order.Status, target); err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, id, target)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order status changed", slog.String("id", id.String()), slog.String("status", string(target)))
	return s.repo.Get(ctx, id)
}

// Delete removes a draft or cancelled order that no invoice references.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == documents.OrderConfirmed {
			return fmt.Errorf("%w: confirmed sales orders cannot be deleted", shared.ErrInvalidState)
		}
		invoiced, err := repo.HasInvoices(ctx, id)
		if err != nil {
			return err
		}
		if invoiced {
			return fmt.Errorf("%w: sales order is referenced by an invoice", shared.ErrInvalidState)
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) customerName(ctx context.Context, id *uuid.UUID, supplied string) (string, error) {
	name := strings.TrimSpace(supplied)
	if name != "" || id == nil || s.contacts == nil {
		return name, nil
	}
	name, err := s.contacts.ContactName(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
		}
		return "", err
	}
	return name, nil
}
