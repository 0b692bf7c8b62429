package taxes

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	internalShared "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tax, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Tax, error) {
	tax := fromInput(in, Tax{ApplicableOnSales: true, ApplicableOnPurchase: true})
	if err := s.validate(tax); err != nil {
		return Tax{}, err
	}
	return s.repo.Create(ctx, tax)
}

// Update replaces the tax. Renames cascade to products through the foreign key.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Tax, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Tax{}, err
	}
	tax := fromInput(in, current)
	tax.ID = id
	if err := s.validate(tax); err != nil {
		return Tax{}, err
	}
	return s.repo.Update(ctx, tax)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return internalShared.NewValidationError("id", "invalid tax id")
	}
	return s.repo.Delete(ctx, id)
}

func fromInput(in Input, base Tax) Tax {
	base.Name = strings.TrimSpace(in.Name)
	base.ComputationMethod = strings.ToLower(strings.TrimSpace(in.ComputationMethod))
	base.Value = in.Value
	if in.ApplicableOnSales != nil {
		base.ApplicableOnSales = *in.ApplicableOnSales
	}
	if in.ApplicableOnPurchase != nil {
		base.ApplicableOnPurchase = *in.ApplicableOnPurchase
	}
	return base
}
