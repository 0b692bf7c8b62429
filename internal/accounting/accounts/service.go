package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, accountType AccountType, activeOnly bool) ([]Account, error) {
	return s.repo.List(ctx, accountType, activeOnly)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form AccountForm) (Account, error) {
	a, err := fromForm(form, Account{IsActive: true})
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form AccountForm) (Account, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	a, err := fromForm(form, current)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DefaultExpenseAccountName returns the name of the first active expense
// account by code, or FallbackExpenseAccount when none exists.
func (s *Service) DefaultExpenseAccountName(ctx context.Context) (string, error) {
	a, err := s.repo.FirstActiveByType(ctx, AccountTypeExpense)
	if errors.Is(err, shared.ErrNotFound) {
		return FallbackExpenseAccount, nil
	}
	if err != nil {
		return "", err
	}
	return a.Name, nil
}

func fromForm(form AccountForm, base Account) (Account, error) {
	base.Code = strings.TrimSpace(form.Code)
	base.Name = strings.TrimSpace(form.Name)
	base.Type = AccountType(strings.ToLower(strings.TrimSpace(form.Type)))
	if form.IsActive != nil {
		base.IsActive = *form.IsActive
	}
	verr := &shared.ValidationError{Fields: map[string]string{}}
	if base.Code == "" {
		verr.Fields["code"] = "is required"
	}
	if base.Name == "" {
		verr.Fields["name"] = "is required"
	}
	if !base.Type.Valid() {
		verr.Fields["type"] = "must be one of asset liability equity income expense"
	}
	if len(verr.Fields) > 0 {
		return Account{}, verr
	}
	return base, nil
}
