package contacts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Contact, error) {
	return s.repo.Get(ctx, id)
}

// ContactName returns the display name used as a document counterparty snapshot.
func (s *Service) ContactName(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func (s *Service) Create(ctx context.Context, form ContactForm) (Contact, error) {
	c := fromForm(form, Contact{})
	if err := validate(c); err != nil {
		return Contact{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form ContactForm) (Contact, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	c := fromForm(form, current)
	if err := validate(c); err != nil {
		return Contact{}, err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes the contact; documents keep their counterparty name.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func fromForm(form ContactForm, base Contact) Contact {
	base.Name = strings.TrimSpace(form.Name)
	base.Type = strings.ToLower(strings.TrimSpace(form.Type))
	base.Email = optional(form.Email)
	if base.Email != nil {
		lower := strings.ToLower(*base.Email)
		base.Email = &lower
	}
	base.Mobile = optional(form.Mobile)
	base.City = optional(form.City)
	base.State = optional(form.State)
	base.Pincode = optional(form.Pincode)
	return base
}
