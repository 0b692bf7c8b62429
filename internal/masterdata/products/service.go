package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	internalShared "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type Service struct {
	repo   Repository
	hsn    HSNSearcher
	logger *slog.Logger
}

func NewService(repo Repository, hsn HSNSearcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hsn: hsn, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	p := fromForm(form, Product{})
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form ProductForm) (Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p := fromForm(form, current)
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes the product. Document lines keep their name snapshot.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SearchHSN proxies the HSN directory.
func (s *Service) SearchHSN(ctx context.Context, query, mode, category string) ([]HSNResult, error) {
	if s.hsn == nil {
		return nil, fmt.Errorf("%w: hsn search not configured", internalShared.ErrUpstream)
	}
	return s.hsn.Search(ctx, query, mode, category)
}

// WarmHSN primes the HSN cache for up to limit codes used by the catalogue.
// It returns how many lookups succeeded.
func (s *Service) WarmHSN(ctx context.Context, limit int) (int, error) {
	if s.hsn == nil {
		return 0, nil
	}
	codes, err := s.repo.DistinctHSNCodes(ctx, limit)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, code := range codes {
		if ctx.Err() != nil {
			return warmed, ctx.Err()
		}
		if _, err := s.hsn.Search(ctx, code, HSNByCode, ""); err != nil {
			s.logger.Warn("hsn warm failed", slog.String("code", code), slog.Any("error", err))
			continue
		}
		warmed++
	}
	return warmed, nil
}

// Import upserts the catalogue in filename by product name.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (ImportResult, error) {
	rows, skipped, err := ParseCatalogue(filename, r)
	if err != nil {
		if errors.Is(err, ErrEmptyCatalogue) {
			return ImportResult{Skipped: []ImportRowError{}}, nil
		}
		return ImportResult{}, internalShared.NewValidationError("file", err.Error())
	}
	result := ImportResult{Skipped: skipped}
	if result.Skipped == nil {
		result.Skipped = []ImportRowError{}
	}
	if len(rows) == 0 {
		return result, nil
	}
	created, updated, err := s.repo.Upsert(ctx, rows)
	if err != nil {
		return ImportResult{}, err
	}
	result.Created, result.Updated = created, updated
	s.logger.Info("product catalogue imported",
		slog.String("file", filename),
		slog.Int("created", created),
		slog.Int("updated", updated),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

func fromForm(form ProductForm, base Product) Product {
	base.Name = strings.TrimSpace(form.Name)
	base.Type = strings.ToLower(strings.TrimSpace(form.Type))
	if base.Type == "" {
		base.Type = TypeGoods
	}
	base.SalesPrice = form.SalesPrice
	base.PurchasePrice = form.PurchasePrice
	base.HSNCode = trimOptional(form.HSNCode)
	base.TaxName = trimOptional(form.TaxName)
	base.CurrentStock = form.CurrentStock
	return base
}
