package products

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	internalShared "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memRepo struct {
	rows map[uuid.UUID]Product
}

func newMemRepo() *memRepo { return &memRepo{rows: map[uuid.UUID]Product{}} }

func (m *memRepo) List(context.Context, shared.ListFilters) ([]Product, int, error) {
	out := make([]Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (Product, error) {
	if p, ok := m.rows[id]; ok {
		return p, nil
	}
	return Product{}, internalShared.ErrNotFound
}

func (m *memRepo) GetByName(_ context.Context, name string) (Product, error) {
	for _, p := range m.rows {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, internalShared.ErrNotFound
}

func (m *memRepo) Create(ctx context.Context, p Product) (Product, error) {
	if _, err := m.GetByName(ctx, p.Name); err == nil {
		return Product{}, internalShared.ErrDuplicate
	}
	p.ID = uuid.New()
	m.rows[p.ID] = p
	return p, nil
}

func (m *memRepo) Update(_ context.Context, p Product) (Product, error) {
	m.rows[p.ID] = p
	return p, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memRepo) Upsert(ctx context.Context, products []Product) (int, int, error) {
	created, updated := 0, 0
	for _, p := range products {
		if existing, err := m.GetByName(ctx, p.Name); err == nil {
			p.ID = existing.ID
			m.rows[p.ID] = p
			updated++
			continue
		}
		p.ID = uuid.New()
		m.rows[p.ID] = p
		created++
	}
	return created, updated, nil
}

func (m *memRepo) DistinctHSNCodes(_ context.Context, limit int) ([]string, error) {
	var out []string
	for _, p := range m.rows {
		if p.HSNCode != nil && len(out) < limit {
			out = append(out, *p.HSNCode)
		}
	}
	return out, nil
}

type stubHSN struct {
	calls []string
	fail  map[string]bool
}

func (s *stubHSN) Search(_ context.Context, query, _, _ string) ([]HSNResult, error) {
	s.calls = append(s.calls, query)
	if s.fail[query] {
		return nil, internalShared.ErrUpstream
	}
	return []HSNResult{{Code: query}}, nil
}

func strPtr(s string) *string { return &s }

func TestCreateNormalisesForm(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	p, err := svc.Create(context.Background(), ProductForm{
		Name:       " Desk ",
		SalesPrice: decimal.NewFromInt(100),
		HSNCode:    strPtr("  "),
		TaxName:    strPtr(" GST18 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk", p.Name)
	assert.Equal(t, TypeGoods, p.Type)
	assert.Nil(t, p.HSNCode)
	require.NotNil(t, p.TaxName)
	assert.Equal(t, "GST18", *p.TaxName)
}

func TestCreateRejectsNegativePrices(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	_, err := svc.Create(context.Background(), ProductForm{Name: "Desk", PurchasePrice: decimal.NewFromInt(-5)})
	var verr *internalShared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "purchase_price")
}

func TestImportUpsertsByName(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, ProductForm{Name: "Desk", SalesPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)

	csv := "name,sales_price\nDesk,150\nLamp,40\nBad,abc\n"
	res, err := svc.Import(ctx, "items.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Skipped, 1)

	desk, err := repo.GetByName(ctx, "Desk")
	require.NoError(t, err)
	assert.Equal(t, "150", desk.SalesPrice.String())
}

func TestImportRejectsUnsupportedFile(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	_, err := svc.Import(context.Background(), "items.txt", strings.NewReader("name\nx\n"))
	assert.ErrorIs(t, err, internalShared.ErrValidation)
}

func TestWarmHSNCountsSuccesses(t *testing.T) {
	repo := newMemRepo()
	hsn := &stubHSN{fail: map[string]bool{"9401": true}}
	svc := NewService(repo, hsn, nil)
	ctx := context.Background()
	_, _ = svc.Create(ctx, ProductForm{Name: "Laptop", HSNCode: strPtr("8471")})
	_, _ = svc.Create(ctx, ProductForm{Name: "Chair", HSNCode: strPtr("9401")})

	warmed, err := svc.WarmHSN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, warmed)
	assert.Len(t, hsn.calls, 2)
}

func TestSearchHSNWithoutClient(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	_, err := svc.SearchHSN(context.Background(), "8471", HSNByCode, "")
	assert.ErrorIs(t, err, internalShared.ErrUpstream)
}
