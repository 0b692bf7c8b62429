package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing/pricingtest"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memRepo struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]SalesOrder
	invoiced map[uuid.UUID]bool
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[uuid.UUID]SalesOrder{}, invoiced: map[uuid.UUID]bool{}}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*SalesOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: sales order", shared.ErrNotFound)
	}
	o.Lines = append([]documents.Line(nil), o.Lines...)
	return &o, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error) {
	return m.Get(ctx, id)
}

func (m *memRepo) List(_ context.Context, req ListSalesOrdersRequest) ([]SalesOrder, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SalesOrder
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, o SalesOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memRepo) UpdateHeader(_ context.Context, o SalesOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.orders[o.ID]
	cur.CustomerID, cur.CustomerName, cur.OrderDate = o.CustomerID, o.CustomerName, o.OrderDate
	m.orders[o.ID] = cur
	return nil
}

func (m *memRepo) ReplaceLines(_ context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.orders[id]
	cur.Lines = lines
	cur.Totals = totals
	m.orders[id] = cur
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status documents.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.orders[id]
	cur.Status = status
	m.orders[id] = cur
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

func (m *memRepo) HasInvoices(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoiced[id], nil
}

func (m *memRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("SO-%s-%04d", date.Format("200601"), m.seq), nil
}

type stubContacts map[uuid.UUID]string

func (s stubContacts) ContactName(_ context.Context, id uuid.UUID) (string, error) {
	if name, ok := s[id]; ok {
		return name, nil
	}
	return "", shared.ErrNotFound
}

type fixture struct {
	svc       *Service
	repo      *memRepo
	catalogue *pricingtest.Catalogue
	chair     uuid.UUID
	customer  uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	catalogue := pricingtest.NewCatalogue().WithGST18()
	chair := catalogue.AddProduct("Office Chair", pricingtest.Ptr("GST18"))
	customer := uuid.New()
	repo := newMemRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, catalogue.Builder(), stubContacts{customer: "Nimesh Pathak"}, logger)
	svc.now = func() time.Time { return time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, repo: repo, catalogue: catalogue, chair: chair, customer: customer}
}

func (f fixture) lineFor(qty int, price string) []documents.LineRequest {
	id := f.chair
	return []documents.LineRequest{{ProductID: &id, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}}
}

func TestCreatePricesLinesAndDefaultsToDraft(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), shared.Principal{UserID: uuid.New(), Role: shared.RoleInvoicingUser},
		CreateSalesOrderRequest{CustomerID: &f.customer, Lines: f.lineFor(2, "100")})
	require.NoError(t, err)

	assert.Equal(t, documents.OrderDraft, order.Status)
	assert.Equal(t, "SO-202509-0001", order.Number)
	assert.Equal(t, "Nimesh Pathak", order.CustomerName)
	assert.NotNil(t, order.CreatedBy)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].TaxPercent.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, "200.00", order.Untaxed.StringFixed(2))
	assert.Equal(t, "36.00", order.Tax.StringFixed(2))
	assert.Equal(t, "236.00", order.Amount.StringFixed(2))
}

func TestCreateResolvesProductByNameAndRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{
		CustomerName: "Walk-in",
		Lines:        []documents.LineRequest{{ProductName: "Office Chair", Quantity: 1, UnitPrice: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Walk-in", order.CustomerName)
	assert.Nil(t, order.CreatedBy)
	assert.Equal(t, f.chair, *order.Lines[0].ProductID)

	_, err = f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{
		Lines: []documents.LineRequest{{ProductName: "Sofa", Quantity: 1, UnitPrice: decimal.NewFromInt(50)}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateUnknownCustomerIsNotFound(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()
	_, err := f.svc.Create(context.Background(), shared.Principal{}, CreateSalesOrderRequest{CustomerID: &missing, Lines: f.lineFor(1, "10")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateReplacesLinesOnlyInDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{CustomerID: &f.customer, Lines: f.lineFor(1, "100")})
	require.NoError(t, err)

	lines := f.lineFor(3, "100")
	updated, err := f.svc.Update(ctx, order.ID, UpdateSalesOrderRequest{Lines: &lines})
	require.NoError(t, err)
	assert.Equal(t, "354.00", updated.Amount.StringFixed(2))
	assert.Equal(t, "Nimesh Pathak", updated.CustomerName)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "confirmed")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, order.ID, UpdateSalesOrderRequest{Lines: &lines})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, err.Error(), "only draft sales orders can be edited")
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{Lines: f.lineFor(1, "10")})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "bogus")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "draft")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	confirmed, err := f.svc.UpdateStatus(ctx, order.ID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, documents.OrderConfirmed, confirmed.Status)

	cancelled, err := f.svc.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, documents.OrderCancelled, cancelled.Status)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "confirmed")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDeleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	confirmed, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{Lines: f.lineFor(1, "10")})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, confirmed.ID, "confirmed")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Delete(ctx, confirmed.ID), shared.ErrInvalidState)

	invoiced, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{Lines: f.lineFor(1, "10")})
	require.NoError(t, err)
	f.repo.invoiced[invoiced.ID] = true
	assert.ErrorIs(t, f.svc.Delete(ctx, invoiced.ID), shared.ErrInvalidState)

	draft, err := f.svc.Create(ctx, shared.Principal{}, CreateSalesOrderRequest{Lines: f.lineFor(1, "10")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, draft.ID))
	_, err = f.svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
