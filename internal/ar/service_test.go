package ar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing/pricingtest"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/sales/orders"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memoryARRepo struct {
	invoices map[uuid.UUID]CustomerInvoice
	audits   []shared.AuditLog
	seq      int
}

func newMemoryARRepo() *memoryARRepo {
	return &memoryARRepo{invoices: make(map[uuid.UUID]CustomerInvoice)}
}

func (r *memoryARRepo) WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error {
	return fn(ctx, r)
}

func (r *memoryARRepo) GetInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return CustomerInvoice{}, fmt.Errorf("%w: customer invoice", shared.ErrNotFound)
	}
	return inv, nil
}

func (r *memoryARRepo) LockInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error) {
	return r.GetInvoice(ctx, id)
}

func (r *memoryARRepo) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]CustomerInvoice, int, error) {
	var out []CustomerInvoice
	for _, inv := range r.invoices {
		if req.SalesOrderID != nil && (inv.SalesOrderID == nil || *inv.SalesOrderID != *req.SalesOrderID) {
			continue
		}
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (r *memoryARRepo) ListOutstanding(ctx context.Context) ([]CustomerInvoice, error) {
	var out []CustomerInvoice
	for _, inv := range r.invoices {
		if inv.Status == documents.InvoicePosted && inv.Outstanding().IsPositive() {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memoryARRepo) CreateInvoice(ctx context.Context, inv CustomerInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memoryARRepo) UpdateHeader(ctx context.Context, inv CustomerInvoice) error {
	cur := r.invoices[inv.ID]
	cur.CustomerID, cur.CustomerName, cur.InvoiceDate, cur.DueDate = inv.CustomerID, inv.CustomerName, inv.InvoiceDate, inv.DueDate
	r.invoices[inv.ID] = cur
	return nil
}

func (r *memoryARRepo) ReplaceLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	cur := r.invoices[id]
	cur.Lines, cur.Totals = lines, totals
	r.invoices[id] = cur
	return nil
}

func (r *memoryARRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status documents.InvoiceStatus) error {
	cur := r.invoices[id]
	cur.Status = status
	r.invoices[id] = cur
	return nil
}

func (r *memoryARRepo) Audit(ctx context.Context, log shared.AuditLog) error {
	r.audits = append(r.audits, log)
	return nil
}

func (r *memoryARRepo) GenerateInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("INV-%s-%04d", at.Format("200601"), r.seq), nil
}

type stubSalesOrders map[uuid.UUID]*orders.SalesOrder

func (s stubSalesOrders) Get(ctx context.Context, id uuid.UUID) (*orders.SalesOrder, error) {
	so, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: sales order", shared.ErrNotFound)
	}
	return so, nil
}

var admin = shared.Principal{UserID: uuid.New(), Email: "admin@example.com", Role: shared.RoleAdmin}

type arFixture struct {
	svc       *Service
	repo      *memoryARRepo
	orders    stubSalesOrders
	catalogue *pricingtest.Catalogue
	sofa      uuid.UUID
}

func newARFixture(t *testing.T) arFixture {
	t.Helper()
	catalogue := pricingtest.NewCatalogue().WithGST18()
	sofa := catalogue.AddProduct("Sofa", pricingtest.Ptr("GST18"))
	repo := newMemoryARRepo()
	so := stubSalesOrders{}
	svc := NewService(repo, catalogue.Builder(), so, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) }
	return arFixture{svc: svc, repo: repo, orders: so, catalogue: catalogue, sofa: sofa}
}

func (f arFixture) salesOrder(status documents.OrderStatus) *orders.SalesOrder {
	sofa := f.sofa
	customer := uuid.New()
	so := &orders.SalesOrder{
		ID:           uuid.New(),
		Number:       "SO-202512-0001",
		CustomerID:   &customer,
		CustomerName: "Nimesh Pathak",
		Status:       status,
		Lines: []documents.Line{{
			ProductID:   &sofa,
			ProductName: "Sofa",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(100),
		}},
	}
	f.orders[so.ID] = so
	return so
}

func TestCreateInvoiceFromSO(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderConfirmed)
	account := uuid.New()

	inv, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{AccountID: &account})
	require.NoError(t, err)
	require.Equal(t, documents.InvoiceDraft, inv.Status)
	require.Equal(t, "INV-202512-0001", inv.Number)
	require.Equal(t, "Nimesh Pathak", inv.CustomerName)
	require.Equal(t, so.ID, *inv.SalesOrderID)
	require.Equal(t, "2025-12-01", inv.InvoiceDate.Format(documents.DateLayout))
	require.Equal(t, account, *inv.Lines[0].AccountID)
	require.Equal(t, "200.00", inv.Untaxed.StringFixed(2))
	require.Equal(t, "36.00", inv.Tax.StringFixed(2))
	require.Equal(t, "236.00", inv.Amount.StringFixed(2))
	require.Equal(t, "customer_invoice.created_from_so", f.repo.audits[0].Action)
}

func TestCreateInvoiceFromSORequiresConfirmed(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderDraft)

	_, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, "sales order must be confirmed before creating an invoice", shared.UserSafeMessage(err))

	_, err = f.svc.CreateInvoiceFromSO(context.Background(), admin, uuid.New(), CreateFromSOInput{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateInvoiceFromSODueDateBeforeToday(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderConfirmed)
	due := "2025-11-01"
	_, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{DueDate: &due})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, f.repo.invoices)
}

func TestPostingAPostedInvoiceIsRejected(t *testing.T) {
	f := newARFixture(t)
	ctx := context.Background()
	sofa := f.sofa
	inv, err := f.svc.CreateInvoice(ctx, admin, CreateInvoiceInput{
		CustomerName: "Walk-in",
		Lines:        []documents.LineRequest{{ProductID: &sofa, Quantity: 1, UnitPrice: decimal.NewFromInt(500)}},
	})
	require.NoError(t, err)

	posted, err := f.svc.PostInvoice(ctx, admin, inv.ID)
	require.NoError(t, err)
	require.Equal(t, documents.InvoicePosted, posted.Status)

	_, err = f.svc.UpdateStatus(ctx, admin, inv.ID, "posted")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, "only draft customer invoices can be posted", shared.UserSafeMessage(err))

	_, err = f.svc.UpdateStatus(ctx, admin, inv.ID, "paid")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCancelInvoiceGuards(t *testing.T) {
	f := newARFixture(t)
	ctx := context.Background()
	sofa := f.sofa
	inv, err := f.svc.CreateInvoice(ctx, admin, CreateInvoiceInput{
		Lines: []documents.LineRequest{{ProductID: &sofa, Quantity: 1, UnitPrice: decimal.NewFromInt(500)}},
	})
	require.NoError(t, err)
	_, err = f.svc.PostInvoice(ctx, admin, inv.ID)
	require.NoError(t, err)

	partially := f.repo.invoices[inv.ID]
	partially.AmountPaid = decimal.NewFromInt(300)
	f.repo.invoices[inv.ID] = partially
	_, err = f.svc.CancelInvoice(ctx, admin, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	paid := f.repo.invoices[inv.ID]
	paid.Status = documents.InvoicePaid
	f.repo.invoices[inv.ID] = paid
	_, err = f.svc.CancelInvoice(ctx, admin, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	paid.Status = documents.InvoicePosted
	paid.AmountPaid = decimal.Zero
	f.repo.invoices[inv.ID] = paid
	cancelled, err := f.svc.UpdateStatus(ctx, admin, inv.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, documents.InvoiceCancelled, cancelled.Status)
}

func TestUpdateInvoiceDraftOnly(t *testing.T) {
	f := newARFixture(t)
	ctx := context.Background()
	sofa := f.sofa
	inv, err := f.svc.CreateInvoice(ctx, admin, CreateInvoiceInput{
		Lines: []documents.LineRequest{{ProductID: &sofa, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)

	lines := []documents.LineRequest{
		{ProductID: &sofa, Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
		{ProductName: "Sofa", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
	}
	updated, err := f.svc.UpdateInvoice(ctx, inv.ID, UpdateInvoiceInput{Lines: &lines})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	require.Equal(t, "130.00", updated.Untaxed.StringFixed(2))
	require.Equal(t, "153.40", updated.Amount.StringFixed(2))

	_, err = f.svc.PostInvoice(ctx, admin, inv.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateInvoice(ctx, inv.ID, UpdateInvoiceInput{Lines: &lines})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCalculateARAging(t *testing.T) {
	f := newARFixture(t)
	due := func(s string) *time.Time {
		d, _ := time.Parse(documents.DateLayout, s)
		return &d
	}
	for _, inv := range []CustomerInvoice{
		{ID: uuid.New(), Status: documents.InvoicePosted, DueDate: due("2025-12-10"), Totals: pricing.Totals{Amount: decimal.NewFromInt(500)}, AmountPaid: decimal.NewFromInt(300)},
		{ID: uuid.New(), Status: documents.InvoicePosted, DueDate: due("2025-10-15"), Totals: pricing.Totals{Amount: decimal.NewFromInt(100)}},
		{ID: uuid.New(), Status: documents.InvoicePaid, DueDate: due("2025-01-01"), Totals: pricing.Totals{Amount: decimal.NewFromInt(900)}, AmountPaid: decimal.NewFromInt(900)},
	} {
		f.repo.invoices[inv.ID] = inv
	}

	bucket, err := f.svc.CalculateARAging(context.Background(), *due("2025-12-01"))
	require.NoError(t, err)
	require.Equal(t, "200.00", bucket.Current.StringFixed(2))
	require.Equal(t, "100.00", bucket.Bucket60.StringFixed(2))
	require.Equal(t, "300.00", bucket.Total.StringFixed(2))
}

func TestCreateInvoiceFromSOTwiceCreatesTwoInvoices(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderConfirmed)

	first, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{})
	require.NoError(t, err)
	second, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.NotEqual(t, first.Number, second.Number)

	list, total, err := f.svc.ListInvoices(context.Background(), ListInvoicesRequest{SalesOrderID: &so.ID})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)
}

func TestCreateInvoiceFromSOMissingProduct(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderConfirmed)
	f.catalogue.RemoveProduct(f.sofa)

	_, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, f.repo.invoices)
}

func TestInvoiceActionsRequireFinanceRole(t *testing.T) {
	f := newARFixture(t)
	so := f.salesOrder(documents.OrderConfirmed)
	contact := shared.Principal{UserID: uuid.New(), Role: shared.RoleContactUser}

	_, err := f.svc.CreateInvoiceFromSO(context.Background(), contact, so.ID, CreateFromSOInput{})
	require.ErrorIs(t, err, shared.ErrForbidden)

	inv, err := f.svc.CreateInvoiceFromSO(context.Background(), admin, so.ID, CreateFromSOInput{})
	require.NoError(t, err)
	_, err = f.svc.PostInvoice(context.Background(), contact, inv.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = f.svc.CancelInvoice(context.Background(), contact, inv.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}
