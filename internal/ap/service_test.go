package ap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/accounting/accounts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing/pricingtest"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/procurement"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memoryAPRepo struct {
	bills  map[uuid.UUID]VendorBill
	audits []shared.AuditLog
	seq    int
}

type memoryAPTx struct {
	repo *memoryAPRepo
}

func newMemoryAPRepo() *memoryAPRepo {
	return &memoryAPRepo{bills: make(map[uuid.UUID]VendorBill)}
}

func (r *memoryAPRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryAPTx{repo: r})
}

func (r *memoryAPRepo) GetVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error) {
	bill, ok := r.bills[id]
	if !ok {
		return VendorBill{}, fmt.Errorf("%w: vendor bill", shared.ErrNotFound)
	}
	return bill, nil
}

func (r *memoryAPRepo) ListVendorBills(ctx context.Context, req ListVendorBillsRequest) ([]VendorBill, int, error) {
	var out []VendorBill
	for _, b := range r.bills {
		if req.PurchaseOrderID != nil && (b.PurchaseOrderID == nil || *b.PurchaseOrderID != *req.PurchaseOrderID) {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *memoryAPRepo) ListOutstandingBills(ctx context.Context) ([]VendorBill, error) {
	var out []VendorBill
	for _, b := range r.bills {
		if b.Status == documents.BillPosted && b.Outstanding().IsPositive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (tx *memoryAPTx) LockVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error) {
	return tx.repo.GetVendorBill(ctx, id)
}

func (tx *memoryAPTx) CreateVendorBill(ctx context.Context, bill VendorBill) error {
	tx.repo.bills[bill.ID] = bill
	return nil
}

func (tx *memoryAPTx) UpdateVendorBillHeader(ctx context.Context, bill VendorBill) error {
	cur := tx.repo.bills[bill.ID]
	cur.VendorID, cur.VendorName, cur.BillReference = bill.VendorID, bill.VendorName, bill.BillReference
	cur.BillDate, cur.DueDate = bill.BillDate, bill.DueDate
	tx.repo.bills[bill.ID] = cur
	return nil
}

func (tx *memoryAPTx) ReplaceVendorBillLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	cur := tx.repo.bills[id]
	cur.Lines, cur.Totals = lines, totals
	tx.repo.bills[id] = cur
	return nil
}

func (tx *memoryAPTx) UpdateVendorBillStatus(ctx context.Context, id uuid.UUID, status documents.BillStatus) error {
	cur := tx.repo.bills[id]
	cur.Status = status
	tx.repo.bills[id] = cur
	return nil
}

func (tx *memoryAPTx) Audit(ctx context.Context, log shared.AuditLog) error {
	tx.repo.audits = append(tx.repo.audits, log)
	return nil
}

func (tx *memoryAPTx) GenerateBillNumber(ctx context.Context, at time.Time) (string, error) {
	tx.repo.seq++
	return fmt.Sprintf("BILL-%s-%04d", at.Format("200601"), tx.repo.seq), nil
}

type stubOrders map[uuid.UUID]procurement.PurchaseOrder

func (s stubOrders) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (procurement.PurchaseOrder, error) {
	po, ok := s[id]
	if !ok {
		return procurement.PurchaseOrder{}, fmt.Errorf("%w: purchase order", shared.ErrNotFound)
	}
	return po, nil
}

type stubAccounts string

func (s stubAccounts) DefaultExpenseAccountName(ctx context.Context) (string, error) {
	if s == "" {
		return accounts.FallbackExpenseAccount, nil
	}
	return string(s), nil
}

var (
	financeUser = shared.Principal{UserID: uuid.New(), Email: "billing@example.com", Role: shared.RoleInvoicingUser}
	contactUser = shared.Principal{UserID: uuid.New(), Email: "contact@example.com", Role: shared.RoleContactUser}
)

type apFixture struct {
	svc       *Service
	repo      *memoryAPRepo
	orders    stubOrders
	catalogue *pricingtest.Catalogue
	chair     uuid.UUID
}

func newAPFixture(t *testing.T, expense stubAccounts) apFixture {
	t.Helper()
	catalogue := pricingtest.NewCatalogue().WithGST18()
	chair := catalogue.AddProduct("Office Chair", pricingtest.Ptr("GST18"))
	repo := newMemoryAPRepo()
	orders := stubOrders{}
	svc := NewService(repo, catalogue.Builder(), orders, expense, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC) }
	return apFixture{svc: svc, repo: repo, orders: orders, catalogue: catalogue, chair: chair}
}

func (f apFixture) confirmedPO(status documents.OrderStatus) procurement.PurchaseOrder {
	vendor := uuid.New()
	chair := f.chair
	po := procurement.PurchaseOrder{
		ID:         uuid.New(),
		Number:     "PO-202511-0001",
		VendorID:   &vendor,
		VendorName: "Azure Interior",
		Status:     status,
		Lines: []documents.Line{{
			ProductID:   &chair,
			ProductName: "Office Chair",
			Quantity:    5,
			UnitPrice:   decimal.NewFromInt(200),
			// stale tax captured when the order was placed
			TaxPercent: decimal.NewFromInt(5),
		}},
	}
	f.orders[po.ID] = po
	return po
}

func TestCreateVendorBillFromPORepricesWithCurrentTax(t *testing.T) {
	f := newAPFixture(t, "Office Expense")
	po := f.confirmedPO(documents.OrderConfirmed)

	bill, err := f.svc.CreateVendorBillFromPO(context.Background(), financeUser, po.ID, CreateFromPOInput{})
	require.NoError(t, err)
	require.Equal(t, documents.BillDraft, bill.Status)
	require.Equal(t, "Azure Interior", bill.VendorName)
	require.Equal(t, po.ID, *bill.PurchaseOrderID)
	require.Equal(t, "BILL-202511-0001", bill.Number)
	require.Len(t, bill.Lines, 1)
	require.True(t, bill.Lines[0].TaxPercent.Equal(decimal.NewFromInt(18)))
	require.Equal(t, "Office Expense", *bill.Lines[0].AccountName)
	require.Equal(t, "1000.00", bill.Untaxed.StringFixed(2))
	require.Equal(t, "180.00", bill.Tax.StringFixed(2))
	require.Equal(t, "1180.00", bill.Amount.StringFixed(2))
	require.Len(t, f.repo.audits, 1)
	require.Equal(t, "vendor_bill.created_from_po", f.repo.audits[0].Action)
}

func TestCreateVendorBillFromPOTwiceYieldsTwoBills(t *testing.T) {
	f := newAPFixture(t, "")
	po := f.confirmedPO(documents.OrderConfirmed)
	ctx := context.Background()

	first, err := f.svc.CreateVendorBillFromPO(ctx, financeUser, po.ID, CreateFromPOInput{})
	require.NoError(t, err)
	second, err := f.svc.CreateVendorBillFromPO(ctx, financeUser, po.ID, CreateFromPOInput{})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, accounts.FallbackExpenseAccount, *first.Lines[0].AccountName)

	bills, total, err := f.svc.ListVendorBills(ctx, ListVendorBillsRequest{PurchaseOrderID: &po.ID})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, bills, 2)
}

func TestCreateVendorBillFromPORequiresConfirmedOrder(t *testing.T) {
	f := newAPFixture(t, "")
	for _, status := range []documents.OrderStatus{documents.OrderDraft, documents.OrderCancelled} {
		po := f.confirmedPO(status)
		_, err := f.svc.CreateVendorBillFromPO(context.Background(), financeUser, po.ID, CreateFromPOInput{})
		require.ErrorIs(t, err, shared.ErrInvalidState)
		require.Equal(t, "purchase order must be confirmed before creating a bill", shared.UserSafeMessage(err))
	}
	require.Empty(t, f.repo.bills)
}

func TestCreateVendorBillFromPOMissingProductFails(t *testing.T) {
	f := newAPFixture(t, "")
	po := f.confirmedPO(documents.OrderConfirmed)
	f.catalogue.RemoveProduct(f.chair)

	_, err := f.svc.CreateVendorBillFromPO(context.Background(), financeUser, po.ID, CreateFromPOInput{})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, f.repo.bills)
}

func TestCreateVendorBillFromPORequiresFinanceRole(t *testing.T) {
	f := newAPFixture(t, "")
	po := f.confirmedPO(documents.OrderConfirmed)

	_, err := f.svc.CreateVendorBillFromPO(context.Background(), contactUser, po.ID, CreateFromPOInput{})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = f.svc.CreateVendorBillFromPO(context.Background(), shared.Principal{}, po.ID, CreateFromPOInput{})
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestPostAndCancelVendorBill(t *testing.T) {
	f := newAPFixture(t, "")
	ctx := context.Background()
	chair := f.chair
	bill, err := f.svc.CreateVendorBill(ctx, financeUser, CreateVendorBillInput{
		VendorName: "Manual",
		Lines:      []documents.LineRequest{{ProductID: &chair, Quantity: 1, UnitPrice: decimal.NewFromInt(1000), AccountName: pricingtest.Ptr("Freight")}},
	})
	require.NoError(t, err)
	require.Equal(t, "Freight", *bill.Lines[0].AccountName)

	posted, err := f.svc.UpdateStatus(ctx, financeUser, bill.ID, "posted")
	require.NoError(t, err)
	require.Equal(t, documents.BillPosted, posted.Status)

	_, err = f.svc.PostVendorBill(ctx, financeUser, bill.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, "only draft vendor bills can be posted", shared.UserSafeMessage(err))

	lines := []documents.LineRequest{{ProductID: &chair, Quantity: 2, UnitPrice: decimal.NewFromInt(1)}}
	_, err = f.svc.UpdateVendorBill(ctx, bill.ID, UpdateVendorBillInput{Lines: &lines})
	require.ErrorIs(t, err, shared.ErrInvalidState)

	paid := f.repo.bills[bill.ID]
	paid.PaidBank = decimal.NewFromInt(100)
	f.repo.bills[bill.ID] = paid
	_, err = f.svc.CancelVendorBill(ctx, financeUser, bill.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	paid.PaidBank = decimal.Zero
	f.repo.bills[bill.ID] = paid
	cancelled, err := f.svc.UpdateStatus(ctx, financeUser, bill.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, documents.BillCancelled, cancelled.Status)

	_, err = f.svc.UpdateStatus(ctx, financeUser, bill.ID, "draft")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.svc.PostVendorBill(ctx, contactUser, bill.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateVendorBillValidatesDates(t *testing.T) {
	f := newAPFixture(t, "")
	ctx := context.Background()
	chair := f.chair
	billDate, dueDate := "2025-11-10", "2025-11-01"
	_, err := f.svc.CreateVendorBill(ctx, financeUser, CreateVendorBillInput{
		BillDate: &billDate,
		DueDate:  &dueDate,
		Lines:    []documents.LineRequest{{ProductID: &chair, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	bill, err := f.svc.CreateVendorBill(ctx, financeUser, CreateVendorBillInput{
		BillDate: &billDate,
		Lines:    []documents.LineRequest{{ProductID: &chair, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	require.Equal(t, "BILL-202511-0001", bill.Number)

	ref := "  INV-778 "
	updated, err := f.svc.UpdateVendorBill(ctx, bill.ID, UpdateVendorBillInput{BillReference: &ref})
	require.NoError(t, err)
	require.Equal(t, "INV-778", *updated.BillReference)

	_, err = f.svc.UpdateVendorBill(ctx, bill.ID, UpdateVendorBillInput{DueDate: &dueDate})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCalculateAPAging(t *testing.T) {
	f := newAPFixture(t, "")
	day := func(s string) *time.Time {
		d, err := time.Parse(documents.DateLayout, s)
		require.NoError(t, err)
		return &d
	}
	add := func(total string, due *time.Time, paidCash string) {
		b := VendorBill{
			ID:       uuid.New(),
			Status:   documents.BillPosted,
			DueDate:  due,
			Totals:   pricing.Totals{Amount: decimal.RequireFromString(total)},
			PaidCash: decimal.RequireFromString(paidCash),
		}
		f.repo.bills[b.ID] = b
	}
	add("1000", day("2025-12-01"), "0")  // current
	add("500", day("2025-10-20"), "200") // 16 days overdue
	add("300", day("2025-08-01"), "0")   // 96 days overdue
	add("400", day("2025-09-01"), "400") // settled

	bucket, err := f.svc.CalculateAPAging(context.Background(), *day("2025-11-05"))
	require.NoError(t, err)
	require.Equal(t, "1000.00", bucket.Current.StringFixed(2))
	require.Equal(t, "300.00", bucket.Bucket30.StringFixed(2))
	require.Equal(t, "300.00", bucket.Bucket120.StringFixed(2))
	require.Equal(t, "1600.00", bucket.Total.StringFixed(2))
}
