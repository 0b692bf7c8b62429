package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// memoryStore serialises transactions with a mutex, standing in for the row
// locks taken by the Postgres repository, and rolls back on error.
type memoryStore struct {
	mu       sync.Mutex
	payments map[uuid.UUID]Payment
	docs     map[DocumentRef]Document
	audits   []shared.AuditLog
	seq      int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{payments: map[uuid.UUID]Payment{}, docs: map[DocumentRef]Document{}}
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payments := make(map[uuid.UUID]Payment, len(s.payments))
	for k, v := range s.payments {
		payments[k] = v
	}
	docs := make(map[DocumentRef]Document, len(s.docs))
	for k, v := range s.docs {
		docs[k] = v
	}
	audits, seq := len(s.audits), s.seq
	if err := fn(ctx, memoryTx{s}); err != nil {
		s.payments, s.docs, s.audits, s.seq = payments, docs, s.audits[:audits], seq
		return err
	}
	return nil
}

func (s *memoryStore) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, fmt.Errorf("%w: payment", shared.ErrNotFound)
	}
	return p, nil
}

func (s *memoryStore) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Payment
	for _, p := range s.payments {
		if req.Status != nil && p.Status != *req.Status {
			continue
		}
		if req.VendorBillID != nil && (p.VendorBillID == nil || *p.VendorBillID != *req.VendorBillID) {
			continue
		}
		if req.CustomerInvoiceID != nil && (p.CustomerInvoiceID == nil || *p.CustomerInvoiceID != *req.CustomerInvoiceID) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s *memoryStore) doc(ref DocumentRef) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[ref]
}

func (s *memoryStore) addDocument(kind DocumentKind, number, status, partner, total string) DocumentRef {
	ref := DocumentRef{Kind: kind, ID: uuid.New()}
	s.docs[ref] = Document{Kind: kind, ID: ref.ID, Number: number, Status: status, PartnerName: partner, Total: decimal.RequireFromString(total)}
	return ref
}

type memoryTx struct{ s *memoryStore }

func (t memoryTx) GetDocument(ctx context.Context, ref DocumentRef) (Document, error) {
	doc, ok := t.s.docs[ref]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", shared.ErrNotFound, ref.Kind.label())
	}
	return doc, nil
}

func (t memoryTx) LockDocument(ctx context.Context, ref DocumentRef) (Document, error) {
	return t.GetDocument(ctx, ref)
}

func (t memoryTx) SaveDocument(ctx context.Context, doc Document) error {
	t.s.docs[DocumentRef{Kind: doc.Kind, ID: doc.ID}] = doc
	return nil
}

func (t memoryTx) LockPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	p, ok := t.s.payments[id]
	if !ok {
		return Payment{}, fmt.Errorf("%w: payment", shared.ErrNotFound)
	}
	return p, nil
}

func (t memoryTx) InsertPayment(ctx context.Context, p Payment) error {
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	t.s.payments[p.ID] = p
	return nil
}

func (t memoryTx) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	p := t.s.payments[id]
	p.Status, p.UpdatedAt = status, at
	switch status {
	case StatusPosted:
		p.PostedAt = &at
	case StatusCancelled:
		p.CancelledAt = &at
	}
	t.s.payments[id] = p
	return nil
}

func (t memoryTx) GeneratePaymentNumber(ctx context.Context, at time.Time) (string, error) {
	t.s.seq++
	return fmt.Sprintf("PAY-%s-%04d", at.Format("200601"), t.s.seq), nil
}

func (t memoryTx) Audit(ctx context.Context, log shared.AuditLog) error {
	t.s.audits = append(t.s.audits, log)
	return nil
}

type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]string
}

func (k *memoryKeys) CheckAndInsert(ctx context.Context, key, module string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.keys[module+"/"+key]; ok {
		return shared.ErrIdempotencyConflict
	}
	k.keys[module+"/"+key] = ""
	return nil
}

func (k *memoryKeys) Complete(ctx context.Context, key, module, resourceID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[module+"/"+key] = resourceID
	return nil
}

func (k *memoryKeys) Lookup(ctx context.Context, key, module string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	id, ok := k.keys[module+"/"+key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return id, nil
}

func (k *memoryKeys) Delete(ctx context.Context, key, module string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.keys, module+"/"+key)
	return nil
}

type countingNotifier struct {
	mu       sync.Mutex
	applied  map[string]int
	reversed map[string]int
	refresh  int
	err      error
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{applied: map[string]int{}, reversed: map[string]int{}}
}

func (n *countingNotifier) PaymentApplied(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.applied[kind]++
}

func (n *countingNotifier) PaymentReversed(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reversed[kind]++
}

func (n *countingNotifier) EnqueueDashboardRefresh(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refresh++
	return n.err
}

var (
	finance = shared.Principal{UserID: uuid.New(), Email: "accounts@example.com", Role: shared.RoleInvoicingUser}
	contact = shared.Principal{UserID: uuid.New(), Email: "contact@example.com", Role: shared.RoleContactUser}
)

func newTestService(store *memoryStore, opts ...Option) *Service {
	svc := NewService(store, nil, opts...)
	svc.now = func() time.Time { return time.Date(2025, 9, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func billPayment(ref DocumentRef, method, amount string) CreatePaymentInput {
	id := ref.ID
	return CreatePaymentInput{VendorBillID: &id, Method: method, Amount: decimal.RequireFromString(amount)}
}

func invoicePayment(ref DocumentRef, method, amount string) CreatePaymentInput {
	id := ref.ID
	return CreatePaymentInput{CustomerInvoiceID: &id, Method: method, Amount: decimal.RequireFromString(amount)}
}

func TestBillPaidInFullRejectsFurtherPayments(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	svc := newTestService(store)

	p, replayed, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "1000"), "")
	require.NoError(t, err)
	require.False(t, replayed)
	require.Equal(t, StatusDraft, p.Status)
	require.Equal(t, "PAY-202509-0001", p.Number)
	require.True(t, store.doc(bill).PaidBank.IsZero(), "draft payments do not touch the bill")

	posted, err := svc.UpdateStatus(ctx, finance, p.ID, "posted")
	require.NoError(t, err)
	require.Equal(t, StatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)
	assert.Equal(t, "1000.00", store.doc(bill).PaidBank.StringFixed(2))
	assert.True(t, store.doc(bill).PaidCash.IsZero())

	_, _, err = svc.CreatePayment(ctx, finance, billPayment(bill, "cash", "1"), "")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, shared.UserSafeMessage(err), "already fully paid")
}

func TestInvoicePartialPaymentsAndReversal(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	inv := store.addDocument(KindCustomerInvoice, "INV-202509-0001", "posted", "Nimesh Pathak", "500")
	svc := newTestService(store)

	first, _, err := svc.CreatePayment(ctx, finance, invoicePayment(inv, "cash", "300"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, first.ID, "posted")
	require.NoError(t, err)
	require.Equal(t, "300.00", store.doc(inv).AmountPaid.StringFixed(2))
	require.Equal(t, "posted", store.doc(inv).Status)

	second, _, err := svc.CreatePayment(ctx, finance, invoicePayment(inv, "bank", "200"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, second.ID, "posted")
	require.NoError(t, err)
	require.Equal(t, "500.00", store.doc(inv).AmountPaid.StringFixed(2))
	require.Equal(t, "paid", store.doc(inv).Status)

	cancelled, err := svc.UpdateStatus(ctx, finance, second.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "300.00", store.doc(inv).AmountPaid.StringFixed(2))
	assert.Equal(t, "posted", store.doc(inv).Status)
}

func TestCreateWithBothReferencesWritesNothing(t *testing.T) {
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	inv := store.addDocument(KindCustomerInvoice, "INV-202509-0001", "posted", "Nimesh Pathak", "500")
	svc := newTestService(store)

	input := billPayment(bill, "bank", "100")
	input.CustomerInvoiceID = &inv.ID
	_, _, err := svc.CreatePayment(context.Background(), finance, input, "")
	require.ErrorIs(t, err, shared.ErrInvariantViolation)
	assert.Empty(t, store.payments)
	assert.Empty(t, store.audits)
	assert.True(t, store.doc(bill).Applied().IsZero())
	assert.True(t, store.doc(inv).Applied().IsZero())
}

func TestCreatePaymentRejections(t *testing.T) {
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	draftBill := store.addDocument(KindVendorBill, "BILL-202509-0002", "draft", "Azure Interior", "1000")
	cancelledInv := store.addDocument(KindCustomerInvoice, "INV-202509-0002", "cancelled", "Nimesh Pathak", "500")
	svc := newTestService(store)

	mismatch := billPayment(bill, "bank", "10")
	mismatch.PartnerType = "customer"

	cases := []struct {
		name    string
		actor   shared.Principal
		input   CreatePaymentInput
		wantErr error
	}{
		{"no document", finance, CreatePaymentInput{Method: "bank", Amount: decimal.NewFromInt(10)}, shared.ErrInvariantViolation},
		{"zero amount", finance, billPayment(bill, "bank", "0"), shared.ErrInvariantViolation},
		{"negative amount", finance, billPayment(bill, "bank", "-5"), shared.ErrInvariantViolation},
		{"unknown method", finance, billPayment(bill, "cheque", "10"), shared.ErrValidation},
		{"missing bill", finance, billPayment(DocumentRef{Kind: KindVendorBill, ID: uuid.New()}, "bank", "10"), shared.ErrNotFound},
		{"draft bill", finance, billPayment(draftBill, "bank", "10"), shared.ErrInvalidState},
		{"cancelled invoice", finance, invoicePayment(cancelledInv, "bank", "10"), shared.ErrInvalidState},
		{"over outstanding", finance, billPayment(bill, "bank", "1000.01"), shared.ErrInvariantViolation},
		{"partner type mismatch", finance, mismatch, shared.ErrInvariantViolation},
		{"contact role", contact, billPayment(bill, "bank", "10"), shared.ErrForbidden},
		{"anonymous", shared.Principal{}, billPayment(bill, "bank", "10"), shared.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreatePayment(context.Background(), tc.actor, tc.input, "")
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Empty(t, store.payments)
}

func TestCreatePaymentInfersPartner(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	inv := store.addDocument(KindCustomerInvoice, "INV-202509-0001", "posted", "Nimesh Pathak", "500")
	svc := newTestService(store)

	vendorPay, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "cash", "10"), "")
	require.NoError(t, err)
	assert.Equal(t, PartnerVendor, vendorPay.PartnerType)
	assert.Equal(t, DirectionSend, vendorPay.Direction)
	assert.Equal(t, "Azure Interior", vendorPay.PartnerName)
	assert.Equal(t, "2025-09-14", vendorPay.PaymentDate.Format("2006-01-02"))

	input := invoicePayment(inv, "BANK", "10")
	input.PartnerType = "customer"
	input.PartnerName = "Nimesh P."
	date := "2025-09-01"
	input.PaymentDate = &date
	customerPay, _, err := svc.CreatePayment(ctx, finance, input, "")
	require.NoError(t, err)
	assert.Equal(t, PartnerCustomer, customerPay.PartnerType)
	assert.Equal(t, DirectionReceive, customerPay.Direction)
	assert.Equal(t, MethodBank, customerPay.Method)
	assert.Equal(t, "Nimesh P.", customerPay.PartnerName)
	assert.Equal(t, "2025-09-01", customerPay.PaymentDate.Format("2006-01-02"))
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	svc := newTestService(store)

	draft, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "cash", "100"), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, finance, draft.ID, "draft")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.UpdateStatus(ctx, finance, draft.ID, "settled")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.UpdateStatus(ctx, contact, draft.ID, "posted")
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.UpdateStatus(ctx, finance, uuid.New(), "posted")
	require.ErrorIs(t, err, shared.ErrNotFound)

	cancelled, err := svc.UpdateStatus(ctx, finance, draft.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.True(t, store.doc(bill).PaidCash.IsZero(), "cancelling a draft only flips status")

	_, err = svc.UpdateStatus(ctx, finance, draft.ID, "posted")
	require.ErrorIs(t, err, shared.ErrInvalidState)

	posted, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "cash", "100"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, posted.ID, "posted")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, posted.ID, "posted")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.UpdateStatus(ctx, finance, posted.ID, "draft")
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, "100.00", store.doc(bill).PaidCash.StringFixed(2))

	actions := make([]string, 0, len(store.audits))
	for _, a := range store.audits {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{"payment.created", "payment.cancelled", "payment.created", "payment.posted"}, actions)
}

func TestPostingRevalidatesOutstanding(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	svc := newTestService(store)

	first, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "600"), "")
	require.NoError(t, err)
	second, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "cash", "600"), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, finance, first.ID, "posted")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, second.ID, "posted")
	require.ErrorIs(t, err, shared.ErrInvariantViolation)

	got, err := svc.GetPayment(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got.Status)
	assert.Equal(t, "600.00", store.doc(bill).Applied().StringFixed(2))
}

func TestConcurrentPostingNeverOverpays(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	inv := store.addDocument(KindCustomerInvoice, "INV-202509-0001", "posted", "Nimesh Pathak", "1000")
	svc := newTestService(store)

	ids := make([]uuid.UUID, 5)
	for i := range ids {
		p, _, err := svc.CreatePayment(ctx, finance, invoicePayment(inv, "bank", "400"), "")
		require.NoError(t, err)
		ids[i] = p.ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := svc.UpdateStatus(ctx, finance, id, "posted"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 2, success)
	doc := store.doc(inv)
	assert.Equal(t, "800.00", doc.AmountPaid.StringFixed(2))
	assert.True(t, doc.AmountPaid.LessThanOrEqual(doc.Total))
}

func TestIdempotentCreate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	keys := &memoryKeys{keys: map[string]string{}}
	svc := newTestService(store, WithIdempotencyKeys(keys))

	first, replayed, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "req-1")
	require.NoError(t, err)
	require.False(t, replayed)

	again, replayed, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "req-1")
	require.NoError(t, err)
	require.True(t, replayed)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, store.payments, 1)

	_, _, err = svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "5000"), "req-2")
	require.ErrorIs(t, err, shared.ErrInvariantViolation)
	_, err = keys.Lookup(ctx, "req-2", idempotencyScope(finance))
	require.ErrorIs(t, err, shared.ErrNotFound, "failed requests release their key")

	require.NoError(t, keys.CheckAndInsert(ctx, "req-3", idempotencyScope(finance)))
	_, _, err = svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "req-3")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	keys := &memoryKeys{keys: map[string]string{}}
	svc := newTestService(store, WithIdempotencyKeys(keys))
	colleague := shared.Principal{UserID: uuid.New(), Email: "billing@example.com", Role: shared.RoleInvoicingUser}

	mine, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "req-1")
	require.NoError(t, err)

	theirs, replayed, err := svc.CreatePayment(ctx, colleague, billPayment(bill, "cash", "40"), "req-1")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEqual(t, mine.ID, theirs.ID)
	assert.Equal(t, "40.00", theirs.Amount.StringFixed(2))
	assert.Len(t, store.payments, 2)
}

func TestCreatePaymentKeepsExactAmount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	svc := newTestService(store)

	for _, amount := range []string{"9.999", "0.004"} {
		_, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", amount), "")
		require.ErrorIs(t, err, shared.ErrInvariantViolation, amount)
		assert.Contains(t, err.Error(), "2 decimal places", amount)
	}
	assert.Empty(t, store.payments)

	p, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "9.990"), "")
	require.NoError(t, err)
	assert.Equal(t, "9.99", p.Amount.StringFixed(2))
}

func TestSettlementNotifiesAfterMoneyMoves(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	notifier := newCountingNotifier()
	notifier.err = errors.New("redis unavailable")
	svc := newTestService(store, WithRecorder(notifier), WithRefreshScheduler(notifier))

	p, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "")
	require.NoError(t, err)
	require.Zero(t, notifier.refresh)

	_, err = svc.UpdateStatus(ctx, finance, p.ID, "posted")
	require.NoError(t, err, "refresh failures are not surfaced")
	_, err = svc.UpdateStatus(ctx, finance, p.ID, "cancelled")
	require.NoError(t, err)

	assert.Equal(t, 2, notifier.refresh)
	assert.Equal(t, 1, notifier.applied[string(KindVendorBill)])
	assert.Equal(t, 1, notifier.reversed[string(KindVendorBill)])
	assert.True(t, store.doc(bill).PaidBank.IsZero())
}

func TestListPaymentsFilters(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	bill := store.addDocument(KindVendorBill, "BILL-202509-0001", "posted", "Azure Interior", "1000")
	inv := store.addDocument(KindCustomerInvoice, "INV-202509-0001", "posted", "Nimesh Pathak", "500")
	svc := newTestService(store)

	_, _, err := svc.CreatePayment(ctx, finance, billPayment(bill, "bank", "100"), "")
	require.NoError(t, err)
	p, _, err := svc.CreatePayment(ctx, finance, invoicePayment(inv, "cash", "100"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, finance, p.ID, "posted")
	require.NoError(t, err)

	posted := StatusPosted
	items, total, err := svc.ListPayments(ctx, ListPaymentsRequest{Status: &posted})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, p.ID, items[0].ID)

	items, _, err = svc.ListPayments(ctx, ListPaymentsRequest{VendorBillID: &bill.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, PartnerVendor, items[0].PartnerType)
}
