package payments

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Repository reads payments outside of a transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPayment(ctx context.Context, id uuid.UUID) (Payment, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error)
}

// TxRepository is the settlement unit of work. Lock* methods take row locks
// held until the surrounding transaction ends.
type TxRepository interface {
	GetDocument(ctx context.Context, ref DocumentRef) (Document, error)
	LockDocument(ctx context.Context, ref DocumentRef) (Document, error)
	SaveDocument(ctx context.Context, doc Document) error
	LockPayment(ctx context.Context, id uuid.UUID) (Payment, error)
	InsertPayment(ctx context.Context, p Payment) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error
	GeneratePaymentNumber(ctx context.Context, at time.Time) (string, error)
	Audit(ctx context.Context, log shared.AuditLog) error
}

var (
	_ Repository   = (*pgRepository)(nil)
	_ TxRepository = (*pgTxRepository)(nil)
)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx pgx.Tx
}

// NewRepository returns the Postgres implementation.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const paymentColumns = `id, number, status, partner_type, partner_name, direction, method, amount,
	payment_date, memo, vendor_bill_id, customer_invoice_id, created_by, created_at, updated_at,
	posted_at, cancelled_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.Number, &p.Status, &p.PartnerType, &p.PartnerName, &p.Direction, &p.Method, &p.Amount,
		&p.PaymentDate, &p.Memo, &p.VendorBillID, &p.CustomerInvoiceID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.PostedAt, &p.CancelledAt)
	return p, err
}

func (r *pgRepository) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return Payment{}, db.Classify(err, "payment")
	}
	return p, nil
}

func (r *pgRepository) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if req.Status != nil {
		add("status = ?", string(*req.Status))
	}
	if req.VendorBillID != nil {
		add("vendor_bill_id = ?", *req.VendorBillID)
	}
	if req.CustomerInvoiceID != nil {
		add("customer_invoice_id = ?", *req.CustomerInvoiceID)
	}
	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+filter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, req.Offset)
	query := `SELECT ` + paymentColumns + ` FROM payments` + filter +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

const (
	billSettlementSelect = `SELECT id, number, status, vendor_name, total_amount, paid_cash, paid_bank
		FROM vendor_bills WHERE id = $1`
	invoiceSettlementSelect = `SELECT id, number, status, customer_name, total_amount, amount_paid
		FROM customer_invoices WHERE id = $1`
)

func (r *pgTxRepository) readDocument(ctx context.Context, ref DocumentRef, suffix string) (Document, error) {
	doc := Document{Kind: ref.Kind}
	var err error
	switch ref.Kind {
	case KindVendorBill:
		err = r.tx.QueryRow(ctx, billSettlementSelect+suffix, ref.ID).
			Scan(&doc.ID, &doc.Number, &doc.Status, &doc.PartnerName, &doc.Total, &doc.PaidCash, &doc.PaidBank)
	case KindCustomerInvoice:
		err = r.tx.QueryRow(ctx, invoiceSettlementSelect+suffix, ref.ID).
			Scan(&doc.ID, &doc.Number, &doc.Status, &doc.PartnerName, &doc.Total, &doc.AmountPaid)
	default:
		return Document{}, shared.ErrInvariantViolation
	}
	if err != nil {
		return Document{}, db.Classify(err, ref.Kind.label())
	}
	return doc, nil
}

func (r *pgTxRepository) GetDocument(ctx context.Context, ref DocumentRef) (Document, error) {
	return r.readDocument(ctx, ref, "")
}

func (r *pgTxRepository) LockDocument(ctx context.Context, ref DocumentRef) (Document, error) {
	return r.readDocument(ctx, ref, " FOR UPDATE")
}

func (r *pgTxRepository) SaveDocument(ctx context.Context, doc Document) error {
	var err error
	switch doc.Kind {
	case KindVendorBill:
		_, err = r.tx.Exec(ctx, `UPDATE vendor_bills SET paid_cash = $2, paid_bank = $3, updated_at = NOW() WHERE id = $1`,
			doc.ID, doc.PaidCash, doc.PaidBank)
	case KindCustomerInvoice:
		_, err = r.tx.Exec(ctx, `UPDATE customer_invoices SET amount_paid = $2, status = $3, updated_at = NOW() WHERE id = $1`,
			doc.ID, doc.AmountPaid, doc.Status)
	}
	return db.Classify(err, doc.Kind.label())
}

func (r *pgTxRepository) LockPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	p, err := scanPayment(r.tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Payment{}, db.Classify(err, "payment")
	}
	return p, nil
}

func (r *pgTxRepository) InsertPayment(ctx context.Context, p Payment) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO payments (id, number, status, partner_type, partner_name, direction, method,
		amount, payment_date, memo, vendor_bill_id, customer_invoice_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Number, p.Status, p.PartnerType, p.PartnerName, p.Direction, p.Method,
		p.Amount, p.PaymentDate, p.Memo, p.VendorBillID, p.CustomerInvoiceID, p.CreatedBy)
	return db.Classify(err, "payment")
}

func (r *pgTxRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	var err error
	switch status {
	case StatusPosted:
		_, err = r.tx.Exec(ctx, `UPDATE payments SET status = $2, posted_at = $3, updated_at = $3 WHERE id = $1`, id, status, at)
	case StatusCancelled:
		_, err = r.tx.Exec(ctx, `UPDATE payments SET status = $2, cancelled_at = $3, updated_at = $3 WHERE id = $1`, id, status, at)
	default:
		_, err = r.tx.Exec(ctx, `UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	}
	return err
}

func (r *pgTxRepository) GeneratePaymentNumber(ctx context.Context, at time.Time) (string, error) {
	return db.NextNumber(ctx, r.tx, NumberPrefix, at)
}

func (r *pgTxRepository) Audit(ctx context.Context, log shared.AuditLog) error {
	return shared.RecordAudit(ctx, r.tx, log)
}
