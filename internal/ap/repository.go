package ap

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Repository defines vendor bill data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error)
	ListVendorBills(ctx context.Context, req ListVendorBillsRequest) ([]VendorBill, int, error)
	ListOutstandingBills(ctx context.Context) ([]VendorBill, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	LockVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error)
	CreateVendorBill(ctx context.Context, bill VendorBill) error
	UpdateVendorBillHeader(ctx context.Context, bill VendorBill) error
	ReplaceVendorBillLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error
	UpdateVendorBillStatus(ctx context.Context, id uuid.UUID, status documents.BillStatus) error
	Audit(ctx context.Context, log shared.AuditLog) error

	// Helper for generating numbers
	GenerateBillNumber(ctx context.Context, at time.Time) (string, error)
}

// Ensure implementation
var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const billColumns = `id, number, vendor_id, vendor_name, bill_reference, bill_date, due_date,
	purchase_order_id, status, total_untaxed, total_tax, total_amount, paid_cash, paid_bank,
	created_by, created_at, updated_at`

func scanBill(row pgx.Row) (VendorBill, error) {
	var b VendorBill
	err := row.Scan(&b.ID, &b.Number, &b.VendorID, &b.VendorName, &b.BillReference, &b.BillDate, &b.DueDate,
		&b.PurchaseOrderID, &b.Status, &b.Untaxed, &b.Tax, &b.Amount, &b.PaidCash, &b.PaidBank,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *pgRepository) GetVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM vendor_bills WHERE id = $1`, id))
	if err != nil {
		return VendorBill{}, db.Classify(err, "vendor bill")
	}
	bill.Lines, err = documents.VendorBillLines.Load(ctx, r.pool, id)
	if err != nil {
		return VendorBill{}, err
	}
	return bill, nil
}

func (r *pgRepository) ListVendorBills(ctx context.Context, req ListVendorBillsRequest) ([]VendorBill, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if req.Status != nil {
		args = append(args, *req.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if req.VendorID != nil {
		args = append(args, *req.VendorID)
		where += ` AND vendor_id = $` + strconv.Itoa(len(args))
	}
	if req.PurchaseOrderID != nil {
		args = append(args, *req.PurchaseOrderID)
		where += ` AND purchase_order_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_bills`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+` FROM vendor_bills`+where+
		` ORDER BY created_at DESC, id LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (VendorBill, error) {
		return scanBill(row)
	})
	return bills, total, err
}

// ListOutstandingBills returns posted bills that still carry a balance.
func (r *pgRepository) ListOutstandingBills(ctx context.Context) ([]VendorBill, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+` FROM vendor_bills
		WHERE status = 'posted' AND total_amount > paid_cash + paid_bank
		ORDER BY COALESCE(due_date, bill_date, created_at::date)`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (VendorBill, error) {
		return scanBill(row)
	})
}

func (r *pgTxRepository) LockVendorBill(ctx context.Context, id uuid.UUID) (VendorBill, error) {
	bill, err := scanBill(r.tx.QueryRow(ctx, `SELECT `+billColumns+` FROM vendor_bills WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return VendorBill{}, db.Classify(err, "vendor bill")
	}
	return bill, nil
}

func (r *pgTxRepository) CreateVendorBill(ctx context.Context, b VendorBill) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO vendor_bills
		(id, number, vendor_id, vendor_name, bill_reference, bill_date, due_date, purchase_order_id, status,
		 total_untaxed, total_tax, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.Number, b.VendorID, b.VendorName, b.BillReference, b.BillDate, b.DueDate, b.PurchaseOrderID, b.Status,
		b.Untaxed, b.Tax, b.Amount, b.CreatedBy)
	return db.Classify(err, "vendor bill")
}

func (r *pgTxRepository) UpdateVendorBillHeader(ctx context.Context, b VendorBill) error {
	_, err := r.tx.Exec(ctx, `UPDATE vendor_bills
		SET vendor_id = $2, vendor_name = $3, bill_reference = $4, bill_date = $5, due_date = $6, updated_at = NOW()
		WHERE id = $1`, b.ID, b.VendorID, b.VendorName, b.BillReference, b.BillDate, b.DueDate)
	return db.Classify(err, "vendor bill")
}

func (r *pgTxRepository) ReplaceVendorBillLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	if err := documents.VendorBillLines.Replace(ctx, r.tx, id, lines); err != nil {
		return err
	}
	return documents.UpdateTotals(ctx, r.tx, "vendor_bills", id, totals)
}

func (r *pgTxRepository) UpdateVendorBillStatus(ctx context.Context, id uuid.UUID, status documents.BillStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE vendor_bills SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *pgTxRepository) Audit(ctx context.Context, log shared.AuditLog) error {
	return shared.RecordAudit(ctx, r.tx, log)
}

func (r *pgTxRepository) GenerateBillNumber(ctx context.Context, at time.Time) (string, error) {
	return db.NextNumber(ctx, r.tx, NumberPrefix, at)
}
