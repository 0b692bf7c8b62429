package ar

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

// Repository provides PostgreSQL backed persistence for AR.
type Repository struct {
	pool *pgxpool.Pool
	q    db.DBTX
}

var _ RepositoryPort = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// WithTx runs fn against a repository bound to one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{pool: r.pool, q: tx})
	})
}

const invoiceColumns = `id, number, customer_id, customer_name, invoice_date, due_date, sales_order_id,
	status, total_untaxed, total_tax, total_amount, amount_paid, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (CustomerInvoice, error) {
	var inv CustomerInvoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.InvoiceDate, &inv.DueDate,
		&inv.SalesOrderID, &inv.Status, &inv.Untaxed, &inv.Tax, &inv.Amount, &inv.AmountPaid,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// --- Invoice Operations ---

// GetInvoice returns an invoice with its lines.
func (r *Repository) GetInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM customer_invoices WHERE id = $1`, id))
	if err != nil {
		return CustomerInvoice{}, db.Classify(err, "customer invoice")
	}
	inv.Lines, err = documents.CustomerInvoiceLines.Load(ctx, r.q, id)
	if err != nil {
		return CustomerInvoice{}, err
	}
	return inv, nil
}

// LockInvoice reads the header row FOR UPDATE.
func (r *Repository) LockInvoice(ctx context.Context, id uuid.UUID) (CustomerInvoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM customer_invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return CustomerInvoice{}, db.Classify(err, "customer invoice")
	}
	return inv, nil
}

// ListInvoices returns invoice headers, newest first.
func (r *Repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]CustomerInvoice, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if req.Status != nil {
		args = append(args, *req.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if req.CustomerID != nil {
		args = append(args, *req.CustomerID)
		where += ` AND customer_id = $` + strconv.Itoa(len(args))
	}
	if req.SalesOrderID != nil {
		args = append(args, *req.SalesOrderID)
		where += ` AND sales_order_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customer_invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, req.Limit, req.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM customer_invoices`+where+
		` ORDER BY created_at DESC, id LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CustomerInvoice, error) {
		return scanInvoice(row)
	})
	return invoices, total, err
}

// ListOutstanding returns posted invoices with an unpaid balance.
func (r *Repository) ListOutstanding(ctx context.Context) ([]CustomerInvoice, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM customer_invoices
		WHERE status = 'posted' AND total_amount > amount_paid
		ORDER BY COALESCE(due_date, invoice_date, created_at::date)`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CustomerInvoice, error) {
		return scanInvoice(row)
	})
}

// CreateInvoice inserts the header; lines follow through ReplaceLines.
func (r *Repository) CreateInvoice(ctx context.Context, inv CustomerInvoice) error {
	_, err := r.q.Exec(ctx, `INSERT INTO customer_invoices
		(id, number, customer_id, customer_name, invoice_date, due_date, sales_order_id, status,
		 total_untaxed, total_tax, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.Number, inv.CustomerID, inv.CustomerName, inv.InvoiceDate, inv.DueDate, inv.SalesOrderID, inv.Status,
		inv.Untaxed, inv.Tax, inv.Amount, inv.CreatedBy)
	return db.Classify(err, "customer invoice")
}

func (r *Repository) UpdateHeader(ctx context.Context, inv CustomerInvoice) error {
	_, err := r.q.Exec(ctx, `UPDATE customer_invoices
		SET customer_id = $2, customer_name = $3, invoice_date = $4, due_date = $5, updated_at = NOW()
		WHERE id = $1`, inv.ID, inv.CustomerID, inv.CustomerName, inv.InvoiceDate, inv.DueDate)
	return db.Classify(err, "customer invoice")
}

func (r *Repository) ReplaceLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	if err := documents.CustomerInvoiceLines.Replace(ctx, r.q, id, lines); err != nil {
		return err
	}
	return documents.UpdateTotals(ctx, r.q, "customer_invoices", id, totals)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status documents.InvoiceStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE customer_invoices SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *Repository) Audit(ctx context.Context, log shared.AuditLog) error {
	return shared.RecordAudit(ctx, r.q, log)
}

// GenerateInvoiceNumber allocates the next INV-YYYYMM-NNNN number.
func (r *Repository) GenerateInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	return db.NextNumber(ctx, r.q, NumberPrefix, at)
}
