package orders

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
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	// GetForUpdate locks the header row; only meaningful inside WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrder, int, error)
	Create(ctx context.Context, order SalesOrder) error
	UpdateHeader(ctx context.Context, order SalesOrder) error
	ReplaceLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status documents.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasInvoices(ctx context.Context, id uuid.UUID) (bool, error)
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderColumns = `id, number, customer_id, customer_name, order_date, status,
	total_untaxed, total_tax, total_amount, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*SalesOrder, error) {
	var o SalesOrder
	err := row.Scan(&o.ID, &o.Number, &o.CustomerID, &o.CustomerName, &o.OrderDate, &o.Status,
		&o.Untaxed, &o.Tax, &o.Amount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*SalesOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, query string, id uuid.UUID) (*SalesOrder, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.Classify(err, "sales order")
	}
	o.Lines, err = documents.SalesOrderLines.Load(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrder, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if req.CustomerID != nil {
		args = append(args, *req.CustomerID)
		where += ` AND customer_id = $` + strconv.Itoa(len(args))
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.Limit, req.Offset)
	query := `SELECT ` + orderColumns + ` FROM sales_orders` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []SalesOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o SalesOrder) error {
	_, err := r.db.Exec(ctx, `INSERT INTO sales_orders
		(id, number, customer_id, customer_name, order_date, status, total_untaxed, total_tax, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.Number, o.CustomerID, o.CustomerName, o.OrderDate, o.Status, o.Untaxed, o.Tax, o.Amount, o.CreatedBy)
	return db.Classify(err, "sales order")
}

func (r *repository) UpdateHeader(ctx context.Context, o SalesOrder) error {
	_, err := r.db.Exec(ctx, `UPDATE sales_orders SET customer_id = $2, customer_name = $3, order_date = $4, updated_at = NOW()
		WHERE id = $1`, o.ID, o.CustomerID, o.CustomerName, o.OrderDate)
	return db.Classify(err, "sales order")
}

func (r *repository) ReplaceLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	if err := documents.SalesOrderLines.Replace(ctx, r.db, id, lines); err != nil {
		return err
	}
	return documents.UpdateTotals(ctx, r.db, "sales_orders", id, totals)
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status documents.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE sales_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "sales order")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sales_orders WHERE id = $1`, id)
	return db.Classify(err, "sales order")
}

func (r *repository) HasInvoices(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customer_invoices WHERE sales_order_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	return db.NextNumber(ctx, r.db, NumberPrefix, date)
}
