package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MonthlyRow is one month of posted payment totals.
type MonthlyRow struct {
	Month     string
	Receipts  decimal.Decimal
	Disbursed decimal.Decimal
}

// Repository runs the dashboard aggregate queries.
type Repository interface {
	PostedPaymentTotal(ctx context.Context, direction string) (decimal.Decimal, error)
	ItemsInStock(ctx context.Context) (int64, error)
	ReceivablesOutstanding(ctx context.Context) (decimal.Decimal, error)
	PayablesOutstanding(ctx context.Context) (decimal.Decimal, error)
	MonthlyPayments(ctx context.Context, from time.Time) ([]MonthlyRow, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the Postgres implementation.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *pgRepository) PostedPaymentTotal(ctx context.Context, direction string) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'posted' AND direction = $1`, direction)
}

func (r *pgRepository) ItemsInStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(current_stock), 0)::BIGINT FROM products`).Scan(&total)
	return total, err
}

func (r *pgRepository) ReceivablesOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(total_amount - amount_paid), 0) FROM customer_invoices WHERE status = 'posted'`)
}

func (r *pgRepository) PayablesOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(total_amount - paid_cash - paid_bank), 0) FROM vendor_bills WHERE status = 'posted'`)
}

func (r *pgRepository) MonthlyPayments(ctx context.Context, from time.Time) ([]MonthlyRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(payment_date, 'YYYY-MM') AS month,
			COALESCE(SUM(amount) FILTER (WHERE direction = 'receive'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'send'), 0)
		FROM payments
		WHERE status = 'posted' AND payment_date >= $1
		GROUP BY 1
		ORDER BY 1`, from)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthlyRow, error) {
		var m MonthlyRow
		err := row.Scan(&m.Month, &m.Receipts, &m.Disbursed)
		return m, err
	})
}
