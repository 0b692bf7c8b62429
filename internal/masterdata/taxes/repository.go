package taxes

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error)
	Get(ctx context.Context, id uuid.UUID) (Tax, error)
	Create(ctx context.Context, tax Tax) (Tax, error)
	Update(ctx context.Context, tax Tax) (Tax, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FirstTaxByName(ctx context.Context, name string) (pricing.TaxRule, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taxColumns = `id, name, computation_method, value, applicable_on_sales, applicable_on_purchase, created_at, updated_at`

var sortColumns = map[string]string{
	"name":    "name",
	"value":   "value",
	"created": "created_at",
}

// List uses a dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, shared.SearchPattern(filters.Search))
		where += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND computation_method = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM taxes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taxColumns + ` FROM taxes` + where +
		` ORDER BY ` + shared.OrderBy(filters.SortBy, filters.SortDir, sortColumns, "name")
	args = append(args, filters.Limit(), filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var taxes []Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, 0, err
		}
		taxes = append(taxes, t)
	}
	return taxes, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Tax, error) {
	t, err := scanTax(r.pool.QueryRow(ctx, `SELECT `+taxColumns+` FROM taxes WHERE id = $1`, id))
	return t, db.Classify(err, "tax")
}

func (r *repository) Create(ctx context.Context, tax Tax) (Tax, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO taxes (name, computation_method, value, applicable_on_sales, applicable_on_purchase)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+taxColumns,
		tax.Name, tax.ComputationMethod, tax.Value, tax.ApplicableOnSales, tax.ApplicableOnPurchase)
	created, err := scanTax(row)
	return created, db.Classify(err, "tax")
}

func (r *repository) Update(ctx context.Context, tax Tax) (Tax, error) {
	row := r.pool.QueryRow(ctx, `UPDATE taxes SET name = $2, computation_method = $3, value = $4,
		applicable_on_sales = $5, applicable_on_purchase = $6, updated_at = NOW()
		WHERE id = $1 RETURNING `+taxColumns,
		tax.ID, tax.Name, tax.ComputationMethod, tax.Value, tax.ApplicableOnSales, tax.ApplicableOnPurchase)
	updated, err := scanTax(row)
	return updated, db.Classify(err, "tax")
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM taxes WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err, "tax")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "tax")
	}
	return nil
}

// FirstTaxByName implements pricing.TaxLookup. The name is unique in the
// schema; the ordering keeps the choice deterministic regardless.
func (r *repository) FirstTaxByName(ctx context.Context, name string) (pricing.TaxRule, error) {
	t, err := scanTax(r.pool.QueryRow(ctx, `SELECT `+taxColumns+` FROM taxes WHERE name = $1 ORDER BY created_at ASC, id ASC LIMIT 1`, name))
	if err != nil {
		return pricing.TaxRule{}, db.Classify(err, "tax")
	}
	return t.Rule(), nil
}

func scanTax(row pgx.Row) (Tax, error) {
	var t Tax
	err := row.Scan(&t.ID, &t.Name, &t.ComputationMethod, &t.Value, &t.ApplicableOnSales, &t.ApplicableOnPurchase, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
