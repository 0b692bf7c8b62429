package products

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
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	GetByName(ctx context.Context, name string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Upsert inserts or updates by name in one transaction and reports
	// how many rows were created versus updated.
	Upsert(ctx context.Context, products []Product) (created, updated int, err error)
	DistinctHSNCodes(ctx context.Context, limit int) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, type, sales_price, purchase_price, hsn_code, tax_name, current_stock, created_at, updated_at`

var sortColumns = map[string]string{
	"name":    "name",
	"price":   "sales_price",
	"stock":   "current_stock",
	"created": "created_at",
}

// List uses a dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, shared.SearchPattern(filters.Search))
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR hsn_code ILIKE $` + n + `)`
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND type = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + shared.OrderBy(filters.SortBy, filters.SortDir, sortColumns, "name")
	args = append(args, filters.Limit(), filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	return p, db.Classify(err, "product")
}

func (r *repository) GetByName(ctx context.Context, name string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name))
	return p, db.Classify(err, "product")
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scanProduct(r.pool.QueryRow(ctx, `INSERT INTO products
		(name, type, sales_price, purchase_price, hsn_code, tax_name, current_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+productColumns,
		p.Name, p.Type, p.SalesPrice, p.PurchasePrice, p.HSNCode, p.TaxName, p.CurrentStock))
	return created, db.Classify(err, "product")
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := scanProduct(r.pool.QueryRow(ctx, `UPDATE products SET
		name = $2, type = $3, sales_price = $4, purchase_price = $5, hsn_code = $6,
		tax_name = $7, current_stock = $8, updated_at = NOW()
		WHERE id = $1 RETURNING `+productColumns,
		p.ID, p.Name, p.Type, p.SalesPrice, p.PurchasePrice, p.HSNCode, p.TaxName, p.CurrentStock))
	return updated, db.Classify(err, "product")
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "product")
	}
	return nil
}

func (r *repository) Upsert(ctx context.Context, products []Product) (int, int, error) {
	var created, updated int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		created, updated = 0, 0
		for _, p := range products {
			var inserted bool
			err := tx.QueryRow(ctx, `INSERT INTO products (name, type, sales_price, purchase_price, hsn_code, tax_name)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (name) DO UPDATE SET
					type = EXCLUDED.type,
					sales_price = EXCLUDED.sales_price,
					purchase_price = EXCLUDED.purchase_price,
					hsn_code = COALESCE(EXCLUDED.hsn_code, products.hsn_code),
					tax_name = COALESCE(EXCLUDED.tax_name, products.tax_name),
					updated_at = NOW()
				RETURNING (xmax = 0)`,
				p.Name, p.Type, p.SalesPrice, p.PurchasePrice, p.HSNCode, p.TaxName).Scan(&inserted)
			if err != nil {
				return db.Classify(err, "product "+strconv.Quote(p.Name))
			}
			if inserted {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	return created, updated, err
}

func (r *repository) DistinctHSNCodes(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT hsn_code FROM products
		WHERE hsn_code IS NOT NULL AND hsn_code <> '' ORDER BY hsn_code LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Lookup adapts a Repository to pricing.ProductLookup.
type Lookup struct {
	Repo Repository
}

func (l Lookup) ProductByID(ctx context.Context, id uuid.UUID) (pricing.Product, error) {
	p, err := l.Repo.Get(ctx, id)
	if err != nil {
		return pricing.Product{}, err
	}
	return p.Snapshot(), nil
}

func (l Lookup) ProductByName(ctx context.Context, name string) (pricing.Product, error) {
	p, err := l.Repo.GetByName(ctx, name)
	if err != nil {
		return pricing.Product{}, err
	}
	return p.Snapshot(), nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.SalesPrice, &p.PurchasePrice, &p.HSNCode, &p.TaxName, &p.CurrentStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
