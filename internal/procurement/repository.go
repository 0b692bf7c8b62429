package procurement

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	mdshared "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	LockPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, error)
	NextNumber(ctx context.Context, at time.Time) (string, error)
	CreatePO(ctx context.Context, po PurchaseOrder) error
	UpdatePOHeader(ctx context.Context, po PurchaseOrder) error
	ReplacePOLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error
	UpdatePOStatus(ctx context.Context, id uuid.UUID, status documents.OrderStatus) error
	DeletePO(ctx context.Context, id uuid.UUID) error
	POHasBills(ctx context.Context, id uuid.UUID) (bool, error)
	Audit(ctx context.Context, log shared.AuditLog) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction with retry.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const poColumns = `id, number, vendor_id, vendor_name, order_date, status,
	total_untaxed, total_tax, total_amount, created_by, created_at, updated_at`

func scanPO(row pgx.Row) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.Number, &po.VendorID, &po.VendorName, &po.OrderDate, &po.Status,
		&po.Untaxed, &po.Tax, &po.Amount, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt)
	return po, err
}

// GetPO returns purchase order and lines.
func (r *Repository) GetPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	po, err := scanPO(r.pool.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		return PurchaseOrder{}, db.Classify(err, "purchase order")
	}
	po.Lines, err = documents.PurchaseOrderLines.Load(ctx, r.pool, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	return po, nil
}

var poSortColumns = map[string]string{
	"number":     "number",
	"order_date": "order_date",
	"total":      "total_amount",
	"created_at": "created_at",
}

// ListPOs returns purchase order headers without lines.
func (r *Repository) ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]PurchaseOrder, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argNum := 1
	if filters.Status != nil {
		where += ` AND status = $` + itoa(argNum)
		args = append(args, *filters.Status)
		argNum++
	}
	if filters.VendorID != nil {
		where += ` AND vendor_id = $` + itoa(argNum)
		args = append(args, *filters.VendorID)
		argNum++
	}
	if filters.Search != "" {
		where += ` AND (number ILIKE $` + itoa(argNum) + ` OR vendor_name ILIKE $` + itoa(argNum) + `)`
		args = append(args, mdshared.SearchPattern(filters.Search))
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortDir := filters.SortDir
	if filters.SortBy == "" && sortDir == "" {
		sortDir = mdshared.SortDesc
	}
	orderBy := mdshared.OrderBy(filters.SortBy, sortDir, poSortColumns, "created_at")
	dataSQL := `SELECT ` + poColumns + ` FROM purchase_orders` + where +
		` ORDER BY ` + orderBy + `, id LIMIT $` + itoa(argNum) + ` OFFSET $` + itoa(argNum+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, po)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func (tx *txRepo) LockPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	po, err := scanPO(tx.tx.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return PurchaseOrder{}, db.Classify(err, "purchase order")
	}
	return po, nil
}

func (tx *txRepo) NextNumber(ctx context.Context, at time.Time) (string, error) {
	return db.NextNumber(ctx, tx.tx, NumberPrefix, at)
}

func (tx *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_orders
		(id, number, vendor_id, vendor_name, order_date, status, total_untaxed, total_tax, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		po.ID, po.Number, po.VendorID, po.VendorName, po.OrderDate, po.Status, po.Untaxed, po.Tax, po.Amount, po.CreatedBy)
	return db.Classify(err, "purchase order")
}

func (tx *txRepo) UpdatePOHeader(ctx context.Context, po PurchaseOrder) error {
	_, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET vendor_id = $2, vendor_name = $3, order_date = $4, updated_at = NOW()
		WHERE id = $1`, po.ID, po.VendorID, po.VendorName, po.OrderDate)
	return db.Classify(err, "purchase order")
}

func (tx *txRepo) ReplacePOLines(ctx context.Context, id uuid.UUID, lines []documents.Line, totals pricing.Totals) error {
	if err := documents.PurchaseOrderLines.Replace(ctx, tx.tx, id, lines); err != nil {
		return err
	}
	return documents.UpdateTotals(ctx, tx.tx, "purchase_orders", id, totals)
}

func (tx *txRepo) UpdatePOStatus(ctx context.Context, id uuid.UUID, status documents.OrderStatus) error {
	_, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (tx *txRepo) DeletePO(ctx context.Context, id uuid.UUID) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	return db.Classify(err, "purchase order")
}

func (tx *txRepo) POHasBills(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vendor_bills WHERE purchase_order_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (tx *txRepo) Audit(ctx context.Context, log shared.AuditLog) error {
	return shared.RecordAudit(ctx, tx.tx, log)
}
