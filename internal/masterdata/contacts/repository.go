package contacts

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error)
	Get(ctx context.Context, id uuid.UUID) (Contact, error)
	Create(ctx context.Context, c Contact) (Contact, error)
	Update(ctx context.Context, c Contact) (Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contactColumns = `id, name, type, email, mobile, city, state, pincode, user_id, created_at, updated_at`

var sortColumns = map[string]string{
	"name":    "name",
	"city":    "city",
	"created": "created_at",
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, shared.SearchPattern(filters.Search))
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR email ILIKE $` + n + ` OR mobile ILIKE $` + n + `)`
	}
	switch filters.Type {
	case TypeCustomer, TypeVendor:
		args = append(args, filters.Type)
		where += ` AND type IN ($` + strconv.Itoa(len(args)) + `, 'both')`
	case TypeBoth:
		where += ` AND type = 'both'`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where +
		` ORDER BY ` + shared.OrderBy(filters.SortBy, filters.SortDir, sortColumns, "name")
	args = append(args, filters.Limit(), filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	return c, db.Classify(err, "contact")
}

func (r *repository) Create(ctx context.Context, c Contact) (Contact, error) {
	created, err := scanContact(r.pool.QueryRow(ctx, `INSERT INTO contacts (name, type, email, mobile, city, state, pincode, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+contactColumns,
		c.Name, c.Type, c.Email, c.Mobile, c.City, c.State, c.Pincode, c.UserID))
	return created, db.Classify(err, "contact")
}

func (r *repository) Update(ctx context.Context, c Contact) (Contact, error) {
	updated, err := scanContact(r.pool.QueryRow(ctx, `UPDATE contacts SET name = $2, type = $3, email = $4,
		mobile = $5, city = $6, state = $7, pincode = $8, updated_at = NOW()
		WHERE id = $1 RETURNING `+contactColumns,
		c.ID, c.Name, c.Type, c.Email, c.Mobile, c.City, c.State, c.Pincode))
	return updated, db.Classify(err, "contact")
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err, "contact")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "contact")
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Email, &c.Mobile, &c.City, &c.State, &c.Pincode, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
