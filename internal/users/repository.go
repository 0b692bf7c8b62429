package users

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Repository persists user accounts for administration.
type Repository interface {
	ListUsers(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	CreateUser(ctx context.Context, u User, audit shared.AuditLog) error
	UpdateUser(ctx context.Context, u User, audit shared.AuditLog) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the Postgres implementation.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *pgRepository) ListUsers(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	var (
		where []string
		args  []any
	)
	if req.Role != nil {
		args = append(args, *req.Role)
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}
	if req.Active != nil {
		args = append(args, *req.Active)
		where = append(where, "is_active = $"+strconv.Itoa(len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+clause+
		` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]User, 0, req.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, db.Classify(err, "user")
	}
	return u, nil
}

func (r *pgRepository) CreateUser(ctx context.Context, u User, audit shared.AuditLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO users (id, email, full_name, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.Email, u.FullName, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return db.Classify(err, "user email")
		}
		return shared.RecordAudit(ctx, tx, audit)
	})
}

func (r *pgRepository) UpdateUser(ctx context.Context, u User, audit shared.AuditLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET full_name = $2, role = $3, is_active = $4, updated_at = $5 WHERE id = $1`,
			u.ID, u.FullName, u.Role, u.IsActive, u.UpdatedAt)
		if err != nil {
			return db.Classify(err, "user")
		}
		if tag.RowsAffected() == 0 {
			return db.Classify(pgx.ErrNoRows, "user")
		}
		return shared.RecordAudit(ctx, tx, audit)
	})
}
