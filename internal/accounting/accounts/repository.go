package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, accountType AccountType, activeOnly bool) ([]Account, error)
	Get(ctx context.Context, id uuid.UUID) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// FirstActiveByType returns the lowest-code active account of type t.
	FirstActiveByType(ctx context.Context, t AccountType) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, type, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, accountType AccountType, activeOnly bool) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts
		WHERE ($1 = '' OR type = $1) AND (NOT $2 OR is_active)
		ORDER BY code`, string(accountType), activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE id = $1`, id))
	return a, db.Classify(err, "account")
}

func (r *repository) Create(ctx context.Context, a Account) (Account, error) {
	created, err := scanAccount(r.db.QueryRow(ctx, `INSERT INTO chart_of_accounts (code, name, type, is_active)
		VALUES ($1, $2, $3, $4) RETURNING `+accountColumns, a.Code, a.Name, a.Type, a.IsActive))
	return created, db.Classify(err, "account")
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	updated, err := scanAccount(r.db.QueryRow(ctx, `UPDATE chart_of_accounts
		SET code = $2, name = $3, type = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 RETURNING `+accountColumns, a.ID, a.Code, a.Name, a.Type, a.IsActive))
	return updated, db.Classify(err, "account")
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chart_of_accounts WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err, "account")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "account")
	}
	return nil
}

func (r *repository) FirstActiveByType(ctx context.Context, t AccountType) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts
		WHERE type = $1 AND is_active ORDER BY code LIMIT 1`, t))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, db.Classify(err, "account")
	}
	return a, err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
