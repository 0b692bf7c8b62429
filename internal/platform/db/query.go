package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// NextNumber allocates the next business number for prefix in the month of at,
// formatted PREFIX-YYYYMM-0001. Run it inside the transaction that inserts the
// document so a rollback releases nothing and gaps stay rare.
func NextNumber(ctx context.Context, q DBTX, prefix string, at time.Time) (string, error) {
	period := at.UTC().Format("200601")
	var next int
	err := q.QueryRow(ctx, `INSERT INTO document_sequences (prefix, period, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, period) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`, prefix, period).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("platform/db: next %s number: %w", prefix, err)
	}
	return FormatNumber(prefix, period, next), nil
}

// FormatNumber renders a business number.
func FormatNumber(prefix, period string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, period, seq)
}

// Classify maps driver errors to the shared taxonomy. what names the entity
// for messages, e.g. "tax" or "vendor bill".
func Classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return fmt.Errorf("%w: %s already exists", shared.ErrDuplicate, what)
		case sqlStateForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing or in-use record", shared.ErrInvariantViolation, what)
		}
	}
	return err
}
