package documents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// LineTable describes where a document type stores its lines.
type LineTable struct {
	Name           string
	Parent         string
	HasHSN         bool
	HasAccountName bool
	HasAccountID   bool
}

var (
	SalesOrderLines      = LineTable{Name: "sales_order_lines", Parent: "sales_order_id"}
	PurchaseOrderLines   = LineTable{Name: "purchase_order_lines", Parent: "purchase_order_id"}
	VendorBillLines      = LineTable{Name: "vendor_bill_lines", Parent: "vendor_bill_id", HasHSN: true, HasAccountName: true}
	CustomerInvoiceLines = LineTable{Name: "customer_invoice_lines", Parent: "customer_invoice_id", HasHSN: true, HasAccountID: true}
)

func (t LineTable) columns() []string {
	cols := []string{"id", "position", "product_id", "product_name"}
	if t.HasHSN {
		cols = append(cols, "hsn_code")
	}
	if t.HasAccountName {
		cols = append(cols, "account_name")
	}
	if t.HasAccountID {
		cols = append(cols, "account_id")
	}
	return append(cols, "quantity", "unit_price", "tax_percent", "untaxed_amount", "tax_amount", "total_amount")
}

func (t LineTable) values(l Line) []any {
	vals := []any{l.ID, l.Position, l.ProductID, l.ProductName}
	if t.HasHSN {
		vals = append(vals, l.HSNCode)
	}
	if t.HasAccountName {
		name := ""
		if l.AccountName != nil {
			name = *l.AccountName
		}
		vals = append(vals, name)
	}
	if t.HasAccountID {
		vals = append(vals, l.AccountID)
	}
	return append(vals, l.Quantity, l.UnitPrice, l.TaxPercent, l.Untaxed, l.Tax, l.Total)
}

func (t LineTable) targets(l *Line) []any {
	dst := []any{&l.ID, &l.Position, &l.ProductID, &l.ProductName}
	if t.HasHSN {
		dst = append(dst, &l.HSNCode)
	}
	if t.HasAccountName {
		dst = append(dst, &l.AccountName)
	}
	if t.HasAccountID {
		dst = append(dst, &l.AccountID)
	}
	return append(dst, &l.Quantity, &l.UnitPrice, &l.TaxPercent, &l.Untaxed, &l.Tax, &l.Total)
}

// Load returns the lines of docID ordered by position.
func (t LineTable) Load(ctx context.Context, q db.DBTX, docID uuid.UUID) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT `+strings.Join(t.columns(), ", ")+` FROM `+t.Name+
		` WHERE `+t.Parent+` = $1 ORDER BY position`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(t.targets(&l)...); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Replace deletes every line of docID and inserts lines. Call it inside the
// transaction that also updates the header totals.
func (t LineTable) Replace(ctx context.Context, q db.DBTX, docID uuid.UUID, lines []Line) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+t.Name+` WHERE `+t.Parent+` = $1`, docID); err != nil {
		return fmt.Errorf("delete %s: %w", t.Name, err)
	}
	if len(lines) == 0 {
		return nil
	}
	cols := append([]string{t.Parent}, t.columns()...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	stmt := `INSERT INTO ` + t.Name + ` (` + strings.Join(cols, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`

	batch := &pgx.Batch{}
	for i, l := range lines {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.Position == 0 {
			l.Position = i + 1
		}
		batch.Queue(stmt, append([]any{docID}, t.values(l)...)...)
	}
	return sendBatch(ctx, q, batch, len(lines), t.Name)
}

// UpdateTotals writes header totals on table for id.
func UpdateTotals(ctx context.Context, q db.DBTX, table string, id uuid.UUID, totals pricing.Totals) error {
	_, err := q.Exec(ctx, `UPDATE `+table+` SET total_untaxed = $2, total_tax = $3, total_amount = $4, updated_at = NOW() WHERE id = $1`,
		id, totals.Untaxed, totals.Tax, totals.Amount)
	return err
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func sendBatch(ctx context.Context, q db.DBTX, batch *pgx.Batch, n int, table string) error {
	sender, ok := q.(batchSender)
	if !ok {
		for _, item := range batch.QueuedQueries {
			if _, err := q.Exec(ctx, item.SQL, item.Arguments...); err != nil {
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
		return nil
	}
	results := sender.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert %s: %w", table, db.Classify(err, "line"))
		}
	}
	return results.Close()
}
