package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/db"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type seedTax struct {
	Name  string
	Value string
}

var defaultTaxes = []seedTax{
	{Name: "GST 5%", Value: "5"},
	{Name: "GST 12%", Value: "12"},
	{Name: "GST 18%", Value: "18"},
	{Name: "GST 28%", Value: "28"},
}

type seedAccount struct {
	Code, Name, Type string
}

var defaultAccounts = []seedAccount{
	{"1000", "Cash", "asset"},
	{"1010", "Bank", "asset"},
	{"1200", "Accounts Receivable", "asset"},
	{"2000", "Accounts Payable", "liability"},
	{"3000", "Owner's Equity", "equity"},
	{"4000", "Sales Income", "income"},
	{"5000", "Purchase Expense", "expense"},
}

// seedResult counts rows inserted; existing rows are left untouched.
type seedResult struct {
	Taxes    int64
	Accounts int64
	Admin    bool
}

func seed(ctx context.Context, q shared.Execer, adminEmail, adminPassword string, now time.Time) (seedResult, error) {
	var res seedResult
	for _, t := range defaultTaxes {
		tag, err := q.Exec(ctx, `INSERT INTO taxes (name, computation_method, value, applicable_on_sales, applicable_on_purchase)
			VALUES ($1, 'percentage', $2, TRUE, TRUE) ON CONFLICT (name) DO NOTHING`, t.Name, t.Value)
		if err != nil {
			return res, fmt.Errorf("seed tax %s: %w", t.Name, err)
		}
		res.Taxes += tag.RowsAffected()
	}
	for _, a := range defaultAccounts {
		tag, err := q.Exec(ctx, `INSERT INTO chart_of_accounts (code, name, type) VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING`, a.Code, a.Name, a.Type)
		if err != nil {
			return res, fmt.Errorf("seed account %s: %w", a.Code, err)
		}
		res.Accounts += tag.RowsAffected()
	}
	if adminEmail == "" {
		return res, nil
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return res, err
	}
	tag, err := q.Exec(ctx, `INSERT INTO users (id, email, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, 'Administrator', $3, $4, TRUE, $5, $5) ON CONFLICT (email) DO NOTHING`,
		uuid.New(), auth.NormalizeEmail(adminEmail), hash, shared.RoleAdmin, now)
	if err != nil {
		return res, fmt.Errorf("seed admin: %w", err)
	}
	res.Admin = tag.RowsAffected() == 1
	return res, nil
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var adminEmail, adminPassword string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert default taxes, chart of accounts and an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := opts.pool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			var res seedResult
			err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
				var err error
				res, err = seed(ctx, tx, adminEmail, adminPassword, time.Now().UTC())
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "taxes: %d new, accounts: %d new, admin created: %t\n", res.Taxes, res.Accounts, res.Admin)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email of the admin account to create")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the admin account")
	return cmd
}
