package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

const passwordEnv = "ACCOUNTSCTL_PASSWORD"

func newCreateUserCmd(opts *rootOptions) *cobra.Command {
	var email, name, role, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with any role",
		Long:  "Create a user with any role. The password is read from --password or " + passwordEnv + ".",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := shared.ParseRole(role)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := opts.pool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			now := time.Now().UTC()
			u := auth.User{
				ID:           uuid.New(),
				Email:        auth.NormalizeEmail(email),
				FullName:     name,
				PasswordHash: hash,
				Role:         r,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := auth.NewRepository(pool).CreateUser(ctx, u); err != nil {
				return err
			}
			opts.logger.Info("user created", slog.String("user_id", u.ID.String()), slog.String("role", string(r)))
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(shared.RoleInvoicingUser), "admin, invoicing_user or contact_user")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
