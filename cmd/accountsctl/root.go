package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/app"
)

type rootOptions struct {
	envFile string
	cfg     *app.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "accountsctl",
		Short:         "Operator tooling for the accounts service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = app.NewLogger(cfg).With(slog.String("component", "accountsctl"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newCreateUserCmd(opts),
		newJobsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) pool(ctx context.Context) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, o.cfg.PGDSN)
}
