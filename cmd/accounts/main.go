package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/accounting/accounts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/ap"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/app"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/ar"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/dashboard"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/contacts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/products"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/taxes"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/observability"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/payments"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/cache"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/procurement"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/sales/orders"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/users"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/jobs"
)

func main() {
	if err := app.LoadDotEnv(); err != nil {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.PGDSN)
	if err != nil {
		return err
	}
	poolCfg.MaxConns = cfg.PGMaxConns
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer jobClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	metrics := observability.NewMetrics()
	svc := app.NewServices(app.ServiceDeps{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Redis:   redisClient,
		Refresh: jobClient,
		Metrics: metrics,
	})

	rbacMW := rbac.Middleware{Service: rbac.NewService(), Logger: logger}
	authn := auth.Authenticate(svc.Tokens)
	handler := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Metrics:      metrics,
		Authenticate: authn,
		RBAC:         rbacMW,
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
		AuthHandler:        auth.NewHandler(logger, svc.Auth, authn),
		UsersHandler:       users.NewHandler(logger, svc.Users, rbacMW),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacMW.Service, rbacMW),
		ContactsHandler:    contacts.NewHandler(logger, svc.Contacts, rbacMW),
		ProductsHandler:    products.NewHandler(logger, svc.Products, rbacMW),
		TaxesHandler:       taxes.NewHandler(logger, svc.Taxes, rbacMW),
		AccountsHandler:    accounts.NewHandler(logger, svc.Accounts, rbacMW),
		SalesOrderHandler:  orders.NewHandler(logger, svc.SalesOrders, rbacMW),
		PurchaseHandler:    procurement.NewHandler(logger, svc.Purchases, rbacMW),
		VendorBillHandler:  ap.NewHandler(logger, svc.VendorBills, rbacMW),
		InvoiceHandler:     ar.NewHandler(logger, svc.Invoices, rbacMW),
		PaymentsHandler:    payments.NewHandler(logger, svc.Payments, rbacMW),
		DashboardHandler:   dashboard.NewHandler(logger, svc.Dashboard, rbacMW),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           handler,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
