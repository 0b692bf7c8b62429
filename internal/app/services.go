package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/accounting/accounts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/ap"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/ar"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/dashboard"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/contacts"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/products"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/taxes"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/observability"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/payments"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/procurement"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/sales/orders"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/users"
)

// Services holds the domain services shared by the API server and the worker.
type Services struct {
	Tokens      *auth.TokenIssuer
	Sessions    *auth.SessionStore
	Auth        *auth.Service
	Users       *users.Service
	Contacts    *contacts.Service
	Products    *products.Service
	Taxes       *taxes.Service
	Accounts    *accounts.Service
	SalesOrders *orders.Service
	Purchases   *procurement.Service
	VendorBills *ap.Service
	Invoices    *ar.Service
	Payments    *payments.Service
	Dashboard   *dashboard.Service
	Idempotency *shared.IdempotencyStore
}

// ServiceDeps are the runtime resources services are built from.
type ServiceDeps struct {
	Config  *Config
	Logger  *slog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Refresh payments.RefreshScheduler
	Metrics *observability.Metrics
}

// NewServices wires repositories into services.
func NewServices(deps ServiceDeps) *Services {
	cfg, logger := deps.Config, deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	sessions := auth.NewSessionStore(deps.Redis, cfg.RefreshTokenTTL)

	contactService := contacts.NewService(contacts.NewRepository(deps.Pool))
	taxRepo := taxes.NewRepository(deps.Pool)
	productRepo := products.NewRepository(deps.Pool)
	hsn := products.NewHSNClient(cfg.HSNBaseURL, cfg.HSNTimeout, deps.Redis, cfg.HSNCacheTTL, logger)
	accountService := accounts.NewService(accounts.NewRepository(deps.Pool), logger)

	builder := pricing.NewBuilder(products.Lookup{Repo: productRepo}, pricing.NewResolver(taxRepo))

	salesOrders := orders.NewService(orders.NewRepository(deps.Pool), builder, contactService, logger)
	purchases := procurement.NewService(procurement.NewRepository(deps.Pool), builder, contactService, logger)

	idempotency := shared.NewIdempotencyStore(deps.Pool)
	paymentOpts := []payments.Option{payments.WithIdempotencyKeys(idempotency)}
	if deps.Refresh != nil {
		paymentOpts = append(paymentOpts, payments.WithRefreshScheduler(deps.Refresh))
	}
	if deps.Metrics != nil {
		paymentOpts = append(paymentOpts, payments.WithRecorder(deps.Metrics))
	}

	return &Services{
		Tokens:      tokens,
		Sessions:    sessions,
		Auth:        auth.NewService(auth.NewRepository(deps.Pool), tokens, sessions, logger),
		Users:       users.NewService(users.NewRepository(deps.Pool), sessions, logger),
		Contacts:    contactService,
		Products:    products.NewService(productRepo, hsn, logger),
		Taxes:       taxes.NewService(taxRepo),
		Accounts:    accountService,
		SalesOrders: salesOrders,
		Purchases:   purchases,
		VendorBills: ap.NewService(ap.NewRepository(deps.Pool), builder, purchases, accountService, contactService, logger),
		Invoices:    ar.NewService(ar.NewRepository(deps.Pool), builder, salesOrders, contactService, logger),
		Payments:    payments.NewService(payments.NewRepository(deps.Pool), logger, paymentOpts...),
		Dashboard:   dashboard.NewService(dashboard.NewRepository(deps.Pool), dashboard.NewCache(deps.Redis, cfg.DashboardCacheTTL), logger),
		Idempotency: idempotency,
	}
}
