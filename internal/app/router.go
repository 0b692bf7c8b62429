package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

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
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/httpx"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/procurement"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/sales/orders"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/users"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/jobs"
)

// RouterParams groups dependencies for building the HTTP router. Nil
// handlers are not mounted; Authenticate is required.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Metrics      *observability.Metrics
	Authenticate func(http.Handler) http.Handler
	Ready        func(ctx context.Context) error
	RBAC         rbac.Middleware

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	ContactsHandler    *contacts.Handler
	ProductsHandler    *products.Handler
	TaxesHandler       *taxes.Handler
	AccountsHandler    *accounts.Handler
	SalesOrderHandler  *orders.Handler
	PurchaseHandler    *procurement.Handler
	VendorBillHandler  *ap.Handler
	InvoiceHandler     *ar.Handler
	PaymentsHandler    *payments.Handler
	DashboardHandler   *dashboard.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.Ready != nil {
			if err := params.Ready(r.Context()); err != nil {
				params.Logger.Warn("readiness check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthHandler != nil {
			api.Route("/auth", params.AuthHandler.MountRoutes)
		}
		api.Group(func(r chi.Router) {
			r.Use(params.Authenticate)
			mount(r, "/users", params.UsersHandler)
			mount(r, "/permissions", params.PermissionsHandler)
			mount(r, "/contacts", params.ContactsHandler)
			mount(r, "/products", params.ProductsHandler)
			mount(r, "/taxes", params.TaxesHandler)
			mount(r, "/accounts", params.AccountsHandler)
			if params.SalesOrderHandler != nil {
				r.Route("/sales-orders", func(r chi.Router) {
					var extra []func(chi.Router)
					if params.InvoiceHandler != nil {
						extra = append(extra, params.InvoiceHandler.MountConversion)
					}
					params.SalesOrderHandler.MountRoutes(r, extra...)
				})
			}
			if params.PurchaseHandler != nil {
				r.Route("/purchase-orders", func(r chi.Router) {
					var extra []func(chi.Router)
					if params.VendorBillHandler != nil {
						extra = append(extra, params.VendorBillHandler.MountConversion)
					}
					params.PurchaseHandler.MountRoutes(r, extra...)
				})
			}
			mount(r, "/vendor-bills", params.VendorBillHandler)
			mount(r, "/customer-invoices", params.InvoiceHandler)
			mount(r, "/payments", params.PaymentsHandler)
			mount(r, "/dashboard", params.DashboardHandler)
			if params.JobHandler != nil {
				r.Group(func(r chi.Router) {
					r.Use(params.RBAC.RequireAny(shared.PermUsersManage))
					r.Route("/jobs", params.JobHandler.MountRoutes)
				})
			}
		})
	})

	return r
}

type routeMounter interface {
	MountRoutes(chi.Router)
}

// mount skips typed-nil handlers so partial wiring in tests stays valid.
func mount[H interface {
	routeMounter
	comparable
}](r chi.Router, pattern string, h H) {
	var zero H
	if h == zero {
		return
	}
	r.Route(pattern, h.MountRoutes)
}
