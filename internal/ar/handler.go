package ar

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/httpx"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Handler manages AR endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers customer invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	// View routes
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBillingView))
		r.Get("/", h.listInvoices)
		r.Get("/aging", h.showARAgingReport)
		r.Get("/{id}", h.showInvoiceDetail)
	})

	// Create routes
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermBillingEdit))
		r.Post("/", h.createInvoice)
		r.Put("/{id}", h.updateInvoice)
	})

	// Workflow routes
	r.With(h.rbac.RequireAll(shared.PermBillingPost)).Patch("/{id}/status", h.updateStatus)
}

// MountConversion registers POST /{id}/invoice on the sales order router.
func (h *Handler) MountConversion(r chi.Router) {
	r.With(h.rbac.RequireAll(shared.PermBillingConvert)).Post("/{id}/invoice", h.createInvoiceFromSO)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.PageFromQuery(q)
	req := ListInvoicesRequest{Limit: page.Limit(), Offset: page.Offset()}
	if raw := q.Get("status"); raw != "" {
		status, ok := documents.ParseInvoiceStatus(raw)
		if !ok {
			httpx.RespondError(w, shared.NewValidationError("status", "unknown status"))
			return
		}
		req.Status = &status
	}
	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("customer_id", "must be a valid uuid"))
			return
		}
		req.CustomerID = &id
	}
	if raw := q.Get("sales_order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("sales_order_id", "must be a valid uuid"))
			return
		}
		req.SalesOrderID = &id
	}

	invoices, total, err := h.service.ListInvoices(r.Context(), req)
	if err != nil {
		h.logger.Error("list customer invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(invoices, page, total))
}

func (h *Handler) showInvoiceDetail(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) showARAgingReport(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := documents.ParseDate("as_of", &raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		asOf = *parsed
	}
	bucket, err := h.service.CalculateARAging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("calculate ar aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bucket)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var input CreateInvoiceInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), principal(r), input)
	if err != nil {
		h.logger.Warn("create customer invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) createInvoiceFromSO(w http.ResponseWriter, r *http.Request) {
	soID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input CreateFromSOInput
	if r.ContentLength != 0 {
		if err := h.validator.DecodeAndValidate(r, &input); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	inv, err := h.service.CreateInvoiceFromSO(r.Context(), principal(r), soID, input)
	if err != nil {
		h.logger.Warn("create invoice from sales order", slog.String("so_id", soID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdateInvoiceInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.UpdateInvoice(r.Context(), id, input)
	if err != nil {
		h.logger.Warn("update customer invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input StatusInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.UpdateStatus(r.Context(), principal(r), id, input.Status)
	if err != nil {
		h.logger.Warn("update customer invoice status", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func principal(r *http.Request) shared.Principal {
	p, _ := shared.PrincipalFromContext(r.Context())
	return p
}
