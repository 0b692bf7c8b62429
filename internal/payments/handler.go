package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/httpx"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// IdempotencyHeader carries the client supplied deduplication key.
const IdempotencyHeader = "Idempotency-Key"

// Handler serves /api/payments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsView))
		r.Get("/", h.listPayments)
		r.Get("/{id}", h.showPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsSettle))
		r.Post("/", h.createPayment)
		r.Patch("/{id}/status", h.updateStatus)
	})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.PageFromQuery(q)
	req := ListPaymentsRequest{Limit: page.Limit(), Offset: page.Offset()}
	if raw := q.Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			httpx.RespondError(w, shared.NewValidationError("status", "unknown status"))
			return
		}
		req.Status = &status
	}
	for field, target := range map[string]**uuid.UUID{"vendor_bill_id": &req.VendorBillID, "customer_invoice_id": &req.CustomerInvoiceID} {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError(field, "must be a valid uuid"))
			return
		}
		*target = &id
	}

	items, total, err := h.service.ListPayments(r.Context(), req)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, page, total))
}

func (h *Handler) showPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var input CreatePaymentInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, replayed, err := h.service.CreatePayment(r.Context(), principal(r), input, r.Header.Get(IdempotencyHeader))
	if err != nil {
		h.logger.Warn("create payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
		status = http.StatusOK
	}
	httpx.JSON(w, status, payment)
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
	payment, err := h.service.UpdateStatus(r.Context(), principal(r), id, input.Status)
	if err != nil {
		h.logger.Warn("update payment status", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func principal(r *http.Request) shared.Principal {
	p, _ := shared.PrincipalFromContext(r.Context())
	return p
}
