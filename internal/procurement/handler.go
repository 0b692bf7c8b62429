package procurement

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/httpx"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Handler exposes purchase order endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
	rbac      rbac.Middleware
}

// NewHandler builds procurement handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers purchase order routes; extra mounts attach
// endpoints owned by other modules under the same prefix.
func (h *Handler) MountRoutes(r chi.Router, extra ...func(chi.Router)) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOrdersView))
		r.Get("/", h.handleListPOs)
		r.Get("/{id}", h.handleShowPO)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOrdersEdit))
		r.Post("/", h.createPO)
		r.Put("/{id}", h.updatePO)
		r.Patch("/{id}/status", h.updatePOStatus)
		r.Delete("/{id}", h.deletePO)
	})
	for _, mount := range extra {
		mount(r)
	}
}

func (h *Handler) handleListPOs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.PageFromQuery(q)
	filters := ListFilters{
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: strings.ToLower(q.Get("dir")),
	}
	if raw := q.Get("status"); raw != "" {
		status, ok := documents.ParseOrderStatus(raw)
		if !ok {
			httpx.RespondError(w, shared.NewValidationError("status", "unknown status"))
			return
		}
		filters.Status = &status
	}
	if raw := q.Get("vendor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("vendor_id", "must be a valid uuid"))
			return
		}
		filters.VendorID = &id
	}

	items, total, err := h.service.ListPurchaseOrders(r.Context(), page, filters)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, page, total))
}

func (h *Handler) handleShowPO(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) createPO(w http.ResponseWriter, r *http.Request) {
	var input CreatePOInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), currentUser(r), input)
	if err != nil {
		h.logger.Warn("create purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) updatePO(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdatePOInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.UpdatePurchaseOrder(r.Context(), id, input)
	if err != nil {
		h.logger.Warn("update purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) updatePOStatus(w http.ResponseWriter, r *http.Request) {
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
	po, err := h.service.UpdatePurchaseOrderStatus(r.Context(), currentUser(r), id, input.Status)
	if err != nil {
		h.logger.Warn("update purchase order status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) deletePO(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePurchaseOrder(r.Context(), id); err != nil {
		h.logger.Warn("delete purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func currentUser(r *http.Request) shared.Principal {
	p, _ := shared.PrincipalFromContext(r.Context())
	return p
}
