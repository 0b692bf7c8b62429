package ap

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

// Handler manages vendor bill endpoints.
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

// MountRoutes registers vendor bill routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBillingView))
		r.Get("/", h.listBills)
		r.Get("/aging", h.showAPAging)
		r.Get("/{id}", h.showBill)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBillingEdit))
		r.Post("/", h.createBill)
		r.Put("/{id}", h.updateBill)
	})
	r.With(h.rbac.RequireAny(shared.PermBillingPost)).Patch("/{id}/status", h.updateStatus)
}

// MountConversion registers POST /{id}/bill on the purchase order router.
func (h *Handler) MountConversion(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermBillingConvert)).Post("/{id}/bill", h.createBillFromPO)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.PageFromQuery(q)
	req := ListVendorBillsRequest{Limit: page.Limit(), Offset: page.Offset()}
	if raw := q.Get("status"); raw != "" {
		status, ok := documents.ParseBillStatus(raw)
		if !ok {
			httpx.RespondError(w, shared.NewValidationError("status", "unknown status"))
			return
		}
		req.Status = &status
	}
	for field, target := range map[string]**uuid.UUID{"vendor_id": &req.VendorID, "purchase_order_id": &req.PurchaseOrderID} {
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

	bills, total, err := h.service.ListVendorBills(r.Context(), req)
	if err != nil {
		h.logger.Error("list vendor bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(bills, page, total))
}

func (h *Handler) showBill(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bill, err := h.service.GetVendorBill(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) showAPAging(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := documents.ParseDate("as_of", &raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		asOf = *parsed
	}
	bucket, err := h.service.CalculateAPAging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("calculate ap aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bucket)
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var input CreateVendorBillInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	bill, err := h.service.CreateVendorBill(r.Context(), principal(r), input)
	if err != nil {
		h.logger.Warn("create vendor bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) createBillFromPO(w http.ResponseWriter, r *http.Request) {
	poID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input CreateFromPOInput
	if r.ContentLength != 0 {
		if err := h.validator.DecodeAndValidate(r, &input); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	bill, err := h.service.CreateVendorBillFromPO(r.Context(), principal(r), poID, input)
	if err != nil {
		h.logger.Warn("create vendor bill from purchase order", slog.String("po_id", poID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdateVendorBillInput
	if err := h.validator.DecodeAndValidate(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	bill, err := h.service.UpdateVendorBill(r.Context(), id, input)
	if err != nil {
		h.logger.Warn("update vendor bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
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
	bill, err := h.service.UpdateStatus(r.Context(), principal(r), id, input.Status)
	if err != nil {
		h.logger.Warn("update vendor bill status", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func principal(r *http.Request) shared.Principal {
	p, _ := shared.PrincipalFromContext(r.Context())
	return p
}
