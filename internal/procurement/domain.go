package procurement

import (
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// NumberPrefix prefixes purchase order numbers.
const NumberPrefix = "PO"

// PurchaseOrder domain model.
type PurchaseOrder struct {
	ID         uuid.UUID             `json:"id"`
	Number     string                `json:"po_number"`
	VendorID   *uuid.UUID            `json:"vendor_id"`
	VendorName string                `json:"vendor_name"`
	OrderDate  time.Time             `json:"order_date"`
	Status     documents.OrderStatus `json:"status"`
	pricing.Totals
	CreatedBy *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Lines     []documents.Line `json:"lines,omitempty"`
}

// CreatePOInput describes creation payload.
type CreatePOInput struct {
	VendorID   *uuid.UUID              `json:"vendor_id,omitempty"`
	VendorName string                  `json:"vendor_name" validate:"max=200"`
	OrderDate  *string                 `json:"order_date,omitempty"`
	Lines      []documents.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdatePOInput edits a draft purchase order; nil fields are left unchanged.
type UpdatePOInput struct {
	VendorID   *uuid.UUID               `json:"vendor_id,omitempty"`
	VendorName *string                  `json:"vendor_name,omitempty" validate:"omitempty,max=200"`
	OrderDate  *string                  `json:"order_date,omitempty"`
	Lines      *[]documents.LineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// StatusInput requests a lifecycle move.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilters narrows purchase order listings.
type ListFilters struct {
	Status   *documents.OrderStatus
	VendorID *uuid.UUID
	Search   string
	SortBy   string
	SortDir  string
}
