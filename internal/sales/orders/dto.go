package orders

import (
	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
)

type CreateSalesOrderRequest struct {
	CustomerID   *uuid.UUID              `json:"customer_id,omitempty"`
	CustomerName string                  `json:"customer_name" validate:"max=200"`
	OrderDate    *string                 `json:"order_date,omitempty"`
	Lines        []documents.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateSalesOrderRequest replaces header fields and, when Lines is set,
// every line of the order.
type UpdateSalesOrderRequest struct {
	CustomerID   *uuid.UUID               `json:"customer_id,omitempty"`
	CustomerName *string                  `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	OrderDate    *string                  `json:"order_date,omitempty"`
	Lines        *[]documents.LineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListSalesOrdersRequest struct {
	CustomerID *uuid.UUID
	Status     *documents.OrderStatus
	Limit      int
	Offset     int
}
