package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/documents"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
)

// NumberPrefix prefixes sales order numbers.
const NumberPrefix = "SO"

// SalesOrder is a customer order priced with sales taxes.
type SalesOrder struct {
	ID           uuid.UUID             `json:"id"`
	Number       string                `json:"so_number"`
	CustomerID   *uuid.UUID            `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	OrderDate    time.Time             `json:"order_date"`
	Status       documents.OrderStatus `json:"status"`
	pricing.Totals
	CreatedBy *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Lines     []documents.Line `json:"lines,omitempty"`
}
