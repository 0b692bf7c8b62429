package contacts

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCustomer = "customer"
	TypeVendor   = "vendor"
	TypeBoth     = "both"
)

// Contact is a customer, a vendor, or both.
type Contact struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Email     *string    `json:"email"`
	Mobile    *string    `json:"mobile"`
	City      *string    `json:"city"`
	State     *string    `json:"state"`
	Pincode   *string    `json:"pincode"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsCustomer reports whether the contact can be invoiced.
func (c Contact) IsCustomer() bool { return c.Type == TypeCustomer || c.Type == TypeBoth }

// IsVendor reports whether the contact can bill us.
func (c Contact) IsVendor() bool { return c.Type == TypeVendor || c.Type == TypeBoth }

// ContactForm is the create/update payload.
type ContactForm struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Type    string  `json:"type" validate:"required,oneof=customer vendor both"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Mobile  *string `json:"mobile" validate:"omitempty,max=20"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Pincode *string `json:"pincode" validate:"omitempty,max=10"`
}
