package users

import (
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// User is the account view exposed to administrators.
type User = auth.User

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin invoicing_user contact_user"`
}

// UpdateUserRequest patches an account. Nil fields are left unchanged.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin invoicing_user contact_user"`
	IsActive *bool   `json:"is_active"`
}

// ListUsersRequest filters the user listing.
type ListUsersRequest struct {
	Role   *shared.Role
	Active *bool
	Limit  int
	Offset int
}
