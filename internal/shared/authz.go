package shared

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is a closed set of user roles.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleInvoicingUser Role = "invoicing_user"
	RoleContactUser   Role = "contact_user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInvoicingUser, RoleContactUser:
		return true
	}
	return false
}

// ParseRole normalises and validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", NewValidationError("role", fmt.Sprintf("unknown role %q", raw))
	}
	return r, nil
}

// Permissions declared for route level RBAC.
const (
	PermUsersManage = "users.manage"

	PermContactsView = "contacts.view"
	PermContactsEdit = "contacts.edit"

	PermProductsView = "products.view"
	PermProductsEdit = "products.edit"

	PermTaxesView = "taxes.view"
	PermTaxesEdit = "taxes.edit"

	PermAccountsView   = "accounts.view"
	PermAccountsCreate = "accounts.create"
	PermAccountsEdit   = "accounts.edit"

	PermOrdersView = "orders.view"
	PermOrdersEdit = "orders.edit"

	PermBillingView    = "billing.view"
	PermBillingEdit    = "billing.edit"
	PermBillingConvert = "billing.convert"
	PermBillingPost    = "billing.post"

	PermPaymentsView   = "payments.view"
	PermPaymentsSettle = "payments.settle"

	PermDashboardView = "dashboard.view"
)

// AllScopes lists every permission.
func AllScopes() []string {
	return []string{
		PermUsersManage,
		PermContactsView, PermContactsEdit,
		PermProductsView, PermProductsEdit,
		PermTaxesView, PermTaxesEdit,
		PermAccountsView, PermAccountsCreate, PermAccountsEdit,
		PermOrdersView, PermOrdersEdit,
		PermBillingView, PermBillingEdit, PermBillingConvert, PermBillingPost,
		PermPaymentsView, PermPaymentsSettle,
		PermDashboardView,
	}
}

// InvoicingScopes lists the permissions of the invoicing role.
func InvoicingScopes() []string {
	return []string{
		PermContactsView, PermContactsEdit,
		PermProductsView, PermProductsEdit,
		PermTaxesView, PermTaxesEdit,
		PermAccountsView, PermAccountsCreate,
		PermOrdersView, PermOrdersEdit,
		PermBillingView, PermBillingEdit, PermBillingConvert, PermBillingPost,
		PermPaymentsView, PermPaymentsSettle,
		PermDashboardView,
	}
}

// ContactScopes lists the permissions of the contacts-only role.
func ContactScopes() []string {
	return []string{PermContactsView, PermContactsEdit, PermProductsView}
}

// RoleScopes returns the permissions granted to role.
func RoleScopes(role Role) []string {
	switch role {
	case RoleAdmin:
		return AllScopes()
	case RoleInvoicingUser:
		return InvoicingScopes()
	case RoleContactUser:
		return ContactScopes()
	}
	return nil
}

// Principal is the verified caller identity carried with a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// FinanceRoles may settle payments, convert orders and post documents.
var FinanceRoles = []Role{RoleAdmin, RoleInvoicingUser}

// Authorize fails with ErrForbidden unless p holds one of roles.
func Authorize(p Principal, action string, roles ...Role) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: %s requires an authenticated caller", ErrUnauthorized, action)
	}
	if !p.HasRole(roles...) {
		return fmt.Errorf("%w: role %s may not %s", ErrForbidden, p.Role, action)
	}
	return nil
}
