package rbac

import (
	"sort"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Service resolves effective permissions for principals. Roles are a closed
// set so the grant table is static.
type Service struct {
	grants map[shared.Role][]string
}

// NewService builds the grant table from shared.RoleScopes.
func NewService() *Service {
	grants := make(map[shared.Role][]string, 3)
	for _, role := range []shared.Role{shared.RoleAdmin, shared.RoleInvoicingUser, shared.RoleContactUser} {
		scopes := append([]string(nil), shared.RoleScopes(role)...)
		sort.Strings(scopes)
		grants[role] = scopes
	}
	return &Service{grants: grants}
}

// EffectivePermissions returns the sorted permission list for p.
func (s *Service) EffectivePermissions(p shared.Principal) []string {
	return s.grants[p.Role]
}

// ListPermissions returns every known permission.
func (s *Service) ListPermissions() []string {
	return s.grants[shared.RoleAdmin]
}
