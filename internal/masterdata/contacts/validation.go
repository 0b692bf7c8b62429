package contacts

import (
	"strings"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

func validate(c Contact) error {
	verr := &shared.ValidationError{Fields: map[string]string{}}
	if strings.TrimSpace(c.Name) == "" {
		verr.Fields["name"] = "is required"
	}
	switch c.Type {
	case TypeCustomer, TypeVendor, TypeBoth:
	default:
		verr.Fields["type"] = "must be one of customer vendor both"
	}
	if c.Email != nil && !strings.Contains(*c.Email, "@") {
		verr.Fields["email"] = "must be a valid email"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
