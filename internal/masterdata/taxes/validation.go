package taxes

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

var maxPercent = decimal.NewFromInt(100)

func (s *Service) validate(t Tax) error {
	verr := &shared.ValidationError{Fields: map[string]string{}}
	if strings.TrimSpace(t.Name) == "" {
		verr.Fields["name"] = "is required"
	}
	switch t.ComputationMethod {
	case MethodPercentage:
		if t.Value.GreaterThan(maxPercent) {
			verr.Fields["value"] = "percentage must be between 0 and 100"
		}
	case MethodFixed:
	default:
		verr.Fields["computation_method"] = "must be one of percentage fixed"
	}
	if t.Value.IsNegative() {
		verr.Fields["value"] = "must not be negative"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
