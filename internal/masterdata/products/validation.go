package products

import (
	"strings"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

func validate(p Product) error {
	verr := &shared.ValidationError{Fields: map[string]string{}}
	if strings.TrimSpace(p.Name) == "" {
		verr.Fields["name"] = "is required"
	}
	if p.Type != TypeGoods && p.Type != TypeService {
		verr.Fields["type"] = "must be one of goods service"
	}
	if p.SalesPrice.IsNegative() {
		verr.Fields["sales_price"] = "must not be negative"
	}
	if p.PurchasePrice.IsNegative() {
		verr.Fields["purchase_price"] = "must not be negative"
	}
	if p.CurrentStock < 0 {
		verr.Fields["current_stock"] = "must not be negative"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
