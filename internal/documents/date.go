package documents

import (
	"strings"
	"time"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// DateLayout is the wire format of document dates.
const DateLayout = "2006-01-02"

// ParseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func ParseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, shared.NewValidationError(field, "must be a date formatted YYYY-MM-DD")
	}
	return &t, nil
}
