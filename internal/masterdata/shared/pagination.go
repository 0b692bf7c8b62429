package shared

import (
	"net/url"
	"strings"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list filters for master data endpoints.
type ListFilters struct {
	shared.PageRequest
	Search  string
	SortBy  string
	SortDir string
	Type    string
	Active  *bool
}

// FiltersFromQuery reads page, per_page, search, sort, dir, type and active.
func FiltersFromQuery(q url.Values) ListFilters {
	f := ListFilters{
		PageRequest: shared.PageFromQuery(q),
		Search:      strings.TrimSpace(q.Get("search")),
		SortBy:      q.Get("sort"),
		SortDir:     strings.ToLower(q.Get("dir")),
		Type:        strings.TrimSpace(q.Get("type")),
	}
	switch q.Get("active") {
	case "true", "1":
		v := true
		f.Active = &v
	case "false", "0":
		v := false
		f.Active = &v
	}
	return f
}

// OrderBy returns a safe ORDER BY clause; unknown columns fall back.
func OrderBy(sortBy, sortDir string, allowed map[string]string, fallback string) string {
	dir := "ASC"
	if sortDir == SortDesc {
		dir = "DESC"
	}
	col, ok := allowed[sortBy]
	if !ok {
		col = fallback
	}
	return col + " " + dir
}

// SearchPattern wraps term for ILIKE matching.
func SearchPattern(term string) string {
	return "%" + term + "%"
}
