package utils

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page holds the pagination parameters of a list request
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit from the query string.
// Invalid or out of range values fall back to the defaults.
func ParsePage(r *http.Request) Page {
	p := Page{Page: 1, Limit: DefaultPageLimit}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxPageLimit {
			p.Limit = n
		}
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the response metadata for a result set of total items
func (p Page) Meta(total int64) *Meta {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &Meta{
		Page:       p.Page,
		TotalPages: totalPages,
		Total:      total,
		Limit:      p.Limit,
	}
}
