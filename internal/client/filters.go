package client

import (
	"net/url"
	"strconv"

	"github.com/simp-lee/catalog/internal/domain"
)

// Filters is the list state a front end sends with every fetch.
type Filters struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// DefaultFilters returns page 1, ten per page, sorted by name ascending.
func DefaultFilters() Filters {
	return Filters{
		Page:  domain.DefaultPage,
		Limit: domain.DefaultLimit,
		Sort:  string(domain.SortByName),
		Order: string(domain.SortAsc),
	}
}

// Values encodes f as list query parameters. Every key is always present,
// search included when empty.
func (f Filters) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	v.Set("sort", f.Sort)
	v.Set("order", f.Order)
	v.Set("search", f.Search)
	return v
}
