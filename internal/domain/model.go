package domain

import "math"

// SortField names a comparable Product attribute.
type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByCreatedAt SortField = "createdAt"
)

// Column returns the storage column backing the sort field.
func (f SortField) Column() string {
	switch f {
	case SortByPrice:
		return "price"
	case SortByCreatedAt:
		return "created_at"
	default:
		return "name"
	}
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Defaults applied by the query builder.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ProductQuery is the normalized list request: page window, ordering and search.
type ProductQuery struct {
	Page      int
	Limit     int
	SortField SortField
	SortOrder SortOrder
	Search    string
}

// DefaultProductQuery returns page 1, ten items, sorted by name ascending, no search.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortField: SortByName,
		SortOrder: SortAsc,
	}
}

// Offset is the number of matching products preceding the requested page.
// It saturates at math.MaxInt instead of overflowing.
func (q ProductQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Filter returns the store filter derived from the query.
func (q ProductQuery) Filter() ProductFilter {
	return ProductFilter{Search: q.Search}
}

// ProductFilter selects products. An empty Search matches everything; otherwise a
// product matches when its name or description contains Search, ignoring case.
type ProductFilter struct {
	Search string
}

// FindOptions controls ordering and windowing of a store Find.
// Ties on SortField are always broken by insertion order.
type FindOptions struct {
	SortField SortField
	SortOrder SortOrder
	Offset    int
	Limit     int
}

// ProductPage is the paginated list envelope.
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}
