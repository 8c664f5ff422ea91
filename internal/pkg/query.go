package pkg

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/catalog/internal/domain"
)

// Query parameter names accepted by list endpoints.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSort   = "sort"
	ParamOrder  = "order"
	ParamSearch = "search"
)

// sortFieldAliases maps accepted sort parameter values to sort fields.
var sortFieldAliases = map[string]domain.SortField{
	"name":       domain.SortByName,
	"price":      domain.SortByPrice,
	"createdAt":  domain.SortByCreatedAt,
	"created_at": domain.SortByCreatedAt,
}

// ParseProductQuery extracts the list descriptor from the request query string.
func ParseProductQuery(c *gin.Context) domain.ProductQuery {
	return NewProductQuery(c.Request.URL.Query())
}

// NewProductQuery normalizes raw query parameters into a ProductQuery. It never
// fails: missing or malformed values fall back to defaults.
//
//   - page: positive integer, otherwise 1
//   - limit: positive integer capped at domain.MaxLimit, otherwise 10
//   - sort: name, price or createdAt, otherwise name
//   - order: "desc" (any case) is descending, anything else ascending
//   - search: passed through as given
func NewProductQuery(values url.Values) domain.ProductQuery {
	q := domain.DefaultProductQuery()

	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page >= 1 {
		q.Page = page
	}

	if limit, err := strconv.Atoi(values.Get(ParamLimit)); err == nil && limit >= 1 {
		q.Limit = min(limit, domain.MaxLimit)
	}

	if field, ok := sortFieldAliases[values.Get(ParamSort)]; ok {
		q.SortField = field
	}

	if strings.EqualFold(values.Get(ParamOrder), string(domain.SortDesc)) {
		q.SortOrder = domain.SortDesc
	}

	q.Search = values.Get(ParamSearch)
	return q
}

// Search returns a GORM scope that keeps products whose name or description
// contains the filter's search term, ignoring case. LIKE wildcards in the term
// are matched literally.
func Search(filter domain.ProductFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Search == "" {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		return db.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern,
		)
	}
}

// Sort returns a GORM scope ordering by the requested field, with the primary
// key as a tiebreaker so equal values keep insertion order across pages.
func Sort(opts domain.FindOptions) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		direction := "ASC"
		if opts.SortOrder == domain.SortDesc {
			direction = "DESC"
		}
		return db.Order(opts.SortField.Column() + " " + direction).Order("id ASC")
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET.
func Paginate(opts domain.FindOptions) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(max(opts.Offset, 0)).Limit(opts.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
