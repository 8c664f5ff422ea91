package client

import (
	"context"

	"github.com/simp-lee/catalog/internal/domain"
)

// ProductAPI is the subset of Client a Browser drives.
type ProductAPI interface {
	ListProducts(ctx context.Context, f Filters) (*domain.ProductPage, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

// Browser holds the filter state and the last fetched page, and re-fetches
// whenever the filters change or the catalog is mutated. A failed fetch
// keeps the previous page and records the error. Not safe for concurrent use.
type Browser struct {
	api     ProductAPI
	filters Filters
	result  *domain.ProductPage
	err     error
}

// NewBrowser returns a Browser with DefaultFilters and an empty result.
func NewBrowser(api ProductAPI) *Browser {
	return &Browser{
		api:     api,
		filters: DefaultFilters(),
		result:  &domain.ProductPage{Products: []domain.Product{}, Page: 1, TotalPages: 1},
	}
}

// Filters returns the current filters.
func (b *Browser) Filters() Filters { return b.filters }

// Result returns the last successfully fetched page.
func (b *Browser) Result() *domain.ProductPage { return b.result }

// Err returns the error of the last operation, nil after a success.
func (b *Browser) Err() error { return b.err }

// Refresh fetches the page for the current filters.
func (b *Browser) Refresh(ctx context.Context) error {
	page, err := b.api.ListProducts(ctx, b.filters)
	if err != nil {
		b.err = err
		return err
	}
	b.result = page
	b.err = nil
	return nil
}

// SetFilters replaces the filters wholesale and re-fetches.
func (b *Browser) SetFilters(ctx context.Context, f Filters) error {
	b.filters = f
	return b.Refresh(ctx)
}

// SetPage moves to page and re-fetches. Pages below 1 become 1.
func (b *Browser) SetPage(ctx context.Context, page int) error {
	b.filters.Page = max(page, 1)
	return b.Refresh(ctx)
}

// SetLimit changes the page size, returns to page 1 and re-fetches.
func (b *Browser) SetLimit(ctx context.Context, limit int) error {
	b.filters.Limit = limit
	b.filters.Page = 1
	return b.Refresh(ctx)
}

// SortBy sorts by field. Sorting again by the current field flips the
// order; a new field starts ascending.
func (b *Browser) SortBy(ctx context.Context, field string) error {
	order := string(domain.SortAsc)
	if b.filters.Sort == field && b.filters.Order == string(domain.SortAsc) {
		order = string(domain.SortDesc)
	}
	b.filters.Sort = field
	b.filters.Order = order
	return b.Refresh(ctx)
}

// Search filters by term, returns to page 1 and re-fetches.
func (b *Browser) Search(ctx context.Context, term string) error {
	b.filters.Search = term
	b.filters.Page = 1
	return b.Refresh(ctx)
}

// Create adds a product and re-fetches the current page.
func (b *Browser) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p, err := b.api.CreateProduct(ctx, in)
	if err != nil {
		b.err = err
		return nil, err
	}
	return p, b.Refresh(ctx)
}

// Delete removes a product and re-fetches the current page.
func (b *Browser) Delete(ctx context.Context, id uint) error {
	if err := b.api.DeleteProduct(ctx, id); err != nil {
		b.err = err
		return err
	}
	return b.Refresh(ctx)
}
