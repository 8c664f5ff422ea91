package product

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/simp-lee/catalog/internal/domain"
)

// memoryRepository is a document-style ProductStore kept in process memory.
// Products are held in insertion order so a stable sort breaks ties by it.
type memoryRepository struct {
	mu       sync.RWMutex
	nextID   uint
	products []domain.Product
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory ProductStore.
func NewMemoryRepository() domain.ProductStore {
	return &memoryRepository{nextID: 1, now: time.Now}
}

func (r *memoryRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := matcher(filter)
	var n int64
	for i := range r.products {
		if match(&r.products[i]) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Find(ctx context.Context, filter domain.ProductFilter, opts domain.FindOptions) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	r.mu.RLock()
	match := matcher(filter)
	items := make([]domain.Product, 0, len(r.products))
	for i := range r.products {
		if match(&r.products[i]) {
			items = append(items, r.products[i])
		}
	}
	r.mu.RUnlock()

	compare := comparator(opts.SortField)
	if opts.SortOrder == domain.SortDesc {
		asc := compare
		compare = func(a, b domain.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(items, compare)

	start := min(max(opts.Offset, 0), len(items))
	end := len(items)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(items))
	}
	return slices.Clone(items[start:end]), nil
}

func (r *memoryRepository) Insert(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(product)
	return nil
}

func (r *memoryRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.ErrProductNotFound
	}
	r.products = slices.Delete(r.products, i, i+1)
	return nil
}

func (r *memoryRepository) SeedIfEmpty(ctx context.Context, products []domain.Product) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 || len(products) == 0 {
		return false, nil
	}
	for i := range products {
		p := products[i]
		r.insertLocked(&p)
	}
	return true, nil
}

// insertLocked assigns ID and CreatedAt and appends a copy. r.mu must be held.
func (r *memoryRepository) insertLocked(product *domain.Product) {
	product.ID = r.nextID
	r.nextID++
	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.now().UTC()
	}
	r.products = append(r.products, *product)
}

func matcher(filter domain.ProductFilter) func(*domain.Product) bool {
	if filter.Search == "" {
		return func(*domain.Product) bool { return true }
	}
	term := strings.ToLower(filter.Search)
	return func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	}
}

func comparator(field domain.SortField) func(a, b domain.Product) int {
	switch field {
	case domain.SortByPrice:
		return func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case domain.SortByCreatedAt:
		return func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b domain.Product) int { return cmp.Compare(a.Name, b.Name) }
	}
}
