package product

import (
	"context"
	"time"

	"github.com/simp-lee/catalog/internal/domain"
)

// StoreObserver receives the outcome of every store operation.
type StoreObserver interface {
	ObserveStoreOperation(operation string, err error, elapsed time.Duration)
}

// Store operation names reported to a StoreObserver.
const (
	OpCount  = "count"
	OpFind   = "find"
	OpInsert = "insert"
	OpDelete = "delete"
	OpSeed   = "seed"
)

type instrumentedRepository struct {
	next domain.ProductStore
	obs  StoreObserver
}

// NewInstrumentedRepository wraps store so each call is reported to obs.
// A nil obs returns store unchanged.
func NewInstrumentedRepository(store domain.ProductStore, obs StoreObserver) domain.ProductStore {
	if obs == nil {
		return store
	}
	return &instrumentedRepository{next: store, obs: obs}
}

func (r *instrumentedRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	start := time.Now()
	n, err := r.next.Count(ctx, filter)
	r.obs.ObserveStoreOperation(OpCount, err, time.Since(start))
	return n, err
}

func (r *instrumentedRepository) Find(ctx context.Context, filter domain.ProductFilter, opts domain.FindOptions) ([]domain.Product, error) {
	start := time.Now()
	products, err := r.next.Find(ctx, filter, opts)
	r.obs.ObserveStoreOperation(OpFind, err, time.Since(start))
	return products, err
}

func (r *instrumentedRepository) Insert(ctx context.Context, product *domain.Product) error {
	start := time.Now()
	err := r.next.Insert(ctx, product)
	r.obs.ObserveStoreOperation(OpInsert, err, time.Since(start))
	return err
}

func (r *instrumentedRepository) DeleteByID(ctx context.Context, id uint) error {
	start := time.Now()
	err := r.next.DeleteByID(ctx, id)
	r.obs.ObserveStoreOperation(OpDelete, err, time.Since(start))
	return err
}

func (r *instrumentedRepository) SeedIfEmpty(ctx context.Context, products []domain.Product) (bool, error) {
	start := time.Now()
	seeded, err := r.next.SeedIfEmpty(ctx, products)
	r.obs.ObserveStoreOperation(OpSeed, err, time.Since(start))
	return seeded, err
}
