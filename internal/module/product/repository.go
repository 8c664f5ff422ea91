package product

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"

	"github.com/simp-lee/catalog/internal/domain"
	"github.com/simp-lee/catalog/internal/pkg"
)

// productRepository implements domain.ProductStore using GORM.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a ProductStore backed by the given GORM database.
func NewProductRepository(db *gorm.DB) domain.ProductStore {
	return &productRepository{db: db}
}

// Count returns the number of products matching filter.
func (r *productRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Scopes(pkg.Search(filter)).
		Count(&total).Error; err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// Find returns one sorted window of the products matching filter.
func (r *productRepository) Find(ctx context.Context, filter domain.ProductFilter, opts domain.FindOptions) ([]domain.Product, error) {
	products := make([]domain.Product, 0, opts.Limit)
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Scopes(pkg.Search(filter), pkg.Sort(opts), pkg.Paginate(opts)).
		Find(&products).Error; err != nil {
		return nil, mapError(err)
	}
	return products, nil
}

// Insert stores a new product; the database assigns ID and CreatedAt.
func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteByID permanently removes a product.
func (r *productRepository) DeleteByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SeedIfEmpty inserts products in a single transaction when the table is empty.
func (r *productRepository) SeedIfEmpty(ctx context.Context, products []domain.Product) (bool, error) {
	if len(products) == 0 {
		return false, nil
	}

	seeded := false
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		batch := slices.Clone(products)
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, mapError(err)
	}
	return seeded, nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrProductNotFound
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
