package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. ID and CreatedAt are assigned by the store.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Description string          `gorm:"size:2000;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;index" json:"price"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
}

// MarshalJSON writes price as a JSON number with its exact decimal digits.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{
		plain: plain(p),
		Price: json.Number(p.Price.String()),
	})
}

// ProductStore is the boundary to the persistent store.
type ProductStore interface {
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]Product, error)
	Insert(ctx context.Context, product *Product) error
	DeleteByID(ctx context.Context, id uint) error
	// SeedIfEmpty inserts products only when the store holds none and
	// reports whether it did.
	SeedIfEmpty(ctx context.Context, products []Product) (bool, error)
}

// ProductService is the catalog business logic.
type ProductService interface {
	ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error)
	CreateProduct(ctx context.Context, name, description string, price decimal.Decimal) (*Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}
