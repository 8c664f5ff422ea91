package product

import "github.com/shopspring/decimal"

// CreateProductRequest is the body of POST /api/products.
// Price accepts a JSON number or a numeric string.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
}
