package product

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/catalog/internal/domain"
)

// Field limits enforced on create; they match the column sizes.
const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
	priceScale           = 2
)

// maxPrice is the first value that no longer fits decimal(12,2).
var maxPrice = decimal.New(1, 10)

// Observer is notified of successful catalog mutations.
type Observer interface {
	ProductCreated()
	ProductDeleted()
}

type noopObserver struct{}

func (noopObserver) ProductCreated() {}
func (noopObserver) ProductDeleted() {}

// productService implements domain.ProductService.
type productService struct {
	store  domain.ProductStore
	logger *slog.Logger
	obs    Observer
}

// NewProductService creates a ProductService over store. A nil logger falls back
// to slog.Default and a nil obs disables mutation notifications.
func NewProductService(store domain.ProductStore, logger *slog.Logger, obs Observer) domain.ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	if obs == nil {
		obs = noopObserver{}
	}
	return &productService{store: store, logger: logger, obs: obs}
}

// ListProducts counts the matching products, then fetches the requested page.
// The find is skipped when the page starts past the last match.
func (s *productService) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	if q.Limit < 1 {
		return nil, domain.NewValidationError("limit must be a positive integer")
	}
	if q.Page < 1 {
		q.Page = domain.DefaultPage
	}

	s.logger.DebugContext(ctx, "listing products",
		"page", q.Page,
		"limit", q.Limit,
		"sort", string(q.SortField),
		"order", string(q.SortOrder),
		"search", q.Search,
	)

	filter := q.Filter()
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "count products failed", "error", err)
		return nil, err
	}

	totalPages := domain.TotalPages(total, q.Limit)
	products := []domain.Product{}
	if offset := q.Offset(); q.Page <= totalPages && int64(offset) < total {
		products, err = s.store.Find(ctx, filter, domain.FindOptions{
			SortField: q.SortField,
			SortOrder: q.SortOrder,
			Offset:    offset,
			Limit:     q.Limit,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "find products failed", "error", err)
			return nil, err
		}
	}

	return &domain.ProductPage{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		TotalPages: totalPages,
	}, nil
}

// CreateProduct validates input, then inserts exactly one product.
func (s *productService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if err := validateProduct(name, description, price); err != nil {
		s.logger.DebugContext(ctx, "create product rejected", "reason", err.Error())
		return nil, err
	}

	product := &domain.Product{
		Name:        name,
		Description: description,
		Price:       price.Round(priceScale),
	}
	if err := s.store.Insert(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "insert product failed", "error", err)
		return nil, err
	}

	s.obs.ProductCreated()
	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// DeleteProduct removes a product by ID.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			s.logger.WarnContext(ctx, "product not found for delete", "product_id", id)
		} else {
			s.logger.ErrorContext(ctx, "delete product failed", "product_id", id, "error", err)
		}
		return err
	}

	s.obs.ProductDeleted()
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func validateProduct(name, description string, price decimal.Decimal) error {
	if name == "" {
		return domain.NewValidationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return domain.NewValidationError("name must be at most 200 characters")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return domain.NewValidationError("description must be at most 2000 characters")
	}
	if price.IsNegative() {
		return domain.NewValidationError("price must not be negative")
	}
	if !price.Equal(price.Round(priceScale)) {
		return domain.NewValidationError("price must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return domain.NewValidationError("price is too large")
	}
	return nil
}
