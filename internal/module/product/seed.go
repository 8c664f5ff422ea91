package product

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/catalog/internal/domain"
)

// DemoProducts returns the starter catalog inserted into an empty store.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{Name: "MacBook Pro", Description: "13-inch, M2 chip, 8GB RAM, 256GB SSD", Price: decimal.RequireFromString("1299.99")},
		{Name: "iPhone 15 Pro", Description: "256GB, Space Black, 5G Enabled", Price: decimal.RequireFromString("999.99")},
		{Name: "iPad Air", Description: "10.9-inch, M1 chip, Wi-Fi, 64GB", Price: decimal.RequireFromString("599.99")},
		{Name: "AirPods Pro", Description: "2nd Generation, Active Noise Cancellation", Price: decimal.RequireFromString("249.99")},
	}
}

// Seed inserts DemoProducts when store is empty. Failures are returned so the
// caller decides whether startup can continue.
func Seed(ctx context.Context, store domain.ProductStore, logger *slog.Logger) error {
	seeded, err := store.SeedIfEmpty(ctx, DemoProducts())
	if err != nil {
		return err
	}
	if seeded {
		logger.InfoContext(ctx, "catalog seeded with demo products", "count", len(DemoProducts()))
	}
	return nil
}
