// Package loadgen produces synthetic catalog traffic: on every tick it may
// create a random product and may delete a random listed one.
package loadgen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/catalog/internal/client"
	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/domain"
)

var (
	adjectives = []string{"Ergonomic", "Sleek", "Rustic", "Intelligent", "Gorgeous", "Incredible", "Practical", "Handcrafted", "Refined", "Licensed"}
	materials  = []string{"Steel", "Wooden", "Concrete", "Plastic", "Cotton", "Granite", "Rubber", "Bronze", "Frozen", "Soft"}
	nouns      = []string{"Chair", "Car", "Computer", "Keyboard", "Mouse", "Bike", "Ball", "Gloves", "Table", "Shoes", "Hat", "Towels"}
	phrases    = []string{
		"Built to last with a balanced, modern profile",
		"Designed for everyday use at home or in the office",
		"A carefully engineered take on a classic",
		"Lightweight and durable with a clean finish",
		"Comfortable, reliable and easy to maintain",
	}
)

// TickResult reports what one tick did. Nil fields mean the action was not
// drawn or found nothing to act on.
type TickResult struct {
	Created *domain.Product
	Deleted *domain.Product
}

// Generator issues random create/delete calls against the catalog API.
// It is driven by a single goroutine.
type Generator struct {
	api    client.ProductAPI
	cfg    config.LoadGenConfig
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the random source, e.g. with a seeded one in tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// New returns a Generator calling api with the ratios and timing of cfg.
func New(api client.ProductAPI, cfg config.LoadGenConfig, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		api:    api,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run ticks every cfg.Every() until ctx is canceled. Failed calls are
// logged and never stop the loop.
func (g *Generator) Run(ctx context.Context) error {
	interval := g.cfg.Every()
	if interval <= 0 {
		return fmt.Errorf("invalid load generator interval %v", interval)
	}

	g.logger.Info("load generator started",
		slog.String("base_url", g.cfg.BaseURL),
		slog.Duration("interval", interval),
		slog.Float64("create_ratio", g.cfg.CreateRatio),
		slog.Float64("delete_ratio", g.cfg.DeleteRatio),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("load generator stopped")
			return nil
		case <-ticker.C:
			_, _ = g.Tick(ctx)
		}
	}
}

// Tick performs one round: a create with probability CreateRatio, then a
// delete of a random page-1 product with probability DeleteRatio. The two
// draws are independent. Errors are logged and the first one returned.
func (g *Generator) Tick(ctx context.Context) (TickResult, error) {
	var (
		res      TickResult
		firstErr error
	)

	if g.rng.Float64() < g.cfg.CreateRatio {
		p, err := g.create(ctx)
		if err != nil {
			g.logger.WarnContext(ctx, "create product failed", slog.String("error", err.Error()))
			firstErr = err
		} else {
			res.Created = p
			g.logger.InfoContext(ctx, "created product", slog.Uint64("product_id", uint64(p.ID)), slog.String("name", p.Name))
		}
	}

	if g.rng.Float64() < g.cfg.DeleteRatio {
		p, err := g.deleteRandom(ctx)
		switch {
		case err != nil:
			g.logger.WarnContext(ctx, "delete product failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		case p != nil:
			res.Deleted = p
			g.logger.InfoContext(ctx, "deleted product", slog.Uint64("product_id", uint64(p.ID)), slog.String("name", p.Name))
		}
	}

	return res, firstErr
}

func (g *Generator) create(ctx context.Context) (*domain.Product, error) {
	ctx, cancel := g.requestContext(ctx)
	defer cancel()
	return g.api.CreateProduct(ctx, g.randomProduct())
}

func (g *Generator) deleteRandom(ctx context.Context) (*domain.Product, error) {
	listCtx, cancel := g.requestContext(ctx)
	page, err := g.api.ListProducts(listCtx, client.DefaultFilters())
	cancel()
	if err != nil {
		return nil, err
	}
	if len(page.Products) == 0 {
		return nil, nil
	}

	victim := page.Products[g.rng.IntN(len(page.Products))]

	delCtx, cancel := g.requestContext(ctx)
	defer cancel()
	if err := g.api.DeleteProduct(delCtx, victim.ID); err != nil {
		return nil, err
	}
	return &victim, nil
}

func (g *Generator) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := g.cfg.Timeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// randomProduct draws a commerce-style name, a description and a price
// between 1.00 and 999.99.
func (g *Generator) randomProduct() client.CreateProductInput {
	name := strings.Join([]string{pick(g.rng, adjectives), pick(g.rng, materials), pick(g.rng, nouns)}, " ")
	cents := int64(100 + g.rng.IntN(99900))
	return client.CreateProductInput{
		Name:        name,
		Description: pick(g.rng, phrases) + ".",
		Price:       decimal.New(cents, -2),
	}
}

func pick(r *rand.Rand, s []string) string {
	return s[r.IntN(len(s))]
}
