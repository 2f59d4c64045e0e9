package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// DefaultProductLimit caps listings when the caller does not specify one.
const DefaultProductLimit = 20

// ProductFetcher retrieves products with caching.
type ProductFetcher struct {
	products store.ProductStore
	cache    *cache.Manager
	logger   *slog.Logger
}

// NewProductFetcher creates a product fetcher. Panics if any dependency
// is nil, as this indicates a programming error in the application setup.
func NewProductFetcher(products store.ProductStore, cacheManager *cache.Manager, logger *slog.Logger) *ProductFetcher {
	if products == nil {
		panic("product store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ProductFetcher{
		products: products,
		cache:    cacheManager,
		logger:   logger.With(slog.String("component", "product_fetcher")),
	}
}

// GetProduct retrieves a product by ID, falling back to handle lookup
// so storefront URLs resolve directly.
func (f *ProductFetcher) GetProduct(ctx context.Context, storeID, idOrHandle string) (*domain.Product, error) {
	key := cache.ProductKey(storeID, idOrHandle)
	if cached, ok := f.cache.GetCached(key); ok {
		if p, ok := cached.(*domain.Product); ok {
			return p, nil
		}
	}

	p, err := f.products.GetByID(ctx, storeID, idOrHandle)
	if store.IsNotFoundError(err) {
		p, err = f.products.GetBySlug(ctx, storeID, idOrHandle)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching product %s for store %s: %w", idOrHandle, storeID, err)
	}

	f.cache.SetCached(key, p, cache.DataTTL(cache.KindProduct))
	return p, nil
}

// ListProducts retrieves a store's products honoring the limit and
// category filters.
func (f *ProductFetcher) ListProducts(ctx context.Context, storeID string, limit int, category string) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	key := cache.ProductsKey(storeID, limit, category)
	if cached, ok := f.cache.GetCached(key); ok {
		if ps, ok := cached.([]*domain.Product); ok {
			return ps, nil
		}
	}

	ps, err := f.products.List(ctx, storeID, store.ProductFilters{Limit: limit, Category: category})
	if err != nil {
		return nil, fmt.Errorf("listing products for store %s: %w", storeID, err)
	}

	f.cache.SetCached(key, ps, cache.DataTTL(cache.KindProduct))
	return ps, nil
}

// GetFeaturedProducts retrieves the store's featured products.
func (f *ProductFetcher) GetFeaturedProducts(ctx context.Context, storeID string, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	key := cache.FeaturedProductsKey(storeID, limit)
	if cached, ok := f.cache.GetCached(key); ok {
		if ps, ok := cached.([]*domain.Product); ok {
			return ps, nil
		}
	}

	ps, err := f.products.List(ctx, storeID, store.ProductFilters{Limit: limit, Featured: true})
	if err != nil {
		return nil, fmt.Errorf("listing featured products for store %s: %w", storeID, err)
	}

	f.cache.SetCached(key, ps, cache.DataTTL(cache.KindProduct))
	return ps, nil
}

// SearchProducts retrieves products whose name, description or category
// contains the term, case-insensitively.
func (f *ProductFetcher) SearchProducts(ctx context.Context, storeID, term string, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	term = strings.TrimSpace(term)
	key := cache.SearchProductsKey(storeID, term, limit)
	if cached, ok := f.cache.GetCached(key); ok {
		if ps, ok := cached.([]*domain.Product); ok {
			return ps, nil
		}
	}

	// Search scans the full listing; backing stores index by store, not
	// by text.
	all, err := f.products.List(ctx, storeID, store.ProductFilters{})
	if err != nil {
		return nil, fmt.Errorf("searching products for store %s: %w", storeID, err)
	}

	needle := strings.ToLower(term)
	matches := make([]*domain.Product, 0)
	for _, p := range all {
		if needle == "" {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			matches = append(matches, p)
			if len(matches) >= limit {
				break
			}
		}
	}

	f.cache.SetCached(key, matches, cache.DataTTL(cache.KindSearch))
	return matches, nil
}

// ProductContext projects a product into the shape templates consume.
func ProductContext(p *domain.Product) map[string]any {
	if p == nil {
		return nil
	}

	images := make([]any, len(p.Images))
	for i, img := range p.Images {
		images[i] = map[string]any{"url": img.URL, "alt": img.Alt}
	}
	var featuredImage any
	if len(images) > 0 {
		featuredImage = images[0]
	}

	variants := make([]any, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = map[string]any{
			"id":        v.ID,
			"title":     v.Title,
			"price":     v.Price,
			"sku":       v.SKU,
			"available": v.Available,
		}
	}

	out := map[string]any{
		"id":             p.ID,
		"title":          p.Name,
		"description":    p.Description,
		"handle":         p.Handle(),
		"url":            p.URL(),
		"price":          p.Price,
		"images":         images,
		"featured_image": featuredImage,
		"variants":       variants,
		"category":       p.Category,
		"available":      p.Status == domain.ProductStatusActive && p.Quantity > 0,
		"featured":       p.Featured,
	}
	if p.CompareAtPrice != nil {
		out["compare_at_price"] = *p.CompareAtPrice
	}
	return out
}

// ProductsContext projects a product list.
func ProductsContext(ps []*domain.Product) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		out[i] = ProductContext(p)
	}
	return out
}
