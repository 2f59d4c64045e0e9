package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// CollectionFetcher retrieves collections and their member products.
type CollectionFetcher struct {
	collections store.CollectionStore
	products    store.ProductStore
	cache       *cache.Manager
	logger      *slog.Logger
}

// NewCollectionFetcher creates a collection fetcher. Panics if any
// dependency is nil, as this indicates a programming error in the
// application setup.
func NewCollectionFetcher(collections store.CollectionStore, products store.ProductStore, cacheManager *cache.Manager, logger *slog.Logger) *CollectionFetcher {
	if collections == nil {
		panic("collection store cannot be nil")
	}
	if products == nil {
		panic("product store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CollectionFetcher{
		collections: collections,
		products:    products,
		cache:       cacheManager,
		logger:      logger.With(slog.String("component", "collection_fetcher")),
	}
}

// CollectionWithProducts pairs a collection with its resolved members.
type CollectionWithProducts struct {
	Collection *domain.Collection
	Products   []*domain.Product
}

// GetCollection retrieves a collection and resolves its member
// products. A member that fails to resolve is logged and skipped; one
// missing product never breaks a collection page.
func (f *CollectionFetcher) GetCollection(ctx context.Context, storeID, collectionID string) (*CollectionWithProducts, error) {
	key := cache.CollectionKey(storeID, collectionID)
	if cached, ok := f.cache.GetCached(key); ok {
		if c, ok := cached.(*CollectionWithProducts); ok {
			return c, nil
		}
	}

	c, err := f.collections.GetByID(ctx, storeID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("fetching collection %s for store %s: %w", collectionID, storeID, err)
	}

	products := make([]*domain.Product, 0, len(c.ProductIDs))
	for _, pid := range c.ProductIDs {
		p, err := f.products.GetByID(ctx, storeID, pid)
		if err != nil {
			f.logger.Warn("collection member failed to resolve",
				slog.String("store_id", storeID),
				slog.String("collection_id", collectionID),
				slog.String("product_id", pid),
				slog.String("error", err.Error()))
			continue
		}
		products = append(products, p)
	}

	out := &CollectionWithProducts{Collection: c, Products: products}
	f.cache.SetCached(key, out, cache.DataTTL(cache.KindProduct))
	return out, nil
}

// GetCollectionByHandle resolves a collection through its URL handle.
func (f *CollectionFetcher) GetCollectionByHandle(ctx context.Context, storeID, handle string) (*CollectionWithProducts, error) {
	all, err := f.ListCollections(ctx, storeID)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.Handle() == handle || domain.Handleize(c.Title) == handle {
			return f.GetCollection(ctx, storeID, c.ID)
		}
	}
	return nil, fmt.Errorf("fetching collection by handle %s for store %s: %w", handle, storeID, store.ErrCollectionNotFound)
}

// ListCollections retrieves the store's active collections.
func (f *CollectionFetcher) ListCollections(ctx context.Context, storeID string) ([]*domain.Collection, error) {
	key := cache.CollectionsKey(storeID)
	if cached, ok := f.cache.GetCached(key); ok {
		if cs, ok := cached.([]*domain.Collection); ok {
			return cs, nil
		}
	}

	cs, err := f.collections.List(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing collections for store %s: %w", storeID, err)
	}

	f.cache.SetCached(key, cs, cache.DataTTL(cache.KindProduct))
	return cs, nil
}

// CollectionContext projects a collection and its products into the
// shape templates consume.
func CollectionContext(c *domain.Collection, products []*domain.Product) map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":          c.ID,
		"title":       c.Title,
		"description": c.Description,
		"handle":      c.Handle(),
		"url":         c.URL(),
		"image":       c.ImageURL,
		"products":    ProductsContext(products),
	}
}
