package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PageFetcher retrieves content pages with caching.
type PageFetcher struct {
	pages  store.PageStore
	cache  *cache.Manager
	logger *slog.Logger
}

// NewPageFetcher creates a page fetcher. Panics if any dependency is
// nil, as this indicates a programming error in the application setup.
func NewPageFetcher(pages store.PageStore, cacheManager *cache.Manager, logger *slog.Logger) *PageFetcher {
	if pages == nil {
		panic("page store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PageFetcher{
		pages:  pages,
		cache:  cacheManager,
		logger: logger.With(slog.String("component", "page_fetcher")),
	}
}

// GetPageBySlug retrieves a visible page by its URL slug.
func (f *PageFetcher) GetPageBySlug(ctx context.Context, storeID, slug string) (*domain.Page, error) {
	key := cache.PageKey(storeID, slug)
	if cached, ok := f.cache.GetCached(key); ok {
		if p, ok := cached.(*domain.Page); ok {
			return p, nil
		}
	}

	p, err := f.pages.GetBySlug(ctx, storeID, slug)
	if err != nil {
		return nil, fmt.Errorf("fetching page %s for store %s: %w", slug, storeID, err)
	}

	f.cache.SetCached(key, p, cache.DataTTL(cache.KindProduct))
	return p, nil
}

// ListPages retrieves the store's visible pages.
func (f *PageFetcher) ListPages(ctx context.Context, storeID string) ([]*domain.Page, error) {
	key := cache.PagesKey(storeID)
	if cached, ok := f.cache.GetCached(key); ok {
		if ps, ok := cached.([]*domain.Page); ok {
			return ps, nil
		}
	}

	ps, err := f.pages.List(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing pages for store %s: %w", storeID, err)
	}

	f.cache.SetCached(key, ps, cache.DataTTL(cache.KindProduct))
	return ps, nil
}

// PageContext projects a page into the shape templates consume.
func PageContext(p *domain.Page) map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":               p.ID,
		"title":            p.Title,
		"content":          p.Content,
		"handle":           p.Handle(),
		"url":              p.URL(),
		"meta_description": p.MetaDescription,
	}
}
