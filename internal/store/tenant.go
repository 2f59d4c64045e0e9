package store

import (
	"context"

	"github.com/haldis/storefront-engine/internal/domain"
)

// TenantStore defines the interface for tenant store lookup.
// The rendering core never writes store entities; onboarding owns them.
type TenantStore interface {
	// GetByID retrieves a store by its unique store ID.
	// Returns ErrStoreNotFound if the store does not exist.
	GetByID(ctx context.Context, storeID string) (*domain.Store, error)

	// GetByDomain retrieves a store by custom domain or platform subdomain.
	// Returns ErrStoreNotFound if no store matches the domain.
	GetByDomain(ctx context.Context, domain string) (*domain.Store, error)
}

// ProductFilters narrows product listings.
type ProductFilters struct {
	// Limit caps the number of returned products; zero means store default.
	Limit int
	// Featured restricts the listing to featured products when true.
	Featured bool
	// Category restricts the listing to a category when non-empty.
	Category string
	// CollectionID restricts the listing to members of a collection.
	CollectionID string
}

// ProductStore defines the interface for product data retrieval.
type ProductStore interface {
	// GetByID retrieves a product by ID within a store.
	// Returns ErrProductNotFound if the product does not exist.
	GetByID(ctx context.Context, storeID, productID string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL handle within a store.
	// Returns ErrProductNotFound if no product matches.
	GetBySlug(ctx context.Context, storeID, slug string) (*domain.Product, error)

	// List retrieves products for a store, newest first, honoring filters.
	List(ctx context.Context, storeID string, filters ProductFilters) ([]*domain.Product, error)
}

// CollectionStore defines the interface for collection data retrieval.
type CollectionStore interface {
	// GetByID retrieves a collection by ID within a store.
	// Returns ErrCollectionNotFound if the collection does not exist.
	GetByID(ctx context.Context, storeID, collectionID string) (*domain.Collection, error)

	// List retrieves the active collections for a store in sort order.
	List(ctx context.Context, storeID string) ([]*domain.Collection, error)
}

// PageStore defines the interface for content page retrieval.
type PageStore interface {
	// GetBySlug retrieves a visible page by slug within a store.
	// Returns ErrPageNotFound if no page matches.
	GetBySlug(ctx context.Context, storeID, slug string) (*domain.Page, error)

	// List retrieves the visible pages for a store.
	List(ctx context.Context, storeID string) ([]*domain.Page, error)
}

// NavigationStore defines the interface for navigation menu retrieval.
type NavigationStore interface {
	// ListByStore retrieves the active navigation menus for a store.
	ListByStore(ctx context.Context, storeID string) ([]*domain.NavigationMenu, error)

	// GetByHandle retrieves an active menu by handle within a store.
	// Returns ErrMenuNotFound if no menu matches.
	GetByHandle(ctx context.Context, storeID, handle string) (*domain.NavigationMenu, error)
}
