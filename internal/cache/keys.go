package cache

import "fmt"

// Parameterized cache key builders. Every cache consumer derives its keys
// through these helpers so that the invalidation service and the fetchers
// can never drift apart on key format. Keys embed the store ID so that
// whole-store invalidation can match on the "_{storeID}_" fragment.

// DomainKey is the cache key for a domain -> store resolution.
func DomainKey(domain string) string {
	return "domain_" + domain
}

// ProductKey is the cache key for a single product, by ID or handle.
func ProductKey(storeID, productIDOrHandle string) string {
	return fmt.Sprintf("product_%s_%s", storeID, productIDOrHandle)
}

// ProductsPrefix covers every product listing cached for a store.
func ProductsPrefix(storeID string) string {
	return fmt.Sprintf("products_%s_", storeID)
}

// ProductsKey is the cache key for a product listing with the given filters.
func ProductsKey(storeID string, limit int, category string) string {
	return fmt.Sprintf("%s%d_%s", ProductsPrefix(storeID), limit, category)
}

// FeaturedProductsPrefix covers every featured-product listing for a store.
func FeaturedProductsPrefix(storeID string) string {
	return fmt.Sprintf("featured_products_%s_", storeID)
}

// FeaturedProductsKey is the cache key for a featured-product listing.
func FeaturedProductsKey(storeID string, limit int) string {
	return fmt.Sprintf("%s%d", FeaturedProductsPrefix(storeID), limit)
}

// CollectionKey is the cache key for a single collection with products.
func CollectionKey(storeID, collectionID string) string {
	return fmt.Sprintf("collection_%s_%s", storeID, collectionID)
}

// CollectionPrefix covers a single collection across filter variants.
func CollectionPrefix(storeID, collectionID string) string {
	return fmt.Sprintf("collection_%s_%s", storeID, collectionID)
}

// StoreCollectionsPrefix covers every single-collection entry for a store.
func StoreCollectionsPrefix(storeID string) string {
	return fmt.Sprintf("collection_%s_", storeID)
}

// CollectionsKey is the cache key for a store's collection listing. The
// trailing segment keeps the store ID fragment intact for whole-store
// invalidation.
func CollectionsKey(storeID string) string {
	return fmt.Sprintf("collections_%s_all", storeID)
}

// PageKey is the cache key for a single content page by slug.
func PageKey(storeID, slug string) string {
	return fmt.Sprintf("page_%s_%s", storeID, slug)
}

// PagesPrefix covers every content page cached for a store.
func PagesPrefix(storeID string) string {
	return fmt.Sprintf("page_%s_", storeID)
}

// PagesKey is the cache key for a store's page listing.
func PagesKey(storeID string) string {
	return fmt.Sprintf("pages_%s_all", storeID)
}

// NavigationKey is the cache key for a store's full navigation menu set.
func NavigationKey(storeID string) string {
	return fmt.Sprintf("navigation_%s_all", storeID)
}

// NavigationPrefix covers the menu set and every per-handle menu.
func NavigationPrefix(storeID string) string {
	return fmt.Sprintf("navigation_%s_", storeID)
}

// NavigationMenuKey is the cache key for one menu by handle.
func NavigationMenuKey(storeID, handle string) string {
	return fmt.Sprintf("navigation_%s_menu_%s", storeID, handle)
}

// TemplateKey is the cache key for a raw template file.
func TemplateKey(storeID, path string) string {
	return fmt.Sprintf("template_%s_%s", storeID, path)
}

// TemplatesPrefix covers every template file cached for a store.
func TemplatesPrefix(storeID string) string {
	return fmt.Sprintf("template_%s_", storeID)
}

// SearchProductsPrefix covers cached product searches for a store.
func SearchProductsPrefix(storeID string) string {
	return fmt.Sprintf("search_products_%s_", storeID)
}

// SearchProductsKey is the cache key for one search term and limit.
func SearchProductsKey(storeID, term string, limit int) string {
	return fmt.Sprintf("%s%s_%d", SearchProductsPrefix(storeID), term, limit)
}

// RenderedPageKey is the cache key for a fully rendered page.
func RenderedPageKey(storeID, pageType, identifier string) string {
	return fmt.Sprintf("rendered_%s_%s_%s", storeID, pageType, identifier)
}

// RenderedPagesPrefix covers every rendered page cached for a store.
func RenderedPagesPrefix(storeID string) string {
	return fmt.Sprintf("rendered_%s_", storeID)
}

// CartPrefix covers cached cart projections for one store session.
func CartPrefix(storeID, sessionID string) string {
	return fmt.Sprintf("cart_%s_%s", storeID, sessionID)
}

// StoreFragment is the substring present in every store-scoped key,
// used by whole-store invalidation.
func StoreFragment(storeID string) string {
	return fmt.Sprintf("_%s_", storeID)
}
