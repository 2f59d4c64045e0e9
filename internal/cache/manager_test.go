package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager returns a manager with a controllable clock and the
// function that advances it.
func newTestManager(t *testing.T) (*Manager, func(time.Duration)) {
	t.Helper()

	current := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m := NewManager()
	m.now = func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return m, advance
}

func TestManagerGetSet(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	_, ok := m.GetCached("missing")
	assert.False(t, ok, "empty cache should miss")

	m.SetCached("product_store1_p1", "value", 15*time.Minute)
	got, ok := m.GetCached("product_store1_p1")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestManagerTTLExpiry(t *testing.T) {
	t.Parallel()

	m, advance := newTestManager(t)
	m.SetCached("k", "v", 10*time.Minute)

	advance(10*time.Minute - time.Millisecond)
	_, ok := m.GetCached("k")
	assert.True(t, ok, "entry should live until just before the TTL")

	advance(2 * time.Millisecond)
	_, ok = m.GetCached("k")
	assert.False(t, ok, "entry past its TTL reads as absent")
	assert.Equal(t, 0, m.Len(), "expired entry is dropped on read")
}

func TestManagerZeroTTLNeverStores(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.SetCached("cart_page", "html", 0)
	_, ok := m.GetCached("cart_page")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestManagerDisabled(t *testing.T) {
	t.Parallel()

	m := NewDisabledManager()
	m.SetCached("k", "v", time.Hour)
	_, ok := m.GetCached("k")
	assert.False(t, ok)
}

func TestKeyDerivationIsIdempotent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ProductKey("s1", "p1"), ProductKey("s1", "p1"))
	assert.Equal(t, DomainKey("shop.example.com"), DomainKey("shop.example.com"))
	assert.NotEqual(t, ProductKey("s1", "p1"), ProductKey("s2", "p1"))
}

func TestDeleteByPrefixExactness(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.SetCached(ProductKey("s1", "p1"), 1, time.Hour)
	m.SetCached(ProductsKey("s1", 10, ""), 2, time.Hour)
	m.SetCached(ProductsKey("s1", 20, "shoes"), 3, time.Hour)
	m.SetCached(ProductsKey("s2", 10, ""), 4, time.Hour)

	deleted := m.DeleteByPrefix(ProductsPrefix("s1"))
	assert.Equal(t, 2, deleted)

	_, ok := m.GetCached(ProductKey("s1", "p1"))
	assert.True(t, ok, "single-product entry does not share the listing prefix")
	_, ok = m.GetCached(ProductsKey("s2", 10, ""))
	assert.True(t, ok, "other store's listings are untouched")
}

func TestInvalidateStoreCache(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.SetCached(ProductKey("s1", "p1"), 1, time.Hour)
	m.SetCached(NavigationKey("s1"), 2, time.Hour)
	m.SetCached(ProductKey("s2", "p9"), 3, time.Hour)

	m.InvalidateStoreCache("s1")

	_, ok := m.GetCached(ProductKey("s1", "p1"))
	assert.False(t, ok)
	_, ok = m.GetCached(NavigationKey("s1"))
	assert.False(t, ok)
	_, ok = m.GetCached(ProductKey("s2", "p9"))
	assert.True(t, ok)
}

// Whole-store invalidation matches on StoreFragment, so every
// store-scoped key builder must embed it. A key ending in the bare
// store ID would survive InvalidateStoreCache.
func TestStoreScopedKeysContainStoreFragment(t *testing.T) {
	t.Parallel()

	keys := map[string]string{
		"product":           ProductKey("s1", "p1"),
		"products":          ProductsKey("s1", 10, "shoes"),
		"featured_products": FeaturedProductsKey("s1", 4),
		"collection":        CollectionKey("s1", "c1"),
		"collections":       CollectionsKey("s1"),
		"page":              PageKey("s1", "about"),
		"pages":             PagesKey("s1"),
		"navigation":        NavigationKey("s1"),
		"navigation_menu":   NavigationMenuKey("s1", "main"),
		"template":          TemplateKey("s1", "layout/theme.liquid"),
		"search_products":   SearchProductsKey("s1", "boots", 20),
		"rendered_page":     RenderedPageKey("s1", "index", "default"),
		"cart":              CartPrefix("s1", "sess"),
	}
	for name, key := range keys {
		assert.Contains(t, key, StoreFragment("s1"), "%s key %q", name, key)
	}
}

func TestInvalidateStoreCacheSweepsListings(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.SetCached(CollectionsKey("s1"), 1, time.Hour)
	m.SetCached(PagesKey("s1"), 2, time.Hour)
	m.SetCached(NavigationKey("s1"), 3, time.Hour)
	m.SetCached(CollectionsKey("s2"), 4, time.Hour)

	m.InvalidateStoreCache("s1")

	_, ok := m.GetCached(CollectionsKey("s1"))
	assert.False(t, ok)
	_, ok = m.GetCached(PagesKey("s1"))
	assert.False(t, ok)
	_, ok = m.GetCached(NavigationKey("s1"))
	assert.False(t, ok)
	_, ok = m.GetCached(CollectionsKey("s2"))
	assert.True(t, ok, "other store's listing is untouched")
}

func TestInvalidateProductCache(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.SetCached(ProductKey("s1", "p1"), 1, time.Hour)
	m.SetCached(ProductsKey("s1", 10, ""), 2, time.Hour)
	m.SetCached(FeaturedProductsKey("s1", 4), 3, time.Hour)
	m.SetCached(CollectionKey("s1", "c1"), 4, time.Hour)

	m.InvalidateProductCache("s1", "p1")

	_, ok := m.GetCached(ProductKey("s1", "p1"))
	assert.False(t, ok)
	_, ok = m.GetCached(ProductsKey("s1", 10, ""))
	assert.False(t, ok)
	_, ok = m.GetCached(FeaturedProductsKey("s1", 4))
	assert.False(t, ok)
	_, ok = m.GetCached(CollectionKey("s1", "c1"))
	assert.True(t, ok, "collections survive a product-only invalidation")
}

func TestTTLTables(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10*time.Minute, DataTTL(KindSearch))
	assert.Equal(t, 5*time.Minute, DataTTL(KindCart))
	assert.Equal(t, 30*time.Minute, DataTTL(KindNavigation))
	assert.Equal(t, time.Hour, DataTTL(KindTemplate))
	assert.Equal(t, 15*time.Minute, DataTTL(Kind("unknown")))

	assert.Equal(t, time.Hour, PageTTL("product"))
	assert.Equal(t, time.Duration(0), PageTTL("cart"))
	assert.Equal(t, 24*time.Hour, PageTTL("404"))
	assert.Equal(t, 30*time.Minute, PageTTL("search"))
}
