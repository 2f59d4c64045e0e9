// Package cache provides the in-memory render cache shared by the data
// fetchers, the template loader and the domain resolver, together with
// the invalidation service that reacts to store change events.
//
// The cache is a single keyed map with per-kind TTLs. There is no
// cross-process coherency: each render request is independent, and a
// stale read means slightly outdated content for at most one TTL window.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Kind names a TTL class. TTLs are fixed per deployment and looked up by
// kind, never hardcoded at call sites.
type Kind string

const (
	KindProduct    Kind = "product"
	KindSearch     Kind = "search"
	KindCart       Kind = "cart"
	KindNavigation Kind = "navigation"
	KindTemplate   Kind = "template"
	KindDomain     Kind = "domain"
)

// dataTTLs maps a data kind to its expiry window. Navigation menus are
// stable; carts and searches churn.
var dataTTLs = map[Kind]time.Duration{
	KindProduct:    15 * time.Minute,
	KindSearch:     10 * time.Minute,
	KindCart:       5 * time.Minute,
	KindNavigation: 30 * time.Minute,
	KindTemplate:   time.Hour,
	KindDomain:     30 * time.Minute,
}

// defaultDataTTL applies to kinds without an explicit entry.
const defaultDataTTL = 15 * time.Minute

// pageTTLs maps a page type to the TTL of its rendered output. Cart and
// checkout pages carry per-visitor state and are never cached; policies
// and 404 pages barely change.
var pageTTLs = map[string]time.Duration{
	"index":          15 * time.Minute,
	"product":        time.Hour,
	"collection":     45 * time.Minute,
	"policies":       24 * time.Hour,
	"cart":           0,
	"checkout":       0,
	"checkout_start": 0,
	"404":            24 * time.Hour,
}

// defaultPageTTL applies to page types without an explicit entry.
const defaultPageTTL = 30 * time.Minute

// entry is a stored value with its write timestamp and TTL. An entry is
// valid only while now - storedAt < ttl.
type entry struct {
	data     any
	storedAt time.Time
	ttl      time.Duration
}

// Manager is the in-memory keyed cache. The zero value is not usable;
// construct with NewManager.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool

	// now is the clock, injectable for TTL tests.
	now func() time.Time
}

// NewManager creates an enabled cache manager.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]entry),
		enabled: true,
		now:     time.Now,
	}
}

// NewDisabledManager creates a manager that never stores anything.
// Intended for local theme development where stale templates get in
// the way; every read is a miss.
func NewDisabledManager() *Manager {
	m := NewManager()
	m.enabled = false
	return m
}

// DataTTL returns the TTL for the given data kind.
func DataTTL(kind Kind) time.Duration {
	if ttl, ok := dataTTLs[kind]; ok {
		return ttl
	}
	return defaultDataTTL
}

// PageTTL returns the TTL for a rendered page of the given type.
func PageTTL(pageType string) time.Duration {
	if ttl, ok := pageTTLs[pageType]; ok {
		return ttl
	}
	return defaultPageTTL
}

// GetCached returns the cached value for key if present and unexpired.
// Expired entries are dropped on read; a miss and an expired entry are
// indistinguishable to the caller.
func (m *Manager) GetCached(key string) (any, bool) {
	if !m.enabled {
		return nil, false
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.now().Sub(e.storedAt) >= e.ttl {
		m.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry in between.
		if cur, ok := m.entries[key]; ok && m.now().Sub(cur.storedAt) >= cur.ttl {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

// SetCached stores a value under key with the given TTL. A zero or
// negative TTL means "never cache" and is a no-op.
func (m *Manager) SetCached(key string, data any, ttl time.Duration) {
	if !m.enabled || ttl <= 0 {
		return
	}

	m.mu.Lock()
	m.entries[key] = entry{data: data, storedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
}

// DeleteKey removes a single key. Removing an absent key is a no-op.
func (m *Manager) DeleteKey(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// DeleteByPrefix removes every key starting with prefix and returns the
// number of entries removed.
func (m *Manager) DeleteByPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted
}

// deleteContaining removes every key containing the fragment.
func (m *Manager) deleteContaining(fragment string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key := range m.entries {
		if strings.Contains(key, fragment) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted
}

// InvalidateStoreCache removes every entry scoped to the store.
func (m *Manager) InvalidateStoreCache(storeID string) {
	m.deleteContaining(StoreFragment(storeID))
}

// InvalidateProductCache removes the product's own entry plus every
// listing that could include it.
func (m *Manager) InvalidateProductCache(storeID, productID string) {
	m.DeleteKey(ProductKey(storeID, productID))
	m.DeleteByPrefix(ProductsPrefix(storeID))
	m.DeleteByPrefix(FeaturedProductsPrefix(storeID))
}

// InvalidateDomainCache removes a single domain resolution.
func (m *Manager) InvalidateDomainCache(domain string) {
	m.DeleteKey(DomainKey(domain))
}

// Clear removes every entry.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Len reports the number of stored entries, counting expired entries
// that have not yet been dropped by a read.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
