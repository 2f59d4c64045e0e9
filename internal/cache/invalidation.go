package cache

import (
	"log/slog"
)

// ChangeType identifies a store mutation the invalidation service reacts to.
type ChangeType string

const (
	ChangeProductCreated       ChangeType = "product_created"
	ChangeProductUpdated       ChangeType = "product_updated"
	ChangeProductDeleted       ChangeType = "product_deleted"
	ChangeCollectionCreated    ChangeType = "collection_created"
	ChangeCollectionUpdated    ChangeType = "collection_updated"
	ChangeCollectionDeleted    ChangeType = "collection_deleted"
	ChangePageCreated          ChangeType = "page_created"
	ChangePageUpdated          ChangeType = "page_updated"
	ChangePageDeleted          ChangeType = "page_deleted"
	ChangeNavigationUpdated    ChangeType = "navigation_updated"
	ChangeTemplateUpdated      ChangeType = "template_updated"
	ChangeStoreSettingsUpdated ChangeType = "store_settings_updated"
	ChangeDomainUpdated        ChangeType = "domain_updated"
)

// invalidationRule describes what a change type sweeps. Prefix sweeps
// guarantee no stale list or search view survives a mutation; the
// entity hook deletes specific keys so unrelated entities of the same
// kind stay cached.
type invalidationRule struct {
	// prefixes are store-scoped sweeps applied unconditionally.
	prefixes []func(storeID string) string

	// entity runs only when the event carries an entity ID.
	entity func(m *Manager, storeID, entityID string)
}

// invalidationRules is the static ChangeType dispatch table. Every change
// type the system emits has an entry; the service warns on anything else.
var invalidationRules = map[ChangeType]invalidationRule{
	ChangeProductCreated: {
		prefixes: []func(string) string{
			ProductsPrefix, FeaturedProductsPrefix, SearchProductsPrefix,
			StoreCollectionsPrefix, RenderedPagesPrefix,
		},
	},
	ChangeProductUpdated: {
		prefixes: []func(string) string{
			ProductsPrefix, FeaturedProductsPrefix, SearchProductsPrefix,
			StoreCollectionsPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteKey(ProductKey(storeID, entityID))
		},
	},
	ChangeProductDeleted: {
		prefixes: []func(string) string{
			ProductsPrefix, FeaturedProductsPrefix, SearchProductsPrefix,
			StoreCollectionsPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteKey(ProductKey(storeID, entityID))
		},
	},
	ChangeCollectionCreated: {
		prefixes: []func(string) string{
			func(s string) string { return CollectionsKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
	},
	ChangeCollectionUpdated: {
		prefixes: []func(string) string{
			func(s string) string { return CollectionsKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteByPrefix(CollectionPrefix(storeID, entityID))
		},
	},
	ChangeCollectionDeleted: {
		prefixes: []func(string) string{
			func(s string) string { return CollectionsKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteByPrefix(CollectionPrefix(storeID, entityID))
		},
	},
	ChangePageCreated: {
		prefixes: []func(string) string{
			func(s string) string { return PagesKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
	},
	ChangePageUpdated: {
		prefixes: []func(string) string{
			func(s string) string { return PagesKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteKey(PageKey(storeID, entityID))
		},
	},
	ChangePageDeleted: {
		prefixes: []func(string) string{
			func(s string) string { return PagesKey(s) },
			NavigationPrefix, RenderedPagesPrefix,
		},
		entity: func(m *Manager, storeID, entityID string) {
			m.DeleteKey(PageKey(storeID, entityID))
		},
	},
	ChangeNavigationUpdated: {
		// Navigation changes are visible in every rendered page header.
		prefixes: []func(string) string{NavigationPrefix, RenderedPagesPrefix},
	},
	ChangeTemplateUpdated: {
		// New templates invalidate every rendered page built from them.
		prefixes: []func(string) string{TemplatesPrefix, RenderedPagesPrefix},
	},
	ChangeStoreSettingsUpdated: {
		prefixes: []func(string) string{NavigationPrefix, RenderedPagesPrefix},
	},
	ChangeDomainUpdated: {
		// Domain keys are not store-scoped; only the specific domain
		// resolution can be dropped, via the entity hook.
		entity: func(m *Manager, _ string, entityID string) {
			m.DeleteKey(DomainKey(entityID))
		},
	},
}

// KnownChangeType reports whether the change type has an entry in the
// invalidation table. The admin webhook uses it to reject unrecognized
// change types before emitting an event.
func KnownChangeType(changeType ChangeType) bool {
	_, ok := invalidationRules[changeType]
	return ok
}

// InvalidationService applies the change-type table against a cache
// manager. Invalidation is idempotent: replaying an event sweeps keys
// that are already gone and produces no error.
type InvalidationService struct {
	cache  *Manager
	logger *slog.Logger
}

// NewInvalidationService creates an invalidation service. Panics if
// cache or logger is nil, as this indicates a programming error in the
// application setup.
func NewInvalidationService(cache *Manager, logger *slog.Logger) *InvalidationService {
	if cache == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &InvalidationService{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache_invalidation")),
	}
}

// InvalidateCache sweeps the cache entries affected by a change.
// entityID and path are optional; when entityID is empty only the
// store-scoped prefix sweeps run.
func (s *InvalidationService) InvalidateCache(changeType ChangeType, storeID, entityID, path string) {
	rule, ok := invalidationRules[changeType]
	if !ok {
		s.logger.Warn("unknown change type",
			slog.String("change_type", string(changeType)),
			slog.String("store_id", storeID))
		return
	}

	deleted := 0
	for _, prefix := range rule.prefixes {
		deleted += s.cache.DeleteByPrefix(prefix(storeID))
	}
	if entityID != "" && rule.entity != nil {
		rule.entity(s.cache, storeID, entityID)
	}

	s.logger.Debug("cache invalidated",
		slog.String("change_type", string(changeType)),
		slog.String("store_id", storeID),
		slog.String("entity_id", entityID),
		slog.String("path", path),
		slog.Int("swept", deleted))
}

// InvalidateStore drops every cache entry scoped to the store.
func (s *InvalidationService) InvalidateStore(storeID string) {
	s.cache.InvalidateStoreCache(storeID)
	s.logger.Info("store cache invalidated", slog.String("store_id", storeID))
}
