// Package resolver maps inbound request domains to store identities.
//
// A domain is either a tenant's custom domain or its platform
// subdomain; both resolve through the tenant store with positive and
// negative caching, so a burst of requests for an unknown domain does
// not hammer the backing store.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// ErrStoreNotFound is returned when no active store is mapped to the
// requested domain.
var ErrStoreNotFound = errors.New("no store for domain")

// ErrStoreInactive is returned when the domain resolves to a store
// that is suspended.
var ErrStoreInactive = errors.New("store is inactive")

// Negative results are cached briefly so repeated lookups for unknown
// domains stay cheap without masking a new store for long.
const (
	negativeNotFoundTTL = 5 * time.Minute
	negativeErrorTTL    = time.Minute
)

// negativeEntry marks a cached not-found resolution.
type negativeEntry struct{}

// Resolver resolves domains to stores, caching both hits and misses.
type Resolver struct {
	tenants store.TenantStore
	cache   *cache.Manager
	logger  *slog.Logger
}

// New creates a domain resolver. Panics if any dependency is nil, as
// this indicates a programming error in the application setup.
func New(tenants store.TenantStore, cacheManager *cache.Manager, logger *slog.Logger) *Resolver {
	if tenants == nil {
		panic("tenant store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Resolver{
		tenants: tenants,
		cache:   cacheManager,
		logger:  logger.With(slog.String("component", "domain_resolver")),
	}
}

// NormalizeDomain strips the port and lowercases a Host header value.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// ResolveStoreByDomain returns the active store serving the domain.
// Misses are cached negatively; inactive stores resolve to
// ErrStoreInactive and are not cached.
func (r *Resolver) ResolveStoreByDomain(ctx context.Context, rawDomain string) (*domain.Store, error) {
	d := NormalizeDomain(rawDomain)
	if d == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrStoreNotFound)
	}

	key := cache.DomainKey(d)
	if cached, ok := r.cache.GetCached(key); ok {
		switch v := cached.(type) {
		case *domain.Store:
			return v, nil
		case negativeEntry:
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, d)
		}
	}

	s, err := r.tenants.GetByDomain(ctx, d)
	if err != nil {
		if store.IsNotFoundError(err) {
			r.cache.SetCached(key, negativeEntry{}, negativeNotFoundTTL)
			r.logger.Debug("domain not mapped", slog.String("domain", d))
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, d)
		}
		// Transient backend failures get a short negative window so a
		// storm of requests does not amplify the outage.
		r.cache.SetCached(key, negativeEntry{}, negativeErrorTTL)
		return nil, fmt.Errorf("resolving domain %s: %w", d, err)
	}

	if !s.Active {
		r.logger.Warn("domain resolves to inactive store",
			slog.String("domain", d),
			slog.String("store_id", s.StoreID))
		return nil, fmt.Errorf("%w: %s", ErrStoreInactive, s.StoreID)
	}

	r.cache.SetCached(key, s, cache.DataTTL(cache.KindDomain))
	r.logger.Debug("domain resolved",
		slog.String("domain", d),
		slog.String("store_id", s.StoreID))
	return s, nil
}
