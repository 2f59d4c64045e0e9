package renderer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/liquid"
	"github.com/haldis/storefront-engine/internal/resolver"
	"github.com/haldis/storefront-engine/internal/store"
	"github.com/haldis/storefront-engine/internal/template"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTenantStore struct {
	stores []*domain.Store
}

func (s *fakeTenantStore) GetByID(_ context.Context, storeID string) (*domain.Store, error) {
	for _, st := range s.stores {
		if st.StoreID == storeID {
			return st, nil
		}
	}
	return nil, store.ErrStoreNotFound
}

func (s *fakeTenantStore) GetByDomain(_ context.Context, d string) (*domain.Store, error) {
	for _, st := range s.stores {
		if st.CustomDomain == d || st.Subdomain == d {
			return st, nil
		}
	}
	return nil, store.ErrStoreNotFound
}

type fakeProductStore struct {
	products []*domain.Product

	// listCalls counts List invocations, for asserting that a failed
	// render never started loading data.
	listCalls atomic.Int32
}

func (s *fakeProductStore) GetByID(_ context.Context, storeID, productID string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.StoreID == storeID && p.ID == productID {
			return p, nil
		}
	}
	return nil, store.ErrProductNotFound
}

func (s *fakeProductStore) GetBySlug(_ context.Context, storeID, slug string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.StoreID == storeID && p.Handle() == slug {
			return p, nil
		}
	}
	return nil, store.ErrProductNotFound
}

func (s *fakeProductStore) List(_ context.Context, storeID string, filters store.ProductFilters) ([]*domain.Product, error) {
	s.listCalls.Add(1)
	var out []*domain.Product
	for _, p := range s.products {
		if p.StoreID != storeID {
			continue
		}
		if filters.Featured && !p.Featured {
			continue
		}
		out = append(out, p)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

type fakeCollectionStore struct {
	collections []*domain.Collection
}

func (s *fakeCollectionStore) GetByID(_ context.Context, storeID, collectionID string) (*domain.Collection, error) {
	for _, c := range s.collections {
		if c.StoreID == storeID && c.ID == collectionID {
			return c, nil
		}
	}
	return nil, store.ErrCollectionNotFound
}

func (s *fakeCollectionStore) List(_ context.Context, storeID string) ([]*domain.Collection, error) {
	var out []*domain.Collection
	for _, c := range s.collections {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePageStore struct {
	pages []*domain.Page
}

func (s *fakePageStore) GetBySlug(_ context.Context, storeID, slug string) (*domain.Page, error) {
	for _, p := range s.pages {
		if p.StoreID == storeID && p.Handle() == slug {
			return p, nil
		}
	}
	return nil, store.ErrPageNotFound
}

func (s *fakePageStore) List(_ context.Context, storeID string) ([]*domain.Page, error) {
	var out []*domain.Page
	for _, p := range s.pages {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNavigationStore struct {
	menus []*domain.NavigationMenu
}

func (s *fakeNavigationStore) ListByStore(_ context.Context, storeID string) ([]*domain.NavigationMenu, error) {
	var out []*domain.NavigationMenu
	for _, m := range s.menus {
		if m.StoreID == storeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeNavigationStore) GetByHandle(_ context.Context, storeID, handle string) (*domain.NavigationMenu, error) {
	for _, m := range s.menus {
		if m.StoreID == storeID && m.Handle == handle {
			return m, nil
		}
	}
	return nil, store.ErrMenuNotFound
}

type rendererCartStore struct {
	carts map[string]*domain.Cart
}

func newRendererCartStore() *rendererCartStore {
	return &rendererCartStore{carts: make(map[string]*domain.Cart)}
}

func cartKey(storeID, sessionID string) string { return storeID + "/" + sessionID }

func (s *rendererCartStore) GetBySession(_ context.Context, storeID, sessionID string) (*domain.Cart, error) {
	if c, ok := s.carts[cartKey(storeID, sessionID)]; ok {
		return c, nil
	}
	return nil, store.ErrCartNotFound
}

func (s *rendererCartStore) Create(_ context.Context, cart *domain.Cart) error {
	s.carts[cartKey(cart.StoreID, cart.SessionID)] = cart
	return nil
}

func (s *rendererCartStore) Update(_ context.Context, cart *domain.Cart) error {
	s.carts[cartKey(cart.StoreID, cart.SessionID)] = cart
	return nil
}

func (s *rendererCartStore) Delete(_ context.Context, cartID uuid.UUID) error {
	for k, c := range s.carts {
		if c.ID == cartID {
			delete(s.carts, k)
			return nil
		}
	}
	return store.ErrCartNotFound
}

func (s *rendererCartStore) WithTx(_ *sql.Tx) store.CartStore { return s }

type rendererCheckoutStore struct {
	sessions map[string]*domain.CheckoutSession
}

func newRendererCheckoutStore() *rendererCheckoutStore {
	return &rendererCheckoutStore{sessions: make(map[string]*domain.CheckoutSession)}
}

func (s *rendererCheckoutStore) Create(_ context.Context, session *domain.CheckoutSession) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *rendererCheckoutStore) GetByToken(_ context.Context, token string) (*domain.CheckoutSession, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, store.ErrCheckoutNotFound
}

func (s *rendererCheckoutStore) Update(_ context.Context, session *domain.CheckoutSession) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *rendererCheckoutStore) WithTx(_ *sql.Tx) store.CheckoutStore { return s }

// countingObjectStore counts template fetches so tests can tell a cache
// hit from a re-render.
type countingObjectStore struct {
	inner *template.MemoryObjectStore
	gets  atomic.Int32
}

func (s *countingObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets.Add(1)
	return s.inner.Get(ctx, key)
}

func (s *countingObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// harness wires a full render pipeline over in-memory backends.
type harness struct {
	renderer  *PageRenderer
	contexts  *ContextBuilder
	sections  *SectionRenderer
	cache     *cache.Manager
	carts     *fetcher.CartFetcher
	checkouts *fetcher.CheckoutFetcher

	tenants     *fakeTenantStore
	products    *fakeProductStore
	collections *fakeCollectionStore
	pages       *fakePageStore
	navigation  *fakeNavigationStore
	objects     *countingObjectStore
}

func newHarness() *harness {
	logger := testLogger()
	cacheManager := cache.NewManager()
	engine := liquid.NewEngine()

	h := &harness{
		cache:       cacheManager,
		tenants:     &fakeTenantStore{},
		products:    &fakeProductStore{},
		collections: &fakeCollectionStore{},
		pages:       &fakePageStore{},
		navigation:  &fakeNavigationStore{},
		objects:     &countingObjectStore{inner: template.NewMemoryObjectStore()},
	}

	loader := template.NewLoader(h.objects, cacheManager, logger)
	res := resolver.New(h.tenants, cacheManager, logger)

	productFetcher := fetcher.NewProductFetcher(h.products, cacheManager, logger)
	h.carts = fetcher.NewCartFetcher(newRendererCartStore(), h.products, cacheManager, 24*time.Hour, logger)
	h.checkouts = fetcher.NewCheckoutFetcher(newRendererCheckoutStore(), h.carts, time.Hour, logger)
	h.contexts = NewContextBuilder(
		productFetcher,
		fetcher.NewCollectionFetcher(h.collections, h.products, cacheManager, logger),
		fetcher.NewPageFetcher(h.pages, cacheManager, logger),
		fetcher.NewNavigationFetcher(h.navigation, h.pages, cacheManager, logger),
		h.carts,
		h.checkouts,
		logger,
	)
	h.sections = NewSectionRenderer(loader, engine, logger)
	h.renderer = NewPageRenderer(
		res,
		loader,
		h.contexts,
		h.sections,
		NewErrorRenderer(engine, logger),
		engine,
		cacheManager,
		false,
		logger,
	)
	return h
}

func (h *harness) addStore(s *domain.Store) {
	h.tenants.stores = append(h.tenants.stores, s)
}

func (h *harness) putTemplate(storeID, path, content string) {
	h.objects.inner.PutString("templates/"+storeID+"/"+path, content)
}

func activeStore(storeID, subdomain string) *domain.Store {
	return &domain.Store{
		StoreID:   storeID,
		Name:      "Trailhead Supply",
		Subdomain: subdomain,
		Currency:  "USD",
		Theme:     "aurora",
		Active:    true,
	}
}

func testProduct(storeID string) *domain.Product {
	return &domain.Product{
		ID:       "prod_1",
		StoreID:  storeID,
		Name:     "Blue Shirt",
		Slug:     "blue-shirt",
		Price:    decimal.NewFromInt(25),
		Quantity: 10,
		Status:   domain.ProductStatusActive,
		Featured: true,
	}
}
