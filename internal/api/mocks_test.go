package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/events"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/liquid"
	"github.com/haldis/storefront-engine/internal/renderer"
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

type fakeCollectionStore struct{}

func (s *fakeCollectionStore) GetByID(_ context.Context, _, _ string) (*domain.Collection, error) {
	return nil, store.ErrCollectionNotFound
}

func (s *fakeCollectionStore) List(_ context.Context, _ string) ([]*domain.Collection, error) {
	return nil, nil
}

type fakePageStore struct{}

func (s *fakePageStore) GetBySlug(_ context.Context, _, _ string) (*domain.Page, error) {
	return nil, store.ErrPageNotFound
}

func (s *fakePageStore) List(_ context.Context, _ string) ([]*domain.Page, error) {
	return nil, nil
}

type fakeNavigationStore struct{}

func (s *fakeNavigationStore) ListByStore(_ context.Context, _ string) ([]*domain.NavigationMenu, error) {
	return nil, nil
}

func (s *fakeNavigationStore) GetByHandle(_ context.Context, _, _ string) (*domain.NavigationMenu, error) {
	return nil, store.ErrMenuNotFound
}

type fakeCartStore struct {
	carts map[string]*domain.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[string]*domain.Cart)}
}

func cartKey(storeID, sessionID string) string { return storeID + "/" + sessionID }

func (s *fakeCartStore) GetBySession(_ context.Context, storeID, sessionID string) (*domain.Cart, error) {
	if c, ok := s.carts[cartKey(storeID, sessionID)]; ok {
		return c, nil
	}
	return nil, store.ErrCartNotFound
}

func (s *fakeCartStore) Create(_ context.Context, cart *domain.Cart) error {
	s.carts[cartKey(cart.StoreID, cart.SessionID)] = cart
	return nil
}

func (s *fakeCartStore) Update(_ context.Context, cart *domain.Cart) error {
	s.carts[cartKey(cart.StoreID, cart.SessionID)] = cart
	return nil
}

func (s *fakeCartStore) Delete(_ context.Context, cartID uuid.UUID) error {
	for k, c := range s.carts {
		if c.ID == cartID {
			delete(s.carts, k)
			return nil
		}
	}
	return store.ErrCartNotFound
}

func (s *fakeCartStore) WithTx(_ *sql.Tx) store.CartStore { return s }

type fakeCheckoutStore struct {
	sessions map[string]*domain.CheckoutSession
}

func newFakeCheckoutStore() *fakeCheckoutStore {
	return &fakeCheckoutStore{sessions: make(map[string]*domain.CheckoutSession)}
}

func (s *fakeCheckoutStore) Create(_ context.Context, session *domain.CheckoutSession) error {
	if _, ok := s.sessions[session.Token]; ok {
		return store.ErrTokenExists
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *fakeCheckoutStore) GetByToken(_ context.Context, token string) (*domain.CheckoutSession, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, store.ErrCheckoutNotFound
}

func (s *fakeCheckoutStore) Update(_ context.Context, session *domain.CheckoutSession) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *fakeCheckoutStore) WithTx(_ *sql.Tx) store.CheckoutStore { return s }

// apiHarness wires the full route tree over in-memory backends.
type apiHarness struct {
	router  chi.Router
	cache   *cache.Manager
	tenants *fakeTenantStore
	prods   *fakeProductStore
	objects *template.MemoryObjectStore
}

func newAPIHarness() *apiHarness {
	logger := testLogger()
	cacheManager := cache.NewManager()
	engine := liquid.NewEngine()

	h := &apiHarness{
		cache:   cacheManager,
		tenants: &fakeTenantStore{},
		prods:   &fakeProductStore{},
		objects: template.NewMemoryObjectStore(),
	}

	loader := template.NewLoader(h.objects, cacheManager, logger)
	res := resolver.New(h.tenants, cacheManager, logger)

	productFetcher := fetcher.NewProductFetcher(h.prods, cacheManager, logger)
	cartFetcher := fetcher.NewCartFetcher(newFakeCartStore(), h.prods, cacheManager, 24*time.Hour, logger)
	checkoutFetcher := fetcher.NewCheckoutFetcher(newFakeCheckoutStore(), cartFetcher, time.Hour, logger)

	contexts := renderer.NewContextBuilder(
		productFetcher,
		fetcher.NewCollectionFetcher(&fakeCollectionStore{}, h.prods, cacheManager, logger),
		fetcher.NewPageFetcher(&fakePageStore{}, cacheManager, logger),
		fetcher.NewNavigationFetcher(&fakeNavigationStore{}, &fakePageStore{}, cacheManager, logger),
		cartFetcher,
		checkoutFetcher,
		logger,
	)
	pageRenderer := renderer.NewPageRenderer(
		res,
		loader,
		contexts,
		renderer.NewSectionRenderer(loader, engine, logger),
		renderer.NewErrorRenderer(engine, logger),
		engine,
		cacheManager,
		false,
		logger,
	)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewInvalidationHandler(cache.NewInvalidationService(cacheManager, logger), logger))

	h.router = NewRouter(RouterDeps{
		Storefront:   NewStorefrontHandler(pageRenderer, logger),
		Cart:         NewCartHandler(res, cartFetcher, logger),
		Checkout:     NewCheckoutHandler(res, checkoutFetcher, logger),
		Invalidation: NewInvalidationHandler(emitter, logger),
		Logger:       logger,
	})
	return h
}

func (h *apiHarness) addStore(s *domain.Store) {
	h.tenants.stores = append(h.tenants.stores, s)
}

func (h *apiHarness) putTemplate(storeID, path, content string) {
	h.objects.PutString("templates/"+storeID+"/"+path, content)
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

// doJSON performs a request against the harness router, carrying over
// session cookies between calls and decoding the JSON response into out
// when out is non-nil.
func (h *apiHarness) doJSON(t *testing.T, method, host, target string, body string, cookies []*http.Cookie, out any) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Host = host
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	merged := cookies
	for _, c := range rec.Result().Cookies() {
		merged = append(merged, c)
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec, merged
}
