package fetcher

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache() *cache.Manager {
	return cache.NewManager()
}

// mockProductStore mocks store.ProductStore.
type mockProductStore struct {
	mock.Mock
}

func (m *mockProductStore) GetByID(ctx context.Context, storeID, productID string) (*domain.Product, error) {
	args := m.Called(ctx, storeID, productID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductStore) GetBySlug(ctx context.Context, storeID, slug string) (*domain.Product, error) {
	args := m.Called(ctx, storeID, slug)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductStore) List(ctx context.Context, storeID string, filters store.ProductFilters) ([]*domain.Product, error) {
	args := m.Called(ctx, storeID, filters)
	if ps := args.Get(0); ps != nil {
		return ps.([]*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockCollectionStore mocks store.CollectionStore.
type mockCollectionStore struct {
	mock.Mock
}

func (m *mockCollectionStore) GetByID(ctx context.Context, storeID, collectionID string) (*domain.Collection, error) {
	args := m.Called(ctx, storeID, collectionID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Collection), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCollectionStore) List(ctx context.Context, storeID string) ([]*domain.Collection, error) {
	args := m.Called(ctx, storeID)
	if cs := args.Get(0); cs != nil {
		return cs.([]*domain.Collection), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockPageStore mocks store.PageStore.
type mockPageStore struct {
	mock.Mock
}

func (m *mockPageStore) GetBySlug(ctx context.Context, storeID, slug string) (*domain.Page, error) {
	args := m.Called(ctx, storeID, slug)
	if p := args.Get(0); p != nil {
		return p.(*domain.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPageStore) List(ctx context.Context, storeID string) ([]*domain.Page, error) {
	args := m.Called(ctx, storeID)
	if ps := args.Get(0); ps != nil {
		return ps.([]*domain.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockNavigationStore mocks store.NavigationStore.
type mockNavigationStore struct {
	mock.Mock
}

func (m *mockNavigationStore) ListByStore(ctx context.Context, storeID string) ([]*domain.NavigationMenu, error) {
	args := m.Called(ctx, storeID)
	if ms := args.Get(0); ms != nil {
		return ms.([]*domain.NavigationMenu), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNavigationStore) GetByHandle(ctx context.Context, storeID, handle string) (*domain.NavigationMenu, error) {
	args := m.Called(ctx, storeID, handle)
	if menu := args.Get(0); menu != nil {
		return menu.(*domain.NavigationMenu), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeCartStore is an in-memory store.CartStore; cart tests exercise
// real persistence semantics rather than per-call expectations.
type fakeCartStore struct {
	carts map[string]*domain.Cart // keyed by storeID + "/" + sessionID
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
	key := cartKey(cart.StoreID, cart.SessionID)
	if _, ok := s.carts[key]; !ok {
		return store.ErrCartNotFound
	}
	s.carts[key] = cart
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

func (s *fakeCartStore) WithTx(*sql.Tx) store.CartStore { return s }

// fakeCheckoutStore is an in-memory store.CheckoutStore.
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
	if _, ok := s.sessions[session.Token]; !ok {
		return store.ErrCheckoutNotFound
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *fakeCheckoutStore) WithTx(*sql.Tx) store.CheckoutStore { return s }
