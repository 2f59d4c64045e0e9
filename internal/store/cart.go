package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/haldis/storefront-engine/internal/domain"
)

// CartStore defines the interface for cart persistence.
// A cart is addressed by (storeID, sessionID); the session ID comes from
// the storefront's client-side session cookie.
type CartStore interface {
	// GetBySession retrieves the cart for a store session.
	// Returns ErrCartNotFound if no cart exists for the session.
	GetBySession(ctx context.Context, storeID, sessionID string) (*domain.Cart, error)

	// Create persists a new cart. All lines must pass domain validation.
	Create(ctx context.Context, cart *domain.Cart) error

	// Update replaces the stored cart lines and aggregates.
	// Returns ErrCartNotFound if the cart does not exist.
	Update(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart and its lines.
	// Returns ErrCartNotFound if the cart does not exist.
	Delete(ctx context.Context, cartID uuid.UUID) error

	// WithTx returns a CartStore bound to the provided transaction.
	// Use with store.RunInTransaction when a cart mutation must be
	// atomic with other writes.
	WithTx(tx *sql.Tx) CartStore
}

// CheckoutStore defines the interface for checkout session persistence.
type CheckoutStore interface {
	// Create persists a new checkout session.
	// Returns ErrTokenExists if the generated token collides.
	Create(ctx context.Context, session *domain.CheckoutSession) error

	// GetByToken retrieves a session by its token, regardless of status
	// or expiry; lifecycle decisions belong to the fetcher layer.
	// Returns ErrCheckoutNotFound if no session matches.
	GetByToken(ctx context.Context, token string) (*domain.CheckoutSession, error)

	// Update replaces the stored session fields.
	// Returns ErrCheckoutNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.CheckoutSession) error

	// WithTx returns a CheckoutStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CheckoutStore
}
