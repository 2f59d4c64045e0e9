package fetcher

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// ErrEmptyCart is returned when checkout starts on a cart with no lines.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// IsCheckoutNotFound reports whether err means the checkout session is
// absent, including sessions reported absent after lazy expiry.
func IsCheckoutNotFound(err error) bool {
	return errors.Is(err, store.ErrCheckoutNotFound)
}

// CheckoutFetcher owns the checkout session lifecycle:
// open -> completed | cancelled | expired. Expiry is lazy; an open
// session found past its deadline is flipped to expired on read, so no
// background sweeper is needed.
type CheckoutFetcher struct {
	checkouts store.CheckoutStore
	carts     *CartFetcher
	ttl       time.Duration
	logger    *slog.Logger

	// now is the clock, injectable for expiry tests.
	now func() time.Time
}

// NewCheckoutFetcher creates a checkout fetcher with the given session
// TTL. Panics if any dependency is nil or ttl is not positive, as this
// indicates a programming error in the application setup.
func NewCheckoutFetcher(checkouts store.CheckoutStore, carts *CartFetcher, ttl time.Duration, logger *slog.Logger) *CheckoutFetcher {
	if checkouts == nil {
		panic("checkout store cannot be nil")
	}
	if carts == nil {
		panic("cart fetcher cannot be nil")
	}
	if ttl <= 0 {
		panic("checkout session ttl must be positive")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CheckoutFetcher{
		checkouts: checkouts,
		carts:     carts,
		ttl:       ttl,
		logger:    logger.With(slog.String("component", "checkout_fetcher")),
		now:       time.Now,
	}
}

// generateToken returns a URL-safe random session token.
func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating checkout token: %w", err)
	}
	return "chk_" + hex.EncodeToString(buf), nil
}

// StartCheckout snapshots the session's cart into a new open checkout
// session keyed by a generated token.
func (f *CheckoutFetcher) StartCheckout(ctx context.Context, storeID, sessionID, currency string) (*domain.CheckoutSession, error) {
	cart, err := f.carts.GetCart(ctx, storeID, sessionID, currency)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("starting checkout for store %s: %w", storeID, ErrEmptyCart)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	snapshot := make([]domain.SnapshotItem, len(cart.Items))
	for i, it := range cart.Items {
		snapshot[i] = domain.SnapshotItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LinePrice: it.LinePrice,
		}
	}

	// Shipping and tax are not computed at session start; downstream
	// payment integration fills them in before capture.
	subtotal := cart.TotalAmount
	shipping := decimal.Zero
	tax := decimal.Zero

	now := f.now().UTC()
	session := &domain.CheckoutSession{
		ID:            uuid.New(),
		Token:         token,
		StoreID:       storeID,
		CartID:        cart.ID,
		SessionID:     sessionID,
		Status:        domain.CheckoutStatusOpen,
		ItemsSnapshot: snapshot,
		ItemCount:     cart.ItemCount,
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		TaxAmount:     tax,
		TotalAmount:   subtotal.Add(shipping).Add(tax),
		Currency:      cart.Currency,
		ExpiresAt:     now.Add(f.ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := f.checkouts.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	f.logger.Info("checkout session started",
		slog.String("store_id", storeID),
		slog.String("token", token),
		slog.Int("item_count", session.ItemCount))
	return session, nil
}

// GetSessionByToken returns the session for the token. An open session
// found past its deadline is transitioned to expired and reported as
// absent.
func (f *CheckoutFetcher) GetSessionByToken(ctx context.Context, token string) (*domain.CheckoutSession, error) {
	session, err := f.checkouts.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetching checkout session: %w", err)
	}

	if session.Status == domain.CheckoutStatusOpen && session.Expired(f.now()) {
		if terr := session.TransitionTo(domain.CheckoutStatusExpired); terr == nil {
			if uerr := f.checkouts.Update(ctx, session); uerr != nil {
				f.logger.Warn("failed to persist lazy checkout expiry",
					slog.String("token", token),
					slog.String("error", uerr.Error()))
			}
		}
		return nil, fmt.Errorf("fetching checkout session: %w", store.ErrCheckoutNotFound)
	}
	return session, nil
}

// UpdateCustomerInfoRequest carries the buyer detail mutation for an
// open session.
type UpdateCustomerInfoRequest struct {
	Token           string
	CustomerInfo    *domain.CustomerInfo
	ShippingAddress *domain.Address
	BillingAddress  *domain.Address
	Notes           string
}

// UpdateCustomerInfo updates buyer details on an open session.
func (f *CheckoutFetcher) UpdateCustomerInfo(ctx context.Context, req UpdateCustomerInfoRequest) (*domain.CheckoutSession, error) {
	session, err := f.GetSessionByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.CheckoutStatusOpen {
		return nil, fmt.Errorf("updating checkout %s: %w", req.Token, domain.ErrCheckoutNotOpen)
	}

	if req.CustomerInfo != nil {
		session.CustomerInfo = req.CustomerInfo
	}
	if req.ShippingAddress != nil {
		session.ShippingAddress = req.ShippingAddress
	}
	if req.BillingAddress != nil {
		session.BillingAddress = req.BillingAddress
	}
	if req.Notes != "" {
		session.Notes = req.Notes
	}
	session.UpdatedAt = f.now().UTC()

	if err := f.checkouts.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("updating checkout %s: %w", req.Token, err)
	}
	return session, nil
}

// CompleteCheckout moves an open session to completed. Sessions in any
// other state are rejected, which makes double-completion impossible.
func (f *CheckoutFetcher) CompleteCheckout(ctx context.Context, token string) (*domain.CheckoutSession, error) {
	return f.transition(ctx, token, domain.CheckoutStatusCompleted)
}

// CancelCheckout moves an open session to cancelled.
func (f *CheckoutFetcher) CancelCheckout(ctx context.Context, token string) (*domain.CheckoutSession, error) {
	return f.transition(ctx, token, domain.CheckoutStatusCancelled)
}

func (f *CheckoutFetcher) transition(ctx context.Context, token string, status domain.CheckoutStatus) (*domain.CheckoutSession, error) {
	session, err := f.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := session.TransitionTo(status); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", token, err)
	}
	if err := f.checkouts.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("persisting checkout %s transition: %w", token, err)
	}
	f.logger.Info("checkout session transitioned",
		slog.String("token", token),
		slog.String("status", string(status)))
	return session, nil
}

// CheckoutContext projects a session into the shape templates consume.
func CheckoutContext(s *domain.CheckoutSession) map[string]any {
	if s == nil {
		return nil
	}
	items := make([]any, len(s.ItemsSnapshot))
	for i, it := range s.ItemsSnapshot {
		items[i] = map[string]any{
			"product_id": it.ProductID,
			"variant_id": it.VariantID,
			"title":      it.Title,
			"quantity":   int64(it.Quantity),
			"price":      it.UnitPrice,
			"line_price": it.LinePrice,
		}
	}
	return map[string]any{
		"token":       s.Token,
		"status":      string(s.Status),
		"items":       items,
		"item_count":  int64(s.ItemCount),
		"subtotal":    s.Subtotal,
		"shipping":    s.ShippingCost,
		"tax":         s.TaxAmount,
		"total_price": s.TotalAmount,
		"currency":    s.Currency,
	}
}
