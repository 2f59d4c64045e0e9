package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrCheckoutTokenEmpty is returned when a checkout session has no token.
	ErrCheckoutTokenEmpty = errors.New("checkout session token cannot be empty")

	// ErrCheckoutStoreIDEmpty is returned when a session's store ID is empty.
	ErrCheckoutStoreIDEmpty = errors.New("checkout session store ID cannot be empty")

	// ErrCheckoutNotOpen is returned when a state transition or update is
	// attempted on a session that is no longer open.
	ErrCheckoutNotOpen = errors.New("checkout session is not open")
)

// CheckoutStatus enumerates the states of a checkout session.
// The only legal transitions are open -> completed, open -> cancelled
// and open -> expired; the terminal states never transition again.
type CheckoutStatus string

const (
	CheckoutStatusOpen      CheckoutStatus = "open"
	CheckoutStatusCompleted CheckoutStatus = "completed"
	CheckoutStatusCancelled CheckoutStatus = "cancelled"
	CheckoutStatusExpired   CheckoutStatus = "expired"
)

// SnapshotItem is a frozen copy of a cart line taken when checkout starts,
// immune to later cart mutations or price changes.
type SnapshotItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LinePrice decimal.Decimal `json:"line_price"`
}

// CustomerInfo carries the buyer contact fields collected during checkout.
type CustomerInfo struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Address is a shipping or billing address.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CheckoutSession is a server-persisted snapshot of a cart at checkout
// start, keyed by a generated token and advanced through a small status
// state machine until a terminal state or expiry.
type CheckoutSession struct {
	ID              uuid.UUID       `json:"id"`
	Token           string          `json:"token"`
	StoreID         string          `json:"store_id"`
	CartID          uuid.UUID       `json:"cart_id"`
	SessionID       string          `json:"session_id,omitempty"`
	Status          CheckoutStatus  `json:"status"`
	ItemsSnapshot   []SnapshotItem  `json:"items_snapshot"`
	ItemCount       int             `json:"item_count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	CustomerInfo    *CustomerInfo   `json:"customer_info,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	BillingAddress  *Address        `json:"billing_address,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ExpiresAt       time.Time       `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Expired reports whether the session has passed its expiry deadline.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TransitionTo advances the session status. Only open sessions may
// transition; attempting to move a terminal session returns
// ErrCheckoutNotOpen wrapped with the offending states.
func (s *CheckoutSession) TransitionTo(status CheckoutStatus) error {
	if s.Status != CheckoutStatusOpen {
		return fmt.Errorf("%w: cannot transition %s -> %s", ErrCheckoutNotOpen, s.Status, status)
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks if the CheckoutSession has valid data.
func (s *CheckoutSession) Validate() error {
	if s.Token == "" {
		return ErrCheckoutTokenEmpty
	}
	if s.StoreID == "" {
		return ErrCheckoutStoreIDEmpty
	}
	return nil
}
