package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart-specific validation errors
var (
	// ErrCartIDEmpty is returned when a cart ID is empty or nil.
	ErrCartIDEmpty = errors.New("cart ID cannot be empty")

	// ErrCartStoreIDEmpty is returned when a cart's store ID is empty.
	ErrCartStoreIDEmpty = errors.New("cart store ID cannot be empty")

	// ErrCartItemQuantityInvalid is returned when a line is created with a
	// non-positive quantity.
	ErrCartItemQuantityInvalid = errors.New("cart item quantity must be positive")
)

// CartItem is a single line in a cart. Properties carries buyer-selected
// customizations (engraving text, gift wrap); two lines with the same
// product and variant but different properties stay distinct.
type CartItem struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  string            `json:"product_id"`
	VariantID  string            `json:"variant_id,omitempty"`
	Title      string            `json:"title"`
	Quantity   int               `json:"quantity"`
	UnitPrice  decimal.Decimal   `json:"unit_price"`
	LinePrice  decimal.Decimal   `json:"line_price"`
	Properties map[string]string `json:"properties,omitempty"`
	ImageURL   string            `json:"image_url,omitempty"`
}

// Matches reports whether another line refers to the same purchasable:
// same product, same variant, and deep-equal properties.
func (i *CartItem) Matches(productID, variantID string, properties map[string]string) bool {
	if i.ProductID != productID || i.VariantID != variantID {
		return false
	}
	if len(i.Properties) != len(properties) {
		return false
	}
	for k, v := range properties {
		if i.Properties[k] != v {
			return false
		}
	}
	return true
}

// Cart is a client-session-scoped basket. It is persisted keyed by
// (storeID, sessionID) and silently replaced once ExpiresAt passes.
type Cart struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     string          `json:"store_id"`
	SessionID   string          `json:"session_id"`
	Items       []CartItem      `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// NewCart creates an empty cart for the given store and session with the
// provided expiry horizon.
func NewCart(storeID, sessionID, currency string, expiry time.Duration) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:          uuid.New(),
		StoreID:     storeID,
		SessionID:   sessionID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(expiry),
	}
}

// Expired reports whether the cart has passed its expiry horizon.
func (c *Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// FindLine returns the index of the line matching the given product,
// variant and properties, or -1 when no line matches.
func (c *Cart) FindLine(productID, variantID string, properties map[string]string) int {
	for i := range c.Items {
		if c.Items[i].Matches(productID, variantID, properties) {
			return i
		}
	}
	return -1
}

// Recalculate recomputes every line price and the cart aggregates.
// Call it after any line mutation.
func (c *Cart) Recalculate() {
	count := 0
	total := decimal.Zero
	for i := range c.Items {
		line := &c.Items[i]
		line.LinePrice = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		count += line.Quantity
		total = total.Add(line.LinePrice)
	}
	c.ItemCount = count
	c.TotalAmount = total
	c.UpdatedAt = time.Now().UTC()
}

// Validate checks if the Cart has valid data.
func (c *Cart) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCartIDEmpty
	}
	if c.StoreID == "" {
		return ErrCartStoreIDEmpty
	}
	for i := range c.Items {
		if c.Items[i].Quantity <= 0 {
			return ErrCartItemQuantityInvalid
		}
	}
	return nil
}
