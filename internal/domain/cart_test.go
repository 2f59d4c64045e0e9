package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewCart(t *testing.T) {
	t.Parallel()

	cart := NewCart("store-1", "sess-1", "USD", 30*24*time.Hour)

	if cart.StoreID != "store-1" {
		t.Errorf("Expected store ID store-1, got %s", cart.StoreID)
	}
	if cart.SessionID != "sess-1" {
		t.Errorf("Expected session ID sess-1, got %s", cart.SessionID)
	}
	if len(cart.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(cart.Items))
	}
	if !cart.TotalAmount.IsZero() {
		t.Errorf("Expected zero total, got %s", cart.TotalAmount)
	}
	if cart.ExpiresAt.Before(cart.CreatedAt.Add(29 * 24 * time.Hour)) {
		t.Error("Expected expiry roughly 30 days out")
	}
	if err := cart.Validate(); err != nil {
		t.Fatalf("Expected valid cart, got %v", err)
	}
}

func TestCartExpired(t *testing.T) {
	t.Parallel()

	cart := NewCart("store-1", "sess-1", "USD", time.Hour)

	if cart.Expired(time.Now().UTC()) {
		t.Error("Fresh cart should not be expired")
	}
	if !cart.Expired(time.Now().UTC().Add(2 * time.Hour)) {
		t.Error("Cart past its horizon should be expired")
	}
}

func TestCartItemMatches(t *testing.T) {
	t.Parallel()

	item := CartItem{
		ProductID:  "p1",
		VariantID:  "v1",
		Properties: map[string]string{"engraving": "hello"},
	}

	if !item.Matches("p1", "v1", map[string]string{"engraving": "hello"}) {
		t.Error("Expected identical line to match")
	}
	if item.Matches("p1", "v2", map[string]string{"engraving": "hello"}) {
		t.Error("Different variant must not match")
	}
	if item.Matches("p1", "v1", map[string]string{"engraving": "bye"}) {
		t.Error("Different property value must not match")
	}
	if item.Matches("p1", "v1", nil) {
		t.Error("Missing properties must not match")
	}
}

func TestCartRecalculate(t *testing.T) {
	t.Parallel()

	cart := NewCart("store-1", "sess-1", "USD", time.Hour)
	cart.Items = append(cart.Items,
		CartItem{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		CartItem{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("4.50")},
	)

	cart.Recalculate()

	if cart.ItemCount != 3 {
		t.Errorf("Expected item count 3, got %d", cart.ItemCount)
	}
	if !cart.TotalAmount.Equal(decimal.RequireFromString("24.50")) {
		t.Errorf("Expected total 24.50, got %s", cart.TotalAmount)
	}
	if !cart.Items[0].LinePrice.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected line price 20, got %s", cart.Items[0].LinePrice)
	}
}
