package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product-specific validation errors
var (
	// ErrProductIDEmpty is returned when a product ID is empty.
	ErrProductIDEmpty = errors.New("product ID cannot be empty")

	// ErrProductStoreIDEmpty is returned when a product's store ID is empty.
	ErrProductStoreIDEmpty = errors.New("product store ID cannot be empty")

	// ErrProductNameEmpty is returned when a product's name is empty.
	ErrProductNameEmpty = errors.New("product name cannot be empty")

	// ErrProductPriceNegative is returned when a product's price is negative.
	ErrProductPriceNegative = errors.New("product price cannot be negative")
)

// ProductStatus enumerates the publication states of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// ProductImage is a single product image reference.
type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ProductVariant is a purchasable variation of a product (size, color).
type ProductVariant struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	SKU       string          `json:"sku,omitempty"`
	Available bool            `json:"available"`
}

// Product represents a sellable item scoped to a store.
type Product struct {
	ID             string           `json:"id"`
	StoreID        string           `json:"store_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Slug           string           `json:"slug,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Images         []ProductImage   `json:"images,omitempty"`
	Variants       []ProductVariant `json:"variants,omitempty"`
	Category       string           `json:"category,omitempty"`
	Quantity       int              `json:"quantity"`
	Status         ProductStatus    `json:"status"`
	Featured       bool             `json:"featured"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Handle returns the URL handle for the product: the stored slug when
// present, otherwise a normalized form of the product name.
func (p *Product) Handle() string {
	if p.Slug != "" {
		return p.Slug
	}
	return Handleize(p.Name)
}

// URL returns the storefront path for the product.
func (p *Product) URL() string {
	return "/products/" + p.Handle()
}

// Validate checks if the Product has valid data.
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrProductIDEmpty
	}
	if p.StoreID == "" {
		return ErrProductStoreIDEmpty
	}
	if p.Name == "" {
		return ErrProductNameEmpty
	}
	if p.Price.IsNegative() {
		return ErrProductPriceNegative
	}
	return nil
}

// Handleize normalizes a title into a URL handle: lowercase, spaces and
// runs of non-alphanumeric characters collapsed to single hyphens.
func Handleize(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
