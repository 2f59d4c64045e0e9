package domain

import (
	"errors"
	"time"
)

// Store-specific validation errors
var (
	// ErrStoreIDEmpty is returned when a store ID is empty.
	ErrStoreIDEmpty = errors.New("store ID cannot be empty")

	// ErrStoreNameEmpty is returned when a store's display name is empty.
	ErrStoreNameEmpty = errors.New("store name cannot be empty")

	// ErrStoreDomainEmpty is returned when a store has no resolvable domain.
	ErrStoreDomainEmpty = errors.New("store must have a custom or default domain")
)

// Store represents a tenant storefront resolved from an inbound domain.
// Stores are created by the onboarding flow outside this service; the
// rendering core only ever reads them.
type Store struct {
	StoreID      string    `json:"store_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CustomDomain string    `json:"custom_domain,omitempty"`
	Subdomain    string    `json:"subdomain,omitempty"`
	Currency     string    `json:"currency"`
	Locale       string    `json:"locale,omitempty"`
	Theme        string    `json:"theme"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	BannerURL    string    `json:"banner_url,omitempty"`
	FaviconURL   string    `json:"favicon_url,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Domain returns the canonical public domain for the store: the custom
// domain when configured, otherwise the platform subdomain.
func (s *Store) Domain() string {
	if s.CustomDomain != "" {
		return s.CustomDomain
	}
	return s.Subdomain
}

// URL returns the canonical https URL for the store.
func (s *Store) URL() string {
	return "https://" + s.Domain()
}

// Validate checks if the Store has valid data.
// Returns an error if any field fails validation.
func (s *Store) Validate() error {
	if s.StoreID == "" {
		return ErrStoreIDEmpty
	}
	if s.Name == "" {
		return ErrStoreNameEmpty
	}
	if s.CustomDomain == "" && s.Subdomain == "" {
		return ErrStoreDomainEmpty
	}
	return nil
}
