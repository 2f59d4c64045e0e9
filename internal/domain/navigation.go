package domain

import (
	"errors"
	"time"
)

var (
	// ErrMenuIDEmpty is returned when a navigation menu ID is empty.
	ErrMenuIDEmpty = errors.New("navigation menu ID cannot be empty")

	// ErrMenuStoreIDEmpty is returned when a menu's store ID is empty.
	ErrMenuStoreIDEmpty = errors.New("navigation menu store ID cannot be empty")

	// ErrMenuHandleEmpty is returned when a menu has no handle.
	ErrMenuHandleEmpty = errors.New("navigation menu handle cannot be empty")
)

// MenuItemType enumerates the link target kinds a menu item can point at.
type MenuItemType string

const (
	MenuItemInternal   MenuItemType = "internal"
	MenuItemExternal   MenuItemType = "external"
	MenuItemPage       MenuItemType = "page"
	MenuItemCollection MenuItemType = "collection"
	MenuItemProduct    MenuItemType = "product"
)

// MenuItem is a single entry in a navigation menu. Depending on Type,
// one of URL, PageHandle, CollectionHandle or ProductHandle identifies
// the target; the navigation fetcher resolves it to a concrete URL.
type MenuItem struct {
	Label            string       `json:"label"`
	Type             MenuItemType `json:"type"`
	URL              string       `json:"url,omitempty"`
	PageHandle       string       `json:"page_handle,omitempty"`
	CollectionHandle string       `json:"collection_handle,omitempty"`
	ProductHandle    string       `json:"product_handle,omitempty"`
	Target           string       `json:"target,omitempty"`
	IsVisible        bool         `json:"is_visible"`
	SortOrder        int          `json:"sort_order"`
}

// NavigationMenu is a named, ordered list of links for a store. The
// main menu and footer menu are distinguished by well-known handles
// ("main-menu", "footer-menu") or the IsMain flag.
type NavigationMenu struct {
	ID        string     `json:"id"`
	StoreID   string     `json:"store_id"`
	Name      string     `json:"name"`
	Handle    string     `json:"handle"`
	IsMain    bool       `json:"is_main"`
	IsActive  bool       `json:"is_active"`
	Items     []MenuItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks if the NavigationMenu has valid data.
func (m *NavigationMenu) Validate() error {
	if m.ID == "" {
		return ErrMenuIDEmpty
	}
	if m.StoreID == "" {
		return ErrMenuStoreIDEmpty
	}
	if m.Handle == "" {
		return ErrMenuHandleEmpty
	}
	return nil
}
