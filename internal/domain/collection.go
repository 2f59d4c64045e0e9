package domain

import (
	"errors"
	"time"
)

var (
	// ErrCollectionIDEmpty is returned when a collection ID is empty.
	ErrCollectionIDEmpty = errors.New("collection ID cannot be empty")

	// ErrCollectionStoreIDEmpty is returned when a collection's store ID is empty.
	ErrCollectionStoreIDEmpty = errors.New("collection store ID cannot be empty")

	// ErrCollectionTitleEmpty is returned when a collection's title is empty.
	ErrCollectionTitleEmpty = errors.New("collection title cannot be empty")
)

// Collection groups products for merchandising. Products are attached by
// ID; the fetcher layer resolves them when a full collection is needed.
type Collection struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ProductIDs  []string  `json:"product_ids,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Handle returns the URL handle for the collection: the stored slug when
// present, otherwise a normalized form of the title.
func (c *Collection) Handle() string {
	if c.Slug != "" {
		return c.Slug
	}
	return Handleize(c.Title)
}

// URL returns the storefront path for the collection.
func (c *Collection) URL() string {
	return "/collections/" + c.Handle()
}

// Validate checks if the Collection has valid data.
func (c *Collection) Validate() error {
	if c.ID == "" {
		return ErrCollectionIDEmpty
	}
	if c.StoreID == "" {
		return ErrCollectionStoreIDEmpty
	}
	if c.Title == "" {
		return ErrCollectionTitleEmpty
	}
	return nil
}
