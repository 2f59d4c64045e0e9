package domain

import (
	"errors"
	"time"
)

var (
	// ErrPageIDEmpty is returned when a page ID is empty.
	ErrPageIDEmpty = errors.New("page ID cannot be empty")

	// ErrPageStoreIDEmpty is returned when a page's store ID is empty.
	ErrPageStoreIDEmpty = errors.New("page store ID cannot be empty")

	// ErrPageTitleEmpty is returned when a page's title is empty.
	ErrPageTitleEmpty = errors.New("page title cannot be empty")
)

// Page is a merchant-authored content page (about, contact, policies).
type Page struct {
	ID              string    `json:"id"`
	StoreID         string    `json:"store_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content,omitempty"`
	Slug            string    `json:"slug,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	IsVisible       bool      `json:"is_visible"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Handle returns the URL handle for the page.
func (p *Page) Handle() string {
	if p.Slug != "" {
		return p.Slug
	}
	return Handleize(p.Title)
}

// URL returns the storefront path for the page.
func (p *Page) URL() string {
	return "/pages/" + p.Handle()
}

// Validate checks if the Page has valid data.
func (p *Page) Validate() error {
	if p.ID == "" {
		return ErrPageIDEmpty
	}
	if p.StoreID == "" {
		return ErrPageStoreIDEmpty
	}
	if p.Title == "" {
		return ErrPageTitleEmpty
	}
	return nil
}
