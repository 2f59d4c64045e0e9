package api

import (
	"errors"
	"net/http"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrCollectionNotFound),
		errors.Is(err, store.ErrPageNotFound),
		errors.Is(err, store.ErrMenuNotFound),
		errors.Is(err, store.ErrCartNotFound),
		errors.Is(err, store.ErrCheckoutNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrTokenExists),
		errors.Is(err, domain.ErrCheckoutNotOpen):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, fetcher.ErrEmptyCart):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrStoreNotFound):
		return "Store not found"

	case errors.Is(err, store.ErrProductNotFound):
		return "Product not found"

	case errors.Is(err, store.ErrCollectionNotFound):
		return "Collection not found"

	case errors.Is(err, store.ErrPageNotFound):
		return "Page not found"

	case errors.Is(err, store.ErrMenuNotFound):
		return "Navigation menu not found"

	case errors.Is(err, store.ErrCartNotFound):
		return "Cart not found"

	case errors.Is(err, store.ErrCheckoutNotFound):
		return "Checkout session not found"

	case errors.Is(err, store.ErrTokenExists):
		return "Checkout session already exists"

	case errors.Is(err, domain.ErrCheckoutNotOpen):
		return "Checkout session is no longer open"

	case errors.Is(err, fetcher.ErrEmptyCart):
		return "Cart is empty"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
