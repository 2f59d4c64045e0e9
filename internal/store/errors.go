package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrStoreNotFound, ErrProductNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a checkout session with the same token).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// Entity-specific "not found" errors

	// ErrStoreNotFound indicates that the requested tenant store does not exist.
	ErrStoreNotFound = fmt.Errorf("%w: store", ErrNotFound)

	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = fmt.Errorf("%w: product", ErrNotFound)

	// ErrCollectionNotFound indicates that the requested collection does not exist.
	ErrCollectionNotFound = fmt.Errorf("%w: collection", ErrNotFound)

	// ErrPageNotFound indicates that the requested page does not exist.
	ErrPageNotFound = fmt.Errorf("%w: page", ErrNotFound)

	// ErrMenuNotFound indicates that the requested navigation menu does not exist.
	ErrMenuNotFound = fmt.Errorf("%w: navigation menu", ErrNotFound)

	// ErrCartNotFound indicates that the requested cart does not exist.
	ErrCartNotFound = fmt.Errorf("%w: cart", ErrNotFound)

	// ErrCheckoutNotFound indicates that the requested checkout session does not exist.
	ErrCheckoutNotFound = fmt.Errorf("%w: checkout session", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrTokenExists indicates that a checkout session with the given token
	// already exists.
	ErrTokenExists = fmt.Errorf("%w: checkout token", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "product", "cart")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // A human-readable description of the error
	Err       error  // The underlying error, if any
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Entity, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Entity, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given context.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
