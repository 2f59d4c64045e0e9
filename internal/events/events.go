package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/haldis/storefront-engine/internal/cache"
)

// StoreChangeEvent represents a mutation in a store's catalog, content,
// navigation, templates or domain mapping. It carries the information
// the cache invalidation service needs without direct dependencies on
// the backend data layer.
type StoreChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// ChangeType indicates what kind of mutation occurred
	ChangeType cache.ChangeType `json:"change_type"`

	// StoreID scopes the event to a single tenant
	StoreID string `json:"store_id"`

	// EntityID identifies the mutated entity, when applicable. For
	// domain events this is the domain name itself.
	EntityID string `json:"entity_id,omitempty"`

	// Path carries the template path for template events
	Path string `json:"path,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewStoreChangeEvent creates a new StoreChangeEvent for the given change.
func NewStoreChangeEvent(changeType cache.ChangeType, storeID, entityID, path string) *StoreChangeEvent {
	return &StoreChangeEvent{
		ID:         uuid.New(),
		ChangeType: changeType,
		StoreID:    storeID,
		EntityID:   entityID,
		Path:       path,
		CreatedAt:  time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StoreChangeEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows callers to publish changes without direct knowledge of
// which caches the change affects.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StoreChangeEvent) error
}
