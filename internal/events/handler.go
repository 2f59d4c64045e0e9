package events

import (
	"context"
	"log/slog"

	"github.com/haldis/storefront-engine/internal/cache"
)

// InvalidationHandler bridges store change events into the cache
// invalidation service. Registering it on an emitter makes every
// emitted change sweep the affected cache entries.
type InvalidationHandler struct {
	invalidator *cache.InvalidationService
	logger      *slog.Logger
}

// NewInvalidationHandler creates a handler backed by the given
// invalidation service. Panics if invalidator or logger is nil, as this
// indicates a programming error in the application setup.
func NewInvalidationHandler(invalidator *cache.InvalidationService, logger *slog.Logger) *InvalidationHandler {
	if invalidator == nil {
		panic("invalidation service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &InvalidationHandler{
		invalidator: invalidator,
		logger:      logger.With(slog.String("component", "invalidation_handler")),
	}
}

// HandleEvent applies the event against the cache. Invalidation itself
// cannot fail; the error return satisfies EventHandler.
func (h *InvalidationHandler) HandleEvent(ctx context.Context, event *StoreChangeEvent) error {
	h.logger.Debug("handling store change event",
		slog.String("event_id", event.ID.String()),
		slog.String("change_type", string(event.ChangeType)),
		slog.String("store_id", event.StoreID))

	h.invalidator.InvalidateCache(event.ChangeType, event.StoreID, event.EntityID, event.Path)
	return nil
}
