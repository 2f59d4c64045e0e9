package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/haldis/storefront-engine/internal/api/shared"
	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/events"
	"github.com/haldis/storefront-engine/internal/platform/logger"
)

// InvalidationHandler receives change notifications from the admin
// surface and turns them into store change events. The cache
// invalidation service reacts through its event handler registration,
// so this handler never touches the cache directly.
type InvalidationHandler struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewInvalidationHandler creates a new InvalidationHandler. Panics if
// any dependency is nil, as this indicates a programming error in the
// application setup.
func NewInvalidationHandler(emitter events.EventEmitter, logger *slog.Logger) *InvalidationHandler {
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &InvalidationHandler{
		emitter: emitter,
		logger:  logger.With(slog.String("component", "invalidation_handler")),
	}
}

// InvalidationRequest represents the change notification body.
type InvalidationRequest struct {
	ChangeType string `json:"change_type"`
	StoreID    string `json:"store_id"`
	EntityID   string `json:"entity_id,omitempty"`
	Path       string `json:"path,omitempty"`
}

// InvalidationResponse acknowledges an accepted change event.
type InvalidationResponse struct {
	EventID string `json:"event_id"`
}

// NotifyChange handles POST /api/admin/invalidations requests.
func (h *InvalidationHandler) NotifyChange(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req InvalidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StoreID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "store_id is required")
		return
	}

	changeType := cache.ChangeType(req.ChangeType)
	if !cache.KnownChangeType(changeType) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown change type")
		return
	}

	event := events.NewStoreChangeEvent(changeType, req.StoreID, req.EntityID, req.Path)
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to process change event", err)
		return
	}

	log.Info("change event accepted",
		slog.String("event_id", event.ID.String()),
		slog.String("change_type", req.ChangeType),
		slog.String("store_id", req.StoreID))
	shared.RespondWithJSON(w, r, http.StatusAccepted, InvalidationResponse{EventID: event.ID.String()})
}
