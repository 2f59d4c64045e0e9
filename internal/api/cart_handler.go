package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/haldis/storefront-engine/internal/api/shared"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/platform/logger"
	"github.com/haldis/storefront-engine/internal/resolver"
)

// CartHandler serves the JSON cart API consumed by storefront themes.
// The tenant comes from the Host header and the cart session from the
// storefront session cookie, so theme javascript never handles IDs.
type CartHandler struct {
	resolver *resolver.Resolver
	carts    *fetcher.CartFetcher
	logger   *slog.Logger
}

// NewCartHandler creates a new CartHandler. Panics if any dependency is
// nil, as this indicates a programming error in the application setup.
func NewCartHandler(domainResolver *resolver.Resolver, carts *fetcher.CartFetcher, logger *slog.Logger) *CartHandler {
	if domainResolver == nil {
		panic("domain resolver cannot be nil")
	}
	if carts == nil {
		panic("cart fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CartHandler{
		resolver: domainResolver,
		carts:    carts,
		logger:   logger.With(slog.String("component", "cart_handler")),
	}
}

// Routes mounts the cart API routes on the given router.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.GetCart)
	r.Delete("/", h.ClearCart)
	r.Post("/items", h.AddItem)
	r.Put("/items/{itemID}", h.UpdateItem)
	r.Delete("/items/{itemID}", h.RemoveItem)
}

// resolveStore maps the request host to its tenant, writing the error
// response itself when resolution fails.
func (h *CartHandler) resolveStore(w http.ResponseWriter, r *http.Request) (*domain.Store, bool) {
	st, err := h.resolver.ResolveStoreByDomain(r.Context(), r.Host)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, resolver.ErrStoreInactive) {
			status = http.StatusPaymentRequired
		} else if !errors.Is(err, resolver.ErrStoreNotFound) {
			status = http.StatusInternalServerError
		}
		shared.RespondWithErrorAndLog(w, r, status, "Store not available", err)
		return nil, false
	}
	return st, true
}

// GetCart handles GET /api/cart requests, returning the session's cart
// and creating an empty one on first touch.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.resolveStore(w, r)
	if !ok {
		return
	}
	sessionID := ensureSession(w, r)

	cart, err := h.carts.GetCart(r.Context(), st.StoreID, sessionID, st.Currency)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cart)
}

// AddItemRequest represents the request body for adding a cart line.
type AddItemRequest struct {
	ProductID  string            `json:"product_id"`
	VariantID  string            `json:"variant_id,omitempty"`
	Quantity   int               `json:"quantity,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.resolveStore(w, r)
	if !ok {
		return
	}
	sessionID := ensureSession(w, r)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "product_id is required")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("adding item to cart",
		slog.String("store_id", st.StoreID),
		slog.String("product_id", req.ProductID))

	cart, err := h.carts.AddToCart(r.Context(), fetcher.AddToCartRequest{
		StoreID:    st.StoreID,
		SessionID:  sessionID,
		Currency:   st.Currency,
		ProductID:  req.ProductID,
		VariantID:  req.VariantID,
		Quantity:   req.Quantity,
		Properties: req.Properties,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cart)
}

// UpdateItemRequest represents the request body for changing a line's
// quantity. A zero quantity removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PUT /api/cart/items/{itemID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.resolveStore(w, r)
	if !ok {
		return
	}
	sessionID := ensureSession(w, r)

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := h.carts.UpdateCartItem(r.Context(), st.StoreID, sessionID, st.Currency, itemID, req.Quantity)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{itemID} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.resolveStore(w, r)
	if !ok {
		return
	}
	sessionID := ensureSession(w, r)

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	cart, err := h.carts.RemoveFromCart(r.Context(), st.StoreID, sessionID, st.Currency, itemID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/cart requests, removing every line.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.resolveStore(w, r)
	if !ok {
		return
	}
	sessionID := ensureSession(w, r)

	cart, err := h.carts.ClearCart(r.Context(), st.StoreID, sessionID, st.Currency)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cart)
}
