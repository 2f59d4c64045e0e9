package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haldis/storefront-engine/internal/api/shared"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/platform/logger"
	"github.com/haldis/storefront-engine/internal/resolver"
)

// CheckoutHandler serves the JSON checkout API: session start, lookup,
// buyer detail updates and the complete/cancel transitions.
type CheckoutHandler struct {
	resolver  *resolver.Resolver
	checkouts *fetcher.CheckoutFetcher
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler. Panics if any
// dependency is nil, as this indicates a programming error in the
// application setup.
func NewCheckoutHandler(domainResolver *resolver.Resolver, checkouts *fetcher.CheckoutFetcher, logger *slog.Logger) *CheckoutHandler {
	if domainResolver == nil {
		panic("domain resolver cannot be nil")
	}
	if checkouts == nil {
		panic("checkout fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CheckoutHandler{
		resolver:  domainResolver,
		checkouts: checkouts,
		logger:    logger.With(slog.String("component", "checkout_handler")),
	}
}

// Routes mounts the checkout API routes on the given router.
func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Post("/", h.StartCheckout)
	r.Get("/{token}", h.GetSession)
	r.Put("/{token}/customer", h.UpdateCustomer)
	r.Post("/{token}/complete", h.Complete)
	r.Post("/{token}/cancel", h.Cancel)
}

// StartCheckout handles POST /api/checkout requests, snapshotting the
// session's cart into a new open checkout session.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	st, err := h.resolver.ResolveStoreByDomain(r.Context(), r.Host)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Store not available", err)
		return
	}
	sessionID := ensureSession(w, r)

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("starting checkout", slog.String("store_id", st.StoreID))

	session, err := h.checkouts.StartCheckout(r.Context(), st.StoreID, sessionID, st.Currency)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// GetSession handles GET /api/checkout/{token} requests.
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkouts.GetSessionByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// UpdateCustomerRequest represents the request body carrying buyer
// details for an open checkout session.
type UpdateCustomerRequest struct {
	CustomerInfo    *domain.CustomerInfo `json:"customer_info,omitempty"`
	ShippingAddress *domain.Address      `json:"shipping_address,omitempty"`
	BillingAddress  *domain.Address      `json:"billing_address,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

// UpdateCustomer handles PUT /api/checkout/{token}/customer requests.
func (h *CheckoutHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.checkouts.UpdateCustomerInfo(r.Context(), fetcher.UpdateCustomerInfoRequest{
		Token:           chi.URLParam(r, "token"),
		CustomerInfo:    req.CustomerInfo,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Complete handles POST /api/checkout/{token}/complete requests. Only
// open sessions complete; replays are rejected with a conflict.
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkouts.CompleteCheckout(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Cancel handles POST /api/checkout/{token}/cancel requests.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkouts.CancelCheckout(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}
