// Package api provides HTTP handlers for the storefront surface, the
// cart and checkout JSON APIs, and the admin invalidation webhook.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/haldis/storefront-engine/internal/api/middleware"
)

// RouterDeps bundles the handlers the router mounts.
type RouterDeps struct {
	Storefront   *StorefrontHandler
	Cart         *CartHandler
	Checkout     *CheckoutHandler
	Invalidation *InvalidationHandler
	Logger       *slog.Logger
}

// NewRouter assembles the full route tree: the JSON API under /api and
// the storefront HTML catch-all at the root.
func NewRouter(deps RouterDeps) chi.Router {
	if deps.Storefront == nil || deps.Cart == nil || deps.Checkout == nil || deps.Invalidation == nil {
		panic("router handlers cannot be nil as this indicates a programming error in the application setup")
	}
	if deps.Logger == nil {
		panic("logger cannot be nil as this indicates a programming error in the application setup")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthCheck)
		r.Route("/cart", deps.Cart.Routes)
		r.Route("/checkout", deps.Checkout.Routes)
		r.Post("/admin/invalidations", deps.Invalidation.NotifyChange)
	})

	// The storefront owns every remaining path, including the 404 page.
	deps.Storefront.Routes(r)

	return r
}

// healthCheck responds to load balancer probes.
func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
