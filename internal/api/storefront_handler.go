package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haldis/storefront-engine/internal/platform/logger"
	"github.com/haldis/storefront-engine/internal/renderer"
	"github.com/haldis/storefront-engine/internal/resolver"
)

// StorefrontHandler serves the public HTML surface: every storefront
// path resolves the tenant from the Host header and renders the matching
// page type. Failures never surface as JSON; they render the themed
// error page with the status from the render error taxonomy.
type StorefrontHandler struct {
	renderer *renderer.PageRenderer
	logger   *slog.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler. Panics if any
// dependency is nil, as this indicates a programming error in the
// application setup.
func NewStorefrontHandler(pageRenderer *renderer.PageRenderer, logger *slog.Logger) *StorefrontHandler {
	if pageRenderer == nil {
		panic("page renderer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StorefrontHandler{
		renderer: pageRenderer,
		logger:   logger.With(slog.String("component", "storefront_handler")),
	}
}

// Routes mounts the storefront page routes on the given router.
func (h *StorefrontHandler) Routes(r chi.Router) {
	r.Get("/", h.page(renderer.PageIndex))
	r.Get("/products/{handle}", h.page(renderer.PageProduct))
	r.Get("/collections/{handle}", h.page(renderer.PageCollection))
	r.Get("/pages/{handle}", h.page(renderer.PagePage))
	r.Get("/cart", h.page(renderer.PageCart))
	r.Get("/search", h.page(renderer.PageSearch))
	r.Get("/policies", h.page(renderer.PagePolicies))
	r.Get("/blog", h.page(renderer.PageBlog))
	r.Get("/checkouts/{token}", h.page(renderer.PageCheckout))
	r.NotFound(h.page(renderer.PageNotFound))
}

// page builds an http.HandlerFunc rendering the given page type.
func (h *StorefrontHandler) page(pageType renderer.PageType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		domainName := resolver.NormalizeDomain(r.Host)

		opts := renderer.PageOptions{
			Type:      pageType,
			Handle:    chi.URLParam(r, "handle"),
			Path:      r.URL.Path,
			SessionID: ensureSession(w, r),
		}
		switch pageType {
		case renderer.PageSearch:
			opts.SearchTerm = r.URL.Query().Get("q")
		case renderer.PageCheckout:
			opts.CheckoutToken = chi.URLParam(r, "token")
		}

		result, err := h.renderer.Render(r.Context(), domainName, opts)
		if err != nil {
			h.renderErrorPage(w, r, err, domainName, log)
			return
		}
		status := http.StatusOK
		if pageType == renderer.PageNotFound {
			status = http.StatusNotFound
		}
		writeHTML(w, status, result)
	}
}

// renderErrorPage renders the themed error page for the failure and
// responds with the status code from the render error taxonomy.
func (h *StorefrontHandler) renderErrorPage(w http.ResponseWriter, r *http.Request, err error, domainName string, log *slog.Logger) {
	templateErr := renderer.WrapError(err, "rendering storefront page")
	log.Warn("storefront render failed",
		slog.String("domain", domainName),
		slog.String("path", r.URL.Path),
		slog.String("error_type", string(templateErr.Type)),
		slog.String("error", templateErr.Message))

	result := h.renderer.RenderError(r.Context(), templateErr, domainName, r.URL.Path)
	writeHTML(w, templateErr.StatusCode, result)
}

// writeHTML writes a rendered page, translating its cache TTL into the
// response cache policy.
func writeHTML(w http.ResponseWriter, status int, result *renderer.RenderResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.CacheTTL > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(result.CacheTTL.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(result.HTML))
}
