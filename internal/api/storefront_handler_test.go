package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLayout = `<html><head>{{ content_for_header }}</head><body>{{ content_for_layout }}</body></html>`

func putBasicTheme(h *apiHarness, storeID string) {
	h.putTemplate(storeID, "layout/theme.liquid", testLayout)
	h.putTemplate(storeID, "templates/index.liquid", `<p>Welcome to {{ shop.name }}</p>`)
	h.putTemplate(storeID, "templates/product.liquid", `<h1>{{ product.title }}</h1>`)
}

func (h *apiHarness) getHTML(t *testing.T, host, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestStorefrontRendersIndex(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	h.addStore(activeStore("store_1", testHost))
	putBasicTheme(h, "store_1")

	rec := h.getHTML(t, testHost, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Welcome to Trailhead Supply")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=")
}

func TestStorefrontRendersProduct(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	h.addStore(activeStore("store_1", testHost))
	h.prods.products = append(h.prods.products, testProduct("store_1"))
	putBasicTheme(h, "store_1")

	rec := h.getHTML(t, testHost, "/products/blue-shirt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Blue Shirt</h1>")
}

func TestStorefrontUnknownDomain(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()

	rec := h.getHTML(t, "nobody.example.com", "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "This store does not exist.")
}

func TestStorefrontInactiveStore(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	suspended := activeStore("store_2", "closed.example.com")
	suspended.Active = false
	h.addStore(suspended)

	rec := h.getHTML(t, "closed.example.com", "/")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "This store is not active.")
}

func TestStorefrontMissingTheme(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	h.addStore(activeStore("store_1", testHost))

	rec := h.getHTML(t, testHost, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "This store is being set up.")
}

func TestStorefrontUnmatchedPathRendersNotFound(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	h.addStore(activeStore("store_1", testHost))
	putBasicTheme(h, "store_1")
	h.putTemplate("store_1", "templates/404.liquid", `<h2>Lost at {{ shop.name }}</h2>`)

	rec := h.getHTML(t, testHost, "/no/such/path")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lost at Trailhead Supply")
}

func TestStorefrontCartPageNotCacheable(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()
	h.addStore(activeStore("store_1", testHost))
	putBasicTheme(h, "store_1")
	h.putTemplate("store_1", "templates/cart.liquid", `<span>{{ cart.item_count }} items</span>`)

	rec := h.getHTML(t, testHost, "/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	h := newAPIHarness()

	rec := h.getHTML(t, testHost, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
