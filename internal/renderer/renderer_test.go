package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldis/storefront-engine/internal/fetcher"
)

const testLayout = `<html><head>{{ content_for_header }}</head>` +
	`<body>{% section 'header' %}<main>{{ content_for_layout }}</main></body></html>`

const testHeaderSection = `<header>{{ shop.name }}</header>`

// putBasicTheme uploads the minimal theme every render test starts
// from: a layout with one section and a liquid product template.
func putBasicTheme(h *harness, storeID string) {
	h.putTemplate(storeID, "layout/theme.liquid", testLayout)
	h.putTemplate(storeID, "sections/header.liquid", testHeaderSection)
	h.putTemplate(storeID, "templates/product.liquid",
		`<h1>{{ product.title }}</h1><span>{{ product.price | money }}</span>`)
	h.putTemplate(storeID, "templates/index.liquid", `<p>Welcome to {{ shop.name }}</p>`)
}

func TestRenderProductPage(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.products.products = append(h.products.products, testProduct("store_1"))
	putBasicTheme(h, "store_1")

	result, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{
		Type:   PageProduct,
		Handle: "blue-shirt",
		Path:   "/products/blue-shirt",
	})
	require.NoError(t, err)

	assert.Contains(t, result.HTML, "<h1>Blue Shirt</h1>")
	assert.Contains(t, result.HTML, "$25.00")
	assert.Contains(t, result.HTML, "<header>Trailhead Supply</header>")
	assert.Contains(t, result.HTML, `<meta property="og:site_name" content="Trailhead Supply">`)

	assert.Equal(t, "Blue Shirt", result.Metadata.Title)
	assert.Equal(t, "Blue Shirt | Trailhead Supply", result.Metadata.OGTitle)
	assert.Equal(t, "https://trailhead.example.com/products/blue-shirt", result.Metadata.Canonical)

	assert.Regexp(t, regexp.MustCompile(`^product_store_1_blue-shirt_\d+$`), result.CacheKey)
	assert.Greater(t, result.CacheTTL.Seconds(), 0.0)
}

func TestRenderMissingThemeShortCircuits(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.products.products = append(h.products.products, testProduct("store_1"))

	_, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex})
	require.Error(t, err)

	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ErrorTypeTemplateNotFound, terr.Type)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)

	// The existence check fails before any data loading starts.
	assert.Zero(t, h.products.listCalls.Load())
}

func TestRenderUnknownDomain(t *testing.T) {
	t.Parallel()

	h := newHarness()

	_, err := h.renderer.Render(context.Background(), "nobody.example.com", PageOptions{Type: PageIndex})
	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ErrorTypeStoreNotFound, terr.Type)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
}

func TestRenderInactiveStore(t *testing.T) {
	t.Parallel()

	h := newHarness()
	s := activeStore("store_1", "trailhead.example.com")
	s.Active = false
	h.addStore(s)

	_, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex})
	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ErrorTypeStoreNotActive, terr.Type)
	assert.Equal(t, http.StatusPaymentRequired, terr.StatusCode)
}

func TestRenderSectionFailureIsIsolated(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.putTemplate("store_1", "layout/theme.liquid",
		`{% section 'header' %}{{ content_for_layout }}{% section 'ghost' %}`)
	h.putTemplate("store_1", "sections/header.liquid", testHeaderSection)
	h.putTemplate("store_1", "templates/index.liquid", `<p>home</p>`)

	result, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex})
	require.NoError(t, err)

	assert.Contains(t, result.HTML, "<header>Trailhead Supply</header>")
	assert.Contains(t, result.HTML, "<p>home</p>")
	assert.Contains(t, result.HTML, "<!-- Section 'ghost' not found -->")
}

func TestRenderJSONTemplatePage(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.putTemplate("store_1", "layout/theme.liquid", `<body>{{ content_for_layout }}</body>`)
	h.putTemplate("store_1", "sections/hero.liquid",
		`<div class="hero">{{ section.settings.heading }}</div>`+
			`{% schema %}{"settings":[{"id":"heading","default":"Welcome"}]}{% endschema %}`)
	h.putTemplate("store_1", "templates/index.json",
		`{"order":["main"],"sections":{"main":{"type":"hero","settings":{"heading":"Summer Sale"}}}}`)

	result, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex})
	require.NoError(t, err)

	// The configured setting overrides the schema default.
	assert.Contains(t, result.HTML, `<div class="hero">Summer Sale</div>`)
	assert.NotContains(t, result.HTML, "schema")
}

func TestRenderAssetsIsolatedBetweenRenders(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.addStore(activeStore("store_2", "basecamp.example.com"))

	h.putTemplate("store_1", "layout/theme.liquid", `<html><head></head><body>{% section 'header' %}{{ content_for_layout }}</body></html>`)
	h.putTemplate("store_1", "sections/header.liquid", `<header>one</header>{% stylesheet %}.header { color: red; }{% endstylesheet %}`)
	h.putTemplate("store_1", "templates/index.liquid", `<p>one</p>`)

	h.putTemplate("store_2", "layout/theme.liquid", `<html><head></head><body>{{ content_for_layout }}</body></html>`)
	h.putTemplate("store_2", "templates/index.liquid", `<p>two</p>`)

	first, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex})
	require.NoError(t, err)
	assert.Contains(t, first.HTML, ".header { color: red; }")

	second, err := h.renderer.Render(context.Background(), "basecamp.example.com", PageOptions{Type: PageIndex})
	require.NoError(t, err)
	assert.NotContains(t, second.HTML, ".header { color: red; }")
}

func TestRenderServesCachedPage(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	putBasicTheme(h, "store_1")

	opts := PageOptions{Type: PageIndex}
	first, err := h.renderer.Render(context.Background(), "trailhead.example.com", opts)
	require.NoError(t, err)

	fetchedOnce := h.objects.gets.Load()
	second, err := h.renderer.Render(context.Background(), "trailhead.example.com", opts)
	require.NoError(t, err)

	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, first.CacheKey, second.CacheKey)
	assert.Equal(t, fetchedOnce, h.objects.gets.Load())
}

func TestRenderCartPageNeverCached(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.putTemplate("store_1", "layout/theme.liquid", `<body>{{ content_for_layout }}</body>`)
	h.putTemplate("store_1", "templates/cart.liquid", `<p>{{ cart.item_count }} items</p>`)

	opts := PageOptions{Type: PageCart, SessionID: "sess_1"}
	first, err := h.renderer.Render(context.Background(), "trailhead.example.com", opts)
	require.NoError(t, err)
	assert.Zero(t, first.CacheTTL)
	assert.Contains(t, first.HTML, "0 items")

	// A zero TTL render is recomputed on the next request.
	before := h.objects.gets.Load()
	_, err = h.renderer.Render(context.Background(), "trailhead.example.com", opts)
	require.NoError(t, err)
	assert.Greater(t, h.objects.gets.Load(), before)
}

func TestRenderCachedPagesExcludeCartState(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.products.products = append(h.products.products, testProduct("store_1"))
	h.putTemplate("store_1", "layout/theme.liquid", `<body>cart:{{ cart.item_count }} {{ content_for_layout }}</body>`)
	h.putTemplate("store_1", "templates/index.liquid", `<p>home</p>`)

	_, err := h.carts.AddToCart(context.Background(), fetcher.AddToCartRequest{
		StoreID:   "store_1",
		SessionID: "sess_a",
		Currency:  "USD",
		ProductID: "prod_1",
		Quantity:  3,
	})
	require.NoError(t, err)

	// The index is cacheable, so the first visitor's cart must not be
	// baked into it.
	first, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex, SessionID: "sess_a"})
	require.NoError(t, err)
	assert.Contains(t, first.HTML, "cart:0")
	assert.NotContains(t, first.HTML, "cart:3")

	second, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageIndex, SessionID: "sess_b"})
	require.NoError(t, err)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestRenderCartPageIsPerSession(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.products.products = append(h.products.products, testProduct("store_1"))
	h.putTemplate("store_1", "layout/theme.liquid", `<body>{{ content_for_layout }}</body>`)
	h.putTemplate("store_1", "templates/cart.liquid", `<span id="count">{{ cart.item_count }}</span>`)

	_, err := h.carts.AddToCart(context.Background(), fetcher.AddToCartRequest{
		StoreID:   "store_1",
		SessionID: "sess_a",
		Currency:  "USD",
		ProductID: "prod_1",
		Quantity:  3,
	})
	require.NoError(t, err)

	first, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageCart, SessionID: "sess_a"})
	require.NoError(t, err)
	assert.Contains(t, first.HTML, `<span id="count">3</span>`)

	second, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{Type: PageCart, SessionID: "sess_b"})
	require.NoError(t, err)
	assert.Contains(t, second.HTML, `<span id="count">0</span>`, "each session sees its own cart")
}

func TestRenderCheckoutPageWithMissingSession(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))
	h.putTemplate("store_1", "layout/theme.liquid", `<body>{{ content_for_layout }}</body>`)
	h.putTemplate("store_1", "templates/checkout.liquid",
		`{% if checkout %}<p>{{ checkout.token }}</p>{% else %}<p>Your checkout session is no longer available.</p>{% endif %}`)

	// An unknown or expired token renders the page without session
	// data instead of failing it.
	result, err := h.renderer.Render(context.Background(), "trailhead.example.com", PageOptions{
		Type:          PageCheckout,
		SessionID:     "sess_a",
		CheckoutToken: "chk_gone",
	})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "Your checkout session is no longer available.")
	assert.Zero(t, result.CacheTTL, "checkout pages are never cached")
}

func TestRenderErrorBrandsPageWithStore(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addStore(activeStore("store_1", "trailhead.example.com"))

	renderErr := NewTemplateError(ErrorTypeTemplateNotFound, "no templates found for store: store_1")
	result := h.renderer.RenderError(context.Background(), renderErr, "trailhead.example.com", "/")

	assert.Contains(t, result.HTML, "This store is being set up.")
	assert.Contains(t, result.Metadata.Title, "Trailhead Supply")
	assert.Zero(t, result.CacheTTL)
}

func TestRenderErrorSkipsResolutionForUnknownStore(t *testing.T) {
	t.Parallel()

	h := newHarness()

	renderErr := NewTemplateError(ErrorTypeStoreNotFound, "no store found for domain: nobody.example.com")
	result := h.renderer.RenderError(context.Background(), renderErr, "nobody.example.com", "/")

	assert.Contains(t, result.HTML, "This store does not exist.")
	assert.Contains(t, result.Metadata.Title, "nobody.example.com")
}

func TestRenderErrorWrapsUntypedFailures(t *testing.T) {
	t.Parallel()

	h := newHarness()

	result := h.renderer.RenderError(context.Background(), fmt.Errorf("boom"), "nobody.example.com", "/")
	assert.Contains(t, result.HTML, "Something went wrong.")
}

func TestWrapErrorPassesThroughTemplateErrors(t *testing.T) {
	t.Parallel()

	orig := NewTemplateError(ErrorTypeStoreNotFound, "gone")
	wrapped := WrapError(fmt.Errorf("context: %w", orig), "render failed")
	assert.Same(t, orig, wrapped)

	plain := WrapError(errors.New("boom"), "render failed")
	assert.Equal(t, ErrorTypeRender, plain.Type)
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode)
	assert.Contains(t, plain.Message, "boom")
}
