package renderer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
)

func TestBuildContextProductPage(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")
	h.addStore(store)
	h.products.products = append(h.products.products, testProduct("store_1"))
	h.collections.collections = append(h.collections.collections, &domain.Collection{
		ID:       "col_1",
		StoreID:  "store_1",
		Title:    "Summer Sale",
		Slug:     "sale",
		IsActive: true,
	})

	opts := PageOptions{Type: PageProduct, Handle: "blue-shirt"}
	data, err := h.contexts.LoadPageData(context.Background(), store, opts)
	require.NoError(t, err)
	require.NotNil(t, data.Product)

	root := h.contexts.BuildContext(store, opts, data)

	assert.Equal(t, "product", root["template"])
	assert.Equal(t, "Blue Shirt", root["page_title"])

	product, ok := root["product"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Blue Shirt", product["title"])

	// Collections index by slug and by normalized title.
	collections, ok := root["collections"].(*HandleMap)
	require.True(t, ok)
	assert.NotNil(t, collections.Get("sale"))
	assert.NotNil(t, collections.Get("summer-sale"))
	assert.Equal(t, 1, collections.Len())

	products, ok := root["products_by_handle"].(*HandleMap)
	require.True(t, ok)
	assert.NotNil(t, products.Get("blue-shirt"))
}

func TestBuildContextUnknownPageTypeDegrades(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	root := h.contexts.BuildContext(store, PageOptions{Type: PageType("lookbook")}, &PageData{})

	assert.Equal(t, "lookbook", root["template"])
	assert.Equal(t, "Lookbook", root["page_title"])
}

func TestBuildContextShopObject(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	root := h.contexts.BuildContext(store, PageOptions{Type: PageIndex}, &PageData{})

	shop, ok := root["shop"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Trailhead Supply", shop["name"])
	assert.Equal(t, "trailhead.example.com", shop["domain"])
	assert.Equal(t, "https://trailhead.example.com", shop["url"])
	assert.Equal(t, "USD", shop["currency"])
	assert.Equal(t, "Trailhead Supply online store", shop["description"])

	// shop and store are the same object.
	assert.Equal(t, root["shop"], root["store"])
	assert.Equal(t, "Home", root["page_title"])
	assert.Equal(t, "index", root["template"])
}

func TestLoadPageDataCommonsDegradeOnFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	// No fixtures at all: commons are empty but loading succeeds.
	data, err := h.contexts.LoadPageData(context.Background(), store, PageOptions{Type: PageIndex})
	require.NoError(t, err)
	assert.Empty(t, data.FeaturedProducts)
	assert.Empty(t, data.Collections)
	assert.Nil(t, data.Cart)
}

func TestLoadPageDataMissingProductFails(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	_, err := h.contexts.LoadPageData(context.Background(), store, PageOptions{
		Type:   PageProduct,
		Handle: "never-made",
	})
	require.Error(t, err)
}

func TestLoadPageDataMissingCheckoutDegrades(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	data, err := h.contexts.LoadPageData(context.Background(), store, PageOptions{
		Type:          PageCheckout,
		CheckoutToken: "chk_gone",
	})
	require.NoError(t, err, "a missing checkout session is absent data, not a failure")
	assert.Nil(t, data.Checkout)
}

func TestLoadPageDataCartOnlyOnSessionPages(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")
	h.products.products = append(h.products.products, testProduct("store_1"))

	_, err := h.carts.AddToCart(context.Background(), fetcher.AddToCartRequest{
		StoreID:   "store_1",
		SessionID: "sess_a",
		Currency:  "USD",
		ProductID: "prod_1",
		Quantity:  1,
	})
	require.NoError(t, err)

	indexData, err := h.contexts.LoadPageData(context.Background(), store, PageOptions{Type: PageIndex, SessionID: "sess_a"})
	require.NoError(t, err)
	assert.Nil(t, indexData.Cart, "shareable pages load no per-visitor state")

	cartData, err := h.contexts.LoadPageData(context.Background(), store, PageOptions{Type: PageCart, SessionID: "sess_a"})
	require.NoError(t, err)
	require.NotNil(t, cartData.Cart)
	assert.Equal(t, 1, cartData.Cart.ItemCount)
}

func TestTitleFromHandle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Page", titleFromHandle("", "Page"))
	assert.Equal(t, "About", titleFromHandle("about", "Page"))
	assert.Equal(t, "Über-uns", titleFromHandle("über-uns", "Page"))
}

func TestBuildContext404Page(t *testing.T) {
	t.Parallel()

	h := newHarness()
	store := activeStore("store_1", "trailhead.example.com")

	root := h.contexts.BuildContext(store, PageOptions{Type: PageNotFound}, &PageData{})

	assert.Equal(t, "404", root["template"])
	assert.Equal(t, "Page Not Found", root["page_title"])
	assert.NotEmpty(t, root["error_message"])
}
