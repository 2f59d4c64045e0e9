package renderer

import (
	"context"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/fetcher"
)

const featuredProductLimit = 8

// PageData is everything the fetchers loaded for one render: the
// store-wide commons plus whatever the page type asked for.
type PageData struct {
	FeaturedProducts []*domain.Product
	Collections      []*domain.Collection
	Pages            []*domain.Page
	Menus            map[string]*fetcher.ResolvedMenu

	Product        *domain.Product
	Collection     *fetcher.CollectionWithProducts
	Page           *domain.Page
	Cart           *domain.Cart
	Checkout       *domain.CheckoutSession
	SearchResults  []*domain.Product
}

// ContextBuilder loads page data and shapes the template context for
// each page type.
type ContextBuilder struct {
	products    *fetcher.ProductFetcher
	collections *fetcher.CollectionFetcher
	pages       *fetcher.PageFetcher
	navigation  *fetcher.NavigationFetcher
	carts       *fetcher.CartFetcher
	checkouts   *fetcher.CheckoutFetcher
	logger      *slog.Logger
}

// NewContextBuilder creates a context builder. Panics if any dependency
// is nil, as this indicates a programming error in the application
// setup.
func NewContextBuilder(
	products *fetcher.ProductFetcher,
	collections *fetcher.CollectionFetcher,
	pages *fetcher.PageFetcher,
	navigation *fetcher.NavigationFetcher,
	carts *fetcher.CartFetcher,
	checkouts *fetcher.CheckoutFetcher,
	logger *slog.Logger,
) *ContextBuilder {
	if products == nil {
		panic("product fetcher cannot be nil")
	}
	if collections == nil {
		panic("collection fetcher cannot be nil")
	}
	if pages == nil {
		panic("page fetcher cannot be nil")
	}
	if navigation == nil {
		panic("navigation fetcher cannot be nil")
	}
	if carts == nil {
		panic("cart fetcher cannot be nil")
	}
	if checkouts == nil {
		panic("checkout fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ContextBuilder{
		products:    products,
		collections: collections,
		pages:       pages,
		navigation:  navigation,
		carts:       carts,
		checkouts:   checkouts,
		logger:      logger.With(slog.String("component", "context_builder")),
	}
}

// LoadPageData fetches the store commons plus the page-type-specific
// entity. Commons failures degrade with a warning; failure to load the
// entity the page is about is a real error.
func (b *ContextBuilder) LoadPageData(ctx context.Context, store *domain.Store, opts PageOptions) (*PageData, error) {
	data := &PageData{}

	var err error
	if data.FeaturedProducts, err = b.products.GetFeaturedProducts(ctx, store.StoreID, featuredProductLimit); err != nil {
		b.logger.Warn("featured products unavailable",
			slog.String("store_id", store.StoreID),
			slog.String("error", err.Error()))
	}
	if data.Collections, err = b.collections.ListCollections(ctx, store.StoreID); err != nil {
		b.logger.Warn("collections unavailable",
			slog.String("store_id", store.StoreID),
			slog.String("error", err.Error()))
	}
	if data.Pages, err = b.pages.ListPages(ctx, store.StoreID); err != nil {
		b.logger.Warn("pages unavailable",
			slog.String("store_id", store.StoreID),
			slog.String("error", err.Error()))
	}
	if data.Menus, err = b.navigation.GetNavigationMenus(ctx, store.StoreID); err != nil {
		b.logger.Warn("navigation unavailable",
			slog.String("store_id", store.StoreID),
			slog.String("error", err.Error()))
	}
	// The cart is loaded only for pages that render per-visitor state.
	// Cacheable pages stay session-free so their HTML can be shared;
	// themes read the live cart through the cart API instead.
	if opts.SessionID != "" && opts.Type.sessionVarying() {
		if data.Cart, err = b.carts.GetCart(ctx, store.StoreID, opts.SessionID, storeCurrency(store, opts)); err != nil {
			b.logger.Warn("cart unavailable",
				slog.String("store_id", store.StoreID),
				slog.String("error", err.Error()))
		}
	}

	switch opts.Type {
	case PageProduct:
		ident := opts.Handle
		if ident == "" {
			ident = opts.ProductID
		}
		if ident != "" {
			if data.Product, err = b.products.GetProduct(ctx, store.StoreID, ident); err != nil {
				return nil, err
			}
		}

	case PageCollection:
		switch {
		case opts.CollectionID != "":
			if data.Collection, err = b.collections.GetCollection(ctx, store.StoreID, opts.CollectionID); err != nil {
				return nil, err
			}
		case opts.Handle != "":
			if data.Collection, err = b.collections.GetCollectionByHandle(ctx, store.StoreID, opts.Handle); err != nil {
				return nil, err
			}
		}

	case PagePage, PagePolicies:
		if opts.Handle != "" {
			if data.Page, err = b.pages.GetPageBySlug(ctx, store.StoreID, opts.Handle); err != nil {
				return nil, err
			}
		}

	case PageSearch:
		if opts.SearchTerm != "" {
			if data.SearchResults, err = b.products.SearchProducts(ctx, store.StoreID, opts.SearchTerm, fetcher.DefaultProductLimit); err != nil {
				return nil, err
			}
		}

	case PageCheckout, PageCheckoutStart:
		if opts.CheckoutToken != "" {
			if data.Checkout, err = b.checkouts.GetSessionByToken(ctx, opts.CheckoutToken); err != nil {
				// A missing or expired session renders the checkout page
				// without session data rather than failing the page.
				if !fetcher.IsCheckoutNotFound(err) {
					return nil, err
				}
				b.logger.Warn("checkout session unavailable",
					slog.String("store_id", store.StoreID),
					slog.String("error", err.Error()))
			}
		}
	}

	return data, nil
}

// pageFragment shapes the page-type-specific slice of the context.
type pageFragment func(data *PageData, opts PageOptions) map[string]any

var pageFragments = map[PageType]pageFragment{
	PageIndex: func(*PageData, PageOptions) map[string]any {
		return map[string]any{"template": "index", "page_title": "Home"}
	},

	PageProduct: func(data *PageData, _ PageOptions) map[string]any {
		frag := map[string]any{"template": "product", "page_title": "Products"}
		if data.Product != nil {
			frag["product"] = fetcher.ProductContext(data.Product)
			frag["page_title"] = data.Product.Name
		}
		return frag
	},

	PageCollection: func(data *PageData, _ PageOptions) map[string]any {
		frag := map[string]any{"template": "collection", "page_title": "Collections"}
		if data.Collection != nil {
			frag["collection"] = fetcher.CollectionContext(data.Collection.Collection, data.Collection.Products)
			frag["page_title"] = data.Collection.Collection.Title
		}
		return frag
	},

	PageCart: func(data *PageData, _ PageOptions) map[string]any {
		return map[string]any{
			"template":   "cart",
			"page_title": "Shopping Cart",
			"cart":       fetcher.CartContext(data.Cart),
		}
	},

	PageNotFound: func(*PageData, PageOptions) map[string]any {
		return map[string]any{
			"template":      "404",
			"page_title":    "Page Not Found",
			"error_message": "The page you are looking for does not exist",
		}
	},

	PageSearch: func(data *PageData, opts PageOptions) map[string]any {
		return map[string]any{
			"template":    "search",
			"page_title":  "Search",
			"search_term": opts.SearchTerm,
			"results":     fetcher.ProductsContext(data.SearchResults),
		}
	},

	PagePage: func(data *PageData, opts PageOptions) map[string]any {
		frag := map[string]any{"template": "page", "page_title": titleFromHandle(opts.Handle, "Page")}
		if data.Page != nil {
			frag["page"] = fetcher.PageContext(data.Page)
			frag["page_title"] = data.Page.Title
			if data.Page.MetaDescription != "" {
				frag["page_description"] = data.Page.MetaDescription
			}
		}
		return frag
	},

	PageBlog: func(_ *PageData, opts PageOptions) map[string]any {
		return map[string]any{"template": "blog", "page_title": titleFromHandle(opts.Handle, "Blog")}
	},

	PagePolicies: func(data *PageData, _ PageOptions) map[string]any {
		frag := map[string]any{"template": "policies", "page_title": "Store Policies"}
		if data.Page != nil {
			frag["page"] = fetcher.PageContext(data.Page)
			frag["page_title"] = data.Page.Title
		}
		return frag
	},

	PageCheckout: func(data *PageData, _ PageOptions) map[string]any {
		frag := map[string]any{"template": "checkout", "page_title": "Checkout"}
		if data.Checkout != nil {
			frag["checkout"] = fetcher.CheckoutContext(data.Checkout)
		}
		return frag
	},

	PageCheckoutStart: func(data *PageData, _ PageOptions) map[string]any {
		frag := map[string]any{"template": "checkout_start", "page_title": "Checkout"}
		if data.Checkout != nil {
			frag["checkout"] = fetcher.CheckoutContext(data.Checkout)
		}
		return frag
	},
}

// BuildContext assembles the full template context: the store commons,
// the page-type fragment, and the handle-indexed lookups for
// collections, products and pages.
func (b *ContextBuilder) BuildContext(store *domain.Store, opts PageOptions, data *PageData) map[string]any {
	shop := shopContext(store, data.Collections)

	root := map[string]any{
		"storeId":     store.StoreID,
		"shop":        shop,
		"store":       shop,
		"products":    fetcher.ProductsContext(data.FeaturedProducts),
		"collections": collectionsByHandle(data.Collections),
		"linklists":   fetcher.MenusContext(data.Menus),
		"cart":        fetcher.CartContext(data.Cart),
		"page_title":  store.Name,
	}
	if store.Description != "" {
		root["page_description"] = store.Description
	}

	fragment, ok := pageFragments[opts.Type]
	if !ok {
		root["template"] = string(opts.Type)
		root["page_title"] = titleFromHandle(string(opts.Type), "Page")
	} else {
		for k, v := range fragment(data, opts) {
			root[k] = v
		}
	}

	if m := productsByHandle(data.FeaturedProducts, data.Product); m.Len() > 0 {
		root["products_by_handle"] = m
	}
	if m := pagesByHandle(data.Pages); m.Len() > 0 {
		root["pages"] = m
	}

	return root
}

// shopContext projects the store profile into the shop/store template
// object.
func shopContext(store *domain.Store, collections []*domain.Collection) map[string]any {
	description := store.Description
	if description == "" {
		description = store.Name + " online store"
	}
	cols := make([]any, len(collections))
	for i, c := range collections {
		cols[i] = fetcher.CollectionContext(c, nil)
	}
	return map[string]any{
		"name":         store.Name,
		"description":  description,
		"domain":       store.Domain(),
		"url":          store.URL(),
		"currency":     store.Currency,
		"money_format": "${{amount}}",
		"email":        store.ContactEmail,
		"phone":        store.ContactPhone,
		"address":      store.Address,
		"logo":         store.LogoURL,
		"banner":       store.BannerURL,
		"favicon":      store.FaviconURL,
		"theme":        store.Theme,
		"storeId":      store.StoreID,
		"collections":  cols,
	}
}

// collectionsByHandle indexes collections by slug with a
// normalized-title alias, while preserving list iteration order.
func collectionsByHandle(collections []*domain.Collection) *HandleMap {
	m := NewHandleMap()
	for _, c := range collections {
		m.Add(fetcher.CollectionContext(c, nil), c.Handle(), domain.Handleize(c.Title))
	}
	return m
}

func productsByHandle(featured []*domain.Product, current *domain.Product) *HandleMap {
	m := NewHandleMap()
	for _, p := range featured {
		m.Add(fetcher.ProductContext(p), p.Handle())
	}
	if current != nil {
		m.Add(fetcher.ProductContext(current), current.Handle())
	}
	return m
}

func pagesByHandle(pages []*domain.Page) *HandleMap {
	m := NewHandleMap()
	for _, p := range pages {
		m.Add(fetcher.PageContext(p), p.Handle())
	}
	return m
}

func titleFromHandle(handle, fallback string) string {
	if handle == "" {
		return fallback
	}
	r, size := utf8.DecodeRuneInString(handle)
	return string(unicode.ToUpper(r)) + handle[size:]
}

func storeCurrency(store *domain.Store, opts PageOptions) string {
	if opts.Currency != "" {
		return opts.Currency
	}
	return store.Currency
}
