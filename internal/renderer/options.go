package renderer

import "time"

// PageType enumerates the storefront page kinds the renderer knows how
// to build. The set is closed: the context builder dispatches over it
// and unknown values degrade to a generic page shape.
type PageType string

const (
	PageIndex         PageType = "index"
	PageProduct       PageType = "product"
	PageCollection    PageType = "collection"
	PageCart          PageType = "cart"
	PagePage          PageType = "page"
	PageBlog          PageType = "blog"
	PagePolicies      PageType = "policies"
	PageSearch        PageType = "search"
	PageNotFound      PageType = "404"
	PageCheckout      PageType = "checkout"
	PageCheckoutStart PageType = "checkout_start"
)

// sessionVarying reports whether the page embeds per-visitor state
// (the cart or a checkout session). Cached HTML is shared across
// visitors, so these pages never touch the rendered-page cache.
func (t PageType) sessionVarying() bool {
	switch t {
	case PageCart, PageCheckout, PageCheckoutStart:
		return true
	}
	return false
}

// PageOptions selects what to render. Handle, ProductID and
// CollectionID are used by the page types that need an identifier;
// SessionID and Currency feed the cart and checkout contexts.
type PageOptions struct {
	Type          PageType
	Handle        string
	ProductID     string
	CollectionID  string
	SearchTerm    string
	Path          string
	SessionID     string
	Currency      string
	CheckoutToken string
}

// identifier returns the most specific identifier the options carry,
// used in cache key naming.
func (o PageOptions) identifier() string {
	switch {
	case o.Handle != "":
		return o.Handle
	case o.ProductID != "":
		return o.ProductID
	case o.CollectionID != "":
		return o.CollectionID
	default:
		return "default"
	}
}

// Metadata is the SEO envelope returned alongside the rendered HTML.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical,omitempty"`
	Icon        string `json:"icon,omitempty"`

	OGTitle    string `json:"og_title,omitempty"`
	OGImage    string `json:"og_image,omitempty"`
	OGURL      string `json:"og_url,omitempty"`
	OGType     string `json:"og_type,omitempty"`
	OGSiteName string `json:"og_site_name,omitempty"`
}

// RenderResult is the output of a full page render.
type RenderResult struct {
	HTML     string
	Metadata Metadata
	CacheKey string
	CacheTTL time.Duration
}
