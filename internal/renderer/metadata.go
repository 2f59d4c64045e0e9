package renderer

import (
	"fmt"
	"html"
	"strings"

	"github.com/haldis/storefront-engine/internal/domain"
)

// GenerateMetadata builds the SEO envelope for a rendered page from the
// store profile and the page title the context builder produced. Title
// is the bare page title; the store-qualified form goes to the open
// graph fields.
func GenerateMetadata(store *domain.Store, pageTitle, path string) Metadata {
	title := pageTitle
	if title == "" {
		title = store.Name
	}
	ogTitle := title
	if title != store.Name {
		ogTitle = fmt.Sprintf("%s | %s", title, store.Name)
	}

	description := store.Description
	if description == "" {
		description = fmt.Sprintf("%s online store", store.Name)
	}

	canonical := store.URL()
	if path != "" && path != "/" {
		canonical += path
	}

	return Metadata{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Icon:        store.FaviconURL,
		OGTitle:     ogTitle,
		OGImage:     store.BannerURL,
		OGURL:       canonical,
		OGType:      "website",
		OGSiteName:  store.Name,
	}
}

// HeadContent renders the meta tags a theme layout pulls in through
// content_for_header.
func HeadContent(store *domain.Store) string {
	var b strings.Builder
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if store.Description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(store.Description))
	}
	fmt.Fprintf(&b, "<meta property=\"og:site_name\" content=\"%s\">\n", html.EscapeString(store.Name))
	fmt.Fprintf(&b, "<meta property=\"og:url\" content=\"%s\">\n", store.URL())
	if store.FaviconURL != "" {
		fmt.Fprintf(&b, "<link rel=\"icon\" href=\"%s\">\n", html.EscapeString(store.FaviconURL))
	}
	return b.String()
}
