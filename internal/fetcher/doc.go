// Package fetcher retrieves and shapes the domain entities a storefront
// render needs: products, collections, pages, navigation menus, carts
// and checkout sessions.
//
// Read fetchers are cache-backed through the cache manager, each with
// its own key builder and TTL class. Transform functions project
// entities into the plain map shapes the templating context expects.
// Cart and checkout fetchers own the session lifecycles: silent
// recreation of expired carts, and the open -> completed | cancelled |
// expired state machine of checkout sessions.
package fetcher
