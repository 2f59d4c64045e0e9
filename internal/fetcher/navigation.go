package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// Well-known menu handles themes reference directly.
const (
	MainMenuHandle   = "main-menu"
	FooterMenuHandle = "footer-menu"
)

// ResolvedMenuItem is a menu item with its target resolved to a
// concrete storefront URL.
type ResolvedMenuItem struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Target string `json:"target,omitempty"`
	Active bool   `json:"active"`
}

// ResolvedMenu is a navigation menu ready for template consumption.
type ResolvedMenu struct {
	Handle string             `json:"handle"`
	Name   string             `json:"name"`
	IsMain bool               `json:"is_main"`
	Items  []ResolvedMenuItem `json:"items"`
}

// NavigationFetcher retrieves navigation menus and resolves their item
// targets into URLs. Resolution failures are logged, never fatal: a
// broken menu link must not abort a page render.
type NavigationFetcher struct {
	menus  store.NavigationStore
	pages  store.PageStore
	cache  *cache.Manager
	logger *slog.Logger
}

// NewNavigationFetcher creates a navigation fetcher. Panics if any
// dependency is nil, as this indicates a programming error in the
// application setup.
func NewNavigationFetcher(menus store.NavigationStore, pages store.PageStore, cacheManager *cache.Manager, logger *slog.Logger) *NavigationFetcher {
	if menus == nil {
		panic("navigation store cannot be nil")
	}
	if pages == nil {
		panic("page store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &NavigationFetcher{
		menus:  menus,
		pages:  pages,
		cache:  cacheManager,
		logger: logger.With(slog.String("component", "navigation_fetcher")),
	}
}

// GetNavigationMenus retrieves every active menu for the store with
// resolved item URLs, keyed by handle.
func (f *NavigationFetcher) GetNavigationMenus(ctx context.Context, storeID string) (map[string]*ResolvedMenu, error) {
	key := cache.NavigationKey(storeID)
	if cached, ok := f.cache.GetCached(key); ok {
		if ms, ok := cached.(map[string]*ResolvedMenu); ok {
			return ms, nil
		}
	}

	menus, err := f.menus.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing menus for store %s: %w", storeID, err)
	}

	out := make(map[string]*ResolvedMenu, len(menus))
	for _, m := range menus {
		out[m.Handle] = f.resolveMenu(ctx, storeID, m)
	}

	f.cache.SetCached(key, out, cache.DataTTL(cache.KindNavigation))
	return out, nil
}

// GetMenuByHandle retrieves one menu with resolved item URLs.
func (f *NavigationFetcher) GetMenuByHandle(ctx context.Context, storeID, handle string) (*ResolvedMenu, error) {
	key := cache.NavigationMenuKey(storeID, handle)
	if cached, ok := f.cache.GetCached(key); ok {
		if m, ok := cached.(*ResolvedMenu); ok {
			return m, nil
		}
	}

	m, err := f.menus.GetByHandle(ctx, storeID, handle)
	if err != nil {
		return nil, fmt.Errorf("fetching menu %s for store %s: %w", handle, storeID, err)
	}

	resolved := f.resolveMenu(ctx, storeID, m)
	f.cache.SetCached(key, resolved, cache.DataTTL(cache.KindNavigation))
	return resolved, nil
}

func (f *NavigationFetcher) resolveMenu(ctx context.Context, storeID string, m *domain.NavigationMenu) *ResolvedMenu {
	items := make([]domain.MenuItem, 0, len(m.Items))
	for _, it := range m.Items {
		if it.IsVisible {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })

	resolved := &ResolvedMenu{Handle: m.Handle, Name: m.Name, IsMain: m.IsMain}
	for _, it := range items {
		resolved.Items = append(resolved.Items, ResolvedMenuItem{
			Label:  it.Label,
			URL:    f.resolveItemURL(ctx, storeID, it),
			Target: it.Target,
		})
	}
	return resolved
}

// resolveItemURL maps a menu item to a concrete URL, falling back to a
// handle-derived path when the target entity cannot be resolved.
func (f *NavigationFetcher) resolveItemURL(ctx context.Context, storeID string, it domain.MenuItem) string {
	switch it.Type {
	case domain.MenuItemExternal, domain.MenuItemInternal:
		if it.URL != "" {
			return it.URL
		}
		return "/"

	case domain.MenuItemPage:
		p, err := f.pages.GetBySlug(ctx, storeID, it.PageHandle)
		if err != nil {
			f.logger.Warn("menu page target failed to resolve",
				slog.String("store_id", storeID),
				slog.String("page_handle", it.PageHandle),
				slog.String("error", err.Error()))
			return "/pages/" + it.PageHandle
		}
		return p.URL()

	case domain.MenuItemCollection:
		return "/collections/" + it.CollectionHandle

	case domain.MenuItemProduct:
		return "/products/" + it.ProductHandle

	default:
		f.logger.Warn("unknown menu item type",
			slog.String("store_id", storeID),
			slog.String("type", string(it.Type)),
			slog.String("label", it.Label))
		if it.URL != "" {
			return it.URL
		}
		return "/"
	}
}

// MenusContext projects resolved menus into the shape templates
// consume, keyed by menu handle plus the main_menu/footer_menu
// aliases themes rely on.
func MenusContext(menus map[string]*ResolvedMenu) map[string]any {
	out := make(map[string]any, len(menus)+2)
	for handle, m := range menus {
		out[handle] = MenuContext(m)
		if m.IsMain || handle == MainMenuHandle {
			out["main_menu"] = MenuContext(m)
		}
		if handle == FooterMenuHandle {
			out["footer_menu"] = MenuContext(m)
		}
	}
	return out
}

// MenuContext projects one resolved menu.
func MenuContext(m *ResolvedMenu) map[string]any {
	if m == nil {
		return nil
	}
	items := make([]any, len(m.Items))
	for i, it := range m.Items {
		items[i] = map[string]any{
			"label":  it.Label,
			"title":  it.Label,
			"url":    it.URL,
			"target": it.Target,
		}
	}
	return map[string]any{
		"handle": m.Handle,
		"name":   m.Name,
		"items":  items,
	}
}
