package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haldis/storefront-engine/internal/cache"
)

// ErrTemplateNotFound is returned when a store has no theme uploaded or
// a named template file is missing. The orchestrator maps it to a 404
// error page.
var ErrTemplateNotFound = errors.New("template not found")

// MainLayoutPath is the theme entry point every storefront must have.
const MainLayoutPath = "layout/theme.liquid"

// Loader resolves and retrieves theme template files for a store from
// object storage, caching file content per store and path.
type Loader struct {
	store  ObjectStore
	cache  *cache.Manager
	logger *slog.Logger
}

// NewLoader creates a template loader. Panics if any dependency is nil,
// as this indicates a programming error in the application setup.
func NewLoader(store ObjectStore, cacheManager *cache.Manager, logger *slog.Logger) *Loader {
	if store == nil {
		panic("object store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{
		store:  store,
		cache:  cacheManager,
		logger: logger.With(slog.String("component", "template_loader")),
	}
}

// storePrefix is the object-storage prefix holding a store's theme.
func storePrefix(storeID string) string {
	return fmt.Sprintf("templates/%s/", storeID)
}

// objectKey resolves a template name to its full object key. Bare
// names resolve into sections/; extensions default to .liquid.
func objectKey(storeID, name string) string {
	prefix := storePrefix(storeID)
	hasExt := strings.HasSuffix(name, ".liquid") || strings.HasSuffix(name, ".json")
	switch {
	case strings.Contains(name, "/") && hasExt:
		return prefix + name
	case strings.Contains(name, "/"):
		return prefix + name + ".liquid"
	case hasExt:
		return prefix + "sections/" + name
	default:
		return prefix + "sections/" + name + ".liquid"
	}
}

// HasTemplates reports whether the store has any theme files uploaded.
// The orchestrator checks this before rendering so a theme-less store
// fails fast with a 404 instead of deep in the pipeline.
func (l *Loader) HasTemplates(ctx context.Context, storeID string) (bool, error) {
	keys, err := l.store.List(ctx, storePrefix(storeID))
	if err != nil {
		return false, fmt.Errorf("listing templates for store %s: %w", storeID, err)
	}
	return len(keys) > 0, nil
}

// LoadMainLayout returns the store's main layout template.
func (l *Loader) LoadMainLayout(ctx context.Context, storeID string) (string, error) {
	return l.LoadTemplate(ctx, storeID, MainLayoutPath)
}

// LoadTemplate returns the named template's content, from cache when
// possible.
func (l *Loader) LoadTemplate(ctx context.Context, storeID, name string) (string, error) {
	key := cache.TemplateKey(storeID, name)
	if cached, ok := l.cache.GetCached(key); ok {
		if content, ok := cached.(string); ok {
			return content, nil
		}
	}

	content, err := l.store.Get(ctx, objectKey(storeID, name))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return "", fmt.Errorf("%w: %s for store %s", ErrTemplateNotFound, name, storeID)
		}
		return "", fmt.Errorf("loading template %s for store %s: %w", name, storeID, err)
	}

	text := string(content)
	l.cache.SetCached(key, text, cache.DataTTL(cache.KindTemplate))
	l.logger.Debug("template loaded",
		slog.String("store_id", storeID),
		slog.String("path", name),
		slog.Int("bytes", len(content)))
	return text, nil
}
