package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/liquid"
	"github.com/haldis/storefront-engine/internal/resolver"
	"github.com/haldis/storefront-engine/internal/template"
)

// PageRenderer is the render pipeline entry point. A single Render call
// resolves the domain, confirms the store has a theme, fans out the
// independent loads, renders page content into the layout and returns
// the final HTML with its metadata and cache placement.
type PageRenderer struct {
	resolver  *resolver.Resolver
	templates *template.Loader
	contexts  *ContextBuilder
	sections  *SectionRenderer
	errorPage *ErrorRenderer
	engine    *liquid.Engine
	cache     *cache.Manager
	logger    *slog.Logger

	// debug exposes raw error details on rendered error pages.
	debug bool
}

// NewPageRenderer creates the page renderer. Panics if any dependency
// is nil, as this indicates a programming error in the application
// setup.
func NewPageRenderer(
	domainResolver *resolver.Resolver,
	templates *template.Loader,
	contexts *ContextBuilder,
	sections *SectionRenderer,
	errorPage *ErrorRenderer,
	engine *liquid.Engine,
	cacheManager *cache.Manager,
	debug bool,
	logger *slog.Logger,
) *PageRenderer {
	if domainResolver == nil {
		panic("domain resolver cannot be nil")
	}
	if templates == nil {
		panic("template loader cannot be nil")
	}
	if contexts == nil {
		panic("context builder cannot be nil")
	}
	if sections == nil {
		panic("section renderer cannot be nil")
	}
	if errorPage == nil {
		panic("error renderer cannot be nil")
	}
	if engine == nil {
		panic("liquid engine cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PageRenderer{
		resolver:  domainResolver,
		templates: templates,
		contexts:  contexts,
		sections:  sections,
		errorPage: errorPage,
		engine:    engine,
		cache:     cacheManager,
		logger:    logger.With(slog.String("component", "page_renderer")),
		debug:     debug,
	}
}

// Render produces the storefront page for a domain and page options.
// Every failure surfaces as a *TemplateError; callers that want a
// user-facing page for it delegate to RenderError.
func (r *PageRenderer) Render(ctx context.Context, domainName string, opts PageOptions) (*RenderResult, error) {
	result, err := r.render(ctx, domainName, opts)
	if err != nil {
		terr := WrapError(err, fmt.Sprintf("failed to render %s page for %s", opts.Type, domainName))
		r.logger.Error("render failed",
			slog.String("domain", domainName),
			slog.String("page_type", string(opts.Type)),
			slog.String("error_type", string(terr.Type)),
			slog.String("error", terr.Error()))
		return nil, terr
	}
	return result, nil
}

func (r *PageRenderer) render(ctx context.Context, domainName string, opts PageOptions) (*RenderResult, error) {
	start := time.Now()

	store, err := r.resolver.ResolveStoreByDomain(ctx, domainName)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrStoreNotFound):
			return nil, NewTemplateError(ErrorTypeStoreNotFound, fmt.Sprintf("no store found for domain: %s", domainName))
		case errors.Is(err, resolver.ErrStoreInactive):
			return nil, NewTemplateError(ErrorTypeStoreNotActive, fmt.Sprintf("store for domain %s is not active", domainName))
		default:
			return nil, NewTemplateError(ErrorTypeData, err.Error())
		}
	}

	// Session-varying pages embed visitor state and are rendered fresh
	// every time; the cache only ever holds session-free HTML.
	cacheable := !opts.Type.sessionVarying()
	pageKey := cache.RenderedPageKey(store.StoreID, string(opts.Type), opts.identifier())
	if cacheable {
		if cached, ok := r.cache.GetCached(pageKey); ok {
			if result, ok := cached.(*RenderResult); ok {
				return result, nil
			}
		}
	}

	hasTemplates, err := r.templates.HasTemplates(ctx, store.StoreID)
	if err != nil {
		return nil, NewTemplateError(ErrorTypeData, err.Error())
	}
	if !hasTemplates {
		return nil, NewTemplateError(ErrorTypeTemplateNotFound, fmt.Sprintf("no templates found for store: %s", store.StoreID))
	}

	// Layout, page data and the page template are independent loads.
	var (
		layout      string
		data        *PageData
		pageContent string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		layout, err = r.templates.LoadMainLayout(gctx, store.StoreID)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = r.contexts.LoadPageData(gctx, store, opts)
		return err
	})
	g.Go(func() error {
		var err error
		pageContent, err = r.loadPageTemplate(gctx, store.StoreID, opts.Type)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			return nil, NewTemplateError(ErrorTypeTemplateNotFound, err.Error())
		}
		return nil, err
	}

	var cfg *template.Config
	if template.IsJSONTemplate(pageContent) {
		if cfg, err = template.ParseConfig([]byte(pageContent)); err != nil {
			return nil, err
		}
	}

	root := r.contexts.BuildContext(store, opts, data)

	// One asset collector serves the whole render: sections, page
	// content and layout all contribute to it, and nothing leaks into
	// the next request.
	assets := liquid.NewAssetCollector()
	renderOpts := liquid.RenderOptions{
		Assets: assets,
		Money:  liquid.MoneyFormat{Currency: storeCurrency(store, opts)},
	}
	renderOpts.Sections = func(name string) (string, error) {
		return r.sections.LoadSectionSafely(ctx, store.StoreID, name, root, sectionConfigFor(cfg, name), renderOpts), nil
	}

	var content string
	if cfg != nil {
		content = r.sections.RenderFromConfig(ctx, store.StoreID, cfg, root, renderOpts)
	} else {
		if content, err = r.engine.Render(pageContent, liquid.NewContext(root), renderOpts); err != nil {
			return nil, err
		}
	}

	root["preloaded_sections"] = r.preloadLayoutSections(ctx, store.StoreID, layout, root, cfg, renderOpts)
	root["content_for_layout"] = content
	root["content_for_header"] = HeadContent(store)

	html, err := r.engine.Render(layout, liquid.NewContext(root), renderOpts)
	if err != nil {
		return nil, err
	}
	html = liquid.InjectAssets(html, assets)

	pageTitle, _ := root["page_title"].(string)
	result := &RenderResult{
		HTML:     html,
		Metadata: GenerateMetadata(store, pageTitle, opts.Path),
		CacheKey: fmt.Sprintf("%s_%s_%s_%d", opts.Type, store.StoreID, opts.identifier(), time.Now().UnixMilli()),
		CacheTTL: cache.PageTTL(string(opts.Type)),
	}
	if cacheable {
		r.cache.SetCached(pageKey, result, result.CacheTTL)
	}

	r.logger.Info("page rendered",
		slog.String("store_id", store.StoreID),
		slog.String("page_type", string(opts.Type)),
		slog.Int("bytes", len(html)),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// loadPageTemplate returns the content template for a page type. Themes
// keep these as JSON section configs under templates/, with a liquid
// file as the fallback form.
func (r *PageRenderer) loadPageTemplate(ctx context.Context, storeID string, pageType PageType) (string, error) {
	content, err := r.templates.LoadTemplate(ctx, storeID, fmt.Sprintf("templates/%s.json", pageType))
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, template.ErrTemplateNotFound) {
		return "", err
	}
	return r.templates.LoadTemplate(ctx, storeID, fmt.Sprintf("templates/%s.liquid", pageType))
}

// preloadLayoutSections renders every section the layout references
// before the layout pass, fanning the loads out concurrently. Section
// failures degrade to placeholders inside LoadSectionSafely, so the
// preload itself never fails.
func (r *PageRenderer) preloadLayoutSections(ctx context.Context, storeID, layout string, root map[string]any, cfg *template.Config, opts liquid.RenderOptions) map[string]string {
	names := ExtractSectionNames(layout)
	preloaded := make(map[string]string, len(names))
	if len(names) == 0 {
		return preloaded
	}

	rendered := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			rendered[i] = r.sections.LoadSectionSafely(ctx, storeID, name, root, sectionConfigFor(cfg, name), opts)
			return nil
		})
	}
	_ = g.Wait()

	for i, name := range names {
		preloaded[name] = rendered[i]
	}
	return preloaded
}

// sectionConfigFor finds the settings override for a section type in
// the page's JSON template config, if any.
func sectionConfigFor(cfg *template.Config, name string) *template.SectionConfig {
	if cfg == nil {
		return nil
	}
	for _, sc := range cfg.Sections {
		if sc.Type == name {
			return &sc
		}
	}
	return nil
}

// RenderError produces the user-facing page for a render failure. The
// store is re-resolved purely to brand the error page; a secondary
// resolution failure is swallowed so the original error is never
// masked.
func (r *PageRenderer) RenderError(ctx context.Context, renderErr error, domainName, path string) *RenderResult {
	terr := WrapError(renderErr, "page render failed")

	opts := ErrorRenderOptions{
		Domain:      domainName,
		Path:        path,
		ShowDetails: r.debug,
	}
	if terr.Type != ErrorTypeStoreNotFound {
		if store, err := r.resolver.ResolveStoreByDomain(ctx, domainName); err == nil {
			opts.Store = store
		}
	}

	result := r.errorPage.RenderError(terr, opts)
	return &result
}
