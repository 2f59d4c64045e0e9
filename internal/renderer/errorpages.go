package renderer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/liquid"
)

// errorPageScaffold is the shared shell of every themed error page.
// The headline and subtitle come from the error context.
const errorPageScaffold = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ page.title }}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; background: #f3f4f6; color: #1f2937; margin: 0; min-height: 100vh; display: flex; flex-direction: column; }
.main { flex: 1; display: flex; align-items: center; justify-content: center; padding: 40px 20px; }
.box { text-align: center; max-width: 600px; }
.box h1 { font-size: 2.5rem; font-weight: 400; margin-bottom: 1rem; }
.box p { color: #6b7280; margin-bottom: 3rem; }
.btn { display: inline-block; padding: 12px 24px; border-radius: 6px; text-decoration: none; background: #1f2937; color: white; font-size: 14px; }
.details { margin-top: 2rem; padding: 1rem; background: #fef2f2; border: 1px solid #fecaca; border-radius: 6px; text-align: left; font-family: monospace; font-size: 12px; color: #991b1b; }
</style>
</head>
<body>
<div class="main">
  <div class="box">
    <h1>{{ error.headline }}</h1>
    <p>{{ error.friendly_message }}</p>
    <a href="/" class="btn">{{ error.action_label }}</a>
    {% if error.show_details %}
    <div class="details">
      Type: {{ error.type }}<br>
      Message: {{ error.message }}<br>
      Status: {{ error.status_code }}
    </div>
    {% endif %}
  </div>
</div>
</body>
</html>`

// fallbackErrorPage is served when the themed error page itself fails
// to render.
const fallbackErrorPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Error</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 2rem;">
<h1>Something went wrong</h1>
<p>An unexpected error occurred. Please try again later.</p>
<a href="/">Back to home</a>
</body>
</html>`

// errorCopy is the user-facing text for one error type.
type errorCopy struct {
	headline    string
	friendly    string
	actionLabel string
	title       string
	description string
}

var errorPages = map[ErrorType]errorCopy{
	ErrorTypeStoreNotFound: {
		headline:    "This store does not exist.",
		friendly:    "The store you are looking for does not exist or has been deactivated.",
		actionLabel: "Go back",
		title:       "Store Not Found",
		description: "The store you are looking for is not available.",
	},
	ErrorTypeStoreNotActive: {
		headline:    "This store is not active.",
		friendly:    "Please contact the store owner to resolve this.",
		actionLabel: "Retry",
		title:       "Store Not Active",
		description: "This store is currently inactive.",
	},
	ErrorTypeTemplateNotFound: {
		headline:    "This store is being set up.",
		friendly:    "It will be available soon. Please check back later.",
		actionLabel: "Retry",
		title:       "Store Under Construction",
		description: "This store is being configured and will be available soon.",
	},
	ErrorTypeData: {
		headline:    "Connection error.",
		friendly:    "We could not load the store data. Please try again in a moment.",
		actionLabel: "Retry",
		title:       "Connection Error",
		description: "There was a problem loading the store data.",
	},
	ErrorTypeRender: {
		headline:    "Something went wrong.",
		friendly:    "We are working on it. Please try again in a moment.",
		actionLabel: "Reload",
		title:       "Temporary Error",
		description: "A temporary technical error occurred.",
	},
}

// ErrorRenderOptions carries whatever context the error path recovered.
type ErrorRenderOptions struct {
	Domain string
	Path   string

	// Store is set when the domain still resolves; it enriches the
	// error page and metadata.
	Store *domain.Store

	// ShowDetails exposes the raw error in the page, for development.
	ShowDetails bool
}

// ErrorRenderer produces the user-facing page for a typed render
// failure. It always returns a page: if the themed template fails, a
// static fallback is served instead, and the original error is never
// masked.
type ErrorRenderer struct {
	engine *liquid.Engine
	logger *slog.Logger
}

// NewErrorRenderer creates an error renderer. Panics if any dependency
// is nil, as this indicates a programming error in the application
// setup.
func NewErrorRenderer(engine *liquid.Engine, logger *slog.Logger) *ErrorRenderer {
	if engine == nil {
		panic("liquid engine cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ErrorRenderer{
		engine: engine,
		logger: logger.With(slog.String("component", "error_renderer")),
	}
}

// RenderError renders the themed page for the error type.
func (r *ErrorRenderer) RenderError(terr *TemplateError, opts ErrorRenderOptions) RenderResult {
	copyFor, ok := errorPages[terr.Type]
	if !ok {
		copyFor = errorPages[ErrorTypeRender]
	}

	siteName := opts.Domain
	icon := "/favicon.ico"
	if opts.Store != nil {
		siteName = opts.Store.Name
		if opts.Store.FaviconURL != "" {
			icon = opts.Store.FaviconURL
		}
	}
	title := fmt.Sprintf("%s | %s", copyFor.title, siteName)

	ctx := liquid.NewContext(map[string]any{
		"error": map[string]any{
			"type":             string(terr.Type),
			"message":          terr.Message,
			"status_code":      int64(terr.StatusCode),
			"headline":         copyFor.headline,
			"friendly_message": copyFor.friendly,
			"action_label":     copyFor.actionLabel,
			"show_details":     opts.ShowDetails,
		},
		"page": map[string]any{
			"title":    title,
			"template": "error",
			"url":      opts.Domain + opts.Path,
		},
	})

	html, err := r.engine.Render(errorPageScaffold, ctx, liquid.RenderOptions{
		Assets: liquid.NewAssetCollector(),
	})
	if err != nil {
		r.logger.Error("themed error page failed to render",
			slog.String("error_type", string(terr.Type)),
			slog.String("error", err.Error()))
		html = fallbackErrorPage
	}

	return RenderResult{
		HTML: html,
		Metadata: Metadata{
			Title:       title,
			Description: copyFor.description,
			Icon:        icon,
			OGTitle:     title,
			OGURL:       opts.Domain + opts.Path,
			OGType:      "website",
			OGSiteName:  siteName,
		},
		// Error pages are never cached.
		CacheKey: fmt.Sprintf("error_%s_%d", strings.ToLower(string(terr.Type)), time.Now().UnixMilli()),
		CacheTTL: 0,
	}
}
