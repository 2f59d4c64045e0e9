package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/haldis/storefront-engine/internal/liquid"
	"github.com/haldis/storefront-engine/internal/template"
)

var (
	sectionTagRe = regexp.MustCompile(`{%-?\s*section\s+['"]([^'"]+)['"]\s*-?%}`)
	schemaRe     = regexp.MustCompile(`(?s){%-?\s*schema\s*-?%}(.*?){%-?\s*endschema\s*-?%}`)
)

// SectionRenderer renders theme sections: the named blocks a layout or
// a JSON page template composes a page from. Section failures never
// escalate; a broken section degrades to a placeholder comment.
type SectionRenderer struct {
	templates *template.Loader
	engine    *liquid.Engine
	logger    *slog.Logger
}

// NewSectionRenderer creates a section renderer. Panics if any
// dependency is nil, as this indicates a programming error in the
// application setup.
func NewSectionRenderer(templates *template.Loader, engine *liquid.Engine, logger *slog.Logger) *SectionRenderer {
	if templates == nil {
		panic("template loader cannot be nil")
	}
	if engine == nil {
		panic("liquid engine cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SectionRenderer{
		templates: templates,
		engine:    engine,
		logger:    logger.With(slog.String("component", "section_renderer")),
	}
}

// ExtractSectionNames returns the distinct section names a layout
// references through {% section 'name' %} tags, in order of first
// appearance.
func ExtractSectionNames(layout string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range sectionTagRe.FindAllStringSubmatch(layout, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// schemaSettings extracts the default setting values declared in a
// section's {% schema %} block. Settings without a default are skipped.
func schemaSettings(sectionSrc string) map[string]any {
	m := schemaRe.FindStringSubmatch(sectionSrc)
	if m == nil {
		return nil
	}

	var schema struct {
		Settings []struct {
			ID      string `json:"id"`
			Default any    `json:"default"`
		} `json:"settings"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &schema); err != nil {
		return nil
	}

	out := make(map[string]any, len(schema.Settings))
	for _, s := range schema.Settings {
		if s.ID != "" && s.Default != nil {
			out[s.ID] = s.Default
		}
	}
	return out
}

// RenderSection evaluates section source with a section-scoped context:
// schema setting defaults merged with the store template's overrides,
// overrides winning. The schema block itself is stripped before
// evaluation.
func (r *SectionRenderer) RenderSection(name, src string, base map[string]any, cfg *template.SectionConfig, opts liquid.RenderOptions) (string, error) {
	settings := schemaSettings(src)
	if settings == nil {
		settings = make(map[string]any)
	}
	if cfg != nil {
		for k, v := range cfg.Settings {
			settings[k] = v
		}
	}

	scoped := make(map[string]any, len(base)+1)
	for k, v := range base {
		scoped[k] = v
	}
	scoped["section"] = map[string]any{
		"id":       name,
		"settings": settings,
	}

	cleaned := strings.TrimSpace(schemaRe.ReplaceAllString(src, ""))
	return r.engine.Render(cleaned, liquid.NewContext(scoped), opts)
}

// LoadSectionSafely loads and renders one section by name, returning a
// placeholder comment on any failure so one broken section never fails
// the page.
func (r *SectionRenderer) LoadSectionSafely(ctx context.Context, storeID, name string, base map[string]any, cfg *template.SectionConfig, opts liquid.RenderOptions) string {
	templateName := "sections/" + name
	if !strings.Contains(name, ".") {
		templateName += ".liquid"
	}

	src, err := r.templates.LoadTemplate(ctx, storeID, templateName)
	if err != nil {
		r.logger.Warn("section failed to load",
			slog.String("store_id", storeID),
			slog.String("section", name),
			slog.String("error", err.Error()))
		return fmt.Sprintf("<!-- Section '%s' not found -->", name)
	}

	html, err := r.RenderSection(name, src, base, cfg, opts)
	if err != nil {
		r.logger.Warn("section failed to render",
			slog.String("store_id", storeID),
			slog.String("section", name),
			slog.String("error", err.Error()))
		return fmt.Sprintf("<!-- Section '%s' not found -->", name)
	}
	return html
}

// RenderFromConfig renders a JSON template configuration: each entry in
// the order list names a section instance whose type resolves to a
// section file. Missing or broken sections degrade per section.
func (r *SectionRenderer) RenderFromConfig(ctx context.Context, storeID string, cfg *template.Config, base map[string]any, opts liquid.RenderOptions) string {
	parts := make([]string, 0, len(cfg.Order))
	for _, id := range cfg.Order {
		sc, ok := cfg.Sections[id]
		if !ok {
			continue
		}
		src, err := r.templates.LoadTemplate(ctx, storeID, "sections/"+sc.Type+".liquid")
		if err != nil {
			r.logger.Warn("configured section not found",
				slog.String("store_id", storeID),
				slog.String("section_type", sc.Type),
				slog.String("error", err.Error()))
			parts = append(parts, fmt.Sprintf("<!-- Section '%s' not found -->", sc.Type))
			continue
		}
		html, err := r.RenderSection(id, src, base, &sc, opts)
		if err != nil {
			r.logger.Warn("configured section failed to render",
				slog.String("store_id", storeID),
				slog.String("section_type", sc.Type),
				slog.String("error", err.Error()))
			parts = append(parts, fmt.Sprintf("<!-- Section '%s' not found -->", sc.Type))
			continue
		}
		parts = append(parts, html)
	}
	return strings.Join(parts, "\n")
}
