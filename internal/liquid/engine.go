package liquid

import (
	"fmt"
	"strings"
)

// SectionSource renders a section by name during template evaluation.
// It returns the section's HTML or an error; on error the engine emits
// a placeholder comment instead of failing the render.
type SectionSource func(name string) (string, error)

// MoneyFormat carries the store's money presentation settings used by
// the money filters.
type MoneyFormat struct {
	Currency string
	Symbol   string
}

// Engine parses and evaluates templates. An engine is safe for
// concurrent use: all per-render state lives in the RenderOptions and
// the asset collector passed to each call.
type Engine struct {
	filters map[string]filterFunc
}

// NewEngine creates an engine with the standard filter set registered.
func NewEngine() *Engine {
	e := &Engine{filters: map[string]filterFunc{}}
	registerStandardFilters(e)
	return e
}

// RegisterFilter adds or replaces a named filter.
func (e *Engine) RegisterFilter(name string, fn filterFunc) {
	e.filters[name] = fn
}

// RenderOptions carries the per-render collaborators.
type RenderOptions struct {
	// Assets receives CSS/JS contributed during evaluation. Required.
	Assets *AssetCollector

	// Sections resolves {% section %} tags. Optional; absent sections
	// render as placeholder comments.
	Sections SectionSource

	// Money configures the money filters. Zero value falls back to a
	// bare "$" prefix.
	Money MoneyFormat
}

// renderState is the per-render evaluation state threaded through the
// node tree.
type renderState struct {
	engine   *Engine
	assets   *AssetCollector
	sections SectionSource
	money    MoneyFormat
}

// Render parses and evaluates template source against the context.
func (e *Engine) Render(templateSrc string, ctx *Context, opts RenderOptions) (string, error) {
	nodes, err := Parse(templateSrc)
	if err != nil {
		return "", fmt.Errorf("template parse failed: %w", err)
	}
	return e.RenderNodes(nodes, ctx, opts)
}

// RenderNodes evaluates a pre-parsed template against the context.
func (e *Engine) RenderNodes(nodes []node, ctx *Context, opts RenderOptions) (string, error) {
	if opts.Assets == nil {
		opts.Assets = NewAssetCollector()
	}
	if ctx == nil {
		ctx = NewContext(nil)
	}
	st := &renderState{
		engine:   e,
		assets:   opts.Assets,
		sections: opts.Sections,
		money:    opts.Money,
	}

	var out strings.Builder
	if err := renderNodes(nodes, st, ctx, &out); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return out.String(), nil
}
