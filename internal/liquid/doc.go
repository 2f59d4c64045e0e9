// Package liquid implements the template language storefront themes
// are written in: {{ output }} expressions with filter pipelines,
// control-flow tags (if/unless/elsif/else, case/when, for, assign,
// capture, comment, raw), and the theme tags section, style,
// stylesheet, javascript and schema.
//
// Evaluation is lenient where themes expect it: unknown variables
// render as empty strings, unknown filters pass values through, and a
// section that fails to render emits a placeholder comment instead of
// failing the page. Parse errors and filter errors are still surfaced:
// a malformed template is a bug in the theme, not missing data.
//
// The engine itself holds only the filter registry and is safe for
// concurrent use. All per-render state, in particular the
// AssetCollector, is created per call and threaded through explicitly.
package liquid
