package liquid

import (
	"strings"
	"sync"
)

// AssetCollector accumulates the CSS and JS contributed by sections and
// tags during one render. A collector is created fresh per top-level
// render and threaded through the call, so concurrent renders can never
// leak assets into each other. Within one render, section preloads run
// concurrently and share the collector, so appends are locked.
type AssetCollector struct {
	mu  sync.Mutex
	css []string
	js  []string
}

// NewAssetCollector creates an empty collector.
func NewAssetCollector() *AssetCollector {
	return &AssetCollector{}
}

// AddCSS appends a stylesheet fragment. Blank fragments are dropped.
func (c *AssetCollector) AddCSS(css string) {
	css = strings.TrimSpace(css)
	if css == "" {
		return
	}
	c.mu.Lock()
	c.css = append(c.css, css)
	c.mu.Unlock()
}

// AddJS appends a script fragment. Blank fragments are dropped.
func (c *AssetCollector) AddJS(js string) {
	js = strings.TrimSpace(js)
	if js == "" {
		return
	}
	c.mu.Lock()
	c.js = append(c.js, js)
	c.mu.Unlock()
}

// CombinedCSS returns every collected stylesheet fragment joined.
func (c *AssetCollector) CombinedCSS() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.css, "\n")
}

// CombinedJS returns every collected script fragment joined.
func (c *AssetCollector) CombinedJS() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.js, "\n")
}

// InjectAssets places the collected CSS before </head> and the
// collected JS before </body>, appending when the marker is absent.
// Both are wrapped in tagged elements so duplicate injection is
// detectable.
func InjectAssets(html string, collector *AssetCollector) string {
	if collector == nil {
		return html
	}

	if css := collector.CombinedCSS(); css != "" {
		styleTag := `<style data-engine-assets="true">` + css + `</style>`
		if strings.Contains(html, "</head>") {
			html = strings.Replace(html, "</head>", styleTag+"</head>", 1)
		} else {
			html += styleTag
		}
	}

	if js := collector.CombinedJS(); js != "" {
		scriptTag := `<script data-engine-assets="true">` + js + `</script>`
		if strings.Contains(html, "</body>") {
			html = strings.Replace(html, "</body>", scriptTag+"</body>", 1)
		} else {
			html += scriptTag
		}
	}
	return html
}
