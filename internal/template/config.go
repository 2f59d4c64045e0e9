package template

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionConfig names a section type and its per-instance settings
// inside a JSON page template.
type SectionConfig struct {
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Config is a JSON page template: an ordered list of section IDs and
// the configuration of each. Themes use these for pages assembled from
// reusable sections rather than a single liquid file.
type Config struct {
	Order    []string                 `json:"order"`
	Sections map[string]SectionConfig `json:"sections"`
}

// ParseConfig decodes a JSON template body.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing template config: %w", err)
	}
	return &cfg, nil
}

// IsJSONTemplate reports whether template content is a JSON section
// config rather than liquid source.
func IsJSONTemplate(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{")
}
