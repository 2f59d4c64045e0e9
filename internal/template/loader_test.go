package template

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldis/storefront-engine/internal/cache"
)

func newTestLoader(t *testing.T) (*Loader, *MemoryObjectStore, *cache.Manager) {
	t.Helper()

	store := NewMemoryObjectStore()
	manager := cache.NewManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(store, manager, logger), store, manager
}

func TestObjectKeyResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want string
	}{
		{"layout/theme.liquid", "templates/s1/layout/theme.liquid"},
		{"templates/index", "templates/s1/templates/index.liquid"},
		{"templates/index.json", "templates/s1/templates/index.json"},
		{"header", "templates/s1/sections/header.liquid"},
		{"header.json", "templates/s1/sections/header.json"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, objectKey("s1", tc.name), tc.name)
	}
}

func TestHasTemplates(t *testing.T) {
	t.Parallel()

	loader, store, _ := newTestLoader(t)
	ctx := context.Background()

	ok, err := loader.HasTemplates(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok, "store without theme files")

	store.PutString("templates/s1/layout/theme.liquid", "<html></html>")
	ok, err = loader.HasTemplates(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = loader.HasTemplates(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, ok, "other store's theme does not leak")
}

func TestLoadMainLayout(t *testing.T) {
	t.Parallel()

	loader, store, _ := newTestLoader(t)
	store.PutString("templates/s1/layout/theme.liquid", "<html>{{ content_for_layout }}</html>")

	content, err := loader.LoadMainLayout(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "<html>{{ content_for_layout }}</html>", content)
}

func TestLoadTemplateMissing(t *testing.T) {
	t.Parallel()

	loader, _, _ := newTestLoader(t)

	_, err := loader.LoadTemplate(context.Background(), "s1", "layout/theme.liquid")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestLoadTemplateUsesCache(t *testing.T) {
	t.Parallel()

	loader, store, manager := newTestLoader(t)
	ctx := context.Background()
	store.PutString("templates/s1/sections/header.liquid", "v1")

	content, err := loader.LoadTemplate(ctx, "s1", "header")
	require.NoError(t, err)
	assert.Equal(t, "v1", content)

	// Backing store changes are invisible until the cache entry is
	// invalidated.
	store.PutString("templates/s1/sections/header.liquid", "v2")
	content, err = loader.LoadTemplate(ctx, "s1", "header")
	require.NoError(t, err)
	assert.Equal(t, "v1", content)

	manager.DeleteByPrefix(cache.TemplatesPrefix("s1"))
	content, err = loader.LoadTemplate(ctx, "s1", "header")
	require.NoError(t, err)
	assert.Equal(t, "v2", content)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	raw := `{
		"order": ["hero", "grid"],
		"sections": {
			"hero": {"type": "hero-banner", "settings": {"heading": "Welcome"}},
			"grid": {"type": "product-grid"}
		}
	}`
	cfg, err := ParseConfig([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"hero", "grid"}, cfg.Order)
	assert.Equal(t, "hero-banner", cfg.Sections["hero"].Type)
	assert.Equal(t, "Welcome", cfg.Sections["hero"].Settings["heading"])

	_, err = ParseConfig([]byte("{not json"))
	assert.Error(t, err)

	assert.True(t, IsJSONTemplate(`  {"order": []}`))
	assert.False(t, IsJSONTemplate("<div>{% if x %}{% endif %}</div>"))
}
