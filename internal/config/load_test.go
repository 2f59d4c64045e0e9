package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	// Set new environment variables
	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	// Return cleanup function
	return func() {
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies that Load applies the expected defaults when
// only the required settings are provided via environment variables.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"STOREFRONT_DATABASE_URL":        "postgres://localhost:5432/storefront",
		"STOREFRONT_STORAGE_BUCKET_NAME": "storefront-themes",
	})
	defer cleanup()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30, cfg.Cart.ExpiryDays)
	assert.Equal(t, 2*time.Hour, cfg.Checkout.SessionTTL)
}

// TestLoadEnvOverrides verifies that environment variables take precedence
// over defaults.
func TestLoadEnvOverrides(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"STOREFRONT_DATABASE_URL":         "postgres://localhost:5432/storefront",
		"STOREFRONT_STORAGE_BUCKET_NAME":  "storefront-themes",
		"STOREFRONT_SERVER_PORT":          "9090",
		"STOREFRONT_SERVER_LOG_LEVEL":     "debug",
		"STOREFRONT_CART_EXPIRY_DAYS":     "7",
		"STOREFRONT_CHECKOUT_SESSION_TTL": "1h",
	})
	defer cleanup()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 7, cfg.Cart.ExpiryDays)
	assert.Equal(t, time.Hour, cfg.Checkout.SessionTTL)
}

// TestLoadValidation verifies that validation failures surface as errors.
func TestLoadValidation(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		cleanup := setupEnv(t, map[string]string{
			"STOREFRONT_DATABASE_URL":        "",
			"STOREFRONT_STORAGE_BUCKET_NAME": "storefront-themes",
		})
		defer cleanup()

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid log level", func(t *testing.T) {
		cleanup := setupEnv(t, map[string]string{
			"STOREFRONT_DATABASE_URL":        "postgres://localhost:5432/storefront",
			"STOREFRONT_STORAGE_BUCKET_NAME": "storefront-themes",
			"STOREFRONT_SERVER_LOG_LEVEL":    "loud",
		})
		defer cleanup()

		_, err := Load()
		assert.Error(t, err)
	})
}
