package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/haldis/storefront-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetupLevels verifies that each configured level produces a logger
// enabled at exactly that level.
func TestSetupLevels(t *testing.T) {
	cases := []struct {
		configured string
		enabled    slog.Level
		disabled   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		// Invalid levels fall back to info.
		{"loud", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tc := range cases {
		t.Run(tc.configured, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.configured})
			require.NoError(t, err)
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tc.enabled))
			assert.False(t, logger.Enabled(ctx, tc.disabled))
		})
	}
}

// TestFromContextOrDefault verifies the fallback chain: context logger,
// then the provided default, then slog.Default().
func TestFromContextOrDefault(t *testing.T) {
	ctxLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	defLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	t.Run("logger from context wins", func(t *testing.T) {
		ctx := WithLogger(context.Background(), ctxLogger)
		assert.Same(t, ctxLogger, FromContextOrDefault(ctx, defLogger))
	})

	t.Run("default used when context is empty", func(t *testing.T) {
		assert.Same(t, defLogger, FromContextOrDefault(context.Background(), defLogger))
	})

	t.Run("slog default as last resort", func(t *testing.T) {
		assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	})
}
