// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/haldis/storefront-engine/internal/platform/logger"
	"github.com/haldis/storefront-engine/internal/resolver"
)

// RequestLogger attaches a request-scoped logger carrying the request ID
// and storefront domain to the context, and logs one completion line per
// request. Apply it after chi's RequestID middleware so the ID is
// already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := base.With(
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("domain", resolver.NormalizeDomain(r.Host)))

			ctx := logger.WithLogger(r.Context(), log)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			log.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		})
	}
}
