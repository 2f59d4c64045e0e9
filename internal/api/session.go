package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// sessionCookieName is the client-side cookie carrying the cart session ID.
const sessionCookieName = "storefront_session"

// sessionCookieMaxAge keeps the cookie alive past the cart expiry horizon
// so an expired cart is replaced under the same session rather than
// orphaned.
const sessionCookieMaxAge = 90 * 24 * time.Hour

// ensureSession returns the storefront session ID from the request
// cookie, minting and setting a new one when the cookie is absent.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}
