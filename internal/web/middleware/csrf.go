package middleware

import (
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/JonMunkholm/trainer/internal/config"
)

// CSRFFieldName is the hidden form field carrying the token.
const CSRFFieldName = "csrf_token"

// CSRF protects the HTML form routes. The JSON API is not mounted behind
// it; APIKeyAuth guards that instead.
//
// Requests that did not arrive over TLS (directly or via a proxy setting
// X-Forwarded-Proto) skip the Referer check but still need a valid token.
func CSRF(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	key := []byte(cfg.CSRFKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("csrf: generate key: " + err.Error())
		}
		slog.Warn("csrf: CSRF_KEY not set, using a random key; form tokens reset on restart")
	}

	protect := csrf.Protect(key,
		csrf.Secure(cfg.CSRFSecureCookie),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.CSRFTrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token to embed in forms rendered for r.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	slog.Warn("csrf: request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"origin", r.Header.Get("Origin"),
		"reason", csrf.FailureReason(r),
	)
	denied(w, http.StatusForbidden, "invalid or missing form token, reload the page and try again", "CSRF001")
}
