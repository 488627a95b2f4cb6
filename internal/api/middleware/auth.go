package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/testforge/hrm-e2e/pkg/httputil"
)

// TokenMiddleware requires a shared token on guarded routes. The token is
// read from "Authorization: Bearer <token>" or the X-API-Key header.
type TokenMiddleware struct {
	token []byte
}

// NewTokenMiddleware creates the guard. An empty token lets every request
// through.
func NewTokenMiddleware(token string) *TokenMiddleware {
	return &TokenMiddleware{token: []byte(token)}
}

// Handler returns the middleware handler
func (m *TokenMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.token) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		got := extractToken(r)
		if got == "" {
			httputil.JSONError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, "missing token", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), m.token) != 1 {
			httputil.JSONError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, "invalid token", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
