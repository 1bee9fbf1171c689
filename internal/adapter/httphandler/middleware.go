package httphandler

import (
	"net/http"
	"strings"

	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/internal/core/service"
)

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// RequireAuth revalidates the bearer token with the external auth
// service on every call and binds the resolved principal to the
// request context. The client's own parsed role claim is never
// trusted for authorization.
func RequireAuth(auth port.Authenticator, next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		p, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		ctx := service.WithPrincipal(r.Context(), p)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hf)
}

// OptionalAuth resolves the principal when a token is present and
// passes the request through anonymously otherwise.
func OptionalAuth(auth port.Authenticator, next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := service.WithPrincipal(r.Context(), p)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hf)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
