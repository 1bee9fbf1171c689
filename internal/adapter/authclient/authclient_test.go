package authclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niksmo/sweet-shop/internal/adapter/authclient"
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	t.Run("ResolvesPrincipal", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"user_id": "user-1", "admin": true}`))
			}))
		defer srv.Close()

		cl := authclient.New(srv.URL)
		p, err := cl.Authenticate(t.Context(), "the-token")
		require.NoError(t, err)
		assert.Equal(t, "Bearer the-token", gotAuth)
		assert.Equal(t, domain.Principal{UserID: "user-1", Admin: true}, p)
	})

	t.Run("NonOKStatusIsUnauthenticated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnauthorized)
			}))
		defer srv.Close()

		cl := authclient.New(srv.URL)
		_, err := cl.Authenticate(t.Context(), "expired")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("UnreachableService", func(t *testing.T) {
		cl := authclient.New("http://127.0.0.1:1")
		_, err := cl.Authenticate(t.Context(), "token")
		assert.Error(t, err)
	})
}
