package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

func TestRefresherExchangesRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh-1", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"access-2","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	r := NewRefresher(config.OAuthConfig{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, nil)
	store := NewMemoryStore("access-1", "refresh-1")

	require.True(t, r.Refresh(context.Background(), store))
	assert.Equal(t, "access-2", store.Token())
	// Google kept the refresh token, so the stored one survives.
	assert.Equal(t, "refresh-1", store.RefreshToken())
}

func TestRefresherAdoptsRotatedRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"access-2","refresh_token":"refresh-2","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	r := NewRefresher(config.OAuthConfig{TokenURL: srv.URL}, nil)
	store := NewMemoryStore("access-1", "refresh-1")

	require.True(t, r.Refresh(context.Background(), store))
	assert.Equal(t, "refresh-2", store.RefreshToken())
}

func TestRefresherClearsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer srv.Close()

	r := NewRefresher(config.OAuthConfig{TokenURL: srv.URL}, nil)
	store := NewMemoryStore("access-1", "refresh-1")

	assert.False(t, r.Refresh(context.Background(), store))
	assert.Empty(t, store.Token())
	assert.Empty(t, store.RefreshToken())
}

func TestRefresherRequiresRefreshToken(t *testing.T) {
	r := NewRefresher(config.OAuthConfig{TokenURL: "http://127.0.0.1:0"}, nil)
	store := NewMemoryStore("access-1", "")

	assert.False(t, r.Refresh(context.Background(), store))
	assert.Empty(t, store.Token())
}
